package config

const (
	defaultAddr               = "127.0.0.1:8000"
	defaultMaxUploadMB        = 1024
	defaultReadTimeoutSeconds = 300
	defaultUploadDir          = "uploads"
	defaultOutputDir          = "outputs"
	defaultLLMProvider        = "openai"
	defaultLLMTimeoutSeconds  = 60
	defaultSpeechProvider     = "openai"
	defaultSpeechTimeout      = 300
	defaultMaxCharsPerLine    = 0
	defaultMaxLinesPerCue     = 2
	defaultMaxCueSeconds      = 0
	defaultMediaTimeout       = 600
	defaultMediaConcurrency   = 2
	defaultVideoCodec         = "libx264"
	defaultAudioCodec         = "aac"
	defaultLogLevel           = "info"
	defaultShutdownSeconds    = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Addr:                   defaultAddr,
			AllowedOrigins:         []string{"*"},
			MaxUploadMB:            defaultMaxUploadMB,
			ReadTimeoutSeconds:     defaultReadTimeoutSeconds,
			ShutdownTimeoutSeconds: defaultShutdownSeconds,
		},
		Storage: Storage{
			UploadDir: defaultUploadDir,
			OutputDir: defaultOutputDir,
		},
		LLM: LLM{
			Provider:       defaultLLMProvider,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Speech: Speech{
			Provider:        defaultSpeechProvider,
			TimeoutSeconds:  defaultSpeechTimeout,
			MaxCharsPerLine: defaultMaxCharsPerLine,
			MaxLinesPerCue:  defaultMaxLinesPerCue,
			MaxCueSeconds:   defaultMaxCueSeconds,
		},
		Media: Media{
			TimeoutSeconds: defaultMediaTimeout,
			MaxConcurrent:  defaultMediaConcurrency,
			VideoCodec:     defaultVideoCodec,
			AudioCodec:     defaultAudioCodec,
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
	}
}
