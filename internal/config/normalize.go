package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	EnvAddr           = "CAPTIONCHAT_ADDR"
	EnvUploadDir      = "CAPTIONCHAT_UPLOAD_DIR"
	EnvOutputDir      = "CAPTIONCHAT_OUTPUT_DIR"
	EnvLLMProvider    = "CAPTIONCHAT_LLM_PROVIDER"
	EnvLLMModel       = "CAPTIONCHAT_LLM_MODEL"
	EnvSpeechProvider = "CAPTIONCHAT_SPEECH_PROVIDER"
	EnvSpeechModel    = "CAPTIONCHAT_SPEECH_MODEL"
	EnvLogLevel       = "CAPTIONCHAT_LOG_LEVEL"
)

// provider name → environment variable holding its key
var apiKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

func (c *Config) normalize() error {
	c.applyEnv()

	if err := c.normalizeStorage(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeSpeech()
	c.normalizeMedia()
	c.normalizeLogging()
	return nil
}

func (c *Config) applyEnv() {
	setFromEnv(&c.Server.Addr, EnvAddr)
	setFromEnv(&c.Storage.UploadDir, EnvUploadDir)
	setFromEnv(&c.Storage.OutputDir, EnvOutputDir)
	setFromEnv(&c.LLM.Provider, EnvLLMProvider)
	setFromEnv(&c.LLM.Model, EnvLLMModel)
	setFromEnv(&c.Speech.Provider, EnvSpeechProvider)
	setFromEnv(&c.Speech.Model, EnvSpeechModel)
	setFromEnv(&c.Logging.Level, EnvLogLevel)
}

func setFromEnv(field *string, key string) {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		*field = strings.TrimSpace(value)
	}
}

func (c *Config) normalizeStorage() error {
	var err error
	if c.Storage.UploadDir, err = expandPath(c.Storage.UploadDir); err != nil {
		return fmt.Errorf("storage.upload_dir: %w", err)
	}
	if c.Storage.OutputDir, err = expandPath(c.Storage.OutputDir); err != nil {
		return fmt.Errorf("storage.output_dir: %w", err)
	}
	if c.Storage.WorkDir, err = expandPath(c.Storage.WorkDir); err != nil {
		return fmt.Errorf("storage.work_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = keyFromEnv(c.LLM.Provider)
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeSpeech() {
	c.Speech.Provider = strings.ToLower(strings.TrimSpace(c.Speech.Provider))
	c.Speech.Model = strings.TrimSpace(c.Speech.Model)
	c.Speech.BaseURL = strings.TrimSpace(c.Speech.BaseURL)
	c.Speech.Language = strings.TrimSpace(c.Speech.Language)
	c.Speech.APIKey = strings.TrimSpace(c.Speech.APIKey)
	if c.Speech.APIKey == "" {
		c.Speech.APIKey = keyFromEnv(c.Speech.Provider)
	}
	if c.Speech.TimeoutSeconds <= 0 {
		c.Speech.TimeoutSeconds = defaultSpeechTimeout
	}
}

func (c *Config) normalizeMedia() {
	c.Media.FFmpegPath = strings.TrimSpace(c.Media.FFmpegPath)
	c.Media.FFprobePath = strings.TrimSpace(c.Media.FFprobePath)
	if c.Media.TimeoutSeconds <= 0 {
		c.Media.TimeoutSeconds = defaultMediaTimeout
	}
	if strings.TrimSpace(c.Media.VideoCodec) == "" {
		c.Media.VideoCodec = defaultVideoCodec
	}
	if strings.TrimSpace(c.Media.AudioCodec) == "" {
		c.Media.AudioCodec = defaultAudioCodec
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func keyFromEnv(provider string) string {
	key, ok := apiKeyEnv[provider]
	if !ok {
		return ""
	}
	return strings.TrimSpace(os.Getenv(key))
}
