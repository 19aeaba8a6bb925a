package cli

import (
	"context"
	"fmt"

	"github.com/mgpai22/captionchat/internal/config"
	"github.com/mgpai22/captionchat/internal/ffmpeg"
	"github.com/mgpai22/captionchat/internal/llm"
	"github.com/mgpai22/captionchat/internal/logging"
	"github.com/mgpai22/captionchat/internal/media"
	"github.com/mgpai22/captionchat/internal/subtitle"
	"github.com/mgpai22/captionchat/internal/transcribe"
)

func newCompositor(cfg *config.Config, logger *logging.Logger) (*media.Processor, error) {
	bins, err := ffmpeg.Resolve(ffmpeg.BinaryPaths{
		FFmpeg:  cfg.Media.FFmpegPath,
		FFprobe: cfg.Media.FFprobePath,
	})
	if err != nil {
		return nil, err
	}

	logger.Debugw("Resolved media engine",
		"ffmpeg", bins.FFmpeg,
		"ffprobe", bins.FFprobe,
	)

	return media.NewProcessor(media.Options{
		Binaries:      bins,
		Timeout:       cfg.MediaTimeout(),
		MaxConcurrent: cfg.Media.MaxConcurrent,
		VideoCodec:    cfg.Media.VideoCodec,
		AudioCodec:    cfg.Media.AudioCodec,
		Logger:        logger,
	}), nil
}

func newExtractor(ctx context.Context, cfg *config.Config) (llm.FieldExtractor, error) {
	if err := cfg.RequireLLMKey(); err != nil {
		return nil, err
	}
	extractor, err := llm.Factory(ctx, llm.Provider(cfg.LLM.Provider), cfg.LLM.APIKey, llm.Options{
		Model:   cfg.LLM.Model,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.LLMTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create language model client: %w", err)
	}
	return extractor, nil
}

func newTranscriber(ctx context.Context, cfg *config.Config) (transcribe.Transcriber, error) {
	if err := cfg.RequireSpeechKey(); err != nil {
		return nil, err
	}
	transcriber, err := transcribe.Factory(ctx, transcribe.Provider(cfg.Speech.Provider), cfg.Speech.APIKey, transcribe.Options{
		Language: cfg.Speech.Language,
		Model:    cfg.Speech.Model,
		BaseURL:  cfg.Speech.BaseURL,
		Timeout:  cfg.SpeechTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create transcriber: %w", err)
	}
	return transcriber, nil
}

func newGenerator(cfg *config.Config) *subtitle.Generator {
	g := subtitle.NewDefaultGenerator()
	if cfg.Speech.MaxCharsPerLine > 0 {
		g.MaxCharsPerLine = cfg.Speech.MaxCharsPerLine
	}
	if cfg.Speech.MaxLinesPerCue > 0 {
		g.MaxLinesPerSub = cfg.Speech.MaxLinesPerCue
	}
	if cfg.Speech.MaxCueSeconds > 0 {
		g.MaxDuration = cfg.Speech.MaxCueSeconds
	}
	return g
}
