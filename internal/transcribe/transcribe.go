package transcribe

import (
	"context"
	"fmt"
	"time"

	"github.com/mgpai22/captionchat/internal/subtitle"
)

// transcription result
type Result struct {
	Segments []subtitle.Segment
	Language string

	// audio length in seconds as reported by the provider, zero when unknown
	Duration float64
}

// interface for audio transcription; segments come back in time order and an
// audio file with no speech yields an empty Segments slice, not an error
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}

// transcription service provider
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

const DefaultTimeout = 300 * time.Second

// transcription options
type Options struct {
	Language string // Source language of audio
	Model    string
	Prompt   string

	// OpenAI-compatible or proxy endpoint; empty uses the provider default
	BaseURL string

	// per-call bound; zero uses DefaultTimeout
	Timeout time.Duration
}

func (o Options) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return DefaultTimeout
}

// creates transcriber based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Transcriber, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiTranscriber(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITranscriber(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
