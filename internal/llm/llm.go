package llm

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// subtitle fields pulled out of a free-text prompt; nil means the model left
// the field out
type Fields struct {
	Text      *string
	StartTime *float64
	EndTime   *float64
	FontSize  *int
	Color     *string
	Position  *string
}

// interface for prompt field extraction
type FieldExtractor interface {
	ExtractFields(
		ctx context.Context,
		prompt string,
		duration *float64,
	) (*Fields, error)
}

// language model provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

const DefaultTimeout = 60 * time.Second

type Options struct {
	Model string

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

// creates FieldExtractor based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (FieldExtractor, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiExtractor(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAIExtractor(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicExtractor(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}

// BuildSystemPrompt creates the extraction instructions, including the video
// duration when it is known
func BuildSystemPrompt(duration *float64) string {
	var sb strings.Builder

	sb.WriteString("You are a subtitle parameter extractor.\n")
	sb.WriteString(
		"Extract subtitle information from the user's prompt and return a JSON object with these fields:\n",
	)
	sb.WriteString("- text: The subtitle text (required)\n")
	sb.WriteString("- start_time: Start time in seconds (default: 0)\n")
	sb.WriteString("- end_time: End time in seconds (default: start_time + 5)\n")
	sb.WriteString("- font_size: Font size in pixels (default: 24)\n")
	sb.WriteString(
		"- color: Color name, one of white, red, blue, green, yellow, black, orange, pink (default: \"white\")\n",
	)
	sb.WriteString(
		"- position: Position - \"top\", \"center\", or \"bottom\" (default: \"bottom\")\n\n",
	)

	if duration != nil {
		sb.WriteString(fmt.Sprintf(
			"Video duration is: %s seconds\n\n",
			strconv.FormatFloat(*duration, 'f', -1, 64),
		))
	} else {
		sb.WriteString("Video duration is unknown.\n\n")
	}

	sb.WriteString("Examples:\n")
	sb.WriteString(
		"- \"add subtitle 'Hello World' at 5 seconds, 26px, red\" -> " +
			`{"text": "Hello World", "start_time": 5, "end_time": 10, "font_size": 26, "color": "red", "position": "bottom"}` + "\n",
	)
	sb.WriteString(
		"- \"show 'Welcome' in blue, 30px at top\" -> " +
			`{"text": "Welcome", "start_time": 0, "end_time": 5, "font_size": 30, "color": "blue", "position": "top"}` + "\n",
	)
	sb.WriteString(
		"- \"add 'Testing' from 2 to 8 seconds\" -> " +
			`{"text": "Testing", "start_time": 2, "end_time": 8, "font_size": 24, "color": "white", "position": "bottom"}` + "\n\n",
	)

	sb.WriteString("Return ONLY valid JSON, nothing else.")

	return sb.String()
}
