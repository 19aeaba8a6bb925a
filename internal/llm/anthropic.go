package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// implements FieldExtractor using Anthropic Claude
type AnthropicExtractor struct {
	client  anthropic.Client
	model   anthropic.Model
	options Options
}

func NewAnthropicExtractor(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*AnthropicExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	client := anthropic.NewClient(reqOpts...)

	model := anthropic.Model(opts.Model)
	if opts.Model == "" {
		model = anthropic.ModelClaudeHaiku4_5
	}

	return &AnthropicExtractor{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (e *AnthropicExtractor) ExtractFields(
	ctx context.Context,
	prompt string,
	duration *float64,
) (*Fields, error) {
	ctx, cancel := context.WithTimeout(ctx, e.options.timeout())
	defer cancel()

	message, err := e.client.Messages.New(
		ctx,
		anthropic.MessageNewParams{
			Model:     e.model,
			MaxTokens: 1024,
			System: []anthropic.TextBlockParam{
				{Text: BuildSystemPrompt(duration)},
			},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(
					anthropic.NewTextBlock(prompt),
				),
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("field extraction failed: %w", err)
	}

	if message == nil || len(message.Content) == 0 {
		return nil, fmt.Errorf("empty response from Anthropic")
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text in Anthropic response")
	}

	return ParseFields(responseText)
}
