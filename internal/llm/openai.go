package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// implements FieldExtractor using OpenAI Chat Completions
type OpenAIExtractor struct {
	client  openai.Client
	model   string
	options Options
}

func NewOpenAIExtractor(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAIExtractor, error) {
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

	client := openai.NewClient(reqOpts...)

	model := opts.Model
	if model == "" {
		model = "gpt-5-mini"
	}

	return &OpenAIExtractor{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (e *OpenAIExtractor) ExtractFields(
	ctx context.Context,
	prompt string,
	duration *float64,
) (*Fields, error) {
	ctx, cancel := context.WithTimeout(ctx, e.options.timeout())
	defer cancel()

	completion, err := e.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(BuildSystemPrompt(duration)),
				openai.UserMessage(prompt),
			},
			Model: e.model,
			ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("field extraction failed: %w", err)
	}

	if completion == nil || len(completion.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	responseText := completion.Choices[0].Message.Content
	if responseText == "" {
		return nil, fmt.Errorf("no text in OpenAI response")
	}

	return ParseFields(responseText)
}
