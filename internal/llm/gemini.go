package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// implements FieldExtractor using Google Gemini
type GeminiExtractor struct {
	client  *genai.Client
	model   string
	options Options
}

func NewGeminiExtractor(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey: apiKey,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiExtractor{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (e *GeminiExtractor) ExtractFields(
	ctx context.Context,
	prompt string,
	duration *float64,
) (*Fields, error) {
	ctx, cancel := context.WithTimeout(ctx, e.options.timeout())
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	result, err := e.client.Models.GenerateContent(ctx, e.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(BuildSystemPrompt(duration), genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0),
	})
	if err != nil {
		return nil, fmt.Errorf("field extraction failed: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var responseText string
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				responseText += part.Text
			}
		}
		if responseText != "" {
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text in Gemini response")
	}

	return ParseFields(responseText)
}
