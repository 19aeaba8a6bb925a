package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mgpai22/captionchat/internal/subtitle"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Transcriber interface using OpenAI Audio API
type OpenAITranscriber struct {
	client  openai.Client
	model   string
	options Options
}

// segment from OpenAI Whisper verbose_json response
type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// verbose_json response structure from Whisper
type whisperVerboseResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
}

func NewOpenAITranscriber(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAITranscriber, error) {
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
		model = "whisper-1"
	}

	return &OpenAITranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// transcribes single audio file with segment-level timestamps
func (t *OpenAITranscriber) Transcribe(
	ctx context.Context,
	audioPath string,
) (*Result, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(ctx, t.options.timeout())
	defer cancel()

	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(t.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"segment"},
	}

	if t.options.Language != "" {
		params.Language = openai.String(t.options.Language)
	}

	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	result, err := t.parseVerboseJSONResponse(resp.RawJSON())
	if err != nil {
		// plain-text body; no timing is available
		result = &Result{Segments: []subtitle.Segment{}}
		if text := strings.TrimSpace(resp.Text); text != "" {
			result.Segments = append(result.Segments, subtitle.Segment{
				StartTime: 0,
				EndTime:   subtitle.DefaultCueLength,
				Text:      text,
			})
		}
	}

	if result.Language == "" {
		result.Language = t.options.Language
	}

	return result, nil
}

func (t *OpenAITranscriber) parseVerboseJSONResponse(rawJSON string) (*Result, error) {
	if rawJSON == "" {
		return nil, fmt.Errorf("empty response")
	}

	var verboseResp whisperVerboseResponse
	if err := json.Unmarshal([]byte(rawJSON), &verboseResp); err != nil {
		return nil, fmt.Errorf("failed to parse verbose_json response: %w", err)
	}

	result := &Result{
		Segments: []subtitle.Segment{},
		Language: verboseResp.Language,
		Duration: verboseResp.Duration,
	}

	if len(verboseResp.Segments) == 0 {
		text := strings.TrimSpace(verboseResp.Text)
		if text == "" {
			return result, nil
		}
		end := verboseResp.Duration
		if end <= 0 {
			end = subtitle.DefaultCueLength
		}
		result.Segments = append(result.Segments, subtitle.Segment{
			StartTime: 0,
			EndTime:   end,
			Text:      text,
		})
		return result, nil
	}

	for _, seg := range verboseResp.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		result.Segments = append(result.Segments, subtitle.Segment{
			StartTime: seg.Start,
			EndTime:   seg.End,
			Text:      text,
		})
	}

	return result, nil
}
