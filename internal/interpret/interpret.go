// Package interpret turns chat prompts and speech into subtitle cues.
package interpret

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mgpai22/captionchat/internal/llm"
	"github.com/mgpai22/captionchat/internal/logging"
	"github.com/mgpai22/captionchat/internal/media"
	"github.com/mgpai22/captionchat/internal/subtitle"
	"github.com/mgpai22/captionchat/internal/transcribe"
)

const (
	stageExtract    = "extract"
	stageValidate   = "validate"
	stageAudio      = "extract_audio"
	stageTranscribe = "transcribe"
)

// ParseResult is the state carried through one prompt interpretation.
type ParseResult struct {
	Prompt   string
	Duration *float64

	Fields *llm.Fields
	Cue    subtitle.Cue
	Err    error
}

type stage struct {
	name string
	run  func(ctx context.Context, res *ParseResult) error
}

type Options struct {
	Extractor   llm.FieldExtractor
	Transcriber transcribe.Transcriber
	Compositor  media.Compositor

	// turns speech segments into cues; nil uses subtitle.NewDefaultGenerator
	Generator *subtitle.Generator

	// where temporary audio goes; empty means next to the video
	WorkDir string

	Logger *logging.Logger
}

type Interpreter struct {
	extractor   llm.FieldExtractor
	transcriber transcribe.Transcriber
	compositor  media.Compositor
	generator   *subtitle.Generator
	workDir     string
	logger      *logging.Logger
	stages      []stage
}

func New(opts Options) *Interpreter {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	generator := opts.Generator
	if generator == nil {
		generator = subtitle.NewDefaultGenerator()
	}

	i := &Interpreter{
		extractor:   opts.Extractor,
		transcriber: opts.Transcriber,
		compositor:  opts.Compositor,
		generator:   generator,
		workDir:     opts.WorkDir,
		logger:      logger.Named("interpret"),
	}
	i.stages = []stage{
		{name: stageExtract, run: i.extract},
		{name: stageValidate, run: validate},
	}
	return i
}

// ParsePrompt interprets a single chat prompt into one cue. Stages run in
// order and the first failure ends the run; nothing is retried.
func (i *Interpreter) ParsePrompt(
	ctx context.Context,
	prompt string,
	duration *float64,
) (subtitle.Cue, error) {
	res := &ParseResult{Prompt: prompt, Duration: duration}

	for _, st := range i.stages {
		if err := st.run(ctx, res); err != nil {
			res.Err = err
			i.logger.Debugw("Prompt interpretation stopped",
				"stage", st.name,
				"error", err,
			)
			return subtitle.Cue{}, err
		}
	}

	return res.Cue, nil
}

func (i *Interpreter) extract(ctx context.Context, res *ParseResult) error {
	if i.extractor == nil {
		return newExtractionError(stageExtract, nil, "no language model configured")
	}
	if strings.TrimSpace(res.Prompt) == "" {
		return newExtractionError(stageExtract, nil, "empty prompt")
	}

	start := time.Now()
	fields, err := i.extractor.ExtractFields(ctx, res.Prompt, res.Duration)
	if err != nil {
		return newExtractionError(stageExtract, err, "failed to parse prompt")
	}
	if fields == nil {
		return newExtractionError(stageExtract, nil, "failed to parse prompt: no fields returned")
	}

	i.logger.Debugw("Fields extracted", "elapsed", time.Since(start).String())

	res.Fields = fields
	res.Cue = applyDefaults(fields)
	return nil
}

// applyDefaults fills every field the model left out
func applyDefaults(f *llm.Fields) subtitle.Cue {
	cue := subtitle.Cue{
		FontSize: subtitle.DefaultFontSize,
		Color:    subtitle.DefaultColor,
		Position: subtitle.DefaultPosition,
	}

	if f.Text != nil {
		cue.Text = *f.Text
	}
	if f.StartTime != nil {
		cue.StartTime = *f.StartTime
	}
	if f.EndTime != nil {
		cue.EndTime = *f.EndTime
	} else {
		cue.EndTime = cue.StartTime + subtitle.DefaultCueLength
	}
	if f.FontSize != nil {
		cue.FontSize = *f.FontSize
	}
	if f.Color != nil {
		cue.Color = *f.Color
	}
	if f.Position != nil {
		cue.Position = subtitle.Position(*f.Position)
	}

	return cue
}

// validate corrects timing and styling in place; only missing text is fatal
func validate(_ context.Context, res *ParseResult) error {
	cue := res.Cue

	cue.Text = strings.TrimSpace(cue.Text)
	if cue.Text == "" {
		return newValidationError("No subtitle text found in prompt")
	}

	if cue.StartTime < 0 {
		cue.StartTime = 0
	}
	if cue.EndTime <= cue.StartTime {
		cue.EndTime = cue.StartTime + subtitle.DefaultCueLength
	}
	// the clamp always wins, even when start is already past the duration;
	// such a cue is kept and simply never shows on screen
	if res.Duration != nil && cue.EndTime > *res.Duration {
		cue.EndTime = *res.Duration
	}

	if cue.FontSize <= 0 {
		cue.FontSize = subtitle.DefaultFontSize
	}
	cue.Color = subtitle.NormalizeColor(cue.Color)
	cue.Position = subtitle.NormalizePosition(string(cue.Position))

	res.Cue = cue
	return nil
}

// NormalizeStyle fills and canonicalizes a caller-supplied style.
func NormalizeStyle(style subtitle.Style) subtitle.Style {
	if style.FontSize <= 0 {
		style.FontSize = subtitle.DefaultFontSize
	}
	style.Color = subtitle.NormalizeColor(style.Color)
	style.Position = subtitle.NormalizePosition(string(style.Position))
	return style
}

// AutoGenerate transcribes the video's speech into cues carrying style. A
// video without speech yields an empty slice. The temporary audio file is
// removed on every path.
func (i *Interpreter) AutoGenerate(
	ctx context.Context,
	videoPath string,
	style subtitle.Style,
) ([]subtitle.Cue, error) {
	if i.compositor == nil {
		return nil, errors.New("no media compositor configured")
	}
	if i.transcriber == nil {
		return nil, newExtractionError(stageTranscribe, nil, "no speech model configured")
	}

	audioPath, err := i.reserveAudioPath(videoPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
			i.logger.Warnw("Failed to remove temporary audio", "path", audioPath, "error", err)
		}
	}()

	if err := i.compositor.ExtractAudio(ctx, videoPath, audioPath); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := i.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, newExtractionError(stageTranscribe, err, "failed to transcribe audio")
	}

	var segments []subtitle.Segment
	if result != nil {
		segments = result.Segments
	}

	cues := i.generator.Generate(segments, NormalizeStyle(style))

	i.logger.Infow("Speech transcribed",
		"segments", len(segments),
		"cues", len(cues),
		"elapsed", time.Since(start).String(),
	)

	return cues, nil
}

// picks a unique WAV path so concurrent runs on one video never collide
func (i *Interpreter) reserveAudioPath(videoPath string) (string, error) {
	dir := i.workDir
	if dir == "" {
		dir = filepath.Dir(videoPath)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	f, err := os.CreateTemp(dir, base+"_audio_*.wav")
	if err != nil {
		return "", fmt.Errorf("failed to reserve audio path: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to reserve audio path: %w", err)
	}
	return path, nil
}
