// Package media drives the external media engine (ffmpeg/ffprobe): probing a
// container's duration, extracting speech-ready audio and burning a styled
// subtitle overlay into a new video file.
package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Compositor is the capability the rest of the service needs from the engine.
// Every call blocks until the engine exits.
type Compositor interface {
	// duration of the container in seconds
	ProbeDuration(ctx context.Context, videoPath string) (float64, error)

	// writes a mono 16kHz pcm_s16le WAV to outputPath
	ExtractAudio(ctx context.Context, videoPath, outputPath string) error

	// composites the ASS overlay onto videoPath and writes outputPath. The
	// overlay file is removed whether or not the engine succeeds.
	BurnOverlay(ctx context.Context, videoPath, overlayPath, outputPath string) (string, error)
}

var (
	ErrProbe      = errors.New("media: probe failed")
	ErrExtraction = errors.New("media: audio extraction failed")
	ErrComposite  = errors.New("media: composite failed")
)

// EngineError carries the engine's own diagnostic output verbatim.
type EngineError struct {
	Kind   error
	Op     string
	Path   string
	Output string
	Err    error
}

func (e *EngineError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	if e.Path != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Path)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		sb.WriteString(": ")
		sb.WriteString(out)
	}
	return sb.String()
}

func (e *EngineError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newEngineError(kind error, op, path, output string, err error) *EngineError {
	return &EngineError{Kind: kind, Op: op, Path: path, Output: output, Err: err}
}

// EngineOutput returns the diagnostic text attached to err, if any.
func EngineOutput(err error) string {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return strings.TrimSpace(engineErr.Output)
	}
	return ""
}

func errNotFound(path string) error {
	return fmt.Errorf("file not found: %s", path)
}
