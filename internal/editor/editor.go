// Package editor is the chat-driven subtitle editor: it owns uploads and
// routes each chat turn or auto-generate request through the interpreter and
// the session ledger.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/mgpai22/captionchat/internal/interpret"
	"github.com/mgpai22/captionchat/internal/logging"
	"github.com/mgpai22/captionchat/internal/media"
	"github.com/mgpai22/captionchat/internal/session"
	"github.com/mgpai22/captionchat/internal/subtitle"
)

var (
	// ErrInvalidInput marks a request the editor refuses before doing any work.
	ErrInvalidInput = errors.New("editor: invalid input")

	// ErrFileMissing means the session exists but its video is gone from disk.
	ErrFileMissing = errors.New("editor: video file not found")
)

// text used when auto-generate hears nothing
const PlaceholderText = "(no speech detected)"

// Interpreter is what the editor needs to turn input into cues.
type Interpreter interface {
	ParsePrompt(ctx context.Context, prompt string, duration *float64) (subtitle.Cue, error)
	AutoGenerate(ctx context.Context, videoPath string, style subtitle.Style) ([]subtitle.Cue, error)
}

type Options struct {
	Store       session.Store
	Ledger      *session.Ledger
	Interpreter Interpreter
	Compositor  media.Compositor
	UploadDir   string
	Logger      *logging.Logger
}

type Service struct {
	store       session.Store
	ledger      *session.Ledger
	interpreter Interpreter
	compositor  media.Compositor
	uploadDir   string
	logger      *logging.Logger
}

func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{
		store:       opts.Store,
		ledger:      opts.Ledger,
		interpreter: opts.Interpreter,
		compositor:  opts.Compositor,
		uploadDir:   opts.UploadDir,
		logger:      logger.Named("editor"),
	}
}

// ChatResult is the outcome of one committed chat turn.
type ChatResult struct {
	Session *session.Session
	Cue     subtitle.Cue
}

// AutoResult is the outcome of one committed auto-generate turn.
type AutoResult struct {
	Session *session.Session
	Cues    []subtitle.Cue

	// set when nothing was transcribed and a placeholder cue was burned
	Placeholder bool
}

// Upload stores a new video and opens a session for it. A video whose
// duration cannot be probed is still accepted with an unknown duration.
func (s *Service) Upload(
	ctx context.Context,
	filename, contentType string,
	r io.Reader,
) (*session.Session, error) {
	if !media.IsVideoContentType(contentType) {
		return nil, fmt.Errorf("%w: file must be a video", ErrInvalidInput)
	}

	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	id := uuid.New().String()
	path := filepath.Join(s.uploadDir, id+filepath.Ext(filename))

	size, err := saveFile(path, r)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With("video_id", id)

	var duration *float64
	if d, err := s.compositor.ProbeDuration(ctx, path); err != nil {
		logger.Warnw("Could not probe duration", "path", path, "error", err)
	} else {
		duration = &d
	}

	sess := &session.Session{
		ID:               id,
		OriginalFilename: filename,
		FilePath:         path,
		Duration:         duration,
		Cues:             []subtitle.Cue{},
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.store.Put(ctx, sess); err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	logger.Infow("Video uploaded",
		"filename", filename,
		"size", humanize.Bytes(uint64(size)),
		"duration", duration,
	)

	return sess, nil
}

func saveFile(path string, r io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create upload file: %w", err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("failed to save upload: %w", err)
	}
	return n, nil
}

// Chat interprets one prompt against the session and commits the resulting
// cue. Nothing about the session changes unless the render succeeds.
func (s *Service) Chat(ctx context.Context, id, prompt string) (*ChatResult, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	cue, err := s.interpreter.ParsePrompt(ctx, prompt, sess.Duration)
	if err != nil {
		return nil, err
	}

	committed, err := s.ledger.ApplyTurn(ctx, id, []subtitle.Cue{cue})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Subtitle added",
		"video_id", id,
		"text", cue.Text,
		"start", cue.StartTime,
		"end", cue.EndTime,
	)

	return &ChatResult{Session: committed, Cue: cue}, nil
}

// AutoGenerate transcribes the session's video and commits every cue in one
// turn. When no speech is found a single placeholder cue is burned instead.
func (s *Service) AutoGenerate(ctx context.Context, id string, style subtitle.Style) (*AutoResult, error) {
	unlock := s.ledger.Lock(id)
	defer unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	cues, err := s.interpreter.AutoGenerate(ctx, sess.FilePath, style)
	if err != nil {
		return nil, err
	}

	placeholder := len(cues) == 0
	if placeholder {
		cues = []subtitle.Cue{placeholderCue(style, sess.Duration)}
	}

	committed, err := s.ledger.ApplyTurnLocked(ctx, id, cues)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Subtitles generated",
		"video_id", id,
		"cues", len(cues),
		"placeholder", placeholder,
	)

	return &AutoResult{Session: committed, Cues: cues, Placeholder: placeholder}, nil
}

func placeholderCue(style subtitle.Style, duration *float64) subtitle.Cue {
	style = interpret.NormalizeStyle(style)
	end := subtitle.DefaultCueLength
	if duration != nil && *duration > 0 && *duration < end {
		end = *duration
	}
	return subtitle.Cue{
		Text:      PlaceholderText,
		StartTime: 0,
		EndTime:   end,
		FontSize:  style.FontSize,
		Color:     style.Color,
		Position:  style.Position,
	}
}

func (s *Service) Get(ctx context.Context, id string) (*session.Session, error) {
	return s.store.Get(ctx, id)
}

// PreviewPath returns the session's current video.
func (s *Service) PreviewPath(ctx context.Context, id string) (*session.Session, string, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if !fileExists(sess.FilePath) {
		return nil, "", ErrFileMissing
	}
	return sess, sess.FilePath, nil
}

// ExportPath returns the latest rendered video, or the upload when nothing
// has been rendered yet.
func (s *Service) ExportPath(ctx context.Context, id string) (*session.Session, string, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	path := s.ledger.OutputPath(id)
	if !fileExists(path) {
		path = sess.FilePath
	}
	if !fileExists(path) {
		return nil, "", ErrFileMissing
	}
	return sess, path, nil
}

// Subtitles compiles the session's cues in the requested format.
func (s *Service) Subtitles(ctx context.Context, id string, format subtitle.Format) ([]byte, error) {
	format = subtitle.Format(strings.ToLower(string(format)))
	if format == "" {
		format = subtitle.FormatSRT
	}
	if format != subtitle.FormatSRT && format != subtitle.FormatASS {
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidInput, format)
	}

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return subtitle.Compile(format, sess.Cues)
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
