// Package session keeps the per-video editing state: the uploaded file, the
// latest rendered artifact and the ordered cues burned into it.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/mgpai22/captionchat/internal/subtitle"
)

var (
	ErrNotFound = errors.New("session: not found")
	ErrClosed   = errors.New("session: store closed")
)

// Session is one uploaded video being edited.
type Session struct {
	ID               string         `json:"id"`
	OriginalFilename string         `json:"original_filename"`
	FilePath         string         `json:"file_path"`
	Duration         *float64       `json:"duration"`
	Cues             []subtitle.Cue `json:"subtitles"`
	CreatedAt        time.Time      `json:"created_at"`
}

// Clone returns a deep copy so callers never share cue slices with the store.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Duration != nil {
		d := *s.Duration
		c.Duration = &d
	}
	c.Cues = make([]subtitle.Cue, len(s.Cues))
	copy(c.Cues, s.Cues)
	return &c
}

// Store holds sessions for the lifetime of the process. Implementations hand
// out copies; mutations go through Put or Update.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, s *Session) error

	// Update applies fn to the stored session atomically. Returning an error
	// from fn leaves the session untouched.
	Update(ctx context.Context, id string, fn func(s *Session) error) error

	Delete(ctx context.Context, id string) error
	Close() error
}
