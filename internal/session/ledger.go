package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mgpai22/captionchat/internal/logging"
	"github.com/mgpai22/captionchat/internal/media"
	"github.com/mgpai22/captionchat/internal/subtitle"
)

// Ledger applies chat turns to sessions. Each turn appends cues, re-renders
// the whole cue list onto the session's current video and either commits the
// new artifact or restores the session exactly as it was.
type Ledger struct {
	store      Store
	compositor media.Compositor
	outputDir  string
	logger     *logging.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLedger(store Store, compositor media.Compositor, outputDir string, logger *logging.Logger) *Ledger {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Ledger{
		store:      store,
		compositor: compositor,
		outputDir:  outputDir,
		logger:     logger.Named("ledger"),
		locks:      make(map[string]*sync.Mutex),
	}
}

// OutputPath is where the rendered video for a session lives.
func (l *Ledger) OutputPath(id string) string {
	return filepath.Join(l.outputDir, id+"_output.mp4")
}

func (l *Ledger) overlayPath(id string) string {
	return filepath.Join(l.outputDir, id+"_output.ass")
}

// Lock serializes work on one session and returns the matching unlock.
func (l *Ledger) Lock(id string) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// ApplyTurn appends cues to the session and renders. On success the session's
// file path points at the new artifact. On failure the session is restored to
// its state before the call and the render error is returned.
func (l *Ledger) ApplyTurn(ctx context.Context, id string, cues []subtitle.Cue) (*Session, error) {
	unlock := l.Lock(id)
	defer unlock()

	return l.applyTurnLocked(ctx, id, cues)
}

// ApplyTurnLocked is ApplyTurn for callers already holding Lock(id).
func (l *Ledger) ApplyTurnLocked(ctx context.Context, id string, cues []subtitle.Cue) (*Session, error) {
	return l.applyTurnLocked(ctx, id, cues)
}

func (l *Ledger) applyTurnLocked(ctx context.Context, id string, cues []subtitle.Cue) (*Session, error) {
	tx, err := l.begin(ctx, id, cues)
	if err != nil {
		return nil, err
	}

	logger := l.logger.With("video_id", id, "appended", len(cues), "total", len(tx.working.Cues))
	start := time.Now()

	output, err := l.render(ctx, tx.working)
	if err != nil {
		if rerr := tx.revert(ctx); rerr != nil {
			logger.Errorw("Failed to roll back turn", "error", rerr)
		}
		logger.Warnw("Render failed, turn rolled back", "error", err)
		return nil, err
	}

	committed, err := tx.commit(ctx, output)
	if err != nil {
		return nil, err
	}

	logger.Infow("Turn committed",
		"output", output,
		"elapsed", time.Since(start).String(),
	)
	return committed, nil
}

// render compiles every cue into one overlay and burns it onto the session's
// current video. Output goes to a sibling temp file first so the current
// video is never both input and output.
func (l *Ledger) render(ctx context.Context, s *Session) (string, error) {
	if err := os.MkdirAll(l.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	overlay := l.overlayPath(s.ID)
	writer, err := subtitle.NewWriter(subtitle.FormatASS)
	if err != nil {
		return "", err
	}
	if err := writer.Write(s.Cues, overlay); err != nil {
		return "", err
	}

	final := l.OutputPath(s.ID)
	tmp := filepath.Join(l.outputDir, fmt.Sprintf(".%s_render_%d.mp4", s.ID, time.Now().UnixNano()))

	if _, err := l.compositor.BurnOverlay(ctx, s.FilePath, overlay, tmp); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}

	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("%w: failed to publish render: %w", media.ErrComposite, err)
	}

	return final, nil
}

// turn is one in-flight ledger transaction
type turn struct {
	store    Store
	id       string
	snapshot *Session
	working  *Session
}

// begin snapshots the session and records the tentative append
func (l *Ledger) begin(ctx context.Context, id string, cues []subtitle.Cue) (*turn, error) {
	current, err := l.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	tx := &turn{
		store:    l.store,
		id:       id,
		snapshot: current.Clone(),
		working:  current.Clone(),
	}
	tx.working.Cues = append(tx.working.Cues, cues...)

	if err := l.store.Update(ctx, id, func(s *Session) error {
		s.Cues = append(s.Cues, cues...)
		return nil
	}); err != nil {
		return nil, err
	}

	return tx, nil
}

func (t *turn) commit(ctx context.Context, output string) (*Session, error) {
	t.working.FilePath = output

	var committed *Session
	err := t.store.Update(context.WithoutCancel(ctx), t.id, func(s *Session) error {
		s.FilePath = output
		committed = s.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return committed, nil
}

// revert puts back the cues and file path captured when the turn began
func (t *turn) revert(ctx context.Context) error {
	return t.store.Update(context.WithoutCancel(ctx), t.id, func(s *Session) error {
		restored := t.snapshot.Clone()
		s.Cues = restored.Cues
		s.FilePath = restored.FilePath
		return nil
	})
}
