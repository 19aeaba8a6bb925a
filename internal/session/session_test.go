package session

import (
	"context"
	"errors"
	"testing"

	"github.com/mgpai22/captionchat/internal/subtitle"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	d := 10.0

	if err := store.Put(ctx, &Session{ID: "a", FilePath: "uploads/a.mp4", Duration: &d}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FilePath != "uploads/a.mp4" || got.Duration == nil || *got.Duration != 10 {
		t.Errorf("got %+v", got)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Put(ctx, &Session{ID: "a", Cues: []subtitle.Cue{{Text: "A"}}})

	got, _ := store.Get(ctx, "a")
	got.Cues[0].Text = "mutated"
	got.Cues = append(got.Cues, subtitle.Cue{Text: "B"})
	*got = Session{ID: "a"}

	again, _ := store.Get(ctx, "a")
	if len(again.Cues) != 1 || again.Cues[0].Text != "A" {
		t.Errorf("store leaked internal state: %+v", again.Cues)
	}
}

func TestMemoryStoreUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Put(ctx, &Session{ID: "a", FilePath: "old"})

	if err := store.Update(ctx, "a", func(s *Session) error {
		s.FilePath = "new"
		return nil
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	boom := errors.New("boom")
	if err := store.Update(ctx, "a", func(s *Session) error {
		s.FilePath = "discarded"
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("Update error = %v, want boom", err)
	}

	got, _ := store.Get(ctx, "a")
	if got.FilePath != "new" {
		t.Errorf("FilePath = %q, want new", got.FilePath)
	}

	if err := store.Update(ctx, "missing", func(*Session) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreDeleteAndClose(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Put(ctx, &Session{ID: "a"})

	if err := store.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}

	_ = store.Put(ctx, &Session{ID: "b"})
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := store.Get(ctx, "b"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after Close = %v, want ErrClosed", err)
	}
	if err := store.Put(ctx, &Session{ID: "c"}); !errors.Is(err, ErrClosed) {
		t.Errorf("Put after Close = %v, want ErrClosed", err)
	}
}

func TestMemoryStorePutRequiresID(t *testing.T) {
	if err := NewMemoryStore().Put(context.Background(), &Session{}); err == nil {
		t.Error("expected error for session without id")
	}
}

func TestCloneIsDeep(t *testing.T) {
	d := 3.0
	s := &Session{ID: "a", Duration: &d, Cues: []subtitle.Cue{{Text: "A"}}}
	c := s.Clone()

	*c.Duration = 99
	c.Cues[0].Text = "changed"

	if *s.Duration != 3 || s.Cues[0].Text != "A" {
		t.Errorf("clone shares memory with original: %+v", s)
	}

	var nilSession *Session
	if nilSession.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}
