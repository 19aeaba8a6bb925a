package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mgpai22/captionchat/internal/media"
	"github.com/mgpai22/captionchat/internal/subtitle"
)

type burnCall struct {
	input   string
	overlay string
	output  string
	ass     string
}

// records burns and writes a fake artifact unless told to fail
type fakeCompositor struct {
	mu    sync.Mutex
	err   error
	calls []burnCall
	delay time.Duration

	active, maxActive int
}

func (f *fakeCompositor) ProbeDuration(context.Context, string) (float64, error) {
	return 10, nil
}

func (f *fakeCompositor) ExtractAudio(context.Context, string, string) error {
	return nil
}

func (f *fakeCompositor) BurnOverlay(_ context.Context, input, overlay, output string) (string, error) {
	f.mu.Lock()
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	data, _ := os.ReadFile(overlay)
	_ = os.Remove(overlay)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.active--
	f.calls = append(f.calls, burnCall{input: input, overlay: overlay, output: output, ass: string(data)})

	if f.err != nil {
		return "", f.err
	}
	if err := os.WriteFile(output, []byte("rendered"), 0o644); err != nil {
		return "", err
	}
	return output, nil
}

func newTestLedger(t *testing.T, comp *fakeCompositor) (*Ledger, *MemoryStore, string) {
	t.Helper()
	dir := t.TempDir()
	store := NewMemoryStore()
	upload := filepath.Join(dir, "uploads", "vid.mp4")
	if err := os.MkdirAll(filepath.Dir(upload), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(upload, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	d := 10.0
	if err := store.Put(context.Background(), &Session{
		ID:               "vid",
		OriginalFilename: "clip.mp4",
		FilePath:         upload,
		Duration:         &d,
	}); err != nil {
		t.Fatal(err)
	}
	return NewLedger(store, comp, filepath.Join(dir, "outputs"), nil), store, upload
}

func cue(text string, start, end float64) subtitle.Cue {
	return subtitle.Cue{Text: text, StartTime: start, EndTime: end, FontSize: 24, Color: "white", Position: subtitle.PositionBottom}
}

func TestApplyTurnCommits(t *testing.T) {
	comp := &fakeCompositor{}
	ledger, store, upload := newTestLedger(t, comp)
	ctx := context.Background()

	s, err := ledger.ApplyTurn(ctx, "vid", []subtitle.Cue{cue("Hi", 2, 7)})
	if err != nil {
		t.Fatalf("ApplyTurn: %v", err)
	}

	want := ledger.OutputPath("vid")
	if s.FilePath != want {
		t.Errorf("FilePath = %q, want %q", s.FilePath, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("rendered artifact missing: %v", err)
	}

	stored, _ := store.Get(ctx, "vid")
	if stored.FilePath != want || len(stored.Cues) != 1 {
		t.Errorf("stored session = %+v", stored)
	}

	if len(comp.calls) != 1 {
		t.Fatalf("burns = %d, want 1", len(comp.calls))
	}
	call := comp.calls[0]
	if call.input != upload {
		t.Errorf("burn input = %q, want the upload", call.input)
	}
	if call.output == want {
		t.Error("burn should write a temporary file, not the final artifact")
	}
	if !strings.Contains(call.ass, "Dialogue: 0,0:00:02.00,0:00:07.00,Default,,0,0,0,,Hi") {
		t.Errorf("overlay missing cue:\n%s", call.ass)
	}
	if filepath.Base(call.overlay) != "vid_output.ass" {
		t.Errorf("overlay path = %q", call.overlay)
	}
}

func TestApplyTurnIsCumulative(t *testing.T) {
	comp := &fakeCompositor{}
	ledger, _, _ := newTestLedger(t, comp)
	ctx := context.Background()

	if _, err := ledger.ApplyTurn(ctx, "vid", []subtitle.Cue{cue("A", 0, 2)}); err != nil {
		t.Fatal(err)
	}
	s, err := ledger.ApplyTurn(ctx, "vid", []subtitle.Cue{cue("B", 2, 4)})
	if err != nil {
		t.Fatal(err)
	}

	if len(s.Cues) != 2 || s.Cues[0].Text != "A" || s.Cues[1].Text != "B" {
		t.Errorf("cues = %+v, want [A B]", s.Cues)
	}

	second := comp.calls[1]
	if second.input != ledger.OutputPath("vid") {
		t.Errorf("second burn input = %q, want previous artifact", second.input)
	}
	if second.output == second.input {
		t.Error("input and output must differ")
	}
	if !strings.Contains(second.ass, ",,A\n") || !strings.Contains(second.ass, ",,B\n") {
		t.Errorf("second overlay should carry every cue:\n%s", second.ass)
	}
}

func TestApplyTurnRollsBack(t *testing.T) {
	comp := &fakeCompositor{}
	ledger, store, _ := newTestLedger(t, comp)
	ctx := context.Background()

	if _, err := ledger.ApplyTurn(ctx, "vid", []subtitle.Cue{cue("A", 0, 2)}); err != nil {
		t.Fatal(err)
	}
	before, _ := store.Get(ctx, "vid")

	engineErr := &media.EngineError{Kind: media.ErrComposite, Op: "burn overlay", Output: "Error initializing filter 'ass'"}
	comp.err = engineErr

	_, err := ledger.ApplyTurn(ctx, "vid", []subtitle.Cue{cue("B", 2, 4), cue("C", 4, 6)})
	if !errors.Is(err, media.ErrComposite) {
		t.Fatalf("got %v, want ErrComposite", err)
	}
	if media.EngineOutput(err) != "Error initializing filter 'ass'" {
		t.Errorf("engine output lost: %q", media.EngineOutput(err))
	}

	after, _ := store.Get(ctx, "vid")
	if !reflect.DeepEqual(before, after) {
		t.Errorf("session changed by failed turn:\nbefore %+v\nafter  %+v", before, after)
	}
	if len(after.Cues) != 1 || after.Cues[0] != cue("A", 0, 2) {
		t.Errorf("cues = %+v, want exactly [A]", after.Cues)
	}

	entries, _ := os.ReadDir(filepath.Dir(ledger.OutputPath("vid")))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".vid_render_") {
			t.Errorf("temporary render left behind: %s", e.Name())
		}
	}
}

func TestApplyTurnFirstRenderFails(t *testing.T) {
	comp := &fakeCompositor{err: &media.EngineError{Kind: media.ErrComposite, Op: "burn overlay"}}
	ledger, store, upload := newTestLedger(t, comp)
	ctx := context.Background()

	if _, err := ledger.ApplyTurn(ctx, "vid", []subtitle.Cue{cue("A", 0, 2)}); err == nil {
		t.Fatal("expected error")
	}

	s, _ := store.Get(ctx, "vid")
	if len(s.Cues) != 0 || s.FilePath != upload {
		t.Errorf("session = %+v, want untouched", s)
	}
	if _, err := os.Stat(ledger.OutputPath("vid")); !os.IsNotExist(err) {
		t.Error("no artifact should be published")
	}
}

func TestApplyTurnUnknownSession(t *testing.T) {
	ledger, _, _ := newTestLedger(t, &fakeCompositor{})

	_, err := ledger.ApplyTurn(context.Background(), "nope", []subtitle.Cue{cue("A", 0, 1)})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestApplyTurnSerializesPerSession(t *testing.T) {
	comp := &fakeCompositor{delay: 20 * time.Millisecond}
	ledger, store, _ := newTestLedger(t, comp)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.ApplyTurn(ctx, "vid", []subtitle.Cue{cue("x", 0, 1)}); err != nil {
				t.Errorf("ApplyTurn: %v", err)
			}
		}()
	}
	wg.Wait()

	if comp.maxActive != 1 {
		t.Errorf("concurrent renders on one session = %d, want 1", comp.maxActive)
	}
	s, _ := store.Get(ctx, "vid")
	if len(s.Cues) != 4 {
		t.Errorf("cues = %d, want 4", len(s.Cues))
	}
}
