package editor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mgpai22/captionchat/internal/interpret"
	"github.com/mgpai22/captionchat/internal/media"
	"github.com/mgpai22/captionchat/internal/session"
	"github.com/mgpai22/captionchat/internal/subtitle"
)

type fakeInterpreter struct {
	cue      subtitle.Cue
	parseErr error

	autoCues  []subtitle.Cue
	autoErr   error
	autoPaths []string

	prompts   []string
	durations []*float64
}

func (f *fakeInterpreter) ParsePrompt(_ context.Context, prompt string, duration *float64) (subtitle.Cue, error) {
	f.prompts = append(f.prompts, prompt)
	f.durations = append(f.durations, duration)
	if f.parseErr != nil {
		return subtitle.Cue{}, f.parseErr
	}
	return f.cue, nil
}

func (f *fakeInterpreter) AutoGenerate(_ context.Context, videoPath string, _ subtitle.Style) ([]subtitle.Cue, error) {
	f.autoPaths = append(f.autoPaths, videoPath)
	return f.autoCues, f.autoErr
}

type fakeCompositor struct {
	duration float64
	probeErr error
	burnErr  error
	burns    int
}

func (f *fakeCompositor) ProbeDuration(context.Context, string) (float64, error) {
	return f.duration, f.probeErr
}

func (f *fakeCompositor) ExtractAudio(context.Context, string, string) error {
	return nil
}

func (f *fakeCompositor) BurnOverlay(_ context.Context, _, overlay, output string) (string, error) {
	f.burns++
	_ = os.Remove(overlay)
	if f.burnErr != nil {
		return "", f.burnErr
	}
	return output, os.WriteFile(output, []byte("rendered"), 0o644)
}

type fixture struct {
	svc    *Service
	store  *session.MemoryStore
	ledger *session.Ledger
	interp *fakeInterpreter
	comp   *fakeCompositor
	dir    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	store := session.NewMemoryStore()
	comp := &fakeCompositor{duration: 10}
	interp := &fakeInterpreter{}
	ledger := session.NewLedger(store, comp, filepath.Join(dir, "outputs"), nil)

	svc := New(Options{
		Store:       store,
		Ledger:      ledger,
		Interpreter: interp,
		Compositor:  comp,
		UploadDir:   filepath.Join(dir, "uploads"),
	})
	return &fixture{svc: svc, store: store, ledger: ledger, interp: interp, comp: comp, dir: dir}
}

func (f *fixture) upload(t *testing.T) *session.Session {
	t.Helper()
	s, err := f.svc.Upload(context.Background(), "clip.mp4", "video/mp4", strings.NewReader("video bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	return s
}

func TestUpload(t *testing.T) {
	f := newFixture(t)
	s := f.upload(t)

	if s.ID == "" {
		t.Fatal("expected generated id")
	}
	if s.OriginalFilename != "clip.mp4" {
		t.Errorf("OriginalFilename = %q", s.OriginalFilename)
	}
	wantPath := filepath.Join(f.dir, "uploads", s.ID+".mp4")
	if s.FilePath != wantPath {
		t.Errorf("FilePath = %q, want %q", s.FilePath, wantPath)
	}
	data, err := os.ReadFile(wantPath)
	if err != nil || string(data) != "video bytes" {
		t.Errorf("upload contents = %q, %v", data, err)
	}
	if s.Duration == nil || *s.Duration != 10 {
		t.Errorf("Duration = %v, want 10", s.Duration)
	}
	if s.Cues == nil || len(s.Cues) != 0 {
		t.Errorf("Cues = %v, want empty", s.Cues)
	}

	if _, err := f.store.Get(context.Background(), s.ID); err != nil {
		t.Errorf("session not stored: %v", err)
	}
}

func TestUploadRejectsNonVideo(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Upload(context.Background(), "notes.txt", "text/plain", strings.NewReader("x"))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
	if f.store.Len() != 0 {
		t.Error("no session should be created")
	}
}

func TestUploadUnknownDuration(t *testing.T) {
	f := newFixture(t)
	f.comp.probeErr = &media.EngineError{Kind: media.ErrProbe, Op: "probe"}

	s := f.upload(t)
	if s.Duration != nil {
		t.Errorf("Duration = %v, want nil", *s.Duration)
	}
}

func TestChat(t *testing.T) {
	f := newFixture(t)
	s := f.upload(t)
	f.interp.cue = subtitle.Cue{Text: "Hi", StartTime: 2, EndTime: 7, FontSize: 24, Color: "white", Position: subtitle.PositionBottom}

	res, err := f.svc.Chat(context.Background(), s.ID, "add subtitle 'Hi' at 2 seconds, 5 seconds long")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if res.Cue != f.interp.cue {
		t.Errorf("Cue = %+v", res.Cue)
	}
	if res.Session.FilePath != f.ledger.OutputPath(s.ID) {
		t.Errorf("FilePath = %q, want output", res.Session.FilePath)
	}
	if len(res.Session.Cues) != 1 {
		t.Errorf("Cues = %d, want 1", len(res.Session.Cues))
	}
	if d := f.interp.durations[0]; d == nil || *d != 10 {
		t.Errorf("duration passed to interpreter = %v", d)
	}
}

func TestChatErrors(t *testing.T) {
	t.Run("unknown session", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Chat(context.Background(), "missing", "hi")
		if !errors.Is(err, session.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
		if len(f.interp.prompts) != 0 {
			t.Error("interpreter should not run for unknown session")
		}
	})

	t.Run("interpretation failure", func(t *testing.T) {
		f := newFixture(t)
		s := f.upload(t)
		f.interp.parseErr = interpret.ErrValidation

		_, err := f.svc.Chat(context.Background(), s.ID, "do something")
		if !errors.Is(err, interpret.ErrValidation) {
			t.Errorf("got %v, want ErrValidation", err)
		}
		if f.comp.burns != 0 {
			t.Error("nothing should be rendered")
		}
	})

	t.Run("render failure rolls back", func(t *testing.T) {
		f := newFixture(t)
		s := f.upload(t)
		f.interp.cue = subtitle.Cue{Text: "Hi", StartTime: 0, EndTime: 1, FontSize: 24, Color: "white", Position: subtitle.PositionBottom}
		f.comp.burnErr = &media.EngineError{Kind: media.ErrComposite, Op: "burn overlay"}

		_, err := f.svc.Chat(context.Background(), s.ID, "add Hi")
		if !errors.Is(err, media.ErrComposite) {
			t.Errorf("got %v, want ErrComposite", err)
		}
		got, _ := f.store.Get(context.Background(), s.ID)
		if len(got.Cues) != 0 || got.FilePath != s.FilePath {
			t.Errorf("session = %+v, want unchanged", got)
		}
	})
}

func TestAutoGenerate(t *testing.T) {
	f := newFixture(t)
	s := f.upload(t)
	f.interp.autoCues = []subtitle.Cue{
		{Text: "hello", StartTime: 0, EndTime: 1.5, FontSize: 30, Color: "yellow", Position: subtitle.PositionTop},
		{Text: "world", StartTime: 1.5, EndTime: 3, FontSize: 30, Color: "yellow", Position: subtitle.PositionTop},
	}

	res, err := f.svc.AutoGenerate(context.Background(), s.ID, subtitle.Style{FontSize: 30, Color: "yellow", Position: subtitle.PositionTop})
	if err != nil {
		t.Fatalf("AutoGenerate: %v", err)
	}
	if res.Placeholder {
		t.Error("Placeholder should be false")
	}
	if len(res.Session.Cues) != 2 {
		t.Errorf("Cues = %d, want 2", len(res.Session.Cues))
	}
	if f.interp.autoPaths[0] != s.FilePath {
		t.Errorf("transcribed %q, want current file", f.interp.autoPaths[0])
	}
	if f.comp.burns != 1 {
		t.Errorf("burns = %d, want one turn", f.comp.burns)
	}
}

func TestAutoGeneratePlaceholder(t *testing.T) {
	f := newFixture(t)
	f.comp.duration = 3
	s := f.upload(t)
	f.interp.autoCues = []subtitle.Cue{}

	res, err := f.svc.AutoGenerate(context.Background(), s.ID, subtitle.Style{Color: "RED"})
	if err != nil {
		t.Fatalf("AutoGenerate: %v", err)
	}
	if !res.Placeholder {
		t.Error("Placeholder should be true")
	}

	want := subtitle.Cue{Text: PlaceholderText, StartTime: 0, EndTime: 3, FontSize: 24, Color: "red", Position: subtitle.PositionBottom}
	if len(res.Session.Cues) != 1 || res.Session.Cues[0] != want {
		t.Errorf("Cues = %+v, want [%+v]", res.Session.Cues, want)
	}
}

func TestAutoGenerateUnknownSession(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.AutoGenerate(context.Background(), "missing", subtitle.DefaultStyle()); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestPreviewAndExportPaths(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.upload(t)

	_, path, err := f.svc.ExportPath(ctx, s.ID)
	if err != nil || path != s.FilePath {
		t.Errorf("ExportPath before render = %q, %v; want upload", path, err)
	}

	f.interp.cue = subtitle.Cue{Text: "Hi", StartTime: 0, EndTime: 1, FontSize: 24, Color: "white", Position: subtitle.PositionBottom}
	if _, err := f.svc.Chat(ctx, s.ID, "Hi"); err != nil {
		t.Fatal(err)
	}

	_, path, err = f.svc.ExportPath(ctx, s.ID)
	if err != nil || path != f.ledger.OutputPath(s.ID) {
		t.Errorf("ExportPath after render = %q, %v; want output", path, err)
	}
	_, path, err = f.svc.PreviewPath(ctx, s.ID)
	if err != nil || path != f.ledger.OutputPath(s.ID) {
		t.Errorf("PreviewPath = %q, %v; want output", path, err)
	}

	if err := os.Remove(f.ledger.OutputPath(s.ID)); err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.svc.PreviewPath(ctx, s.ID); !errors.Is(err, ErrFileMissing) {
		t.Errorf("PreviewPath with missing file = %v, want ErrFileMissing", err)
	}

	if _, _, err := f.svc.PreviewPath(ctx, "missing"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("PreviewPath(missing) = %v, want ErrNotFound", err)
	}
}

func TestSubtitles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.upload(t)
	f.interp.cue = subtitle.Cue{Text: "Hi", StartTime: 2, EndTime: 7, FontSize: 24, Color: "white", Position: subtitle.PositionBottom}
	if _, err := f.svc.Chat(ctx, s.ID, "Hi"); err != nil {
		t.Fatal(err)
	}

	srt, err := f.svc.Subtitles(ctx, s.ID, "")
	if err != nil {
		t.Fatalf("Subtitles: %v", err)
	}
	if string(srt) != "1\n00:00:02,000 --> 00:00:07,000\nHi\n\n" {
		t.Errorf("srt = %q", srt)
	}

	ass, err := f.svc.Subtitles(ctx, s.ID, "ASS")
	if err != nil {
		t.Fatalf("Subtitles(ass): %v", err)
	}
	if !strings.Contains(string(ass), "[Events]") {
		t.Errorf("ass missing events section:\n%s", ass)
	}

	if _, err := f.svc.Subtitles(ctx, s.ID, "vtt"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("unsupported format = %v, want ErrInvalidInput", err)
	}
}
