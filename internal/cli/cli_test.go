package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mgpai22/captionchat/internal/config"
	"github.com/mgpai22/captionchat/internal/subtitle"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    subtitle.Format
		wantErr bool
	}{
		{"", subtitle.FormatSRT, false},
		{"srt", subtitle.FormatSRT, false},
		{" SRT ", subtitle.FormatSRT, false},
		{"ass", subtitle.FormatASS, false},
		{"ASS", subtitle.FormatASS, false},
		{"vtt", "", true},
		{"txt", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		input, ext, want string
	}{
		{"video.mp4", ".srt", "video.srt"},
		{"dir/clip.final.mkv", ".wav", "dir/clip.final.wav"},
		{"noext", ".ass", "noext.ass"},
	}

	for _, tt := range tests {
		if got := defaultOutputPath(tt.input, tt.ext); got != tt.want {
			t.Errorf("defaultOutputPath(%q, %q) = %q, want %q", tt.input, tt.ext, got, tt.want)
		}
	}
}

func TestCheckVideo(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "clip.mp4")
	text := filepath.Join(dir, "notes.txt")
	for _, p := range []string{video, text} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := checkVideo(video); err != nil {
		t.Errorf("checkVideo(video) = %v", err)
	}
	if err := checkVideo(text); err == nil || !strings.Contains(err.Error(), "unsupported file type") {
		t.Errorf("checkVideo(text) = %v", err)
	}
	if err := checkVideo(filepath.Join(dir, "missing.mp4")); err == nil || !strings.Contains(err.Error(), "file not found") {
		t.Errorf("checkVideo(missing) = %v", err)
	}
}

func TestNewGeneratorUsesConfig(t *testing.T) {
	c := config.Default()
	c.Speech.MaxCharsPerLine = 30
	c.Speech.MaxLinesPerCue = 1
	c.Speech.MaxCueSeconds = 4

	g := newGenerator(&c)
	if g.MaxCharsPerLine != 30 || g.MaxLinesPerSub != 1 || g.MaxDuration != 4 {
		t.Errorf("generator = %+v", g)
	}

	c = config.Default()
	if g := newGenerator(&c); g.MaxCharsPerLine != 0 || g.MaxDuration != 0 {
		t.Errorf("default config should not split segments, got %+v", g)
	}
}

func TestConfigInitCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "out", "captionchat.toml")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"config", "init", path})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out.String(), path) {
		t.Errorf("output = %q", out.String())
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("sample not written: %v", err)
	}

	rootCmd.SetArgs([]string{"config", "init", path})
	if err := rootCmd.Execute(); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second init = %v, want already exists", err)
	}
}
