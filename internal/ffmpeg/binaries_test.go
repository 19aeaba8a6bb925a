package ffmpeg

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeExecutable(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestResolveExplicitPaths(t *testing.T) {
	dir := t.TempDir()
	ff := writeExecutable(t, dir, "my-ffmpeg")
	fp := writeExecutable(t, dir, "my-ffprobe")

	paths, err := Resolve(BinaryPaths{FFmpeg: ff, FFprobe: fp})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if paths.FFmpeg != ff || paths.FFprobe != fp {
		t.Errorf("got %+v, want explicit paths", paths)
	}
}

func TestResolveEnvOverride(t *testing.T) {
	dir := t.TempDir()
	ff := writeExecutable(t, dir, "env-ffmpeg")
	fp := writeExecutable(t, dir, "env-ffprobe")
	t.Setenv(EnvFFmpegPath, ff)
	t.Setenv(EnvFFprobePath, fp)

	paths, err := Resolve(BinaryPaths{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if paths.FFmpeg != ff || paths.FFprobe != fp {
		t.Errorf("got %+v, want env paths", paths)
	}
}

func TestResolveFromPATH(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs are unix only")
	}
	dir := t.TempDir()
	writeExecutable(t, dir, "ffmpeg")
	writeExecutable(t, dir, "ffprobe")
	t.Setenv(EnvFFmpegPath, "")
	t.Setenv(EnvFFprobePath, "")
	t.Setenv("PATH", dir)

	paths, err := Resolve(BinaryPaths{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if paths.FFmpeg != filepath.Join(dir, "ffmpeg") {
		t.Errorf("FFmpeg = %q", paths.FFmpeg)
	}
	if paths.FFprobe != filepath.Join(dir, "ffprobe") {
		t.Errorf("FFprobe = %q", paths.FFprobe)
	}
}

func TestResolveMissing(t *testing.T) {
	t.Setenv(EnvFFmpegPath, "")
	t.Setenv(EnvFFprobePath, "")
	t.Setenv("PATH", t.TempDir())

	if _, err := Resolve(BinaryPaths{}); err == nil {
		t.Error("expected error when binaries are not on PATH")
	}

	if _, err := Resolve(BinaryPaths{FFmpeg: "/definitely/not/here/ffmpeg"}); err == nil {
		t.Error("expected error for explicit missing path")
	}
}
