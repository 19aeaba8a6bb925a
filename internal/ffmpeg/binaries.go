package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

const (
	EnvFFmpegPath  = "CAPTIONCHAT_FFMPEG_PATH"
	EnvFFprobePath = "CAPTIONCHAT_FFPROBE_PATH"
)

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

// Resolve picks the engine binaries. Explicit paths win, then the
// CAPTIONCHAT_* environment variables, then whatever is on PATH.
func Resolve(explicit BinaryPaths) (BinaryPaths, error) {
	paths := BinaryPaths{
		FFmpeg:  strings.TrimSpace(explicit.FFmpeg),
		FFprobe: strings.TrimSpace(explicit.FFprobe),
	}

	if paths.FFmpeg == "" {
		paths.FFmpeg = os.Getenv(EnvFFmpegPath)
	}
	if paths.FFprobe == "" {
		paths.FFprobe = os.Getenv(EnvFFprobePath)
	}

	var err error
	if paths.FFmpeg, err = locate(paths.FFmpeg, "ffmpeg"); err != nil {
		return BinaryPaths{}, err
	}
	if paths.FFprobe, err = locate(paths.FFprobe, "ffprobe"); err != nil {
		return BinaryPaths{}, err
	}

	return paths, nil
}

func locate(path, name string) (string, error) {
	if path != "" {
		if !fileExists(path) {
			return "", fmt.Errorf("%s binary not found at %s", name, path)
		}
		return path, nil
	}

	found, err := exec.LookPath(name + executableSuffix())
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%s not found on PATH (set %s)", name, envFor(name))
		}
		return "", fmt.Errorf("lookup %s: %w", name, err)
	}
	return found, nil
}

func envFor(name string) string {
	if name == "ffprobe" {
		return EnvFFprobePath
	}
	return EnvFFmpegPath
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}

func executableSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
