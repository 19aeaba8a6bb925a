package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Server contains the HTTP listener settings.
type Server struct {
	Addr                   string   `toml:"addr"`
	AllowedOrigins         []string `toml:"allowed_origins"`
	MaxUploadMB            int      `toml:"max_upload_mb"`
	ReadTimeoutSeconds     int      `toml:"read_timeout_seconds"`
	ShutdownTimeoutSeconds int      `toml:"shutdown_timeout_seconds"`
}

// Storage contains the on-disk locations for uploads and renders.
type Storage struct {
	UploadDir string `toml:"upload_dir"`
	OutputDir string `toml:"output_dir"`

	// temporary audio for auto-generate; empty keeps it next to the video
	WorkDir string `toml:"work_dir"`
}

// LLM selects the language model used to read chat prompts.
type LLM struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Speech selects the speech model and how its segments become cues.
type Speech struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`

	MaxCharsPerLine int     `toml:"max_chars_per_line"`
	MaxLinesPerCue  int     `toml:"max_lines_per_cue"`
	MaxCueSeconds   float64 `toml:"max_cue_seconds"`
}

// Media contains ffmpeg settings.
type Media struct {
	FFmpegPath     string `toml:"ffmpeg_path"`
	FFprobePath    string `toml:"ffprobe_path"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxConcurrent  int    `toml:"max_concurrent"`
	VideoCodec     string `toml:"video_codec"`
	AudioCodec     string `toml:"audio_codec"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level   string `toml:"level"`
	Verbose bool   `toml:"verbose"`
}

// Config encapsulates all configuration values for captionchat.
type Config struct {
	Server  Server  `toml:"server"`
	Storage Storage `toml:"storage"`
	LLM     LLM     `toml:"llm"`
	Speech  Speech  `toml:"speech"`
	Media   Media   `toml:"media"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/captionchat/config.toml")
}

// Load locates, parses, and validates a configuration file. A missing file
// is not an error; defaults and environment still apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("captionchat.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the upload, output and work directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Storage.UploadDir, c.Storage.OutputDir, c.Storage.WorkDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func (c *Config) LLMTimeout() time.Duration {
	return seconds(c.LLM.TimeoutSeconds)
}

func (c *Config) SpeechTimeout() time.Duration {
	return seconds(c.Speech.TimeoutSeconds)
}

func (c *Config) MediaTimeout() time.Duration {
	return seconds(c.Media.TimeoutSeconds)
}

func (c *Config) ReadTimeout() time.Duration {
	return seconds(c.Server.ReadTimeoutSeconds)
}

func (c *Config) ShutdownTimeout() time.Duration {
	return seconds(c.Server.ShutdownTimeoutSeconds)
}

// MaxUploadBytes is the largest accepted upload; zero means unlimited.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
