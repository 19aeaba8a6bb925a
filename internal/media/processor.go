package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"golang.org/x/sync/semaphore"

	ffmpegbin "github.com/mgpai22/captionchat/internal/ffmpeg"
	"github.com/mgpai22/captionchat/internal/logging"
)

// fixed speech-model input format
const (
	speechSampleRate = 16000
	speechChannels   = 1
	speechCodec      = "pcm_s16le"
)

const (
	DefaultVideoCodec    = "libx264"
	DefaultAudioCodec    = "aac"
	DefaultMaxConcurrent = 2
)

type Options struct {
	Binaries ffmpegbin.BinaryPaths

	// upper bound on a single engine invocation; zero disables it
	Timeout time.Duration

	// engine processes allowed to run at once
	MaxConcurrent int

	VideoCodec string
	AudioCodec string

	Logger *logging.Logger
}

// Processor runs ffmpeg/ffprobe behind a bounded pool of slots so request
// goroutines never pile an unbounded number of encoders onto the host.
type Processor struct {
	bins       ffmpegbin.BinaryPaths
	timeout    time.Duration
	slots      *semaphore.Weighted
	videoCodec string
	audioCodec string
	logger     *logging.Logger
}

func NewProcessor(opts Options) *Processor {
	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}

	videoCodec := opts.VideoCodec
	if videoCodec == "" {
		videoCodec = DefaultVideoCodec
	}
	audioCodec := opts.AudioCodec
	if audioCodec == "" {
		audioCodec = DefaultAudioCodec
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	return &Processor{
		bins:       opts.Binaries,
		timeout:    opts.Timeout,
		slots:      semaphore.NewWeighted(int64(maxConcurrent)),
		videoCodec: videoCodec,
		audioCodec: audioCodec,
		logger:     logger.Named("media"),
	}
}

// JSON output from ffprobe
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (p *Processor) ProbeDuration(ctx context.Context, videoPath string) (float64, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return 0, newEngineError(ErrProbe, "probe", videoPath, "", errNotFound(videoPath))
	}

	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		videoPath,
	}

	stdout, stderr, err := p.run(ctx, p.bins.FFprobe, args, false)
	if err != nil {
		return 0, newEngineError(ErrProbe, "probe", videoPath, stderr, err)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(stdout, &probe); err != nil {
		return 0, newEngineError(ErrProbe, "probe", videoPath, stderr,
			fmt.Errorf("failed to parse ffprobe output: %w", err))
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64)
	if err != nil || seconds < 0 {
		return 0, newEngineError(ErrProbe, "probe", videoPath, stderr,
			fmt.Errorf("no usable duration %q", probe.Format.Duration))
	}

	return seconds, nil
}

func (p *Processor) ExtractAudio(ctx context.Context, videoPath, outputPath string) error {
	if _, err := os.Stat(videoPath); err != nil {
		return newEngineError(ErrExtraction, "extract audio", videoPath, "", errNotFound(videoPath))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return newEngineError(ErrExtraction, "extract audio", videoPath, "",
			fmt.Errorf("failed to create output directory: %w", err))
	}

	args := extractAudioArgs(videoPath, outputPath)

	p.logger.Debugw("Extracting audio", "input", videoPath, "output", outputPath)

	_, output, err := p.run(ctx, p.bins.FFmpeg, args, true)
	if err != nil {
		_ = os.Remove(outputPath)
		return newEngineError(ErrExtraction, "extract audio", videoPath, output, err)
	}

	return nil
}

func (p *Processor) BurnOverlay(
	ctx context.Context,
	videoPath, overlayPath, outputPath string,
) (string, error) {
	defer func() {
		if err := os.Remove(overlayPath); err != nil && !os.IsNotExist(err) {
			p.logger.Warnw("Failed to remove overlay", "path", overlayPath, "error", err)
		}
	}()

	if _, err := os.Stat(videoPath); err != nil {
		return "", newEngineError(ErrComposite, "burn overlay", videoPath, "", errNotFound(videoPath))
	}
	if _, err := os.Stat(overlayPath); err != nil {
		return "", newEngineError(ErrComposite, "burn overlay", overlayPath, "", errNotFound(overlayPath))
	}
	if sameFile(videoPath, outputPath) {
		return "", newEngineError(ErrComposite, "burn overlay", outputPath, "",
			errors.New("output path must differ from input path"))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return "", newEngineError(ErrComposite, "burn overlay", videoPath, "",
			fmt.Errorf("failed to create output directory: %w", err))
	}

	args := p.burnArgs(videoPath, overlayPath, outputPath)

	p.logger.Debugw("Burning overlay",
		"input", videoPath,
		"overlay", overlayPath,
		"output", outputPath,
	)

	start := time.Now()
	_, output, err := p.run(ctx, p.bins.FFmpeg, args, true)
	if err != nil {
		_ = os.Remove(outputPath)
		return "", newEngineError(ErrComposite, "burn overlay", videoPath, output, err)
	}

	p.logger.Infow("Overlay burned",
		"output", outputPath,
		"elapsed", time.Since(start).String(),
	)

	return outputPath, nil
}

func extractAudioArgs(videoPath, outputPath string) []string {
	return ffmpeg.Input(videoPath).
		Output(outputPath, ffmpeg.KwArgs{
			"vn":     "",               // No video
			"acodec": speechCodec,      // 16-bit little-endian PCM
			"ar":     speechSampleRate, // Sample rate
			"ac":     speechChannels,   // Mono
			"f":      "wav",
		}).
		GlobalArgs("-hide_banner", "-loglevel", "error").
		OverWriteOutput().
		GetArgs()
}

func (p *Processor) burnArgs(videoPath, overlayPath, outputPath string) []string {
	return ffmpeg.Input(videoPath).
		Output(outputPath, ffmpeg.KwArgs{
			"vf":     assFilter(overlayPath),
			"vcodec": p.videoCodec,
			"acodec": p.audioCodec,
			"strict": "experimental",
		}).
		GlobalArgs("-hide_banner", "-loglevel", "error").
		OverWriteOutput().
		GetArgs()
}

// assFilter builds the ass video filter, escaping characters the filtergraph
// parser treats as separators.
func assFilter(path string) string {
	escaped := strings.NewReplacer(
		`\`, `/`,
		`:`, `\:`,
		`'`, `\'`,
		`,`, `\,`,
		`;`, `\;`,
		`[`, `\[`,
		`]`, `\]`,
	).Replace(path)
	return "ass=" + escaped
}

// run executes one engine process inside a pool slot. When combined is set,
// stdout and stderr are merged into the returned diagnostic text.
func (p *Processor) run(
	ctx context.Context,
	binary string,
	args []string,
	combined bool,
) ([]byte, string, error) {
	if binary == "" {
		return nil, "", errors.New("media engine binary not configured")
	}

	if err := p.slots.Acquire(ctx, 1); err != nil {
		return nil, "", fmt.Errorf("waiting for media slot: %w", err)
	}
	defer p.slots.Release(1)

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	if combined {
		cmd.Stdout = &stderr
	} else {
		cmd.Stdout = &stdout
	}
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil && ctx.Err() != nil {
		err = fmt.Errorf("%w: %w", ctx.Err(), err)
	}

	return stdout.Bytes(), stderr.String(), err
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
