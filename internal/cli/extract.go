package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/captionchat/internal/media"
)

var extractCmd = &cobra.Command{
	Use:   "extract [video_file]",
	Short: "Extract speech-ready audio from a video file",
	Long: `Extract the audio track from a video file as a 16 kHz mono PCM WAV, the
format the speech models expect.

Examples:
  captionchat extract video.mp4
  captionchat extract video.mp4 -o audio.wav`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	outputPath, _ := cmd.Flags().GetString("output")

	if err := checkVideo(videoPath); err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = defaultOutputPath(videoPath, ".wav")
	}

	compositor, err := newCompositor(cfg, logger)
	if err != nil {
		return err
	}

	logger.Infow("Extracting audio",
		"video", videoPath,
		"output", outputPath,
	)

	ctx := context.Background()
	if err := compositor.ExtractAudio(ctx, videoPath, outputPath); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Audio extracted successfully: %s\n", absOutput)

	return nil
}

func checkVideo(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", path)
	}
	if !media.IsVideoFile(path) {
		return fmt.Errorf("unsupported file type: %s (expected a video file)", filepath.Ext(path))
	}
	return nil
}

// swaps the input's extension for ext
func defaultOutputPath(input, ext string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ext
}
