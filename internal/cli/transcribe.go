package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/captionchat/internal/interpret"
	"github.com/mgpai22/captionchat/internal/subtitle"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe [video_file]",
	Short: "Generate subtitles from a video's speech",
	Long: `Transcribe the speech in a video and write the cues as SRT or ASS.

The audio is extracted with ffmpeg and sent to the configured speech model
with segment timestamps. Each segment becomes one cue; set the [speech] line
and duration limits in the config to split long segments. The video itself is
not modified; use the chat API to burn subtitles in.

Examples:
  captionchat transcribe video.mp4
  captionchat transcribe video.mp4 -f ass --color yellow --position top
  captionchat transcribe video.mp4 --language es -o subs.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)

	transcribeCmd.Flags().
		StringP("format", "f", "srt", "Output subtitle format (srt, ass)")
	transcribeCmd.Flags().
		StringP("language", "l", "", "Language code of the speech (e.g., en, es, fr)")
	transcribeCmd.Flags().
		Int("font-size", subtitle.DefaultFontSize, "Font size for ASS output")
	transcribeCmd.Flags().
		String("color", subtitle.DefaultColor, "Text color for ASS output")
	transcribeCmd.Flags().
		String("position", string(subtitle.DefaultPosition), "Position for ASS output (top, center, bottom)")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	ctx := context.Background()

	if err := checkVideo(videoPath); err != nil {
		return err
	}

	formatStr, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	language, _ := cmd.Flags().GetString("language")
	fontSize, _ := cmd.Flags().GetInt("font-size")
	color, _ := cmd.Flags().GetString("color")
	position, _ := cmd.Flags().GetString("position")

	format, err := parseFormat(formatStr)
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = defaultOutputPath(videoPath, subtitle.ExtensionForFormat(format))
	}
	if language != "" {
		cfg.Speech.Language = language
	}

	compositor, err := newCompositor(cfg, logger)
	if err != nil {
		return err
	}
	transcriber, err := newTranscriber(ctx, cfg)
	if err != nil {
		return err
	}

	interpreter := interpret.New(interpret.Options{
		Transcriber: transcriber,
		Compositor:  compositor,
		Generator:   newGenerator(cfg),
		WorkDir:     cfg.Storage.WorkDir,
		Logger:      logger,
	})

	logger.Infow("Starting transcription",
		"input", videoPath,
		"output", outputPath,
		"format", format,
		"provider", cfg.Speech.Provider,
	)

	style := subtitle.Style{
		FontSize: fontSize,
		Color:    color,
		Position: subtitle.Position(position),
	}
	cues, err := interpreter.AutoGenerate(ctx, videoPath, style)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return fmt.Errorf("failed to create subtitle writer: %w", err)
	}
	if err := writer.Write(cues, outputPath); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Subtitles generated successfully: %s\n", absOutput)
	fmt.Fprintf(out, "  Cues: %d\n", len(cues))
	if len(cues) == 0 {
		fmt.Fprintln(out, "  No speech detected")
	}

	return nil
}

func parseFormat(s string) (subtitle.Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "srt":
		return subtitle.FormatSRT, nil
	case "ass":
		return subtitle.FormatASS, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use srt or ass", s)
	}
}
