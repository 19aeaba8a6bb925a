package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/captionchat/internal/config"
	"github.com/mgpai22/captionchat/internal/logging"
)

// set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
	logger     *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "captionchat",
	Short: "Chat-driven subtitle editor for videos",
	Long: `Captionchat lets you add subtitles to a video by describing them in plain
language, or generates them from the video's speech, and burns them into the
video with ffmpeg.

Run "captionchat serve" to start the HTTP API used by the web frontend.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, path, exists, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		logger = logging.NewLoggerWithLevel(cfg.Logging.Level, verbose || cfg.Logging.Verbose)

		if exists {
			logger.Debugw("Loaded config", "path", path)
		} else {
			logger.Debugw("No config file found, using defaults", "path", path)
		}
		return nil
	},
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "Config file path (default ./captionchat.toml or ~/.config/captionchat/config.toml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
}
