package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/captionchat/internal/api"
	"github.com/mgpai22/captionchat/internal/editor"
	"github.com/mgpai22/captionchat/internal/interpret"
	"github.com/mgpai22/captionchat/internal/session"
	"github.com/mgpai22/captionchat/internal/transcribe"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the subtitle editor HTTP API",
	Long: `Start the HTTP API that accepts video uploads, applies chat prompts as
subtitles and serves the rendered videos.

Sessions live in memory and are lost when the server stops. Uploaded and
rendered videos stay in the configured upload and output directories.

Examples:
  captionchat serve
  captionchat serve --addr 0.0.0.0:8000
  captionchat serve --config ./captionchat.toml -v`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	compositor, err := newCompositor(cfg, logger)
	if err != nil {
		return err
	}

	extractor, err := newExtractor(ctx, cfg)
	if err != nil {
		return err
	}

	// auto-generate is optional; chat editing works without a speech model
	var transcriber transcribe.Transcriber
	if t, err := newTranscriber(ctx, cfg); err != nil {
		logger.Warnw("Auto-generate disabled", "error", err)
	} else {
		transcriber = t
	}

	store := session.NewMemoryStore()
	defer func() {
		if err := store.Close(); err != nil {
			logger.Errorw("Failed to close session store", "error", err)
		}
	}()

	ledger := session.NewLedger(store, compositor, cfg.Storage.OutputDir, logger)

	interpreter := interpret.New(interpret.Options{
		Extractor:   extractor,
		Transcriber: transcriber,
		Compositor:  compositor,
		Generator:   newGenerator(cfg),
		WorkDir:     cfg.Storage.WorkDir,
		Logger:      logger,
	})

	svc := editor.New(editor.Options{
		Store:       store,
		Ledger:      ledger,
		Interpreter: interpreter,
		Compositor:  compositor,
		UploadDir:   cfg.Storage.UploadDir,
		Logger:      logger,
	})

	server := api.NewServer(api.ServerConfig{
		Addr:           cfg.Server.Addr,
		Editor:         svc,
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		ReadTimeout:    cfg.ReadTimeout(),
		StartTime:      time.Now(),
		Version:        Version,
	})

	logger.Infow("Starting captionchat",
		"addr", cfg.Server.Addr,
		"llm_provider", cfg.LLM.Provider,
		"speech_provider", cfg.Speech.Provider,
		"upload_dir", cfg.Storage.UploadDir,
		"output_dir", cfg.Storage.OutputDir,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Infow("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("Failed to shut down HTTP server", "error", err)
	}

	logger.Infow("Shutdown complete")
	return nil
}
