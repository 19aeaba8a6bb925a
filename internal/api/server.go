// Package api exposes the subtitle editor over HTTP.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/mgpai22/captionchat/internal/editor"
	"github.com/mgpai22/captionchat/internal/logging"
	"github.com/mgpai22/captionchat/internal/session"
	"github.com/mgpai22/captionchat/internal/subtitle"
)

// Editor is the editing surface the handlers drive.
type Editor interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (*session.Session, error)
	Chat(ctx context.Context, id, prompt string) (*editor.ChatResult, error)
	AutoGenerate(ctx context.Context, id string, style subtitle.Style) (*editor.AutoResult, error)
	Get(ctx context.Context, id string) (*session.Session, error)
	PreviewPath(ctx context.Context, id string) (*session.Session, string, error)
	ExportPath(ctx context.Context, id string) (*session.Session, string, error)
	Subtitles(ctx context.Context, id string, format subtitle.Format) ([]byte, error)
}

type Server struct {
	httpServer *http.Server
	logger     *logging.Logger
}

type ServerConfig struct {
	Addr           string
	Editor         Editor
	Logger         *logging.Logger
	AllowedOrigins []string

	// largest accepted upload body; zero means unlimited
	MaxUploadBytes int64

	// bounds reading the request; writes stay unbounded since a chat turn
	// waits for a full re-encode
	ReadTimeout time.Duration

	StartTime time.Time
	Version   string
}

func NewServer(cfg ServerConfig) *Server {
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 5 * time.Minute
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      NewRouter(cfg),
			ReadTimeout:  readTimeout,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger.Named("http"),
	}
}

func (s *Server) Start() error {
	s.logger.Infow("Starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
