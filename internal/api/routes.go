package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mgpai22/captionchat/internal/editor"
	"github.com/mgpai22/captionchat/internal/interpret"
	"github.com/mgpai22/captionchat/internal/logging"
	"github.com/mgpai22/captionchat/internal/media"
	"github.com/mgpai22/captionchat/internal/session"
	"github.com/mgpai22/captionchat/internal/subtitle"
)

const uploadFormField = "file"

func NewRouter(cfg ServerConfig) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	logger := cfg.Logger.Named("http")

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(logger))
	r.Use(LoggingMiddleware(logger))
	r.Use(CORSMiddleware(cfg.AllowedOrigins))

	r.Get("/", rootHandler(cfg))
	r.Get("/health", healthHandler(cfg))

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", uploadHandler(cfg))
		r.Post("/chat", chatHandler(cfg))
		r.Post("/auto-generate", autoGenerateHandler(cfg))
		r.Get("/video/{id}", videoHandler(cfg))
		r.Get("/preview/{id}", previewHandler(cfg))
		r.Get("/export/{id}", exportHandler(cfg))
		r.Get("/subtitles/{id}", subtitlesHandler(cfg))
	})

	return r
}

func rootHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, RootResponse{
			Message: "Video Editor API",
			Status:  "running",
			Version: cfg.Version,
			Endpoints: map[string]string{
				"upload":        "/api/upload",
				"chat":          "/api/chat",
				"auto_generate": "/api/auto-generate",
				"video":         "/api/video/{video_id}",
				"preview":       "/api/preview/{video_id}",
				"export":        "/api/export/{video_id}",
				"subtitles":     "/api/subtitles/{video_id}",
			},
		})
	}
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var uptime int64
		if !cfg.StartTime.IsZero() {
			uptime = int64(time.Since(cfg.StartTime).Seconds())
		}
		WriteJSON(w, http.StatusOK, HealthResponse{Status: "healthy", UptimeS: uptime})
	}
}

func uploadHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.MaxUploadBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes)
		}

		file, header, err := r.FormFile(uploadFormField)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				WriteError(w, http.StatusRequestEntityTooLarge, "file too large", CodeBadRequest)
				return
			}
			WriteError(w, http.StatusBadRequest, "multipart field \"file\" is required", CodeBadRequest)
			return
		}
		defer file.Close()

		s, err := cfg.Editor.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
		if err != nil {
			writeEditorError(w, r, cfg.Logger, err)
			return
		}

		WriteJSON(w, http.StatusOK, UploadResponse{
			VideoID:  s.ID,
			Filename: s.OriginalFilename,
			Duration: s.Duration,
			Message:  "Video uploaded successfully",
		})
	}
}

func chatHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", CodeBadRequest)
			return
		}
		if req.VideoID == "" {
			WriteError(w, http.StatusBadRequest, "video_id is required", CodeBadRequest)
			return
		}

		res, err := cfg.Editor.Chat(r.Context(), req.VideoID, req.Prompt)
		if err != nil {
			writeEditorError(w, r, cfg.Logger, err)
			return
		}

		WriteJSON(w, http.StatusOK, ChatResponse{
			VideoID:           req.VideoID,
			Message:           "Subtitle added successfully",
			ProcessedVideoURL: previewURL(req.VideoID),
			SubtitleAdded:     CueToResponse(res.Cue),
		})
	}
}

func autoGenerateHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AutoGenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", CodeBadRequest)
			return
		}
		if req.VideoID == "" {
			WriteError(w, http.StatusBadRequest, "video_id is required", CodeBadRequest)
			return
		}

		style := subtitle.Style{
			FontSize: req.FontSize,
			Color:    req.Color,
			Position: subtitle.Position(req.Position),
		}

		res, err := cfg.Editor.AutoGenerate(r.Context(), req.VideoID, style)
		if err != nil {
			writeEditorError(w, r, cfg.Logger, err)
			return
		}

		message := fmt.Sprintf("Generated %d subtitles", len(res.Cues))
		if res.Placeholder {
			message = "No speech detected"
		}

		WriteJSON(w, http.StatusOK, AutoGenerateResponse{
			VideoID:           req.VideoID,
			Message:           message,
			ProcessedVideoURL: previewURL(req.VideoID),
			SubtitlesAdded:    CuesToResponse(res.Cues),
			Placeholder:       res.Placeholder,
		})
	}
}

func videoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := cfg.Editor.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeEditorError(w, r, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, SessionToResponse(s))
	}
}

func previewHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, path, err := cfg.Editor.PreviewPath(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeEditorError(w, r, cfg.Logger, err)
			return
		}
		serveVideo(w, r, cfg.Logger, path, "preview_"+s.OriginalFilename, false)
	}
}

func exportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, path, err := cfg.Editor.ExportPath(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeEditorError(w, r, cfg.Logger, err)
			return
		}
		serveVideo(w, r, cfg.Logger, path, "final_"+s.OriginalFilename, true)
	}
}

func subtitlesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		format := subtitle.Format(strings.ToLower(r.URL.Query().Get("format")))
		if format == "" {
			format = subtitle.FormatSRT
		}

		data, err := cfg.Editor.Subtitles(r.Context(), id, format)
		if err != nil {
			writeEditorError(w, r, cfg.Logger, err)
			return
		}

		filename := id + subtitle.ExtensionForFormat(format)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

// serveVideo streams the file with range support so browsers can seek
func serveVideo(w http.ResponseWriter, r *http.Request, logger *logging.Logger, path, filename string, attachment bool) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			WriteError(w, http.StatusNotFound, "Video file not found", CodeNotFound)
			return
		}
		logger.Errorw("Failed to open video", "path", path, "error", err)
		WriteError(w, http.StatusInternalServerError, "failed to open video", CodeInternal)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to stat video", CodeInternal)
		return
	}

	disposition := "inline"
	if attachment {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, filename))
	http.ServeContent(w, r, filename, info.ModTime(), f)
}

func previewURL(id string) string {
	return "/api/preview/" + id
}

// writeEditorError maps an editor failure to its status category
func writeEditorError(w http.ResponseWriter, r *http.Request, logger *logging.Logger, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		WriteError(w, http.StatusNotFound, "Video not found", CodeNotFound)
	case errors.Is(err, editor.ErrFileMissing):
		WriteError(w, http.StatusNotFound, "Video file not found", CodeNotFound)
	case errors.Is(err, editor.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, err.Error(), CodeBadRequest)
	case interpret.IsValidationError(err):
		WriteError(w, http.StatusBadRequest, "Failed to parse prompt: "+err.Error(), CodeValidationFailed)
	case interpret.IsExtractionError(err):
		WriteError(w, http.StatusBadRequest, "Failed to parse prompt: "+err.Error(), CodeExtractionFailed)
	case errors.Is(err, media.ErrComposite),
		errors.Is(err, media.ErrExtraction),
		errors.Is(err, media.ErrProbe):
		logger.Errorw("Media engine failed",
			"error", err,
			"request_id", RequestID(r.Context()),
		)
		WriteError(w, http.StatusInternalServerError, "Failed to process video: "+err.Error(), CodeMediaFailed)
	case errors.Is(err, context.DeadlineExceeded):
		WriteError(w, http.StatusGatewayTimeout, "operation timed out", CodeTimeout)
	default:
		logger.Errorw("Request failed",
			"error", err,
			"request_id", RequestID(r.Context()),
		)
		WriteError(w, http.StatusInternalServerError, "internal server error", CodeInternal)
	}
}
