package api

import (
	"time"

	"github.com/mgpai22/captionchat/internal/session"
	"github.com/mgpai22/captionchat/internal/subtitle"
)

const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeNotFound         = "NOT_FOUND"
	CodeExtractionFailed = "EXTRACTION_FAILED"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeMediaFailed      = "MEDIA_FAILED"
	CodeTimeout          = "TIMEOUT"
	CodeInternal         = "INTERNAL_ERROR"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type RootResponse struct {
	Message   string            `json:"message"`
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	UptimeS int64  `json:"uptime_s"`
}

type UploadResponse struct {
	VideoID  string   `json:"video_id"`
	Filename string   `json:"filename"`
	Duration *float64 `json:"duration"`
	Message  string   `json:"message"`
}

type ChatRequest struct {
	VideoID string `json:"video_id"`
	Prompt  string `json:"prompt"`
}

type ChatResponse struct {
	VideoID           string      `json:"video_id"`
	Message           string      `json:"message"`
	ProcessedVideoURL string      `json:"processed_video_url"`
	SubtitleAdded     CueResponse `json:"subtitle_added"`
}

type AutoGenerateRequest struct {
	VideoID  string `json:"video_id"`
	FontSize int    `json:"font_size"`
	Color    string `json:"color"`
	Position string `json:"position"`
}

type AutoGenerateResponse struct {
	VideoID           string        `json:"video_id"`
	Message           string        `json:"message"`
	ProcessedVideoURL string        `json:"processed_video_url"`
	SubtitlesAdded    []CueResponse `json:"subtitles_added"`
	Placeholder       bool          `json:"placeholder"`
}

type CueResponse struct {
	Text      string  `json:"text"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	FontSize  int     `json:"font_size"`
	Color     string  `json:"color"`
	Position  string  `json:"position"`
}

type VideoResponse struct {
	VideoID          string        `json:"video_id"`
	OriginalFilename string        `json:"original_filename"`
	FilePath         string        `json:"file_path"`
	Duration         *float64      `json:"duration"`
	Subtitles        []CueResponse `json:"subtitles"`
	CreatedAt        string        `json:"created_at"`
}

func CueToResponse(c subtitle.Cue) CueResponse {
	return CueResponse{
		Text:      c.Text,
		StartTime: c.StartTime,
		EndTime:   c.EndTime,
		FontSize:  c.FontSize,
		Color:     c.Color,
		Position:  string(c.Position),
	}
}

func CuesToResponse(cues []subtitle.Cue) []CueResponse {
	resp := make([]CueResponse, len(cues))
	for i, c := range cues {
		resp[i] = CueToResponse(c)
	}
	return resp
}

func SessionToResponse(s *session.Session) VideoResponse {
	return VideoResponse{
		VideoID:          s.ID,
		OriginalFilename: s.OriginalFilename,
		FilePath:         s.FilePath,
		Duration:         s.Duration,
		Subtitles:        CuesToResponse(s.Cues),
		CreatedAt:        s.CreatedAt.Format(time.RFC3339),
	}
}
