package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PlayRes the styled overlay is authored against; libass scales to the frame.
const (
	assPlayResX = 1920
	assPlayResY = 1080
	assFontName = "Arial"
)

// interface for writing compiled overlays to files
type Writer interface {
	Write(cues []Cue, path string) error
}

// SubRip (plain timed-text) format
type SRTWriter struct{}

// Advanced SubStation Alpha (styled-event) format
type ASSWriter struct{}

func NewWriter(format Format) (Writer, error) {
	switch format {
	case FormatSRT:
		return &SRTWriter{}, nil
	case FormatASS:
		return &ASSWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Compile renders cues in the given format.
func Compile(format Format, cues []Cue) ([]byte, error) {
	switch format {
	case FormatSRT:
		return CompileSRT(cues), nil
	case FormatASS:
		return CompileASS(cues), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// CompileSRT numbers cues from 1 in the order given; cues are never sorted.
func CompileSRT(cues []Cue) []byte {
	var sb strings.Builder
	for i, cue := range cues {
		sb.WriteString(fmt.Sprintf("%d\n", i+1))
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			FormatSRTTime(cue.StartTime),
			FormatSRTTime(cue.EndTime)))
		sb.WriteString(cue.Text)
		sb.WriteString("\n\n")
	}
	return []byte(sb.String())
}

// CompileASS emits a single Default style taken from the first cue and one
// Dialogue event per cue. libass applies one style block per render pass, so
// size, colour and position requested by later cues are not honoured.
// An empty slice yields the header and style with no events.
func CompileASS(cues []Cue) []byte {
	style := DefaultStyle()
	if len(cues) > 0 {
		style = cues[0].Style()
	}

	var sb strings.Builder
	writeASSHeader(&sb, style)

	for _, cue := range cues {
		sb.WriteString(fmt.Sprintf("Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			FormatASSTime(cue.StartTime),
			FormatASSTime(cue.EndTime),
			escapeASSText(cue.Text)))
	}

	return []byte(sb.String())
}

func writeASSHeader(sb *strings.Builder, style Style) {
	fontSize := style.FontSize
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}

	// script info section
	sb.WriteString("[Script Info]\n")
	sb.WriteString("ScriptType: v4.00+\n")
	sb.WriteString(fmt.Sprintf("PlayResX: %d\n", assPlayResX))
	sb.WriteString(fmt.Sprintf("PlayResY: %d\n\n", assPlayResY))

	// v4+ styles section
	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	sb.WriteString(fmt.Sprintf("Style: Default,%s,%d,%s,&H000000FF,&H00000000,&H80000000,-1,0,0,0,100,100,0,0,1,2,1,%d,10,10,10,1\n\n",
		assFontName,
		fontSize,
		ColorToASS(style.Color),
		PositionToAlignment(style.Position)))

	// events section
	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
}

// writes the cues to an SRT file
func (w *SRTWriter) Write(cues []Cue, path string) error {
	return writeFile(path, CompileSRT(cues))
}

// writes the cues to an ASS file
func (w *ASSWriter) Write(cues []Cue, path string) error {
	return writeFile(path, CompileASS(cues))
}

var assTextEscaper = strings.NewReplacer(
	"\r\n", "\\N",
	"\n", "\\N",
	"{", "\\{",
	"}", "\\}",
)

// escapeASSText turns newlines into hard breaks and escapes braces, which
// libass would otherwise read as override tag blocks.
func escapeASSText(text string) string {
	return assTextEscaper.Replace(text)
}

func writeFile(path string, data []byte) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write overlay: %w", err)
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}
