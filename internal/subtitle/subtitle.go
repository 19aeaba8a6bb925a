package subtitle

// where a cue is anchored on the frame
type Position string

const (
	PositionTop    Position = "top"
	PositionCenter Position = "center"
	PositionBottom Position = "bottom"
)

// defaults applied when a prompt or caller leaves a field out
const (
	DefaultFontSize = 24
	DefaultColor    = "white"
	DefaultPosition = PositionBottom

	// span given to a cue whose end is missing or not after its start
	DefaultCueLength = 5.0
)

// Cue is a single timed, styled subtitle entry. Times are seconds from the
// start of the video. Cues are never edited in place; a changed cue is a new
// value.
type Cue struct {
	Text      string   `json:"text"`
	StartTime float64  `json:"start_time"`
	EndTime   float64  `json:"end_time"`
	FontSize  int      `json:"font_size"`
	Color     string   `json:"color"`
	Position  Position `json:"position"`
}

// appearance shared by a rendered overlay
type Style struct {
	FontSize int      `json:"font_size"`
	Color    string   `json:"color"`
	Position Position `json:"position"`
}

func DefaultStyle() Style {
	return Style{
		FontSize: DefaultFontSize,
		Color:    DefaultColor,
		Position: DefaultPosition,
	}
}

func (c Cue) Style() Style {
	return Style{FontSize: c.FontSize, Color: c.Color, Position: c.Position}
}

// represents transcribed audio segment, times in seconds
type Segment struct {
	StartTime float64
	EndTime   float64
	Text      string
}

// represents supported overlay formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatASS Format = "ass"
)

// file extension for a format
func ExtensionForFormat(format Format) string {
	switch format {
	case FormatASS:
		return ".ass"
	default:
		return ".srt"
	}
}
