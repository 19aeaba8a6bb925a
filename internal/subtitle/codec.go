package subtitle

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// converts seconds to a duration rounded to the nearest nanosecond so that
// later truncation to ms/cs is not thrown off by float representation
func secondsToDuration(seconds float64) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(math.Round(seconds * float64(time.Second)))
}

// SRT timestamp, HH:MM:SS,mmm with milliseconds truncated
func FormatSRTTime(seconds float64) string {
	return formatSRTDuration(secondsToDuration(seconds))
}

// ASS timestamp, H:MM:SS.cc with centiseconds truncated
func FormatASSTime(seconds float64) string {
	return formatASSDuration(secondsToDuration(seconds))
}

func formatSRTDuration(d time.Duration) string {
	hours := int(d / time.Hour)
	minutes := int(d/time.Minute) % 60
	secs := int(d/time.Second) % 60
	millis := int(d/time.Millisecond) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

func formatASSDuration(d time.Duration) string {
	hours := int(d / time.Hour)
	minutes := int(d/time.Minute) % 60
	secs := int(d/time.Second) % 60
	centis := int(d/(10*time.Millisecond)) % 100

	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, secs, centis)
}

type rgb struct {
	r, g, b uint8
}

var palette = map[string]rgb{
	"white":  {0xFF, 0xFF, 0xFF},
	"red":    {0xFF, 0x00, 0x00},
	"blue":   {0x00, 0x00, 0xFF},
	"green":  {0x00, 0xFF, 0x00},
	"yellow": {0xFF, 0xFF, 0x00},
	"black":  {0x00, 0x00, 0x00},
	"orange": {0xFF, 0x99, 0x00},
	"pink":   {0xFF, 0x00, 0xFF},
}

// NormalizeColor lower-cases a colour name and maps anything outside the
// palette to the default colour.
func NormalizeColor(color string) string {
	name := strings.ToLower(strings.TrimSpace(color))
	if _, ok := palette[name]; ok {
		return name
	}
	return DefaultColor
}

// ColorToASS converts a colour name to the ASS &HAABBGGRR form. The leading
// byte is the alpha prefix (always 00, opaque) and the channels are stored
// blue, green, red.
func ColorToASS(color string) string {
	c := palette[NormalizeColor(color)]
	return fmt.Sprintf("&H%02X%02X%02X%02X", 0x00, c.b, c.g, c.r)
}

// NormalizePosition maps a free-form position to top/center/bottom, anything
// else becomes bottom.
func NormalizePosition(position string) Position {
	switch Position(strings.ToLower(strings.TrimSpace(position))) {
	case PositionTop:
		return PositionTop
	case PositionCenter:
		return PositionCenter
	default:
		return PositionBottom
	}
}

// PositionToAlignment returns the numpad-style ASS alignment code.
func PositionToAlignment(position Position) int {
	switch NormalizePosition(string(position)) {
	case PositionTop:
		return 8
	case PositionCenter:
		return 5
	default:
		return 2
	}
}
