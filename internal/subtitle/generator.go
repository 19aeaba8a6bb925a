package subtitle

import (
	"strings"
	"unicode/utf8"
)

// Generator turns transcribed speech segments into styled cues. With zero
// limits every segment becomes exactly one cue carrying the segment's own
// timing; setting a limit splits segments that are too long to read.
type Generator struct {
	// zero disables wrapping and length based splitting
	MaxCharsPerLine int
	MaxLinesPerSub  int

	// seconds; a zero value disables duration based splitting
	MaxDuration float64
}

// NewDefaultGenerator maps segments to cues one to one.
func NewDefaultGenerator() *Generator {
	return &Generator{MaxLinesPerSub: 2}
}

// converts transcription segments to cues carrying the given style; blank
// segments are dropped and no segment yields an empty, non-nil slice
func (g *Generator) Generate(segments []Segment, style Style) []Cue {
	cues := make([]Cue, 0, len(segments))

	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}

		start := seg.StartTime
		if start < 0 {
			start = 0
		}
		end := seg.EndTime
		if end <= start {
			end = start + DefaultCueLength
		}
		seg = Segment{StartTime: start, EndTime: end, Text: text}

		if g.needsSplit(text, end-start) {
			for _, part := range g.splitSegment(seg) {
				cues = append(cues, styledCue(part, style))
			}
			continue
		}

		seg.Text = g.formatText(text)
		cues = append(cues, styledCue(seg, style))
	}

	return cues
}

func styledCue(seg Segment, style Style) Cue {
	return Cue{
		Text:      seg.Text,
		StartTime: seg.StartTime,
		EndTime:   seg.EndTime,
		FontSize:  style.FontSize,
		Color:     style.Color,
		Position:  style.Position,
	}
}

func (g *Generator) maxChars() int {
	if g.MaxCharsPerLine <= 0 {
		return 0
	}
	lines := g.MaxLinesPerSub
	if lines <= 0 {
		lines = 1
	}
	return g.MaxCharsPerLine * lines
}

func (g *Generator) needsSplit(text string, duration float64) bool {
	// if text is too long, split
	if limit := g.maxChars(); limit > 0 && utf8.RuneCountInString(text) > limit {
		return true
	}

	// if duration is too long, split
	if g.MaxDuration > 0 && duration > g.MaxDuration {
		return true
	}

	return false
}

// splits long segment into consecutive pieces covering the same time span
func (g *Generator) splitSegment(seg Segment) []Segment {
	words := strings.Fields(seg.Text)
	totalDuration := seg.EndTime - seg.StartTime

	if len(words) == 0 {
		return nil
	}

	numSplits := 1

	// approximate characters per subtitle
	if maxChars := g.maxChars(); maxChars > 0 {
		totalChars := utf8.RuneCountInString(seg.Text)
		numSplits = (totalChars + maxChars - 1) / maxChars
	}

	if g.MaxDuration > 0 {
		durationSplits := int(totalDuration/g.MaxDuration) + 1
		if durationSplits > numSplits {
			numSplits = durationSplits
		}
	}

	if numSplits > len(words) {
		numSplits = len(words)
	}
	if numSplits < 1 {
		numSplits = 1
	}

	// distribute words across splits
	wordsPerSplit := (len(words) + numSplits - 1) / numSplits
	durationPerSplit := totalDuration / float64(numSplits)

	var parts []Segment
	currentStart := seg.StartTime

	for i := 0; i < numSplits && len(words) > 0; i++ {
		endIdx := wordsPerSplit
		if endIdx > len(words) {
			endIdx = len(words)
		}

		splitText := strings.Join(words[:endIdx], " ")
		words = words[endIdx:]

		currentEnd := currentStart + durationPerSplit

		// Last split should end at the original end time
		if len(words) == 0 {
			currentEnd = seg.EndTime
		}

		parts = append(parts, Segment{
			StartTime: currentStart,
			EndTime:   currentEnd,
			Text:      g.formatText(splitText),
		})

		currentStart = currentEnd
	}

	return parts
}

// formatText formats text for display with line wrapping
func (g *Generator) formatText(text string) string {
	text = strings.TrimSpace(text)
	runeCount := utf8.RuneCountInString(text)

	// if text fits on one line, return as is
	if g.MaxCharsPerLine <= 0 || runeCount <= g.MaxCharsPerLine {
		return text
	}

	// try to split into two lines at a natural break point
	words := strings.Fields(text)
	if len(words) < 2 {
		return text
	}

	// find the best split point (closest to middle)
	middle := runeCount / 2
	bestSplit := 0
	bestDiff := runeCount

	currentLen := 0
	for i, word := range words[:len(words)-1] {
		currentLen += utf8.RuneCountInString(word)
		if i > 0 {
			currentLen++ // space
		}

		diff := abs(currentLen - middle)
		if diff < bestDiff {
			bestDiff = diff
			bestSplit = i + 1
		}
	}

	if bestSplit > 0 && bestSplit < len(words) {
		line1 := strings.Join(words[:bestSplit], " ")
		line2 := strings.Join(words[bestSplit:], " ")
		return line1 + "\n" + line2
	}

	return text
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
