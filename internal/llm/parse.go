package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var jsonBlockRegex = regexp.MustCompile("```(?:json)?\\s*")

func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)

	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")

	s = strings.TrimSpace(s)

	return s
}

// fixes invalid JSON escape sequences like \N (ASS newline).
// It replaces \N with \\N so JSON can parse it, preserving the literal \N in the output.
func fixInvalidEscapes(s string) string {
	var result strings.Builder
	result.Grow(len(s))

	i := 0
	for i < len(s) {
		if i < len(s)-1 && s[i] == '\\' {
			next := s[i+1]
			// Valid JSON escape sequences: ", \, /, b, f, n, r, t, u
			switch next {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
				result.WriteByte(s[i])
				result.WriteByte(s[i+1])
				i += 2
			default:
				result.WriteString("\\\\")
				result.WriteByte(next)
				i += 2
			}
		} else {
			result.WriteByte(s[i])
			i++
		}
	}

	return result.String()
}

// raw model output; numbers may arrive as JSON numbers or numeric strings
type rawFields struct {
	Text      *string         `json:"text"`
	StartTime json.RawMessage `json:"start_time"`
	EndTime   json.RawMessage `json:"end_time"`
	FontSize  json.RawMessage `json:"font_size"`
	Color     *string         `json:"color"`
	Position  *string         `json:"position"`
}

// ParseFields decodes the first JSON object in a model response. Markdown
// fences, preambles and trailing chatter are tolerated.
func ParseFields(text string) (*Fields, error) {
	text = fixInvalidEscapes(cleanJSONResponse(text))

	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		decoder := json.NewDecoder(strings.NewReader(text[i:]))
		var raw rawFields
		if err := decoder.Decode(&raw); err != nil {
			continue
		}
		fields, err := raw.fields()
		if err != nil {
			return nil, err
		}
		return fields, nil
	}

	return nil, fmt.Errorf(
		"no JSON object found in response: %s",
		truncateString(text, 200),
	)
}

func (r rawFields) fields() (*Fields, error) {
	f := &Fields{
		Text:     r.Text,
		Color:    r.Color,
		Position: r.Position,
	}

	var err error
	if f.StartTime, err = parseNumber("start_time", r.StartTime); err != nil {
		return nil, err
	}
	if f.EndTime, err = parseNumber("end_time", r.EndTime); err != nil {
		return nil, err
	}

	size, err := parseNumber("font_size", r.FontSize)
	if err != nil {
		return nil, err
	}
	if size != nil {
		n := int(math.Round(*size))
		f.FontSize = &n
	}

	return f, nil
}

func parseNumber(field string, raw json.RawMessage) (*float64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil, nil
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n, nil
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		str = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(str), "s"))
		if str == "" {
			return nil, nil
		}
		if n, err := strconv.ParseFloat(str, 64); err == nil {
			return &n, nil
		}
	}

	return nil, fmt.Errorf("%s is not a number: %s", field, truncateString(s, 40))
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
