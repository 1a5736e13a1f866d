// Package transcript defines the timed-text domain types produced by the
// transcription boundary and consumed by chunking and document assembly.
package transcript

import "strings"

// Segment is a timestamped span of transcribed text with a confidence score.
// Segments are immutable once created.
type Segment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// EndsSentence reports whether the segment text ends with terminal
// punctuation.
func (s Segment) EndsSentence() bool {
	trimmed := strings.TrimSpace(s.Text)
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '?', '!':
		return true
	default:
		return false
	}
}

// Transcript is the ordered segment sequence for one source file.
type Transcript struct {
	Segments       []Segment `json:"segments"`
	Language       string    `json:"language"`
	SourceDuration float64   `json:"source_duration"`
}

// Text joins the trimmed segment texts with single spaces.
func (t Transcript) Text() string {
	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}

// Empty reports whether the transcript carries no segments.
func (t Transcript) Empty() bool {
	return len(t.Segments) == 0
}
