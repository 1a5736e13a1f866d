// Package quality derives chunk quality scores from transcription confidence.
package quality

import (
	"scribe/internal/chunking"
	"scribe/internal/transcript"
)

// DefaultReviewThreshold marks segment confidence below which a span is
// surfaced for human review.
const DefaultReviewThreshold = 0.5

// Span identifies one low-confidence stretch inside a chunk.
type Span struct {
	SegmentIndex int
	Start        float64
	End          float64
	Text         string
	Confidence   float64
}

// Scorer computes confidence-weighted quality scores. It is a pure
// computation with no retries and no side effects beyond setting the chunk's
// QualityScore.
type Scorer struct {
	threshold float64
}

// NewScorer returns a scorer flagging segments under threshold; a
// non-positive threshold falls back to the default.
func NewScorer(threshold float64) *Scorer {
	if threshold <= 0 {
		threshold = DefaultReviewThreshold
	}
	return &Scorer{threshold: threshold}
}

// Score sets chunk.QualityScore to the character-length-weighted mean of the
// confidences of the segments the chunk spans, and returns the score along
// with any review-worthy spans. A chunk spanning no text scores 0.0.
func (s *Scorer) Score(chunk *chunking.Chunk, segments []transcript.Segment) (float64, []Span) {
	first, last := chunk.SourceSegmentRange[0], chunk.SourceSegmentRange[1]
	if first < 0 || last >= len(segments) || first > last {
		chunk.QualityScore = 0
		return 0, nil
	}

	var weighted, total float64
	var flagged []Span
	for i := first; i <= last; i++ {
		seg := segments[i]
		weight := float64(len(seg.Text))
		weighted += weight * seg.Confidence
		total += weight

		if seg.Confidence < s.threshold {
			flagged = append(flagged, Span{
				SegmentIndex: i,
				Start:        seg.Start,
				End:          seg.End,
				Text:         seg.Text,
				Confidence:   seg.Confidence,
			})
		}
	}
	if total == 0 {
		chunk.QualityScore = 0
		return 0, flagged
	}

	score := weighted / total
	chunk.QualityScore = score
	return score, flagged
}

// ScoreAll scores every chunk against the transcript it came from and
// returns the union of review-worthy spans.
func (s *Scorer) ScoreAll(chunks []*chunking.Chunk, t *transcript.Transcript) []Span {
	var flagged []Span
	for _, chunk := range chunks {
		_, spans := s.Score(chunk, t.Segments)
		flagged = append(flagged, spans...)
	}
	return flagged
}
