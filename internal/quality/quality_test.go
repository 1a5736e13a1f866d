package quality

import (
	"math"
	"testing"

	"scribe/internal/chunking"
	"scribe/internal/transcript"
)

func testSegments() []transcript.Segment {
	return []transcript.Segment{
		{Start: 0, End: 5, Text: "Hello world.", Confidence: 0.9},
		{Start: 5, End: 12, Text: "This is a test.", Confidence: 0.8},
		{Start: 12, End: 20, Text: "Goodbye now.", Confidence: 0.95},
	}
}

func TestScoreWeightsByTextLength(t *testing.T) {
	scorer := NewScorer(0)
	chunk := &chunking.Chunk{SourceSegmentRange: [2]int{0, 1}}

	score, flagged := scorer.Score(chunk, testSegments())

	// 12 chars at 0.9 and 15 chars at 0.8.
	want := (12*0.9 + 15*0.8) / 27
	if math.Abs(score-want) > 1e-9 {
		t.Errorf("score = %v, want %v", score, want)
	}
	if chunk.QualityScore != score {
		t.Errorf("chunk.QualityScore = %v, want %v", chunk.QualityScore, score)
	}
	if len(flagged) != 0 {
		t.Errorf("no segment under 0.5, but %d flagged", len(flagged))
	}
}

func TestScoreSingleSegmentChunk(t *testing.T) {
	scorer := NewScorer(0)
	chunk := &chunking.Chunk{SourceSegmentRange: [2]int{2, 2}}

	score, _ := scorer.Score(chunk, testSegments())
	if score != 0.95 {
		t.Errorf("score = %v, want 0.95", score)
	}
}

func TestScoreFlagsLowConfidenceSpans(t *testing.T) {
	segments := []transcript.Segment{
		{Start: 0, End: 4, Text: "Clear opening statement.", Confidence: 0.92},
		{Start: 4, End: 8, Text: "mumbled inaudible words", Confidence: 0.31},
		{Start: 8, End: 12, Text: "Back to clarity again.", Confidence: 0.88},
	}
	scorer := NewScorer(0.5)
	chunk := &chunking.Chunk{SourceSegmentRange: [2]int{0, 2}}

	_, flagged := scorer.Score(chunk, segments)
	if len(flagged) != 1 {
		t.Fatalf("flagged %d spans, want 1", len(flagged))
	}
	span := flagged[0]
	if span.SegmentIndex != 1 || span.Confidence != 0.31 {
		t.Errorf("flagged span = %+v", span)
	}
	if span.Start != 4 || span.End != 8 {
		t.Errorf("span times = [%v, %v], want [4, 8]", span.Start, span.End)
	}
}

func TestScoreEmptySpanIsZero(t *testing.T) {
	scorer := NewScorer(0)

	cases := []struct {
		name  string
		chunk *chunking.Chunk
	}{
		{"out of range", &chunking.Chunk{SourceSegmentRange: [2]int{5, 9}}},
		{"inverted", &chunking.Chunk{SourceSegmentRange: [2]int{2, 0}}},
		{"negative", &chunking.Chunk{SourceSegmentRange: [2]int{-1, 1}}},
	}
	for _, tc := range cases {
		score, _ := scorer.Score(tc.chunk, testSegments())
		if score != 0 {
			t.Errorf("%s: score = %v, want 0", tc.name, score)
		}
	}

	// Zero-length text carries zero weight.
	empty := []transcript.Segment{{Start: 0, End: 1, Text: "", Confidence: 0.9}}
	chunk := &chunking.Chunk{SourceSegmentRange: [2]int{0, 0}}
	if score, _ := scorer.Score(chunk, empty); score != 0 {
		t.Errorf("zero-weight span score = %v, want 0", score)
	}
}

func TestScoreAll(t *testing.T) {
	tr := &transcript.Transcript{Segments: []transcript.Segment{
		{Start: 0, End: 4, Text: "Fine audio here.", Confidence: 0.9},
		{Start: 4, End: 8, Text: "static burst", Confidence: 0.2},
		{Start: 8, End: 12, Text: "Recovered nicely after.", Confidence: 0.85},
		{Start: 12, End: 16, Text: "more noise", Confidence: 0.4},
	}}
	chunks := []*chunking.Chunk{
		{SourceSegmentRange: [2]int{0, 1}},
		{SourceSegmentRange: [2]int{2, 3}},
	}

	flagged := NewScorer(0.5).ScoreAll(chunks, tr)
	if len(flagged) != 2 {
		t.Fatalf("flagged %d spans, want 2", len(flagged))
	}
	for _, chunk := range chunks {
		if chunk.QualityScore <= 0 || chunk.QualityScore >= 1 {
			t.Errorf("chunk score %v outside (0, 1)", chunk.QualityScore)
		}
	}
}
