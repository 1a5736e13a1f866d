package chunking

import (
	"fmt"
	"strings"
	"testing"

	"scribe/internal/transcript"
)

func newTranscript(segments ...transcript.Segment) *transcript.Transcript {
	t := &transcript.Transcript{Segments: segments, Language: "en"}
	if len(segments) > 0 {
		t.SourceDuration = segments[len(segments)-1].End
	}
	return t
}

func lectureTranscript() *transcript.Transcript {
	// A synthetic lecture with sentence boundaries and discourse markers.
	texts := []string{
		"Welcome to the lecture on distributed systems.",
		"Today we cover consensus and replication.",
		"A replicated log keeps every node in sync.",
		"Leaders append entries and followers acknowledge them.",
		"However, network partitions complicate everything.",
		"Nodes on the minority side cannot commit writes.",
		"In conclusion, consensus trades latency for safety.",
		"Thank you all for attending today.",
	}
	segments := make([]transcript.Segment, len(texts))
	start := 0.0
	for i, text := range texts {
		segments[i] = transcript.Segment{
			Start:      start,
			End:        start + 4,
			Text:       text,
			Confidence: 0.9,
		}
		start += 4
	}
	return newTranscript(segments...)
}

// reconstruct joins chunk core texts the same way the engine joins segments.
func reconstruct(chunks []*Chunk) string {
	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		parts = append(parts, chunk.CoreText())
	}
	return strings.Join(parts, " ")
}

func TestChunkEmptyTranscript(t *testing.T) {
	engine, err := NewEngine(Options{Strategy: StrategyFixed, TargetSize: 100, Overlap: 10})
	if err != nil {
		t.Fatal(err)
	}
	chunks, err := engine.Chunk(newTranscript())
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("empty transcript should yield zero chunks, got %d", len(chunks))
	}
}

func TestChunkShortTranscriptSingleChunk(t *testing.T) {
	// No discourse markers and no pauses, so every strategy sees one
	// uninterrupted run well under the target size.
	tr := newTranscript(
		transcript.Segment{Start: 0, End: 4, Text: "Welcome to the lecture on distributed systems.", Confidence: 0.9},
		transcript.Segment{Start: 4, End: 8, Text: "Today we cover consensus and replication.", Confidence: 0.9},
		transcript.Segment{Start: 8, End: 12, Text: "A replicated log keeps every node in sync.", Confidence: 0.9},
	)
	for _, strategy := range []Strategy{StrategySemantic, StrategySentence, StrategyFixed} {
		t.Run(string(strategy), func(t *testing.T) {
			engine, err := NewEngine(Options{Strategy: strategy, TargetSize: 1000, Overlap: 200})
			if err != nil {
				t.Fatal(err)
			}
			chunks, err := engine.Chunk(tr)
			if err != nil {
				t.Fatalf("Chunk() error = %v", err)
			}
			if len(chunks) != 1 {
				t.Fatalf("transcript under target size should yield 1 chunk, got %d", len(chunks))
			}
			if chunks[0].OverlapWithPrev != 0 {
				t.Errorf("single chunk must carry no overlap, got %d", chunks[0].OverlapWithPrev)
			}
		})
	}
}

func TestSentenceStrategyBreaksAtSentenceBoundary(t *testing.T) {
	// Three segments, target 20: the first boundary at or past the target is
	// after the second segment, so exactly two chunks come out.
	tr := newTranscript(
		transcript.Segment{Start: 0, End: 5, Text: "Hello world.", Confidence: 0.9},
		transcript.Segment{Start: 5, End: 12, Text: "This is a test.", Confidence: 0.8},
		transcript.Segment{Start: 12, End: 20, Text: "Goodbye now.", Confidence: 0.95},
	)
	engine, err := NewEngine(Options{Strategy: StrategySentence, TargetSize: 20})
	if err != nil {
		t.Fatal(err)
	}

	chunks, err := engine.Chunk(tr)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if got := chunks[0].Text; got != "Hello world. This is a test." {
		t.Errorf("chunk 1 text = %q", got)
	}
	if got := chunks[0].SourceSegmentRange; got != [2]int{0, 1} {
		t.Errorf("chunk 1 range = %v, want [0 1]", got)
	}
	if got := chunks[1].Text; got != "Goodbye now." {
		t.Errorf("chunk 2 text = %q", got)
	}
	if got := chunks[1].SourceSegmentRange; got != [2]int{2, 2} {
		t.Errorf("chunk 2 range = %v, want [2 2]", got)
	}
	if chunks[0].StartTime != 0 || chunks[0].EndTime != 12 {
		t.Errorf("chunk 1 span = [%v, %v], want [0, 12]", chunks[0].StartTime, chunks[0].EndTime)
	}
}

func TestSemanticStrategyBreaksAtDiscourseMarker(t *testing.T) {
	tr := lectureTranscript()
	engine, err := NewEngine(Options{Strategy: StrategySemantic, TargetSize: 160, Overlap: 0})
	if err != nil {
		t.Fatal(err)
	}

	chunks, err := engine.Chunk(tr)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected marker-driven breaks, got %d chunks", len(chunks))
	}

	var markerStarts int
	for _, chunk := range chunks[1:] {
		if startsWithDiscourseMarker(chunk.CoreText()) {
			markerStarts++
		}
	}
	if markerStarts == 0 {
		t.Errorf("no chunk opens at a discourse marker; texts: %v", chunkTexts(chunks))
	}
}

func TestSemanticStrategyBreaksOnLongPause(t *testing.T) {
	tr := newTranscript(
		transcript.Segment{Start: 0, End: 4, Text: "The first act ends here tonight.", Confidence: 0.9},
		transcript.Segment{Start: 4, End: 8, Text: "Applause fills the entire hall.", Confidence: 0.9},
		// 10 second gap before the speaker resumes.
		transcript.Segment{Start: 18, End: 22, Text: "The second act opens quietly.", Confidence: 0.9},
	)
	engine, err := NewEngine(Options{Strategy: StrategySemantic, TargetSize: 200, Overlap: 0})
	if err != nil {
		t.Fatal(err)
	}

	chunks, err := engine.Chunk(tr)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected pause to split the transcript, got %d chunks", len(chunks))
	}
	if got := chunks[1].Text; got != "The second act opens quietly." {
		t.Errorf("chunk 2 text = %q", got)
	}
}

func TestSemanticStrategyCapsRunawayChunks(t *testing.T) {
	// No sentence boundaries and no markers: the 20% look-ahead cap is the
	// only thing keeping chunk sizes bounded.
	segments := make([]transcript.Segment, 12)
	for i := range segments {
		segments[i] = transcript.Segment{
			Start:      float64(i),
			End:        float64(i + 1),
			Text:       fmt.Sprintf("clause %02d without ending", i),
			Confidence: 0.9,
		}
	}
	engine, err := NewEngine(Options{Strategy: StrategySemantic, TargetSize: 60, Overlap: 0})
	if err != nil {
		t.Fatal(err)
	}

	chunks, err := engine.Chunk(newTranscript(segments...))
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatal("cap should have produced multiple chunks")
	}
	maxSize := 60 + 60/5
	for i, chunk := range chunks {
		if len(chunk.CoreText()) > maxSize {
			t.Errorf("chunk %d core length %d exceeds cap %d", i, len(chunk.CoreText()), maxSize)
		}
	}
}

func TestFixedStrategyRespectsTargetSize(t *testing.T) {
	tr := lectureTranscript()
	engine, err := NewEngine(Options{Strategy: StrategyFixed, TargetSize: 100, Overlap: 0})
	if err != nil {
		t.Fatal(err)
	}

	chunks, err := engine.Chunk(tr)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(chunks) < 3 {
		t.Fatalf("expected several chunks at target 100, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		// Single over-long segments are kept whole, but multi-segment chunks
		// must stay at or under target.
		if chunk.SourceSegmentRange[0] != chunk.SourceSegmentRange[1] && len(chunk.Text) > 100 {
			t.Errorf("chunk %d length %d exceeds target", i, len(chunk.Text))
		}
	}
}

func TestCoverageRoundTrip(t *testing.T) {
	tr := lectureTranscript()
	want := tr.Text()
	for _, strategy := range []Strategy{StrategySemantic, StrategySentence, StrategyFixed} {
		for _, overlap := range []int{0, 15, 40} {
			name := fmt.Sprintf("%s overlap %d", strategy, overlap)
			engine, err := NewEngine(Options{Strategy: strategy, TargetSize: 90, Overlap: overlap})
			if err != nil {
				t.Fatal(err)
			}
			chunks, err := engine.Chunk(tr)
			if err != nil {
				t.Fatalf("%s: Chunk() error = %v", name, err)
			}
			if got := reconstruct(chunks); got != want {
				t.Errorf("%s: round trip mismatch\n got: %q\nwant: %q", name, got, want)
			}
		}
	}
}

func TestChunkingIsDeterministic(t *testing.T) {
	tr := lectureTranscript()
	engine, err := NewEngine(Options{Strategy: StrategySemantic, TargetSize: 90, Overlap: 20, DocID: "talk"})
	if err != nil {
		t.Fatal(err)
	}

	first, err := engine.Chunk(tr)
	if err != nil {
		t.Fatal(err)
	}
	second, err := engine.Chunk(tr)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Text != second[i].Text || first[i].ID != second[i].ID {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestOverlapIsWordAlignedSuffix(t *testing.T) {
	tr := lectureTranscript()
	engine, err := NewEngine(Options{Strategy: StrategyFixed, TargetSize: 90, Overlap: 25})
	if err != nil {
		t.Fatal(err)
	}

	chunks, err := engine.Chunk(tr)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) < 2 {
		t.Fatal("need at least 2 chunks to check overlap")
	}
	for i := 1; i < len(chunks); i++ {
		chunk := chunks[i]
		if chunk.OverlapWithPrev == 0 {
			continue
		}
		prefix := chunk.Text[:chunk.OverlapWithPrev]
		if len(prefix) > 25 {
			t.Errorf("chunk %d overlap %d exceeds configured 25", i, len(prefix))
		}
		if !strings.HasSuffix(chunks[i-1].Text, prefix) {
			t.Errorf("chunk %d overlap %q is not a suffix of the previous chunk", i, prefix)
		}
		if strings.HasPrefix(prefix, " ") || strings.HasSuffix(prefix, " ") {
			t.Errorf("chunk %d overlap %q has ragged spacing", i, prefix)
		}
	}
}

func TestChunkLinksFormUnbrokenSequence(t *testing.T) {
	tr := lectureTranscript()
	engine, err := NewEngine(Options{Strategy: StrategySentence, TargetSize: 80, Overlap: 10, DocID: "lecture01"})
	if err != nil {
		t.Fatal(err)
	}

	chunks, err := engine.Chunk(tr)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) < 2 {
		t.Fatal("need at least 2 chunks to check links")
	}

	if chunks[0].PrevChunkID != "" {
		t.Error("first chunk must not have a prev link")
	}
	if chunks[len(chunks)-1].NextChunkID != "" {
		t.Error("last chunk must not have a next link")
	}
	for i := 0; i < len(chunks)-1; i++ {
		if chunks[i].NextChunkID != chunks[i+1].ID {
			t.Errorf("chunk %d next link %q != chunk %d id %q", i, chunks[i].NextChunkID, i+1, chunks[i+1].ID)
		}
		if chunks[i+1].PrevChunkID != chunks[i].ID {
			t.Errorf("chunk %d prev link broken", i+1)
		}
		if chunks[i].StartTime > chunks[i+1].StartTime {
			t.Errorf("chunk %d starts after chunk %d", i, i+1)
		}
	}
	if got := chunks[0].ID; got != "lecture01-chunk-0000" {
		t.Errorf("chunk id = %q, want lecture01-chunk-0000", got)
	}
}

func TestNewEngineValidatesOptions(t *testing.T) {
	cases := []Options{
		{Strategy: "paragraph", TargetSize: 100},
		{Strategy: StrategyFixed, TargetSize: 0},
		{Strategy: StrategyFixed, TargetSize: 100, Overlap: -1},
		{Strategy: StrategyFixed, TargetSize: 100, Overlap: 100},
	}
	for _, opts := range cases {
		if _, err := NewEngine(opts); err == nil {
			t.Errorf("NewEngine(%+v) accepted invalid options", opts)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	if got, err := ParseStrategy(" Semantic "); err != nil || got != StrategySemantic {
		t.Errorf("ParseStrategy(Semantic) = %v, %v", got, err)
	}
	if _, err := ParseStrategy("paragraph"); err == nil {
		t.Error("ParseStrategy should reject unknown values")
	}
}

func chunkTexts(chunks []*Chunk) []string {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	return texts
}
