package document

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"scribe/internal/chunking"
	"scribe/internal/services"
)

func sampleChunks() []*chunking.Chunk {
	return []*chunking.Chunk{
		{
			ID:                 "talk-chunk-0000",
			StartTime:          0,
			EndTime:            12.5,
			Text:               "Hello world. This is a test.",
			SourceSegmentRange: [2]int{0, 1},
			QualityScore:       0.8444444444444444,
			Keywords:           []string{"hello", "world"},
			Topics:             []string{"education"},
			Entities:           []string{"March 5, 2024"},
			NextChunkID:        "talk-chunk-0001",
		},
		{
			ID:                 "talk-chunk-0001",
			StartTime:          12.5,
			EndTime:            20,
			Text:               "test. Goodbye now.",
			SourceSegmentRange: [2]int{2, 2},
			OverlapWithPrev:    5,
			QualityScore:       0.95,
			Keywords:           []string{"goodbye"},
			PrevChunkID:        "talk-chunk-0000",
		},
	}
}

func sampleDocument() *Document {
	doc, err := Assemble(SourceMeta{
		FilePath:      "/media/talk.mp4",
		Duration:      20,
		Model:         "base",
		Language:      "en",
		TranscribedAt: time.Date(2026, 8, 30, 10, 30, 0, 123456789, time.UTC),
	}, sampleChunks())
	if err != nil {
		panic(err)
	}
	return doc
}

func TestAssembleBuildsSummary(t *testing.T) {
	doc := sampleDocument()
	// First sentence is short, so the second is folded in.
	if doc.Summary != "Hello world. This is a test." {
		t.Errorf("summary = %q", doc.Summary)
	}
	if got := doc.Text(); got != "Hello world. This is a test. Goodbye now." {
		t.Errorf("text = %q", got)
	}
}

func TestAssembleSummaryCapped(t *testing.T) {
	long := strings.Repeat("word ", 100) + "end"
	doc, err := Assemble(SourceMeta{}, []*chunking.Chunk{{ID: "c0", Text: long}})
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Summary) > 203 {
		t.Errorf("summary length %d exceeds cap", len(doc.Summary))
	}
	if !strings.HasSuffix(doc.Summary, "...") {
		t.Errorf("capped summary should end with ellipsis, got %q", doc.Summary)
	}
}

func TestAssembleRejectsUnorderedChunks(t *testing.T) {
	chunks := sampleChunks()
	chunks[0].StartTime, chunks[1].StartTime = 30, 0

	_, err := Assemble(SourceMeta{}, chunks)
	if !errors.Is(err, services.ErrInvariant) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}
}

func TestAssembleRejectsBrokenLinks(t *testing.T) {
	chunks := sampleChunks()
	chunks[0].NextChunkID = "somewhere-else"

	_, err := Assemble(SourceMeta{}, chunks)
	if !errors.Is(err, services.ErrInvariant) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}
}

func assertDocumentsEqual(t *testing.T, got, want *Document) {
	t.Helper()
	if got.FilePath != want.FilePath || got.Model != want.Model || got.Language != want.Language {
		t.Errorf("metadata mismatch: got %+v", got)
	}
	if got.Duration != want.Duration {
		t.Errorf("duration = %v, want %v", got.Duration, want.Duration)
	}
	if !got.TranscribedAt.Equal(want.TranscribedAt) {
		t.Errorf("transcribedAt = %v, want %v", got.TranscribedAt, want.TranscribedAt)
	}
	if got.Summary != want.Summary {
		t.Errorf("summary = %q, want %q", got.Summary, want.Summary)
	}
	if len(got.Chunks) != len(want.Chunks) {
		t.Fatalf("chunk count = %d, want %d", len(got.Chunks), len(want.Chunks))
	}
	for i := range want.Chunks {
		g, w := *got.Chunks[i], *want.Chunks[i]
		if !reflect.DeepEqual(g, w) {
			t.Errorf("chunk %d mismatch:\n got %+v\nwant %+v", i, g, w)
		}
	}
}

func TestKeyValueRoundTrip(t *testing.T) {
	doc := sampleDocument()

	data, err := EncodeKeyValue(doc)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeKeyValue(data)
	if err != nil {
		t.Fatal(err)
	}
	assertDocumentsEqual(t, decoded, doc)
}

func TestStructuredTextRoundTrip(t *testing.T) {
	doc := sampleDocument()

	data, err := EncodeStructuredText(doc)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeStructuredText(data)
	if err != nil {
		t.Fatal(err)
	}
	assertDocumentsEqual(t, decoded, doc)
}

func TestStructuredTextPreservesExactTimestamps(t *testing.T) {
	chunks := []*chunking.Chunk{{
		ID:        "c0",
		StartTime: 0.30000000000000004,
		EndTime:   1817.9399999999998,
		Text:      "precision matters",
	}}
	doc, err := Assemble(SourceMeta{Duration: 1817.9399999999998}, chunks)
	if err != nil {
		t.Fatal(err)
	}

	data, err := EncodeStructuredText(doc)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeStructuredText(data)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Chunks[0].StartTime != doc.Chunks[0].StartTime {
		t.Errorf("start time drifted: %v", decoded.Chunks[0].StartTime)
	}
	if decoded.Duration != doc.Duration {
		t.Errorf("duration drifted: %v", decoded.Duration)
	}
}

func TestStructuredTextBodyWithFieldLikeLine(t *testing.T) {
	chunks := []*chunking.Chunk{{
		ID:   "c0",
		Text: "Remember. Quality: not a metadata line here.",
	}}
	doc, err := Assemble(SourceMeta{}, chunks)
	if err != nil {
		t.Fatal(err)
	}

	data, err := EncodeStructuredText(doc)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeStructuredText(data)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Chunks[0].Text != chunks[0].Text {
		t.Errorf("body = %q, want %q", decoded.Chunks[0].Text, chunks[0].Text)
	}
}

func TestDecodeStructuredTextRejectsForeignData(t *testing.T) {
	if _, err := DecodeStructuredText([]byte("just some file")); err == nil {
		t.Error("expected error for missing header")
	}
}

func TestDocumentTopicsUnion(t *testing.T) {
	doc := sampleDocument()
	doc.Chunks[1].Topics = []string{"science", "education"}

	got := doc.Topics()
	want := []string{"education", "science"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Topics() = %v, want %v", got, want)
	}
}

func TestFormatsFor(t *testing.T) {
	both, err := FormatsFor("both")
	if err != nil || len(both) != 2 {
		t.Errorf("FormatsFor(both) = %v, %v", both, err)
	}
	if _, err := FormatsFor("yaml"); err == nil {
		t.Error("FormatsFor should reject unknown formats")
	}
}

func TestSinkWritesBothFormats(t *testing.T) {
	dir := t.TempDir()
	doc := sampleDocument()

	sink := NewSink(dir, []Format{FormatStructuredText, FormatKeyValue})
	paths, err := sink.Write(doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("wrote %d files, want 2", len(paths))
	}
	if filepath.Base(paths[0]) != "talk.md" || filepath.Base(paths[1]) != "talk.json" {
		t.Errorf("paths = %v", paths)
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing output %s: %v", path, err)
		}
	}

	decoded, err := DecodeKeyValue(mustRead(t, paths[1]))
	if err != nil {
		t.Fatal(err)
	}
	assertDocumentsEqual(t, decoded, doc)
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}
