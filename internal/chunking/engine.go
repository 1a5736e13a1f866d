package chunking

import (
	"errors"
	"fmt"
	"strings"

	"scribe/internal/transcript"
)

// pauseBreakSeconds is the gap between segments treated as a natural
// boundary by the semantic strategy.
const pauseBreakSeconds = 2.0

// Options configure one chunking run. A single Options value is built at
// batch start and shared read-only by every worker.
type Options struct {
	Strategy   Strategy
	TargetSize int // chars per chunk the strategies aim for
	Overlap    int // chars of trailing context copied into the next chunk
	// DocID namespaces chunk IDs; derived from the source file identity.
	DocID string
}

// Engine splits transcripts into chunks according to its options.
type Engine struct {
	opts Options
}

// NewEngine validates opts and returns an engine.
func NewEngine(opts Options) (*Engine, error) {
	switch opts.Strategy {
	case StrategySemantic, StrategySentence, StrategyFixed:
	default:
		return nil, fmt.Errorf("unknown chunking strategy %q", opts.Strategy)
	}
	if opts.TargetSize <= 0 {
		return nil, errors.New("chunk target size must be positive")
	}
	if opts.Overlap < 0 {
		return nil, errors.New("chunk overlap cannot be negative")
	}
	if opts.Overlap >= opts.TargetSize {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than target size %d", opts.Overlap, opts.TargetSize)
	}
	return &Engine{opts: opts}, nil
}

// Chunk splits t into ordered chunks. A transcript with zero segments yields
// zero chunks; a transcript shorter than the target size yields exactly one.
func (e *Engine) Chunk(t *transcript.Transcript) ([]*Chunk, error) {
	if t == nil || t.Empty() {
		return nil, nil
	}

	var ranges [][2]int
	switch e.opts.Strategy {
	case StrategyFixed:
		ranges = e.fixedRanges(t.Segments)
	case StrategySentence:
		ranges = e.sentenceRanges(t.Segments)
	case StrategySemantic:
		ranges = e.semanticRanges(t.Segments)
	default:
		return nil, fmt.Errorf("unknown chunking strategy %q", e.opts.Strategy)
	}

	return e.assemble(t.Segments, ranges), nil
}

// fixedRanges greedily accumulates segments until adding the next one would
// push the chunk past the target size.
func (e *Engine) fixedRanges(segments []transcript.Segment) [][2]int {
	var ranges [][2]int
	first := 0
	size := 0
	for i, seg := range segments {
		add := len(seg.Text)
		if size > 0 {
			add++ // joining space
		}
		if size > 0 && size+add > e.opts.TargetSize {
			ranges = append(ranges, [2]int{first, i - 1})
			first = i
			size = len(seg.Text)
			continue
		}
		size += add
	}
	return append(ranges, [2]int{first, len(segments) - 1})
}

// sentenceRanges accumulates whole segments and breaks after the first
// sentence boundary at or past the target size. Segments are never split.
func (e *Engine) sentenceRanges(segments []transcript.Segment) [][2]int {
	var ranges [][2]int
	first := 0
	size := 0
	for i, seg := range segments {
		if size > 0 {
			size++
		}
		size += len(seg.Text)
		if size >= e.opts.TargetSize && seg.EndsSentence() {
			ranges = append(ranges, [2]int{first, i})
			first = i + 1
			size = 0
		}
	}
	if first < len(segments) {
		ranges = append(ranges, [2]int{first, len(segments) - 1})
	}
	return ranges
}

// semanticRanges extends the sentence rule with natural-break detection:
// a discourse marker or a long pause opens a new chunk once the current one
// has a fifth of the target, and a hard cap of 20% over target stops a chunk
// from growing without bound when no boundary appears.
func (e *Engine) semanticRanges(segments []transcript.Segment) [][2]int {
	minSize := e.opts.TargetSize / 5
	maxSize := e.opts.TargetSize + e.opts.TargetSize/5

	var ranges [][2]int
	first := 0
	size := 0
	for i, seg := range segments {
		if size > 0 {
			naturalBreak := startsWithDiscourseMarker(seg.Text) ||
				seg.Start-segments[i-1].End > pauseBreakSeconds
			if (naturalBreak && size >= minSize) || size+1+len(seg.Text) > maxSize {
				ranges = append(ranges, [2]int{first, i - 1})
				first = i
				size = 0
			}
		}

		if size > 0 {
			size++
		}
		size += len(seg.Text)
		if size >= e.opts.TargetSize && seg.EndsSentence() {
			ranges = append(ranges, [2]int{first, i})
			first = i + 1
			size = 0
		}
	}
	if first < len(segments) {
		ranges = append(ranges, [2]int{first, len(segments) - 1})
	}
	return ranges
}

// assemble materializes chunks from segment ranges: joins text, applies the
// overlap prefix, stamps IDs, and wires prev/next links.
func (e *Engine) assemble(segments []transcript.Segment, ranges [][2]int) []*Chunk {
	chunks := make([]*Chunk, 0, len(ranges))
	for i, r := range ranges {
		parts := make([]string, 0, r[1]-r[0]+1)
		for _, seg := range segments[r[0] : r[1]+1] {
			parts = append(parts, strings.TrimSpace(seg.Text))
		}
		core := strings.Join(parts, " ")

		text := core
		overlapLen := 0
		if i > 0 && e.opts.Overlap > 0 {
			if prefix := overlapSuffix(chunks[i-1].Text, e.opts.Overlap); prefix != "" {
				text = prefix + " " + core
				overlapLen = len(prefix)
			}
		}

		chunks = append(chunks, &Chunk{
			ID:                 ChunkID(e.opts.DocID, i),
			StartTime:          segments[r[0]].Start,
			EndTime:            segments[r[1]].End,
			Text:               text,
			SourceSegmentRange: r,
			OverlapWithPrev:    overlapLen,
		})
	}

	for i, chunk := range chunks {
		if i > 0 {
			chunk.PrevChunkID = chunks[i-1].ID
		}
		if i < len(chunks)-1 {
			chunk.NextChunkID = chunks[i+1].ID
		}
	}
	return chunks
}

// overlapSuffix returns the trailing word-aligned run of text no longer than
// maxChars. It never cuts a word in half: when no whole word fits, the
// overlap is empty.
func overlapSuffix(text string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	if len(text) <= maxChars {
		return text
	}
	tail := text[len(text)-maxChars:]
	if text[len(text)-maxChars-1] == ' ' {
		return tail
	}
	idx := strings.IndexByte(tail, ' ')
	if idx < 0 {
		return ""
	}
	return strings.TrimLeft(tail[idx+1:], " ")
}
