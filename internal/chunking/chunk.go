package chunking

import (
	"fmt"
	"strings"
)

// Chunk is one retrieval-sized unit of transcript text. The chunking engine
// creates chunks; the quality scorer and metadata extractor fill in
// QualityScore, Topics, and Entities before document assembly.
type Chunk struct {
	ID        string
	StartTime float64
	EndTime   float64
	// Text is the chunk body, including the overlap prefix carried from the
	// previous chunk.
	Text string
	// SourceSegmentRange holds the inclusive [first, last] indexes of the
	// transcript segments this chunk spans.
	SourceSegmentRange [2]int
	// OverlapWithPrev counts the characters at the head of Text that repeat
	// the tail of the previous chunk.
	OverlapWithPrev int
	QualityScore    float64
	Keywords        []string
	Topics          []string
	Entities        []string
	PrevChunkID     string
	NextChunkID     string
}

// CoreText returns the chunk text without the overlap prefix. Joining the
// core texts of a document's chunks with single spaces reconstructs the
// transcript text exactly.
func (c *Chunk) CoreText() string {
	if c.OverlapWithPrev <= 0 {
		return c.Text
	}
	core := c.Text[c.OverlapWithPrev:]
	return strings.TrimPrefix(core, " ")
}

// ChunkID derives the stable identifier for a chunk from the owning document
// identity and the chunk's position.
func ChunkID(docID string, index int) string {
	if docID == "" {
		return fmt.Sprintf("chunk-%04d", index)
	}
	return fmt.Sprintf("%s-chunk-%04d", docID, index)
}
