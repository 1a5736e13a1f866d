package docmeta

import "scribe/internal/chunking"

// DefaultKeywordLimit caps how many keywords each chunk carries.
const DefaultKeywordLimit = 10

// Metadata is the full extraction result for one piece of text.
type Metadata struct {
	Keywords []string
	Entities []string
	Topics   []string
}

// Extractor bundles the extraction heuristics behind one configuration.
type Extractor struct {
	keywordLimit    int
	topicMinOverlap int
}

// NewExtractor returns an extractor; non-positive limits fall back to the
// defaults.
func NewExtractor(keywordLimit, topicMinOverlap int) *Extractor {
	if keywordLimit <= 0 {
		keywordLimit = DefaultKeywordLimit
	}
	if topicMinOverlap <= 0 {
		topicMinOverlap = DefaultTopicMinOverlap
	}
	return &Extractor{keywordLimit: keywordLimit, topicMinOverlap: topicMinOverlap}
}

// Extract derives keywords, entities, and topics from text.
func (e *Extractor) Extract(text string) Metadata {
	return Metadata{
		Keywords: Keywords(text, e.keywordLimit),
		Entities: Entities(text),
		Topics:   Topics(text, e.topicMinOverlap),
	}
}

// Annotate runs extraction over each chunk's core text and stores the result
// on the chunk. Core text keeps the overlap prefix from double-counting
// terms shared with the previous chunk.
func (e *Extractor) Annotate(chunks []*chunking.Chunk) {
	for _, chunk := range chunks {
		meta := e.Extract(chunk.CoreText())
		chunk.Keywords = meta.Keywords
		chunk.Entities = meta.Entities
		chunk.Topics = meta.Topics
	}
}
