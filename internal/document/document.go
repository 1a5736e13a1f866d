package document

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"scribe/internal/chunking"
)

// Format selects a document encoding. Like the chunking strategies this is a
// closed set dispatched through a switch.
type Format string

const (
	// FormatStructuredText is the human-readable markdown-style encoding.
	FormatStructuredText Format = "text"
	// FormatKeyValue is the JSON encoding for programmatic consumers.
	FormatKeyValue Format = "json"
)

// ParseFormat converts a config string into a Format.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatStructuredText:
		return FormatStructuredText, nil
	case FormatKeyValue:
		return FormatKeyValue, nil
	default:
		return "", fmt.Errorf("unknown document format %q", value)
	}
}

// Extension returns the output file extension for the format.
func (f Format) Extension() string {
	if f == FormatKeyValue {
		return ".json"
	}
	return ".md"
}

// SourceMeta carries the file-level facts the assembler folds into a
// document.
type SourceMeta struct {
	FilePath      string
	Duration      float64
	Model         string
	Language      string
	TranscribedAt time.Time
}

// Document is the final per-file artifact: ordered chunks plus file-level
// metadata. Chunks are not mutated after assembly.
type Document struct {
	FilePath      string
	Duration      float64
	Model         string
	Language      string
	TranscribedAt time.Time
	Chunks        []*chunking.Chunk
	Summary       string
}

// Text returns the full transcript text reconstructed from chunk cores.
func (d *Document) Text() string {
	parts := make([]string, 0, len(d.Chunks))
	for _, chunk := range d.Chunks {
		parts = append(parts, chunk.CoreText())
	}
	return strings.Join(parts, " ")
}

// Topics returns the union of chunk topic tags in sorted order.
func (d *Document) Topics() []string {
	seen := make(map[string]struct{})
	var topics []string
	for _, chunk := range d.Chunks {
		for _, topic := range chunk.Topics {
			if _, dup := seen[topic]; dup {
				continue
			}
			seen[topic] = struct{}{}
			topics = append(topics, topic)
		}
	}
	sort.Strings(topics)
	return topics
}

// AverageQuality returns the mean chunk quality score, 0 for an empty
// document.
func (d *Document) AverageQuality() float64 {
	if len(d.Chunks) == 0 {
		return 0
	}
	var total float64
	for _, chunk := range d.Chunks {
		total += chunk.QualityScore
	}
	return total / float64(len(d.Chunks))
}
