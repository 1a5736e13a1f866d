package document

import (
	"fmt"
	"strings"

	"scribe/internal/chunking"
	"scribe/internal/services"
)

// summaryMaxChars bounds the document summary length.
const summaryMaxChars = 200

// Assemble combines file-level metadata with scored, tagged chunks into a
// Document. It performs no I/O; the only failure mode is input validation:
// chunks out of startTime order or with broken links indicate an upstream
// defect and fail this file with an invariant violation.
func Assemble(meta SourceMeta, chunks []*chunking.Chunk) (*Document, error) {
	if err := validateOrder(chunks); err != nil {
		return nil, services.Wrap(services.ErrInvariant, "assemble", "validate chunks", err.Error(), nil)
	}

	doc := &Document{
		FilePath:      meta.FilePath,
		Duration:      meta.Duration,
		Model:         meta.Model,
		Language:      meta.Language,
		TranscribedAt: meta.TranscribedAt,
		Chunks:        chunks,
	}
	doc.Summary = summarize(doc.Text())
	return doc, nil
}

func validateOrder(chunks []*chunking.Chunk) error {
	for i, chunk := range chunks {
		if i == 0 {
			if chunk.PrevChunkID != "" {
				return fmt.Errorf("first chunk %s carries a prev link", chunk.ID)
			}
			continue
		}
		prev := chunks[i-1]
		if chunk.StartTime < prev.StartTime {
			return fmt.Errorf("chunk %s starts at %v before predecessor %s at %v",
				chunk.ID, chunk.StartTime, prev.ID, prev.StartTime)
		}
		if prev.NextChunkID != chunk.ID || chunk.PrevChunkID != prev.ID {
			return fmt.Errorf("link break between chunks %s and %s", prev.ID, chunk.ID)
		}
	}
	if n := len(chunks); n > 0 && chunks[n-1].NextChunkID != "" {
		return fmt.Errorf("last chunk %s carries a next link", chunks[n-1].ID)
	}
	return nil
}

// summarize takes the first sentence of text, extending to the second when
// the first is very short, capped at summaryMaxChars.
func summarize(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		if len(text) > summaryMaxChars {
			return text[:summaryMaxChars] + "..."
		}
		return text
	}

	summary := sentences[0]
	if len(summary) < 50 && len(sentences) > 1 {
		summary += " " + sentences[1]
	}
	if len(summary) > summaryMaxChars {
		return summary[:summaryMaxChars] + "..."
	}
	return summary
}

func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i, r := range text {
		if r != '.' && r != '?' && r != '!' {
			continue
		}
		sentence := strings.TrimSpace(text[start : i+1])
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = i + 1
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}
