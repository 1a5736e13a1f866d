package document

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"scribe/internal/chunking"
)

// The structured text encoding is a markdown-style rendering: a metadata
// header block, then one section per chunk with its time range, quality
// score, tags, and body. Field values are written so the decoder can read
// them back exactly; entities are pipe-separated because dates legitimately
// contain commas.

const (
	textHeader   = "# Transcription Document"
	chunkHeading = "## Chunk "
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// EncodeStructuredText renders doc in the structured text format.
func EncodeStructuredText(doc *Document) ([]byte, error) {
	var b strings.Builder
	b.WriteString(textHeader + "\n\n")
	fmt.Fprintf(&b, "File: %s\n", doc.FilePath)
	fmt.Fprintf(&b, "Duration: %s\n", formatFloat(doc.Duration))
	fmt.Fprintf(&b, "Model: %s\n", doc.Model)
	fmt.Fprintf(&b, "Language: %s\n", doc.Language)
	fmt.Fprintf(&b, "Transcribed: %s\n", doc.TranscribedAt.Format(time.RFC3339Nano))
	fmt.Fprintf(&b, "Summary: %s\n", doc.Summary)

	for _, chunk := range doc.Chunks {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s%s\n", chunkHeading, chunk.ID)
		fmt.Fprintf(&b, "Time: %s - %s\n", formatFloat(chunk.StartTime), formatFloat(chunk.EndTime))
		fmt.Fprintf(&b, "Segments: %d - %d\n", chunk.SourceSegmentRange[0], chunk.SourceSegmentRange[1])
		fmt.Fprintf(&b, "Overlap: %d\n", chunk.OverlapWithPrev)
		fmt.Fprintf(&b, "Quality: %s\n", formatFloat(chunk.QualityScore))
		if len(chunk.Keywords) > 0 {
			fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(chunk.Keywords, ", "))
		}
		if len(chunk.Topics) > 0 {
			fmt.Fprintf(&b, "Topics: %s\n", strings.Join(chunk.Topics, ", "))
		}
		if len(chunk.Entities) > 0 {
			fmt.Fprintf(&b, "Entities: %s\n", strings.Join(chunk.Entities, " | "))
		}
		b.WriteString("\n")
		b.WriteString(chunk.Text)
		b.WriteString("\n")
	}
	return []byte(b.String()), nil
}

// DecodeStructuredText parses the structured text format back into a
// Document. Chunk links are rebuilt from section order.
func DecodeStructuredText(data []byte) (*Document, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != textHeader {
		return nil, fmt.Errorf("decode document: missing %q header", textHeader)
	}

	doc := &Document{}
	var current *chunking.Chunk
	var body []string

	flush := func() {
		if current == nil {
			return
		}
		current.Text = strings.TrimSpace(strings.Join(body, "\n"))
		doc.Chunks = append(doc.Chunks, current)
		current = nil
		body = nil
	}

	inMeta := false
	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, chunkHeading) {
			flush()
			current = &chunking.Chunk{ID: strings.TrimSpace(strings.TrimPrefix(line, chunkHeading))}
			inMeta = true
			continue
		}

		key, value, isField := strings.Cut(line, ": ")

		if current == nil {
			if !isField {
				continue
			}
			if err := setDocumentField(doc, key, value); err != nil {
				return nil, err
			}
			continue
		}

		if inMeta {
			if strings.TrimSpace(line) == "" {
				inMeta = false
				continue
			}
			if isField {
				if ok, err := setChunkField(current, key, value); err != nil {
					return nil, err
				} else if ok {
					continue
				}
			}
			inMeta = false
		}
		body = append(body, line)
	}
	flush()
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	for i, chunk := range doc.Chunks {
		if i > 0 {
			chunk.PrevChunkID = doc.Chunks[i-1].ID
			doc.Chunks[i-1].NextChunkID = chunk.ID
		}
	}
	return doc, nil
}

func setDocumentField(doc *Document, key, value string) error {
	var err error
	switch key {
	case "File":
		doc.FilePath = value
	case "Duration":
		doc.Duration, err = strconv.ParseFloat(value, 64)
	case "Model":
		doc.Model = value
	case "Language":
		doc.Language = value
	case "Transcribed":
		doc.TranscribedAt, err = time.Parse(time.RFC3339Nano, value)
	case "Summary":
		doc.Summary = value
	}
	if err != nil {
		return fmt.Errorf("decode document field %s: %w", key, err)
	}
	return nil
}

// setChunkField applies a metadata line to the chunk being parsed. It
// reports false for lines that are not chunk metadata, which ends the
// metadata block and starts the body.
func setChunkField(chunk *chunking.Chunk, key, value string) (bool, error) {
	var err error
	switch key {
	case "Time":
		var from, to string
		from, to, _ = strings.Cut(value, " - ")
		if chunk.StartTime, err = strconv.ParseFloat(strings.TrimSpace(from), 64); err == nil {
			chunk.EndTime, err = strconv.ParseFloat(strings.TrimSpace(to), 64)
		}
	case "Segments":
		var from, to string
		from, to, _ = strings.Cut(value, " - ")
		if chunk.SourceSegmentRange[0], err = strconv.Atoi(strings.TrimSpace(from)); err == nil {
			chunk.SourceSegmentRange[1], err = strconv.Atoi(strings.TrimSpace(to))
		}
	case "Overlap":
		chunk.OverlapWithPrev, err = strconv.Atoi(value)
	case "Quality":
		chunk.QualityScore, err = strconv.ParseFloat(value, 64)
	case "Keywords":
		chunk.Keywords = splitList(value, ", ")
	case "Topics":
		chunk.Topics = splitList(value, ", ")
	case "Entities":
		chunk.Entities = splitList(value, " | ")
	default:
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("decode chunk field %s: %w", key, err)
	}
	return true, nil
}

func splitList(value, sep string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
