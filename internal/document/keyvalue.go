package document

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"scribe/internal/chunking"
)

// The key-value encoding mirrors the document model field for field so
// programmatic consumers can rely on it as a stable contract.

type chunkPayload struct {
	ID                 string   `json:"chunk_id"`
	StartTime          float64  `json:"start_time"`
	EndTime            float64  `json:"end_time"`
	Text               string   `json:"text"`
	SourceSegmentRange [2]int   `json:"source_segment_range"`
	OverlapWithPrev    int      `json:"overlap_with_prev"`
	QualityScore       float64  `json:"quality_score"`
	Keywords           []string `json:"keywords,omitempty"`
	Topics             []string `json:"topics,omitempty"`
	Entities           []string `json:"entities,omitempty"`
	PrevChunkID        string   `json:"prev_chunk_id,omitempty"`
	NextChunkID        string   `json:"next_chunk_id,omitempty"`

	// Derived convenience fields for downstream consumers; ignored on decode.
	WordCount int `json:"word_count"`
	CharCount int `json:"char_count"`
}

type documentPayload struct {
	FilePath      string         `json:"file_path"`
	Duration      float64        `json:"duration"`
	Model         string         `json:"model"`
	Language      string         `json:"language"`
	TranscribedAt time.Time      `json:"transcribed_at"`
	Summary       string         `json:"summary"`
	Chunks        []chunkPayload `json:"chunks"`
}

// EncodeKeyValue serializes doc as indented JSON.
func EncodeKeyValue(doc *Document) ([]byte, error) {
	payload := documentPayload{
		FilePath:      doc.FilePath,
		Duration:      doc.Duration,
		Model:         doc.Model,
		Language:      doc.Language,
		TranscribedAt: doc.TranscribedAt,
		Summary:       doc.Summary,
		Chunks:        make([]chunkPayload, 0, len(doc.Chunks)),
	}
	for _, chunk := range doc.Chunks {
		payload.Chunks = append(payload.Chunks, chunkPayload{
			ID:                 chunk.ID,
			StartTime:          chunk.StartTime,
			EndTime:            chunk.EndTime,
			Text:               chunk.Text,
			SourceSegmentRange: chunk.SourceSegmentRange,
			OverlapWithPrev:    chunk.OverlapWithPrev,
			QualityScore:       chunk.QualityScore,
			Keywords:           chunk.Keywords,
			Topics:             chunk.Topics,
			Entities:           chunk.Entities,
			PrevChunkID:        chunk.PrevChunkID,
			NextChunkID:        chunk.NextChunkID,
			WordCount:          len(strings.Fields(chunk.Text)),
			CharCount:          len(chunk.Text),
		})
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeKeyValue parses JSON produced by EncodeKeyValue back into a Document.
func DecodeKeyValue(data []byte) (*Document, error) {
	var payload documentPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	doc := &Document{
		FilePath:      payload.FilePath,
		Duration:      payload.Duration,
		Model:         payload.Model,
		Language:      payload.Language,
		TranscribedAt: payload.TranscribedAt,
		Summary:       payload.Summary,
		Chunks:        make([]*chunking.Chunk, 0, len(payload.Chunks)),
	}
	for _, chunk := range payload.Chunks {
		doc.Chunks = append(doc.Chunks, &chunking.Chunk{
			ID:                 chunk.ID,
			StartTime:          chunk.StartTime,
			EndTime:            chunk.EndTime,
			Text:               chunk.Text,
			SourceSegmentRange: chunk.SourceSegmentRange,
			OverlapWithPrev:    chunk.OverlapWithPrev,
			QualityScore:       chunk.QualityScore,
			Keywords:           chunk.Keywords,
			Topics:             chunk.Topics,
			Entities:           chunk.Entities,
			PrevChunkID:        chunk.PrevChunkID,
			NextChunkID:        chunk.NextChunkID,
		})
	}
	return doc, nil
}
