package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"scribe/internal/textutil"
)

// FormatsFor expands a config value into concrete formats; "both" selects
// the text and key-value encodings together.
func FormatsFor(value string) ([]Format, error) {
	if strings.EqualFold(strings.TrimSpace(value), "both") {
		return []Format{FormatStructuredText, FormatKeyValue}, nil
	}
	format, err := ParseFormat(value)
	if err != nil {
		return nil, err
	}
	return []Format{format}, nil
}

// Sink writes assembled documents to the output directory, one file per
// requested format, named after the source media file.
type Sink struct {
	dir     string
	formats []Format
}

// NewSink creates a sink writing to dir in the given formats.
func NewSink(dir string, formats []Format) *Sink {
	return &Sink{dir: dir, formats: formats}
}

// Write encodes doc in every configured format and returns the paths
// written.
func (s *Sink) Write(doc *Document) ([]string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	base := filepath.Base(doc.FilePath)
	stem := textutil.SanitizeFileName(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" {
		stem = "transcript"
	}

	var paths []string
	for _, format := range s.formats {
		var data []byte
		var err error
		switch format {
		case FormatKeyValue:
			data, err = EncodeKeyValue(doc)
		case FormatStructuredText:
			data, err = EncodeStructuredText(doc)
		default:
			err = fmt.Errorf("unknown document format %q", format)
		}
		if err != nil {
			return paths, err
		}

		path := filepath.Join(s.dir, stem+format.Extension())
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write document: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
