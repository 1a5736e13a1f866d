package media

import (
	"fmt"
	"os"
	"strings"

	"scribe/internal/services"
)

const (
	maxFileSizeBytes = int64(10) << 30 // 10 GiB

	// warnSizeBytes triggers an advisory for inputs likely to need
	// significant memory during transcription.
	warnSizeBytes = int64(1) << 30
)

// ValidationResult reports whether a file can be processed, plus advisory
// warnings that do not block processing.
type ValidationResult struct {
	Warnings []string
}

// Validate checks that a source file exists, has a supported format, and is
// within size limits. Errors are tagged with the services taxonomy so the
// scheduler can classify them.
func Validate(path string) (ValidationResult, error) {
	var result ValidationResult

	info, err := os.Stat(path)
	if err != nil {
		return result, services.Wrap(services.ErrExtractionFailed, "validate", "stat", "", err)
	}
	if info.IsDir() {
		return result, services.Wrap(services.ErrUnsupportedFormat, "validate", "", fmt.Sprintf("%s is a directory", path), nil)
	}
	if !IsSupported(path) {
		return result, services.Wrap(services.ErrUnsupportedFormat, "validate", "",
			fmt.Sprintf("unsupported extension %q (supported: %s)",
				normalizeExt(path), strings.Join(SupportedExtensions(), " ")), nil)
	}
	if info.Size() == 0 {
		return result, services.Wrap(services.ErrExtractionFailed, "validate", "", "file is empty", nil)
	}
	if info.Size() > maxFileSizeBytes {
		return result, services.Wrap(services.ErrExtractionFailed, "validate", "",
			fmt.Sprintf("file too large: %d bytes", info.Size()), nil)
	}

	if info.Size() > warnSizeBytes {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("large file (%.1f GiB) may require significant memory", float64(info.Size())/float64(1<<30)))
	}
	return result, nil
}
