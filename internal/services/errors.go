// Package services defines the error taxonomy shared by the external tool
// boundaries (audio extraction, transcription) and the batch scheduler.
//
// Failures are tagged with sentinel errors so the scheduler can classify them
// without string matching: unsupported and corrupt inputs are permanent and
// skip retry, transcription failures are transient and retried with backoff,
// and model-load failures abort the whole batch since no later file could
// succeed either.
package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFormat marks input files the pipeline cannot process.
	// Permanent; the file is skipped without retry.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrExtractionFailed marks audio extraction failures. Permanent; the
	// input is treated as corrupt.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrModelLoad marks transcription model load failures. Systemic; the
	// batch is aborted because no subsequent file could transcribe either.
	ErrModelLoad = errors.New("model load error")

	// ErrTranscription marks transcription failures. Transient; retried with
	// backoff up to the configured maximum.
	ErrTranscription = errors.New("transcription failed")

	// ErrInvariant marks internal invariant violations (chunks out of order,
	// cache corruption). The single file fails; the batch continues.
	ErrInvariant = errors.New("invariant violation")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTranscription
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether an error may succeed on a later attempt.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTranscription) && !errors.Is(err, ErrModelLoad)
}

// BatchFatal reports whether an error should abort the entire batch rather
// than fail a single file.
func BatchFatal(err error) bool {
	return errors.Is(err, ErrModelLoad)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
