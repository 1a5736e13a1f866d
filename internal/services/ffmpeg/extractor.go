// Package ffmpeg wraps the ffmpeg and ffprobe binaries for audio extraction
// and duration probing.
package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"scribe/internal/services"
)

const (
	// DefaultBinary is the ffmpeg executable name resolved via PATH.
	DefaultBinary = "ffmpeg"

	// DefaultProbeBinary is the ffprobe executable name resolved via PATH.
	DefaultProbeBinary = "ffprobe"
)

// Extractor converts media files into normalized audio artifacts: mono
// 16 kHz signed 16-bit PCM WAV, the input format the transcriber expects.
type Extractor struct {
	binary        string
	probeBinary   string
	commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewExtractor creates an ffmpeg-backed extractor.
func NewExtractor(binary string) *Extractor {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Extractor{
		binary:      binary,
		probeBinary: DefaultProbeBinary,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *Extractor) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	e.commandRunner = runner
}

// ExtractAudio extracts the audio stream from source into dest as mono
// 16 kHz pcm_s16le WAV. Failures are tagged ErrExtractionFailed; extraction
// errors are treated as permanent (corrupt or unreadable input).
func (e *Extractor) ExtractAudio(ctx context.Context, source, dest string) error {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
	if output, err := e.run(ctx, e.binary, args...); err != nil {
		detail := strings.TrimSpace(string(output))
		return services.Wrap(services.ErrExtractionFailed, "extract", "ffmpeg", detail, err)
	}
	return nil
}

// Duration probes the source duration in seconds. A probe failure returns 0
// without error; duration is advisory metadata, not a processing requirement.
func (e *Extractor) Duration(ctx context.Context, source string) float64 {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		source,
	}
	output, err := e.run(ctx, e.probeBinary, args...)
	if err != nil {
		return 0
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil || seconds < 0 {
		return 0
	}
	return seconds
}

func (e *Extractor) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if e.commandRunner != nil {
		return e.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("%s: %w", name, err)
	}
	return output, nil
}
