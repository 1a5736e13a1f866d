// Package whisper invokes the Whisper CLI for speech-to-text and parses its
// JSON output into the transcript domain model.
package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"scribe/internal/resources"
	"scribe/internal/services"
	"scribe/internal/transcript"
)

// DefaultBinary is the whisper executable name resolved via PATH.
const DefaultBinary = "whisper"

// Config holds the transcriber invocation settings.
type Config struct {
	Binary   string
	Language string
	// OutputDir receives whisper's JSON result files; a temp dir when empty.
	OutputDir string
}

// Service transcribes normalized audio artifacts with the Whisper CLI.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewService creates a whisper-backed transcription service.
func NewService(cfg Config) *Service {
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	s.commandRunner = runner
}

// Transcribe runs the model tier against audioPath and returns the parsed
// transcript. Model-load problems are tagged ErrModelLoad so the scheduler
// aborts the batch; other failures are tagged ErrTranscription and retried.
func (s *Service) Transcribe(ctx context.Context, audioPath string, tier resources.Tier) (*transcript.Transcript, error) {
	outputDir := s.cfg.OutputDir
	if outputDir == "" {
		tmp, err := os.MkdirTemp("", "scribe-whisper-*")
		if err != nil {
			return nil, services.Wrap(services.ErrTranscription, "transcribe", "mkdir", "", err)
		}
		defer os.RemoveAll(tmp)
		outputDir = tmp
	}

	args := []string{
		audioPath,
		"--model", string(tier),
		"--device", "cpu",
		"--output_format", "json",
		"--output_dir", outputDir,
		"--verbose", "False",
	}
	if s.cfg.Language != "" {
		args = append(args, "--language", s.cfg.Language)
	}

	output, err := s.run(ctx, s.cfg.Binary, args...)
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if isModelLoadFailure(detail) {
			return nil, services.Wrap(services.ErrModelLoad, "transcribe", "whisper", detail, err)
		}
		return nil, services.Wrap(services.ErrTranscription, "transcribe", "whisper", detail, err)
	}

	resultPath := filepath.Join(outputDir, jsonName(audioPath))
	return ParseResultFile(resultPath)
}

// isModelLoadFailure recognizes the CLI's model download/load error text.
func isModelLoadFailure(output string) bool {
	lowered := strings.ToLower(output)
	for _, marker := range []string{"failed to load model", "checkpoint", "sha256 checksum does not", "out of memory"} {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

func jsonName(audioPath string) string {
	base := filepath.Base(audioPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
}

// resultFile mirrors the whisper CLI JSON output shape.
type resultFile struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start      float64 `json:"start"`
		End        float64 `json:"end"`
		Text       string  `json:"text"`
		AvgLogProb float64 `json:"avg_logprob"`
	} `json:"segments"`
}

// ParseResultFile reads a whisper JSON result and converts it into a
// Transcript. Segment confidence is derived from the average log
// probability, clamped into [0, 1].
func ParseResultFile(path string) (*transcript.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrTranscription, "transcribe", "read result", "", err)
	}
	return ParseResult(data)
}

// ParseResult converts raw whisper JSON into a Transcript.
func ParseResult(data []byte) (*transcript.Transcript, error) {
	var parsed resultFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, services.Wrap(services.ErrTranscription, "transcribe", "parse result", "", err)
	}

	result := &transcript.Transcript{Language: parsed.Language}
	for _, seg := range parsed.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		result.Segments = append(result.Segments, transcript.Segment{
			Start:      seg.Start,
			End:        seg.End,
			Text:       text,
			Confidence: confidenceFromLogProb(seg.AvgLogProb),
		})
	}
	if n := len(result.Segments); n > 0 {
		result.SourceDuration = result.Segments[n-1].End
	}
	return result, nil
}

func confidenceFromLogProb(logProb float64) float64 {
	if logProb >= 0 {
		return 1
	}
	confidence := math.Exp(logProb)
	if confidence < 0 {
		return 0
	}
	return confidence
}

func (s *Service) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("%s: %w", name, err)
	}
	return output, nil
}
