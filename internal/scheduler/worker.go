package scheduler

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"scribe/internal/chunking"
	"scribe/internal/docmeta"
	"scribe/internal/document"
	"scribe/internal/ledger"
	"scribe/internal/logging"
	"scribe/internal/media"
	"scribe/internal/quality"
	"scribe/internal/resources"
	"scribe/internal/services"
	"scribe/internal/textutil"
	"scribe/internal/transcript"
)

type eventKind int

const (
	eventStage eventKind = iota
	eventDone
	eventFailed
)

type workerEvent struct {
	kind       eventKind
	file       *ledger.File
	from, to   ledger.Status
	doc        *document.Document
	outputPath string
	reason     string
	attempts   int
	err        error
	fatal      bool
}

// processFile runs the whole pipeline for one file and reports the outcome
// over events. Every error is caught here at the worker boundary; nothing
// propagates upward except through the event channel.
func (s *Scheduler) processFile(ctx context.Context, batch *ledger.Batch, tier resources.Tier, file *ledger.File, events chan<- workerEvent, halt func()) {
	// In-flight files run to completion even when the batch is cancelled.
	fctx := context.WithoutCancel(ctx)
	logger := s.logger.With(logging.String(logging.FieldSource, file.SourcePath))

	stage := func(from, to ledger.Status) {
		events <- workerEvent{kind: eventStage, file: file, from: from, to: to}
	}
	fail := func(err error, attempts int) {
		fatal := services.BatchFatal(err)
		if fatal {
			// Stop the pool before reporting so no worker pulls another file
			// that is doomed to the same failure.
			halt()
		}
		events <- workerEvent{
			kind:     eventFailed,
			file:     file,
			reason:   err.Error(),
			attempts: attempts,
			err:      err,
			fatal:    fatal,
		}
	}

	stage(ledger.StatusPending, ledger.StatusExtracting)
	validation, err := media.Validate(file.SourcePath)
	if err != nil {
		fail(err, 1)
		return
	}
	for _, warning := range validation.Warnings {
		logger.Warn("media validation", logging.String("detail", warning))
	}

	workPath := filepath.Join(s.cfg.Paths.WorkDir, uuid.NewString()+".wav")
	defer os.Remove(workPath)

	audioPath, err := s.cache.Materialize(fctx, file.SourcePath, workPath, s.extractor.ExtractAudio)
	if err != nil {
		fail(services.Wrap(services.ErrExtractionFailed, "extract", "materialize audio", "", err), 1)
		return
	}

	stage(ledger.StatusExtracting, ledger.StatusTranscribing)
	result, attempts, err := s.transcribeWithRetry(fctx, audioPath, tier)
	if err != nil {
		fail(err, attempts)
		return
	}

	stage(ledger.StatusTranscribing, ledger.StatusChunking)
	doc, err := s.buildDocument(fctx, batch, tier, file.SourcePath, audioPath, result, logger)
	if err != nil {
		fail(err, attempts)
		return
	}

	paths, err := s.sink.Write(doc)
	if err != nil {
		fail(services.Wrap(services.ErrInvariant, "assemble", "write output", "", err), attempts)
		return
	}

	events <- workerEvent{
		kind:       eventDone,
		file:       file,
		doc:        doc,
		outputPath: strings.Join(paths, ";"),
	}
}

// transcribeWithRetry retries transient transcription failures with
// exponential backoff, up to the configured attempt maximum. Permanent
// failures short-circuit.
func (s *Scheduler) transcribeWithRetry(ctx context.Context, audioPath string, tier resources.Tier) (*transcript.Transcript, int, error) {
	maxAttempts := s.cfg.Transcription.MaxRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Duration(s.cfg.Transcription.RetryDelayMS) * time.Millisecond
	policy.Multiplier = 2
	policy.RandomizationFactor = 0.1

	var result *transcript.Transcript
	attempts := 0
	operation := func() error {
		attempts++
		r, err := s.transcriber.Transcribe(ctx, audioPath, tier)
		if err != nil {
			if services.Retryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		result = r
		return nil
	}

	err := backoff.Retry(operation, backoff.WithMaxRetries(policy, uint64(maxAttempts-1)))
	if err != nil {
		return nil, attempts, err
	}
	return result, attempts, nil
}

// buildDocument chunks the transcript, scores and annotates the chunks in
// parallel, and assembles the final document.
func (s *Scheduler) buildDocument(ctx context.Context, batch *ledger.Batch, tier resources.Tier, sourcePath, audioPath string, result *transcript.Transcript, logger *slog.Logger) (*document.Document, error) {
	strategy, err := chunking.ParseStrategy(batch.Strategy)
	if err != nil {
		return nil, services.Wrap(services.ErrInvariant, "chunk", "parse strategy", "", err)
	}

	base := filepath.Base(sourcePath)
	docID := textutil.SanitizeFileName(strings.TrimSuffix(base, filepath.Ext(base)))

	engine, err := chunking.NewEngine(chunking.Options{
		Strategy:   strategy,
		TargetSize: s.cfg.Chunking.TargetSize,
		Overlap:    s.cfg.Chunking.OverlapSize,
		DocID:      docID,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrInvariant, "chunk", "configure engine", "", err)
	}

	chunks, err := engine.Chunk(result)
	if err != nil {
		return nil, services.Wrap(services.ErrInvariant, "chunk", "split transcript", "", err)
	}

	// Scoring and metadata extraction are pure functions over disjoint chunk
	// fields, so they run concurrently.
	var flagged []quality.Span
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		flagged = quality.NewScorer(s.cfg.Quality.ReviewThreshold).ScoreAll(chunks, result)
	}()
	go func() {
		defer wg.Done()
		docmeta.NewExtractor(s.cfg.Metadata.KeywordLimit, s.cfg.Metadata.TopicMinOverlap).Annotate(chunks)
	}()
	wg.Wait()

	if len(flagged) > 0 {
		logger.Warn("low-confidence spans flagged for review",
			logging.Int("spans", len(flagged)))
	}

	duration := s.extractor.Duration(ctx, audioPath)
	if duration == 0 {
		duration = result.SourceDuration
	}

	doc, err := document.Assemble(document.SourceMeta{
		FilePath:      sourcePath,
		Duration:      duration,
		Model:         string(tier),
		Language:      result.Language,
		TranscribedAt: time.Now().UTC(),
	}, chunks)
	if err != nil {
		return nil, err
	}
	return doc, nil
}
