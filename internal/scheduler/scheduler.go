package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"scribe/internal/audiocache"
	"scribe/internal/config"
	"scribe/internal/document"
	"scribe/internal/ledger"
	"scribe/internal/logging"
	"scribe/internal/resources"
	"scribe/internal/transcript"
)

// MediaExtractor converts source media into normalized audio.
type MediaExtractor interface {
	ExtractAudio(ctx context.Context, source, dest string) error
	Duration(ctx context.Context, source string) float64
}

// TranscriptionPort produces transcripts from normalized audio.
type TranscriptionPort interface {
	Transcribe(ctx context.Context, audioPath string, tier resources.Tier) (*transcript.Transcript, error)
}

// BatchResult reports the outcome of one batch run. Failed maps source path
// to the recorded failure reason; nothing is ever dropped silently.
type BatchResult struct {
	BatchID     string
	Tier        resources.Tier
	Concurrency int
	Succeeded   []*document.Document
	Failed      map[string]string
	Counts      ledger.Counts
}

// Scheduler owns one batch run end to end.
type Scheduler struct {
	cfg         *config.Config
	store       *ledger.Store
	cache       *audiocache.Cache
	extractor   MediaExtractor
	transcriber TranscriptionPort
	monitor     *resources.Monitor
	sink        *document.Sink
	logger      *slog.Logger

	// OnProgress, when set, is called from the coordinator after each file
	// completes or fails. reason is empty on success.
	OnProgress func(done, total int, path, reason string)
}

// New wires a scheduler from its collaborators.
func New(cfg *config.Config, store *ledger.Store, cache *audiocache.Cache, extractor MediaExtractor, transcriber TranscriptionPort, monitor *resources.Monitor, sink *document.Sink, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scheduler{
		cfg:         cfg,
		store:       store,
		cache:       cache,
		extractor:   extractor,
		transcriber: transcriber,
		monitor:     monitor,
		sink:        sink,
		logger:      logging.NewComponentLogger(logger, "scheduler"),
	}
}

// Run processes every pending file of the batch and returns the aggregated
// result. Files recorded done by an earlier run are skipped; files left
// in-flight by a crash are reset to pending first.
func (s *Scheduler) Run(ctx context.Context, batchID string) (*BatchResult, error) {
	batch, err := s.store.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, fmt.Errorf("batch %q not found", batchID)
	}

	tier, sample, err := s.pickTier(batch.Model)
	if err != nil {
		return nil, err
	}
	concurrency := s.pickConcurrency(tier, sample)

	if err := s.store.ResetInFlight(ctx, batchID); err != nil {
		return nil, err
	}
	pending, err := s.store.PendingFiles(ctx, batchID)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{
		BatchID:     batchID,
		Tier:        tier,
		Concurrency: concurrency,
		Failed:      make(map[string]string),
	}

	s.logger.Info("batch started",
		logging.String(logging.FieldBatchID, batchID),
		logging.String(logging.FieldTier, string(tier)),
		logging.Int("workers", concurrency),
		logging.Int("pending", len(pending)))

	if len(pending) > 0 {
		if err := s.runPool(ctx, batch, tier, concurrency, pending, result); err != nil {
			return result, err
		}
	}

	// A cancelled run still reports its final counts; in-flight files were
	// recorded by the coordinator and the ledger must reflect them.
	result.Counts, err = s.store.BatchCounts(context.WithoutCancel(ctx), batchID)
	if err != nil {
		return result, err
	}

	s.logger.Info("batch finished",
		logging.String(logging.FieldBatchID, batchID),
		logging.Int("succeeded", len(result.Succeeded)),
		logging.Int("failed", len(result.Failed)))
	return result, nil
}

// pickTier resolves the model tier, sampling the host when the batch asks
// for automatic selection.
func (s *Scheduler) pickTier(model string) (resources.Tier, resources.Sample, error) {
	sample, err := s.monitor.SampleHost()
	if err != nil {
		return "", resources.Sample{}, err
	}
	if model == "auto" || model == "" {
		return s.monitor.RecommendTier(sample.AvailableMemoryBytes), sample, nil
	}
	tier, ok := resources.ParseTier(model)
	if !ok {
		return "", resources.Sample{}, fmt.Errorf("unknown model tier %q", model)
	}
	return tier, sample, nil
}

// pickConcurrency bounds the pool by memory first, then by the configured
// worker cap.
func (s *Scheduler) pickConcurrency(tier resources.Tier, sample resources.Sample) int {
	concurrency := s.monitor.RecommendConcurrency(sample.CPUCount, resources.MemoryCost(tier), sample.AvailableMemoryBytes)
	if max := s.cfg.Batch.Workers; max > 0 && max < concurrency {
		concurrency = max
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return concurrency
}

// runPool runs the worker pool and the coordinator. The coordinator is the
// single writer of the ledger; workers only send events.
func (s *Scheduler) runPool(ctx context.Context, batch *ledger.Batch, tier resources.Tier, concurrency int, pending []*ledger.File, result *BatchResult) error {
	jobs := make(chan *ledger.File, len(pending))
	for _, file := range pending {
		jobs <- file
	}
	close(jobs)

	events := make(chan workerEvent, concurrency*2)
	stop := make(chan struct{})
	var stopOnce sync.Once
	halt := func() { stopOnce.Do(func() { close(stop) }) }

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				select {
				case <-stop:
					return
				case <-ctx.Done():
					return
				default:
				}
				s.processFile(ctx, batch, tier, file, events, halt)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(events)
	}()

	// User cancellation stops new pulls; in-flight files run to completion.
	cancelWatch := make(chan struct{})
	defer close(cancelWatch)
	go func() {
		select {
		case <-ctx.Done():
			halt()
		case <-cancelWatch:
		}
	}()

	// Ledger writes outlive cancellation: a file that finished after the
	// user cancelled must still be recorded done, or a resume would
	// process it again on top of output already written.
	wctx := context.WithoutCancel(ctx)

	var fatal error
	total := len(pending)
	completed := 0
	for event := range events {
		switch event.kind {
		case eventStage:
			if err := s.store.SetStatus(wctx, event.file.ID, event.from, event.to); err != nil {
				s.logger.Warn("ledger transition rejected",
					logging.String(logging.FieldSource, event.file.SourcePath),
					logging.Error(err))
			}
		case eventDone:
			completed++
			if err := s.store.MarkDone(wctx, event.file.ID, event.outputPath); err != nil {
				s.logger.Warn("ledger done update failed", logging.Error(err))
			}
			result.Succeeded = append(result.Succeeded, event.doc)
			s.notifyProgress(completed, total, event.file.SourcePath, "")
		case eventFailed:
			completed++
			if err := s.store.MarkFailed(wctx, event.file.ID, event.reason, event.attempts); err != nil {
				s.logger.Warn("ledger failure update failed", logging.Error(err))
			}
			result.Failed[event.file.SourcePath] = event.reason
			s.notifyProgress(completed, total, event.file.SourcePath, event.reason)
			if event.fatal && fatal == nil {
				fatal = event.err
				s.logger.Error("batch aborted",
					logging.String(logging.FieldSource, event.file.SourcePath),
					logging.Error(event.err))
			}
		}
	}
	return fatal
}

func (s *Scheduler) notifyProgress(done, total int, path, reason string) {
	if s.OnProgress != nil {
		s.OnProgress(done, total, path, reason)
	}
}
