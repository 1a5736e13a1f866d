package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"scribe/internal/audiocache"
	"scribe/internal/config"
	"scribe/internal/document"
	"scribe/internal/ledger"
	"scribe/internal/logging"
	"scribe/internal/resources"
	"scribe/internal/scheduler"
	"scribe/internal/services/ffmpeg"
	"scribe/internal/services/whisper"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// pipeline bundles the collaborators one processing run needs. Commands build
// it from an already-normalized config and close it when they finish.
type pipeline struct {
	cfg     *config.Config
	store   *ledger.Store
	cache   *audiocache.Cache
	monitor *resources.Monitor
	sched   *scheduler.Scheduler
	logger  *slog.Logger
}

func buildPipeline(cfg *config.Config) (*pipeline, error) {
	logger, err := logging.NewFromPaths(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
	if err != nil {
		return nil, err
	}

	store, err := ledger.Open(cfg)
	if err != nil {
		return nil, err
	}

	cache := audiocache.New("", 0, nil)
	if cfg.AudioCache.Enabled {
		cache = audiocache.New(cfg.Paths.CacheDir, float64(cfg.AudioCache.MaxGiB), logger)
	}

	formats, err := document.FormatsFor(cfg.Output.Format)
	if err != nil {
		store.Close()
		return nil, err
	}

	extractor := ffmpeg.NewExtractor("")
	transcriber := whisper.NewService(whisper.Config{
		Binary:    cfg.Transcription.Binary,
		Language:  cfg.Transcription.Language,
		OutputDir: cfg.Paths.WorkDir,
	})
	monitor := resources.NewMonitor(cfg.Batch.MemoryMargin, cfg.Batch.SafetyFactor)
	sink := document.NewSink(cfg.Paths.OutputDir, formats)

	return &pipeline{
		cfg:     cfg,
		store:   store,
		cache:   cache,
		monitor: monitor,
		sched:   scheduler.New(cfg, store, cache, extractor, transcriber, monitor, sink, logger),
		logger:  logger,
	}, nil
}

func (p *pipeline) Close() {
	if p.store != nil {
		p.store.Close()
	}
}

// signalContext derives a context that cancels on SIGINT/SIGTERM so an
// interrupted run finishes its in-flight files and records a resumable ledger.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
