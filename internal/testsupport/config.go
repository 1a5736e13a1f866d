package testsupport

import (
	"path/filepath"
	"testing"

	"scribe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Transcription.RetryDelayMS = 1

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	return &cfg
}

// WithStrategy overrides the chunking strategy on the test config.
func WithStrategy(strategy string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Chunking.Strategy = strategy
	}
}

// WithWorkers caps the batch worker count on the test config.
func WithWorkers(workers int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Batch.Workers = workers
	}
}

// WithCacheDisabled turns the audio cache off on the test config.
func WithCacheDisabled() ConfigOption {
	return func(cfg *config.Config) {
		cfg.AudioCache.Enabled = false
	}
}
