package testsupport

import (
	"context"
	"testing"

	"scribe/internal/config"
	"scribe/internal/ledger"
)

// MustOpenStore opens a ledger.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewBatch creates a batch with the given files registered as pending.
func NewBatch(t testing.TB, store *ledger.Store, cfg *config.Config, rootPath string, files ...string) *ledger.Batch {
	t.Helper()

	ctx := context.Background()
	batch, err := store.CreateBatch(ctx, rootPath, cfg.Transcription.Model, cfg.Chunking.Strategy)
	if err != nil {
		t.Fatalf("store.CreateBatch: %v", err)
	}
	for _, file := range files {
		if err := store.AddFile(ctx, batch.ID, file); err != nil {
			t.Fatalf("store.AddFile(%s): %v", file, err)
		}
	}
	return batch
}
