package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"scribe/internal/config"
)

// Store manages ledger persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the ledger database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "ledger.db")
	return OpenPath(dbPath)
}

// OpenPath opens the ledger database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the on-disk location of the ledger database.
func (s *Store) Path() string {
	return s.path
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// CreateBatch records a new batch and returns it. The generated UUID is the
// batch identity used for resume.
func (s *Store) CreateBatch(ctx context.Context, rootPath, model, strategy string) (*Batch, error) {
	batch := &Batch{
		ID:        uuid.NewString(),
		RootPath:  rootPath,
		Model:     model,
		Strategy:  strategy,
		CreatedAt: time.Now().UTC(),
	}
	err := s.execWithRetry(ctx,
		`INSERT INTO batches (id, root_path, model, strategy, created_at) VALUES (?, ?, ?, ?, ?)`,
		batch.ID, batch.RootPath, batch.Model, batch.Strategy, timestamp(batch.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert batch: %w", err)
	}
	return batch, nil
}

// GetBatch fetches a batch by identity. Returns nil when unknown.
func (s *Store) GetBatch(ctx context.Context, id string) (*Batch, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, root_path, model, strategy, created_at FROM batches WHERE id = ?`, id)
	batch, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return batch, nil
}

// AddFile registers a source file with the batch. Re-adding an already-known
// path is a no-op so resumed batches keep their existing status.
func (s *Store) AddFile(ctx context.Context, batchID, sourcePath string) error {
	now := timestamp(time.Now())
	return s.execWithRetry(ctx,
		`INSERT INTO batch_files (batch_id, source_path, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT (batch_id, source_path) DO NOTHING`,
		batchID, sourcePath, StatusPending, now, now,
	)
}

// PendingFiles returns the files that still require processing, in insertion
// order. Files already done are skipped; failed files are retried on resume.
func (s *Store) PendingFiles(ctx context.Context, batchID string) ([]*File, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+fileColumns+` FROM batch_files
         WHERE batch_id = ? AND status != ?
         ORDER BY id`,
		batchID, StatusDone,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending files: %w", err)
	}
	defer rows.Close()
	return scanFiles(rows)
}

// Files returns every file in the batch in insertion order.
func (s *Store) Files(ctx context.Context, batchID string) ([]*File, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+fileColumns+` FROM batch_files WHERE batch_id = ? ORDER BY id`, batchID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()
	return scanFiles(rows)
}

// ResetInFlight rolls files stranded mid-stage (after a crash or shutdown)
// back to pending so a resumed batch retries them. This is the only backward
// transition the ledger performs.
func (s *Store) ResetInFlight(ctx context.Context, batchID string) error {
	return s.execWithRetry(ctx,
		`UPDATE batch_files SET status = ?, reason = '', updated_at = ?
         WHERE batch_id = ? AND status IN (?, ?, ?, ?)`,
		StatusPending, timestamp(time.Now()), batchID,
		StatusExtracting, StatusTranscribing, StatusChunking, StatusFailed,
	)
}

// SetStatus advances a file to the given in-flight status, enforcing the
// one-way state machine.
func (s *Store) SetStatus(ctx context.Context, fileID int64, from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("illegal status transition %s -> %s", from, to)
	}
	return s.execWithRetry(ctx,
		`UPDATE batch_files SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, timestamp(time.Now()), fileID, from,
	)
}

// MarkDone records successful completion and the written output path.
func (s *Store) MarkDone(ctx context.Context, fileID int64, outputPath string) error {
	return s.execWithRetry(ctx,
		`UPDATE batch_files SET status = ?, output_path = ?, reason = '', updated_at = ? WHERE id = ?`,
		StatusDone, outputPath, timestamp(time.Now()), fileID,
	)
}

// MarkFailed records a permanent failure with its reason and attempt count.
func (s *Store) MarkFailed(ctx context.Context, fileID int64, reason string, attempts int) error {
	return s.execWithRetry(ctx,
		`UPDATE batch_files SET status = ?, reason = ?, attempts = ?, updated_at = ? WHERE id = ?`,
		StatusFailed, reason, attempts, timestamp(time.Now()), fileID,
	)
}

// BatchCounts aggregates file totals for a batch.
func (s *Store) BatchCounts(ctx context.Context, batchID string) (Counts, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(1) FROM batch_files WHERE batch_id = ? GROUP BY status`, batchID)
	if err != nil {
		return Counts{}, fmt.Errorf("count files: %w", err)
	}
	defer rows.Close()

	var counts Counts
	for rows.Next() {
		var raw string
		var n int
		if err := rows.Scan(&raw, &n); err != nil {
			return Counts{}, fmt.Errorf("scan counts: %w", err)
		}
		counts.Total += n
		status, _ := ParseStatus(raw)
		switch {
		case status == StatusPending:
			counts.Pending += n
		case status == StatusDone:
			counts.Done += n
		case status == StatusFailed:
			counts.Failed += n
		case IsInFlight(status):
			counts.InFlight += n
		}
	}
	return counts, rows.Err()
}

const fileColumns = `id, batch_id, source_path, status, reason, attempts, output_path, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row rowScanner) (*Batch, error) {
	var batch Batch
	var created string
	if err := row.Scan(&batch.ID, &batch.RootPath, &batch.Model, &batch.Strategy, &created); err != nil {
		return nil, err
	}
	batch.CreatedAt = parseTimestamp(created)
	return &batch, nil
}

func scanFiles(rows *sql.Rows) ([]*File, error) {
	var files []*File
	for rows.Next() {
		var file File
		var rawStatus, created, updated string
		if err := rows.Scan(
			&file.ID, &file.BatchID, &file.SourcePath, &rawStatus,
			&file.Reason, &file.Attempts, &file.OutputPath, &created, &updated,
		); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		status, ok := ParseStatus(rawStatus)
		if !ok {
			return nil, fmt.Errorf("unknown status %q in ledger", rawStatus)
		}
		file.Status = status
		file.CreatedAt = parseTimestamp(created)
		file.UpdatedAt = parseTimestamp(updated)
		files = append(files, &file)
	}
	return files, rows.Err()
}

func parseTimestamp(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
