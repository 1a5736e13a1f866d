package audiocache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"lukechampine.com/blake3"

	"scribe/internal/fileutil"
	"scribe/internal/logging"
)

const (
	indexName = "index.json"
	lockName  = "index.lock"
)

// Entry records one cached extraction artifact.
type Entry struct {
	Key        string    `json:"key"`
	SourcePath string    `json:"source_path"`
	Artifact   string    `json:"artifact"` // file name relative to the cache dir
	SizeBytes  int64     `json:"size_bytes"`
	CachedAt   time.Time `json:"cached_at"`
	LastUsed   time.Time `json:"last_used"`
}

// Cache provides thread-safe access to the extraction artifact cache. A Cache
// with an empty directory is non-functional: lookups miss and stores no-op,
// which callers use to disable caching without branching.
type Cache struct {
	dir      string
	maxBytes int64
	logger   *slog.Logger
	fileLock *flock.Flock
	mu       sync.Mutex
	entries  map[string]Entry // keyed by fingerprint
}

// New creates a cache rooted at dir, bounded to maxGiB (0 means unbounded).
// The index is loaded lazily tolerant: a corrupt or missing index starts
// empty rather than failing.
func New(dir string, maxGiB float64, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "audiocache")

	c := &Cache{
		dir:      dir,
		maxBytes: int64(maxGiB * float64(1<<30)),
		logger:   logger,
		entries:  make(map[string]Entry),
	}

	if dir == "" {
		return c
	}
	c.fileLock = flock.New(filepath.Join(dir, lockName))

	if err := c.load(); err != nil {
		logger.Warn("failed to load audio cache index",
			logging.Error(err),
			logging.String("path", filepath.Join(dir, indexName)))
	}

	return c
}

// Fingerprint derives the cache key for a source file from its absolute path,
// size, and modification time. Editing or replacing the file yields a new key,
// so stale artifacts are never served.
func Fingerprint(sourcePath string) (string, error) {
	abs, err := filepath.Abs(sourcePath)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat source: %w", err)
	}

	hasher := blake3.New(32, nil)
	fmt.Fprintf(hasher, "%s|%d|%d", abs, info.Size(), info.ModTime().UnixNano())
	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

// Lookup returns the artifact path for key if the cache holds a readable
// artifact. A missing or truncated artifact is treated as a miss and the
// entry is dropped.
func (c *Cache) Lookup(key string) (string, bool) {
	if key == "" || c.dir == "" {
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, found := c.entries[key]
	if !found {
		return "", false
	}

	artifactPath := filepath.Join(c.dir, entry.Artifact)
	info, err := os.Stat(artifactPath)
	if err != nil || info.Size() != entry.SizeBytes {
		delete(c.entries, key)
		_ = c.save()
		c.logger.Warn("evicted corrupt cache artifact",
			logging.String("key", key),
			logging.String("artifact", entry.Artifact))
		return "", false
	}

	entry.LastUsed = time.Now().UTC()
	c.entries[key] = entry
	_ = c.save()
	return artifactPath, true
}

// Store copies the extraction artifact into the cache under key and returns
// the cached path. The copy is hash-verified; eviction keeps the cache under
// its size bound, oldest LastUsed first.
func (c *Cache) Store(key, sourcePath, artifactSrc string) (string, error) {
	if key == "" {
		return "", errors.New("cache key cannot be empty")
	}
	if c.dir == "" {
		return artifactSrc, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("create cache directory: %w", err)
	}

	artifactName := key + ".wav"
	artifactPath := filepath.Join(c.dir, artifactName)
	if err := fileutil.CopyFileVerified(artifactSrc, artifactPath); err != nil {
		return "", fmt.Errorf("copy artifact: %w", err)
	}

	info, err := os.Stat(artifactPath)
	if err != nil {
		return "", fmt.Errorf("stat artifact: %w", err)
	}

	now := time.Now().UTC()
	c.entries[key] = Entry{
		Key:        key,
		SourcePath: sourcePath,
		Artifact:   artifactName,
		SizeBytes:  info.Size(),
		CachedAt:   now,
		LastUsed:   now,
	}

	c.evictLocked()

	if err := c.save(); err != nil {
		return "", fmt.Errorf("persist index: %w", err)
	}

	c.logger.Debug("cached extraction artifact",
		logging.String("key", key),
		logging.String(logging.FieldSource, sourcePath),
		logging.Int64("size_bytes", info.Size()))

	return artifactPath, nil
}

// Materialize returns a cached artifact for sourcePath, invoking extract on a
// miss and caching its output. dest is the path extract must write to.
func (c *Cache) Materialize(ctx context.Context, sourcePath, dest string, extract func(ctx context.Context, src, dst string) error) (string, error) {
	key, err := Fingerprint(sourcePath)
	if err != nil {
		return "", err
	}
	if cached, ok := c.Lookup(key); ok {
		c.logger.Debug("audio cache hit", logging.String(logging.FieldSource, sourcePath))
		return cached, nil
	}

	if err := extract(ctx, sourcePath, dest); err != nil {
		return "", err
	}
	if c.dir == "" {
		return dest, nil
	}
	return c.Store(key, sourcePath, dest)
}

// List returns all entries sorted by LastUsed descending.
func (c *Cache) List() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastUsed.After(entries[j].LastUsed)
	})
	return entries
}

// Count returns the number of cached artifacts.
func (c *Cache) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// TotalSize returns the combined artifact size in bytes.
func (c *Cache) TotalSize() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalSizeLocked()
}

// Clear removes every artifact and resets the index.
func (c *Cache) Clear() error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, entry := range c.entries {
		_ = os.Remove(filepath.Join(c.dir, entry.Artifact))
	}
	c.entries = make(map[string]Entry)

	if err := c.save(); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}
	c.logger.Debug("cleared audio cache")
	return nil
}

func (c *Cache) totalSizeLocked() int64 {
	var total int64
	for _, entry := range c.entries {
		total += entry.SizeBytes
	}
	return total
}

// evictLocked drops least-recently-used artifacts until the cache fits its
// size bound.
func (c *Cache) evictLocked() {
	if c.maxBytes <= 0 {
		return
	}
	for c.totalSizeLocked() > c.maxBytes && len(c.entries) > 1 {
		var oldest Entry
		first := true
		for _, entry := range c.entries {
			if first || entry.LastUsed.Before(oldest.LastUsed) {
				oldest = entry
				first = false
			}
		}
		delete(c.entries, oldest.Key)
		_ = os.Remove(filepath.Join(c.dir, oldest.Artifact))
		c.logger.Debug("evicted cache artifact",
			logging.String("key", oldest.Key),
			logging.Int64("size_bytes", oldest.SizeBytes))
	}
}

// load reads the index from disk into memory.
func (c *Cache) load() error {
	data, err := os.ReadFile(filepath.Join(c.dir, indexName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read index: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse index: %w", err)
	}

	c.entries = make(map[string]Entry, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.Key) != "" {
			c.entries[entry.Key] = entry
		}
	}
	return nil
}

// save writes the index atomically under the cross-process file lock. When
// concurrent processes race, the last writer wins.
func (c *Cache) save() error {
	entries := make([]Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	if c.fileLock != nil {
		if err := c.fileLock.Lock(); err != nil {
			return fmt.Errorf("acquire index lock: %w", err)
		}
		defer func() {
			_ = c.fileLock.Unlock()
		}()
	}

	indexPath := filepath.Join(c.dir, indexName)
	tmpPath := indexPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp index: %w", err)
	}
	if err := os.Rename(tmpPath, indexPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp index: %w", err)
	}
	return nil
}
