// Package watch monitors a directory for arriving media files and hands them
// to a handler once they settle. Encoders and downloaders write large files
// incrementally, so a file only counts as arrived after its last write event
// has been quiet for the settle window.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"scribe/internal/logging"
	"scribe/internal/media"
)

// Handler receives a settled media file path.
type Handler func(ctx context.Context, path string)

// Watcher monitors one directory.
type Watcher struct {
	dir     string
	settle  time.Duration
	handler Handler
	logger  *slog.Logger
	fsw     *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New creates a watcher for dir. settle is how long a file must stay quiet
// before it is handed off.
func New(dir string, settle time.Duration, handler Handler, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if settle <= 0 {
		settle = 3 * time.Second
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		dir:     dir,
		settle:  settle,
		handler: handler,
		logger:  logging.NewComponentLogger(logger, "watch"),
		fsw:     fsw,
		pending: make(map[string]*time.Timer),
	}, nil
}

// Run blocks processing filesystem events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watching for media files",
		logging.String("dir", w.dir),
		logging.String("settle", w.settle.String()))

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Warn("watcher error", logging.Error(err))
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	w.cancelPending()
	return w.fsw.Close()
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !media.IsSupported(event.Name) {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write):
		w.touch(ctx, event.Name)
	case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
		w.forget(event.Name)
	}
}

// touch starts or resets the settle timer for path.
func (w *Watcher) touch(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, exists := w.pending[path]; exists {
		timer.Reset(w.settle)
		return
	}
	w.logger.Debug("media file arriving", logging.String(logging.FieldSource, path))
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.logger.Info("media file settled", logging.String(logging.FieldSource, path))
		w.handler(ctx, path)
	})
}

func (w *Watcher) forget(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, exists := w.pending[path]; exists {
		timer.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}
