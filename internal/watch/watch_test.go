package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
	seen  chan string
}

func newRecorder() *recorder {
	return &recorder{seen: make(chan string, 16)}
}

func (r *recorder) handle(ctx context.Context, path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
	r.seen <- path
}

func (r *recorder) waitFor(t *testing.T, want string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case got := <-r.seen:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("handler never saw %s", want)
		}
	}
}

func startWatcher(t *testing.T, dir string, rec *recorder) context.CancelFunc {
	t.Helper()

	watcher, err := New(dir, 100*time.Millisecond, rec.handle, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go watcher.Run(ctx)
	t.Cleanup(func() {
		cancel()
		watcher.Close()
	})
	return cancel
}

func TestSettledFileIsHandled(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()
	startWatcher(t, dir, rec)

	path := filepath.Join(dir, "talk.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec.waitFor(t, path)
}

func TestUnsupportedFilesIgnored(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()
	startWatcher(t, dir, rec)

	ignored := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(ignored, []byte("text"), 0o644); err != nil {
		t.Fatal(err)
	}
	wanted := filepath.Join(dir, "talk.wav")
	if err := os.WriteFile(wanted, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec.waitFor(t, wanted)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	for _, path := range rec.paths {
		if path == ignored {
			t.Errorf("unsupported file %s was handled", ignored)
		}
	}
}

func TestWritesResetSettleTimer(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()
	startWatcher(t, dir, rec)

	path := filepath.Join(dir, "incoming.mp4")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	// Simulate an encoder streaming into the file.
	for i := 0; i < 3; i++ {
		if _, err := f.Write([]byte("frame data ")); err != nil {
			t.Fatal(err)
		}
		time.Sleep(40 * time.Millisecond)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	rec.waitFor(t, path)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.paths) != 1 {
		t.Errorf("handler ran %d times, want 1", len(rec.paths))
	}
}

func TestRemovedFileIsForgotten(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()
	startWatcher(t, dir, rec)

	doomed := filepath.Join(dir, "gone.mp3")
	if err := os.WriteFile(doomed, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(doomed); err != nil {
		t.Fatal(err)
	}

	kept := filepath.Join(dir, "kept.mp3")
	if err := os.WriteFile(kept, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec.waitFor(t, kept)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	for _, path := range rec.paths {
		if path == doomed {
			t.Errorf("removed file %s was handled", doomed)
		}
	}
}
