package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path with size bytes of filler content, creating parent
// directories as needed. A size <= 0 writes a single byte. Tests use it to
// stand in for media files without shipping fixtures.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}

	const block = 32 * 1024
	filler := bytes.Repeat([]byte{0x42}, block)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	for written := int64(0); written < size; {
		n := size - written
		if n > block {
			n = block
		}
		if _, err := f.Write(filler[:n]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		written += n
	}
}
