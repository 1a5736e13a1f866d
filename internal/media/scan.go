package media

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// ScanDir walks a directory tree and returns the supported media files in
// deterministic (sorted) order.
func ScanDir(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	if !info.IsDir() {
		if !IsSupported(root) {
			return nil, nil
		}
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if IsSupported(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %q: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}
