// Package media identifies and validates the audio/video inputs a batch can
// process.
package media

import (
	"path/filepath"
	"sort"
	"strings"
)

var audioExtensions = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".m4a":  {},
	".flac": {},
	".ogg":  {},
	".wma":  {},
	".aac":  {},
}

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".avi":  {},
	".mov":  {},
	".mkv":  {},
	".wmv":  {},
	".flv":  {},
	".webm": {},
	".m4v":  {},
}

// IsAudio reports whether the path has a supported audio extension.
func IsAudio(path string) bool {
	_, ok := audioExtensions[normalizeExt(path)]
	return ok
}

// IsVideo reports whether the path has a supported video extension.
func IsVideo(path string) bool {
	_, ok := videoExtensions[normalizeExt(path)]
	return ok
}

// IsSupported reports whether the path is a supported media format.
func IsSupported(path string) bool {
	return IsAudio(path) || IsVideo(path)
}

// SupportedExtensions returns the sorted list of recognized extensions.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(audioExtensions)+len(videoExtensions))
	for ext := range audioExtensions {
		exts = append(exts, ext)
	}
	for ext := range videoExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func normalizeExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
