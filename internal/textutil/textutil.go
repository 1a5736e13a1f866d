// Package textutil provides tokenization and term-frequency helpers shared by
// the metadata extraction pipeline, plus filename sanitization for output
// documents.
//
// The tokenization process lowercases text, splits on non-alphanumeric
// characters, and filters tokens shorter than 3 characters.
package textutil

import (
	"regexp"
	"strings"
)

// tokenSplitPattern matches non-alphanumeric character sequences for tokenization.
var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Tokenize splits text into lowercase tokens, filtering short tokens.
func Tokenize(text string) []string {
	lowered := strings.ToLower(text)
	raw := tokenSplitPattern.Split(lowered, -1)
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		token = strings.TrimSpace(token)
		if len(token) < 3 {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// TermCounts holds token frequencies together with each token's first
// occurrence position, so callers can rank by frequency with a stable
// first-seen tie-break.
type TermCounts struct {
	Counts    map[string]int
	FirstSeen map[string]int
	Order     []string
}

// CountTerms tokenizes text and tallies term frequencies in encounter order.
func CountTerms(text string) TermCounts {
	return CountTokens(Tokenize(text))
}

// CountTokens tallies an already-tokenized sequence in encounter order.
func CountTokens(tokens []string) TermCounts {
	tc := TermCounts{
		Counts:    make(map[string]int, len(tokens)),
		FirstSeen: make(map[string]int, len(tokens)),
	}
	for i, token := range tokens {
		if _, ok := tc.Counts[token]; !ok {
			tc.FirstSeen[token] = i
			tc.Order = append(tc.Order, token)
		}
		tc.Counts[token]++
	}
	return tc
}

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}
