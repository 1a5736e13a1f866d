package docmeta

import (
	"sort"

	"scribe/internal/textutil"
)

// stopWords are excluded from keyword ranking.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "and", "but", "for", "with", "from", "about", "into",
		"through", "during", "before", "after", "above", "below", "between",
		"among", "this", "that", "these", "those", "myself", "our", "ours",
		"ourselves", "you", "your", "yours", "yourself", "yourselves",
		"him", "his", "himself", "she", "her", "hers", "herself", "its",
		"itself", "they", "them", "their", "theirs", "themselves", "what",
		"which", "who", "whom", "are", "was", "were", "been", "being",
		"have", "has", "had", "having", "does", "did", "doing", "will",
		"would", "should", "could", "can", "may", "might", "must", "shall",
		"not", "all", "any", "each", "few", "more", "most", "other", "some",
		"such", "only", "own", "same", "than", "too", "very", "just", "also",
	} {
		stopWords[w] = struct{}{}
	}
}

// Keywords returns the top limit tokens of text by descending frequency,
// excluding stop words. Ties rank by first occurrence, so the output is
// stable for a given input.
func Keywords(text string, limit int) []string {
	if limit <= 0 {
		return nil
	}

	tokens := textutil.Tokenize(text)
	filtered := tokens[:0]
	for _, token := range tokens {
		if _, stop := stopWords[token]; !stop {
			filtered = append(filtered, token)
		}
	}

	counts := textutil.CountTokens(filtered)
	ranked := append([]string(nil), counts.Order...)
	sort.SliceStable(ranked, func(i, j int) bool {
		ci, cj := counts.Counts[ranked[i]], counts.Counts[ranked[j]]
		if ci != cj {
			return ci > cj
		}
		return counts.FirstSeen[ranked[i]] < counts.FirstSeen[ranked[j]]
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
