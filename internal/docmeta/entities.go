package docmeta

import (
	"regexp"
	"sort"
)

// Entity recognition is pattern based: clock times, calendar dates, numeric
// expressions, and capitalized multi-word runs. The patterns deliberately
// over-approximate proper nouns; downstream search tolerates a few false
// positives far better than silent misses.
var (
	timePattern = regexp.MustCompile(`\b\d{1,2}:\d{2}(?::\d{2})?(?:\s*(?:AM|PM|am|pm))?\b`)
	hourPattern = regexp.MustCompile(`\b\d{1,2}\s*(?:AM|PM|am|pm)\b`)
	datePattern = regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?\b`)
	numPattern  = regexp.MustCompile(`\b\d+(?:,\d{3})*(?:\.\d+)?%?`)
	nounPattern = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)
)

// capitalizedNoise are sentence-initial words that match the proper-noun
// pattern without naming anything.
var capitalizedNoise = map[string]struct{}{
	"The": {}, "This": {}, "That": {}, "And": {}, "But": {}, "So": {},
	"Now": {}, "Then": {}, "However": {}, "Finally": {}, "Next": {},
	"Today": {}, "Welcome": {}, "Thank": {}, "Thanks": {},
}

type match struct {
	start int
	end   int
	text  string
}

// Entities extracts time, date, numeric, and proper-noun expressions from
// text, ordered by position and deduplicated. Matches nested inside an
// earlier, longer match are dropped (the digits of "3:30 PM" never surface
// as standalone numbers).
func Entities(text string) []string {
	var matches []match
	collect := func(pattern *regexp.Regexp) {
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			matches = append(matches, match{start: loc[0], end: loc[1], text: text[loc[0]:loc[1]]})
		}
	}
	collect(datePattern)
	collect(timePattern)
	collect(hourPattern)
	collect(numPattern)

	for _, loc := range nounPattern.FindAllStringIndex(text, -1) {
		candidate := text[loc[0]:loc[1]]
		if _, noise := capitalizedNoise[candidate]; noise {
			continue
		}
		matches = append(matches, match{start: loc[0], end: loc[1], text: candidate})
	}

	// Position order, longest match first at equal starts, so containment
	// filtering keeps the widest span.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].start != matches[j].start {
			return matches[i].start < matches[j].start
		}
		return matches[i].end > matches[j].end
	})

	seen := make(map[string]struct{})
	var entities []string
	lastEnd := -1
	for _, m := range matches {
		if m.start < lastEnd {
			continue // nested in or overlapping the previous accepted span
		}
		if _, dup := seen[m.text]; dup {
			lastEnd = m.end
			continue
		}
		seen[m.text] = struct{}{}
		entities = append(entities, m.text)
		lastEnd = m.end
	}
	return entities
}
