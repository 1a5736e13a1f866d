package chunking

import (
	"fmt"
	"strings"
)

// Strategy selects how the engine groups segments into chunks. The set is
// closed: dispatch happens through a single switch, and adding behavior means
// adding a variant here.
type Strategy string

const (
	// StrategySemantic breaks at discourse markers and long pauses in
	// addition to sentence boundaries.
	StrategySemantic Strategy = "semantic"
	// StrategySentence breaks only after sentence boundaries once the target
	// size is reached.
	StrategySentence Strategy = "sentence"
	// StrategyFixed breaks purely on accumulated size.
	StrategyFixed Strategy = "fixed"
)

// ParseStrategy converts a config string into a Strategy.
func ParseStrategy(value string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(value))) {
	case StrategySemantic:
		return StrategySemantic, nil
	case StrategySentence:
		return StrategySentence, nil
	case StrategyFixed:
		return StrategyFixed, nil
	default:
		return "", fmt.Errorf("unknown chunking strategy %q", value)
	}
}

// discourseMarkers are transition phrases that open a new line of discussion.
// A segment starting with one of these is a natural chunk boundary.
var discourseMarkers = []string{
	"however",
	"meanwhile",
	"furthermore",
	"moreover",
	"additionally",
	"in contrast",
	"on the other hand",
	"similarly",
	"likewise",
	"therefore",
	"consequently",
	"as a result",
	"in conclusion",
	"to summarize",
	"finally",
	"next",
	"afterwards",
	"moving on",
	"turning to",
	"regarding",
	"concerning",
	"speaking of",
}

// startsWithDiscourseMarker reports whether text opens with a transition
// phrase followed by a word boundary.
func startsWithDiscourseMarker(text string) bool {
	lowered := strings.ToLower(strings.TrimSpace(text))
	for _, marker := range discourseMarkers {
		if lowered == marker {
			return true
		}
		if strings.HasPrefix(lowered, marker) {
			rest := lowered[len(marker):]
			if rest[0] == ' ' || rest[0] == ',' {
				return true
			}
		}
	}
	return false
}
