package docmeta

import (
	"sort"
	"strings"
)

// DefaultTopicMinOverlap is the number of distinct topic keywords a text must
// contain before the topic is assigned.
const DefaultTopicMinOverlap = 2

// topicKeywords maps each topic tag to the vocabulary that signals it.
var topicKeywords = map[string][]string{
	"technology": {"software", "computer", "digital", "algorithm", "data", "system", "program", "code", "tech", "machine learning", "network"},
	"business":   {"company", "market", "revenue", "profit", "strategy", "customer", "sales", "business", "corporate", "financial"},
	"education":  {"learn", "teach", "student", "school", "university", "education", "study", "course", "knowledge", "academic", "lecture"},
	"health":     {"health", "medical", "doctor", "patient", "treatment", "medicine", "hospital", "care", "disease", "therapy"},
	"science":    {"research", "study", "experiment", "theory", "analysis", "scientific", "hypothesis", "method", "result", "data"},
	"finance":    {"money", "investment", "bank", "financial", "economic", "budget", "cost", "price", "funding", "capital"},
}

// Topics assigns topic tags to text: a topic applies when at least minOverlap
// of its keywords occur. The result is sorted so equal inputs always produce
// equal output.
func Topics(text string, minOverlap int) []string {
	if minOverlap <= 0 {
		minOverlap = DefaultTopicMinOverlap
	}
	lowered := strings.ToLower(text)

	var topics []string
	for topic, keywords := range topicKeywords {
		overlap := 0
		for _, keyword := range keywords {
			if strings.Contains(lowered, keyword) {
				overlap++
			}
		}
		if overlap >= minOverlap {
			topics = append(topics, topic)
		}
	}
	sort.Strings(topics)
	return topics
}
