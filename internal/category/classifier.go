// Package category maps free-text questions onto the fixed document category
// vocabulary used for retrieval filtering.
package category

import (
	"strings"

	"campus-assistant/internal/config"
)

// Document categories. The declaration order here is part of the contract: it
// is both the order exposed to API clients and the classifier's tie-break
// order.
const (
	Schedule    = "schedule"
	Regulations = "regulations"
	Procedures  = "procedures"
	FAQs        = "faqs"
	Notes       = "notes"
)

// All returns the category vocabulary in declaration order.
func All() []string {
	return []string{Schedule, Regulations, Procedures, FAQs, Notes}
}

// Valid reports whether name is one of the known categories.
func Valid(name string) bool {
	for _, c := range All() {
		if c == name {
			return true
		}
	}
	return false
}

// Classifier scores queries against per-category keyword lists.
// It is a pure function over its inputs: no state, no learning.
type Classifier struct {
	categories []config.CategoryKeywords
}

// NewClassifier creates a classifier from the knowledge pack's keyword lists.
func NewClassifier(kn *config.Knowledge) *Classifier {
	return &Classifier{categories: kn.Categories}
}

// Classify returns the category whose keywords occur most often in the query,
// or "" when no keyword matches at all. Keywords match as substrings of the
// lower-cased query. Ties are broken by category declaration order: the first
// category reaching the highest count wins.
func (c *Classifier) Classify(query string) string {
	lowered := strings.ToLower(query)

	best := ""
	bestCount := 0
	for _, cat := range c.categories {
		count := 0
		for _, kw := range cat.Keywords {
			count += strings.Count(lowered, strings.ToLower(kw))
		}
		if count > bestCount {
			best = cat.Name
			bestCount = count
		}
	}

	return best
}
