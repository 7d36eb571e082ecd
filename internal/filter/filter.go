package filter

import (
	"strings"

	"jobwatch/internal/model"
)

// KeywordMatcher decides whether a posting looks entry-level and, when
// location matching is enabled, whether it sits in a target region.
// All matching is case-insensitive substring containment.
type KeywordMatcher struct {
	titleKeywords    []string
	locations        []string
	excludeLocations []string
	locationEnabled  bool
}

// NewKeywordMatcher builds a matcher from the configured keyword lists.
// Keywords are lowercased once here so Match stays allocation-light.
func NewKeywordMatcher(titleKeywords, locations, excludeLocations []string, locationEnabled bool) *KeywordMatcher {
	return &KeywordMatcher{
		titleKeywords:    lowerAll(titleKeywords),
		locations:        lowerAll(locations),
		excludeLocations: lowerAll(excludeLocations),
		locationEnabled:  locationEnabled,
	}
}

var _ model.Matcher = (*KeywordMatcher)(nil)

// EntryLevel reports whether the title or description contains any of the
// entry-level keywords. An empty keyword list matches nothing.
func (m *KeywordMatcher) EntryLevel(title, description string) bool {
	haystack := strings.ToLower(title) + " " + strings.ToLower(description)
	for _, kw := range m.titleKeywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

// TargetLocation reports whether the location names a target region.
// Exclusion keywords win over inclusion keywords, so "Remote - India" is
// rejected even though "india" is a target. An empty location never matches.
func (m *KeywordMatcher) TargetLocation(location string) bool {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return false
	}
	for _, kw := range m.excludeLocations {
		if strings.Contains(loc, kw) {
			return false
		}
	}
	for _, kw := range m.locations {
		if strings.Contains(loc, kw) {
			return true
		}
	}
	return false
}

// Match combines both predicates. When location matching is disabled only
// the entry-level check applies.
func (m *KeywordMatcher) Match(title, description, location string) bool {
	if !m.EntryLevel(title, description) {
		return false
	}
	if !m.locationEnabled {
		return true
	}
	return m.TargetLocation(location)
}

func lowerAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		out = append(out, strings.ToLower(kw))
	}
	return out
}
