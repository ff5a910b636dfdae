// Package filter implements the pure event filter/search engine: free-text
// search combined with category equality over the in-memory event collection.
// No persistence, no external calls.
package filter

import (
	"strings"

	"campuseventhub/internal/domain"
)

// AllCategories is the sentinel category that matches every event.
const AllCategories = "All"

// Query combines a free-text search term with a category filter.
// IncludeLocation extends the search to the location field; the full listing
// view searches it, the home carousel does not.
type Query struct {
	Term            string
	Category        string
	IncludeLocation bool
}

// Apply returns the events matching both the search and category predicates.
// It never mutates its input.
func Apply(events []domain.Event, q Query) []domain.Event {
	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if Matches(e, q) {
			out = append(out, e)
		}
	}
	return out
}

// Matches reports whether a single event passes the query: the logical AND of
// the category predicate and the search predicate.
func Matches(e domain.Event, q Query) bool {
	return matchesCategory(e, q.Category) && matchesSearch(e, q)
}

func matchesCategory(e domain.Event, category string) bool {
	return category == "" || category == AllCategories || e.Category == category
}

func matchesSearch(e domain.Event, q Query) bool {
	if q.Term == "" {
		return true
	}
	term := strings.ToLower(q.Term)
	if strings.Contains(strings.ToLower(e.Title), term) ||
		strings.Contains(strings.ToLower(e.Description), term) {
		return true
	}
	return q.IncludeLocation && strings.Contains(strings.ToLower(e.Location), term)
}

// Categories returns the category universe for UI population: AllCategories
// first, then each distinct category in order of first occurrence.
func Categories(events []domain.Event) []string {
	out := []string{AllCategories}
	seen := make(map[string]struct{})
	for _, e := range events {
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		out = append(out, e.Category)
	}
	return out
}
