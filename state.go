package sitesearch

import "strings"

// PageSize is the fixed number of items requested per page.
const PageSize = 25

// DefaultLanguage is the locale identifier sent when none is configured.
const DefaultLanguage = "EN"

// SortKey identifies a result ordering understood by the search service.
type SortKey string

const (
	// SortBestMatch is the default relevance ordering.
	SortBestMatch SortKey = "BEST_MATCH"
	// SortLastModified orders by modification date, newest first.
	SortLastModified SortKey = "LAST_MODIFIED"
	// SortTitle orders alphabetically by title.
	SortTitle SortKey = "TITLE"
)

// ParseSortKey normalizes a raw sort identifier, typically read from the URL.
// Blank input yields SortBestMatch.
func ParseSortKey(raw string) SortKey {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SortBestMatch
	}
	return SortKey(strings.ToUpper(raw))
}

// FacetField names a facet dimension.
type FacetField string

const (
	FacetTags     FacetField = "TAGS"
	FacetCategory FacetField = "CATEGORY"
)

// DefaultFacets returns the facet pair aggregated on every request.
func DefaultFacets() []FacetField {
	return []FacetField{FacetTags, FacetCategory}
}

// SearchState is the restorable query/offset/sort triple of one widget.
type SearchState struct {
	Term   string
	Offset int
	Sort   SortKey
}

// Next moves to the following page.
func (s *SearchState) Next() {
	s.Offset++
}

// Prev moves to the preceding page. The offset never drops below zero.
func (s *SearchState) Prev() {
	if s.Offset > 0 {
		s.Offset--
	}
}
