package render

import (
	"strconv"
	"strings"
)

// Label keys. They double as the fallback text when no translation exists.
const (
	LabelSearchFor      = "Search For"
	LabelNoResults      = "no results"
	LabelRefine         = "refine"
	LabelShowingResults = "Showing results for"
	LabelSortBy         = "Sort By"
	LabelSortFilter     = "Sort Filter"
	LabelPrevious       = "Previous"
	LabelNext           = "Next"
)

// Labels looks up localized text. Placeholders are written $0, $1, ...
type Labels interface {
	Label(key string) string
}

// LabelMap is a Labels backed by a map. Missing keys return the key itself.
type LabelMap map[string]string

func (m LabelMap) Label(key string) string {
	if v, ok := m[key]; ok && v != "" {
		return v
	}
	return key
}

// DefaultLabels returns the English texts.
func DefaultLabels() LabelMap {
	return LabelMap{
		LabelSearchFor:      "Search for",
		LabelNoResults:      "No results found for $0",
		LabelRefine:         "Try a different or more general search term.",
		LabelShowingResults: `Showing $1 of $2 results for "$3", starting at $0`,
		LabelSortBy:         "Sort by",
		LabelSortFilter:     "Sort filter",
		LabelPrevious:       "Previous",
		LabelNext:           "Next",
	}
}

// Merge returns a copy of m with overrides applied.
func (m LabelMap) Merge(overrides map[string]string) LabelMap {
	out := make(LabelMap, len(m)+len(overrides))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Interpolate replaces the first occurrence of $i with args[i], in order.
func Interpolate(text string, args ...string) string {
	for i, arg := range args {
		text = strings.Replace(text, "$"+strconv.Itoa(i), arg, 1)
	}
	return text
}
