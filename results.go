package sitesearch

// Result represents a single search result item. Fields are copied verbatim
// from the backend response.
type Result struct {
	// ID is the unique identifier of the result.
	ID string `json:"id"`

	// Score represents the relevance score of this result.
	Score float64 `json:"score"`

	Title        string `json:"title"`
	Description  string `json:"description"`
	URL          string `json:"url"`
	LastModified string `json:"lastModified"`
}

// FacetValue is one bucket of a facet with the number of matching documents.
type FacetValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Facet is a categorical dimension with its value counts, in backend order.
type Facet struct {
	Field  FacetField   `json:"field"`
	Values []FacetValue `json:"items"`
}

// Results represents one page of search results with metadata.
// A Results value is produced fresh by each fetch and never merged with another.
type Results struct {
	// Items contains the individual search results.
	Items []Result

	// Total is the total number of matching documents.
	Total int64

	// Facets contains the aggregated facet dimensions.
	Facets []Facet

	// Took is the time taken to execute the search in milliseconds.
	Took int64

	// Query is the original query string for reference.
	Query string
}
