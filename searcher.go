package sitesearch

import "context"

// Searcher defines the core search interface. It is the Query Client contract:
// a term plus paging and sort options in, a normalized result set or a coded error out.
type Searcher interface {
	// Search executes a search with the given term and options. A nil error
	// comes with a non-nil result; the widget treats (nil, nil) as a service error.
	Search(ctx context.Context, term string, opts ...SearchOption) (*Results, error)
}

// SearcherFunc is a function type that implements the Searcher interface.
// This allows using a function as a Searcher, similar to http.HandlerFunc.
type SearcherFunc func(context.Context, string, ...SearchOption) (*Results, error)

// Search implements the Searcher interface for SearcherFunc.
func (f SearcherFunc) Search(ctx context.Context, term string, opts ...SearchOption) (*Results, error) {
	return f(ctx, term, opts...)
}
