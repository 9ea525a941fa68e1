package sitesearch

// SearchOption represents a search configuration option.
type SearchOption interface {
	Apply(*SearchConfig)
}

// SearchConfig holds all search configuration parameters.
type SearchConfig struct {
	// Limit specifies the maximum number of results to return.
	Limit int

	// Offset is the zero-based page index to fetch. It is not an item index.
	Offset int

	// Sort is the sort identifier forwarded to the backend.
	Sort SortKey

	// Facets lists the facet dimensions to aggregate.
	Facets []FacetField

	// Language is the locale identifier understood by the backend, e.g. "EN".
	Language string
}

// NewSearchConfig applies opts on top of the widget defaults: PageSize items,
// best-match sort and the TAGS/CATEGORY facet pair.
func NewSearchConfig(opts ...SearchOption) *SearchConfig {
	cfg := &SearchConfig{}
	for _, opt := range opts {
		opt.Apply(cfg)
	}

	if cfg.Limit <= 0 {
		cfg.Limit = PageSize
	}
	if cfg.Offset < 0 {
		cfg.Offset = 0
	}
	if cfg.Sort == "" {
		cfg.Sort = SortBestMatch
	}
	if cfg.Facets == nil {
		cfg.Facets = DefaultFacets()
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}

	return cfg
}

// optionFunc is a function that implements SearchOption.
type optionFunc func(*SearchConfig)

// Apply implements the SearchOption interface for optionFunc.
func (f optionFunc) Apply(cfg *SearchConfig) {
	f(cfg)
}

// WithLimit sets the maximum number of results to return.
func WithLimit(n int) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.Limit = n
	})
}

// WithOffset sets the page index to fetch.
func WithOffset(n int) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.Offset = n
	})
}

// WithSort sets the sort identifier.
func WithSort(key SortKey) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.Sort = key
	})
}

// WithFacets replaces the facet dimensions to aggregate.
func WithFacets(fields ...FacetField) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.Facets = append([]FacetField{}, fields...)
	})
}

// WithLanguage sets the backend locale identifier.
func WithLanguage(lang string) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.Language = lang
	})
}
