package algolia

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/sitesearch"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Searcher implements the sitesearch.Searcher interface using Algolia.
//
// Algolia sorts by index, so every sort key other than best match is served
// by a replica index. Replicas are named "<index>_<sort key in lower case>"
// unless mapped explicitly with WithReplica.
type Searcher struct {
	client    *Client
	indexName string
	replicas  map[sitesearch.SortKey]string
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithReplica serves key from indexName.
func WithReplica(key sitesearch.SortKey, indexName string) SearcherOption {
	return func(s *Searcher) {
		s.replicas[key] = indexName
	}
}

// NewSearcher creates a new Algolia searcher for the specified index.
func NewSearcher(client *Client, indexName string, opts ...SearcherOption) *Searcher {
	s := &Searcher{
		client:    client,
		indexName: indexName,
		replicas:  make(map[sitesearch.SortKey]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IndexFor returns the index that serves key.
func (s *Searcher) IndexFor(key sitesearch.SortKey) string {
	if key == "" || key == sitesearch.SortBestMatch {
		return s.indexName
	}
	if name, ok := s.replicas[key]; ok {
		return name
	}
	return s.indexName + "_" + strings.ToLower(string(key))
}

// Search implements the sitesearch.Searcher interface using Algolia search.
// Offsets are page indexes and map directly onto Algolia pages.
func (s *Searcher) Search(ctx context.Context, query string, opts ...sitesearch.SearchOption) (*sitesearch.Results, error) {
	startTime := time.Now()

	select {
	case <-ctx.Done():
		return nil, sitesearch.ErrCanceled
	default:
	}

	cfg := sitesearch.NewSearchConfig(opts...)
	indexName := s.IndexFor(cfg.Sort)

	ctx, span := s.client.tracer.Start(ctx, "algolia.search",
		trace.WithAttributes(
			attribute.String("algolia.index_name", indexName),
			attribute.Int("search.offset", cfg.Offset),
		),
	)
	defer span.End()

	index, err := s.client.index(indexName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get Algolia client")
		return nil, errors.WithSecondaryError(
			sitesearch.ErrBackendUnavailable,
			errors.Wrapf(err, "failed to get Algolia client"),
		)
	}

	res, err := index.Search(query, buildSearchParams(cfg)...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, sitesearch.ErrTimeout
		}
		if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
			return nil, sitesearch.ErrCanceled
		}

		return nil, errors.WithSecondaryError(
			sitesearch.ErrBackendUnavailable,
			errors.Wrapf(err, "Algolia search failed"),
		)
	}

	results := &sitesearch.Results{
		Items:  make([]sitesearch.Result, 0, len(res.Hits)),
		Total:  int64(res.NbHits),
		Facets: convertFacets(res.Facets, cfg.Facets),
		Query:  query,
	}

	for i, hit := range res.Hits {
		results.Items = append(results.Items, convertHit(hit, calculateScore(len(res.Hits), i)))
	}

	results.Took = time.Since(startTime).Milliseconds()
	span.SetAttributes(attribute.Int64("search.total", results.Total))
	return results, nil
}

// buildSearchParams converts a search config to Algolia search parameters.
func buildSearchParams(cfg *sitesearch.SearchConfig) []interface{} {
	params := []interface{}{
		opt.HitsPerPage(cfg.Limit),
		opt.Page(cfg.Offset),
	}

	if len(cfg.Facets) > 0 {
		attrs := make([]string, 0, len(cfg.Facets))
		for _, field := range cfg.Facets {
			attrs = append(attrs, facetAttribute(field))
		}
		params = append(params, opt.Facets(attrs...))
	}

	return params
}

// facetAttribute maps a facet field to the index attribute, e.g. TAGS to "tags".
func facetAttribute(field sitesearch.FacetField) string {
	return strings.ToLower(string(field))
}

func convertHit(hit map[string]interface{}, score float64) sitesearch.Result {
	return sitesearch.Result{
		ID:           stringField(hit, "objectID"),
		Score:        score,
		Title:        stringField(hit, "title"),
		Description:  stringField(hit, "description"),
		URL:          stringField(hit, "url"),
		LastModified: stringField(hit, "lastModified"),
	}
}

func stringField(hit map[string]interface{}, key string) string {
	s, _ := hit[key].(string)
	return s
}

// convertFacets keeps the requested field order; values are ordered by count then value.
func convertFacets(counts map[string]map[string]int, fields []sitesearch.FacetField) []sitesearch.Facet {
	facets := make([]sitesearch.Facet, 0, len(fields))
	for _, field := range fields {
		byValue := counts[facetAttribute(field)]

		values := make([]sitesearch.FacetValue, 0, len(byValue))
		for v, c := range byValue {
			values = append(values, sitesearch.FacetValue{Value: v, Count: c})
		}
		sort.Slice(values, func(i, j int) bool {
			if values[i].Count != values[j].Count {
				return values[i].Count > values[j].Count
			}
			return values[i].Value < values[j].Value
		})

		facets = append(facets, sitesearch.Facet{Field: field, Values: values})
	}
	return facets
}

// calculateScore creates a rank-based score for Algolia results
// Since Algolia doesn't provide relevance scores directly, we use position-based scoring
func calculateScore(totalResults, position int) float64 {
	if totalResults == 0 {
		return 1.0
	}
	return float64(totalResults-position) / float64(totalResults)
}
