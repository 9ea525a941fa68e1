package inmemory

import (
	"context"
	"encoding/json"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/sitesearch"
)

// Document is a searchable page in the in-memory store.
type Document struct {
	// ID is the unique identifier for the document.
	ID           string   `json:"id" dynamodbav:"id"`
	Title        string   `json:"title" dynamodbav:"title"`
	Description  string   `json:"description" dynamodbav:"description"`
	URL          string   `json:"url" dynamodbav:"url"`
	LastModified string   `json:"lastModified" dynamodbav:"lastModified"`
	Tags         []string `json:"tags" dynamodbav:"tags"`
	Category     string   `json:"category" dynamodbav:"category"`
}

// Searcher implements the sitesearch.Searcher interface using an in-memory store.
// Offsets are page indexes, as on the remote service.
type Searcher struct {
	mu        sync.RWMutex
	documents []Document
	idIndex   map[string]int // maps document ID to index in documents slice
}

// New creates a new in-memory searcher.
// The searcher is ready to use and is safe for concurrent operations.
func New() *Searcher {
	return &Searcher{
		documents: make([]Document, 0),
		idIndex:   make(map[string]int),
	}
}

// AddDocument adds a document to the in-memory store.
// If a document with the same ID already exists, it will be updated.
// This method is safe for concurrent use.
func (s *Searcher) AddDocument(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, exists := s.idIndex[doc.ID]; exists {
		s.documents[idx] = doc
	} else {
		s.idIndex[doc.ID] = len(s.documents)
		s.documents = append(s.documents, doc)
	}
}

// AddJSON parses one JSON document and adds it.
func (s *Searcher) AddJSON(jsonData []byte) error {
	var doc Document
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return errors.Wrap(err, "failed to unmarshal JSON")
	}
	if doc.ID == "" {
		return errors.New("document has no id")
	}

	s.AddDocument(doc)
	return nil
}

// LoadJSON reads a JSON array of documents and adds them all.
// It returns the number of documents added.
func (s *Searcher) LoadJSON(r io.Reader) (int, error) {
	var docs []Document
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return 0, errors.Wrap(err, "failed to decode documents")
	}

	for i, doc := range docs {
		if doc.ID == "" {
			return i, errors.Newf("document %d has no id", i)
		}
		s.AddDocument(doc)
	}
	return len(docs), nil
}

// RemoveDocument removes a document by ID from the in-memory store.
// Returns true if the document was found and removed, false if the document was not found.
// This method is safe for concurrent use.
func (s *Searcher) RemoveDocument(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, exists := s.idIndex[id]
	if !exists {
		return false
	}

	s.documents = append(s.documents[:idx], s.documents[idx+1:]...)

	delete(s.idIndex, id)
	for i := idx; i < len(s.documents); i++ {
		s.idIndex[s.documents[i].ID] = i
	}

	return true
}

// Clear removes all documents from the store.
func (s *Searcher) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents = make([]Document, 0)
	s.idIndex = make(map[string]int)
}

// Size returns the number of documents currently stored in the in-memory store.
func (s *Searcher) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

// Search implements the sitesearch.Searcher interface.
func (s *Searcher) Search(ctx context.Context, term string, opts ...sitesearch.SearchOption) (*sitesearch.Results, error) {
	startTime := time.Now()

	select {
	case <-ctx.Done():
		return nil, sitesearch.ErrCanceled
	default:
	}

	cfg := sitesearch.NewSearchConfig(opts...)

	less, err := sortFunc(cfg.Sort)
	if err != nil {
		return nil, err
	}
	for _, field := range cfg.Facets {
		if _, err := facetValues(field, Document{}); err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []scoredDocument
	for _, doc := range s.documents {
		select {
		case <-ctx.Done():
			return nil, sitesearch.ErrCanceled
		default:
		}

		score := scoreDocument(doc, term)
		if score > 0 {
			matches = append(matches, scoredDocument{document: doc, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return less(matches[i], matches[j])
	})

	start := cfg.Offset * cfg.Limit
	if start > len(matches) {
		start = len(matches)
	}
	end := start + cfg.Limit
	if end > len(matches) {
		end = len(matches)
	}

	results := &sitesearch.Results{
		Items:  make([]sitesearch.Result, 0, end-start),
		Total:  int64(len(matches)),
		Facets: aggregateFacets(matches, cfg.Facets),
		Query:  term,
	}

	for _, match := range matches[start:end] {
		doc := match.document
		results.Items = append(results.Items, sitesearch.Result{
			ID:           doc.ID,
			Score:        match.score,
			Title:        doc.Title,
			Description:  doc.Description,
			URL:          doc.URL,
			LastModified: doc.LastModified,
		})
	}

	results.Took = time.Since(startTime).Milliseconds()
	return results, nil
}

type scoredDocument struct {
	document Document
	score    float64
}

// scoreDocument weighs term hits by field: title 3, tags 2, category and description 1.
// A document matching every term gets a 1.5 boost.
func scoreDocument(doc Document, query string) float64 {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return 1.0 // All documents match empty query
	}

	title := strings.ToLower(doc.Title)
	description := strings.ToLower(doc.Description)
	category := strings.ToLower(doc.Category)

	score := 0.0
	matchedTerms := 0

	for _, term := range terms {
		termScore := 0.0
		if strings.Contains(title, term) {
			termScore += 3
		}
		for _, tag := range doc.Tags {
			if strings.Contains(strings.ToLower(tag), term) {
				termScore += 2
				break
			}
		}
		if strings.Contains(category, term) {
			termScore++
		}
		if strings.Contains(description, term) {
			termScore++
		}
		if termScore > 0 {
			matchedTerms++
			score += termScore
		}
	}

	if matchedTerms == 0 {
		return 0
	}

	if matchedTerms == len(terms) {
		score *= 1.5
	}

	return score
}

func sortFunc(key sitesearch.SortKey) (func(a, b scoredDocument) bool, error) {
	switch key {
	case sitesearch.SortBestMatch:
		return func(a, b scoredDocument) bool {
			return a.score > b.score
		}, nil
	case sitesearch.SortLastModified:
		return func(a, b scoredDocument) bool {
			return a.document.LastModified > b.document.LastModified
		}, nil
	case sitesearch.SortTitle:
		return func(a, b scoredDocument) bool {
			return strings.ToLower(a.document.Title) < strings.ToLower(b.document.Title)
		}, nil
	default:
		return nil, errors.WithSecondaryError(sitesearch.ErrInvalidOption, errors.Newf("unsupported sort %q", key))
	}
}

func facetValues(field sitesearch.FacetField, doc Document) ([]string, error) {
	switch field {
	case sitesearch.FacetTags:
		return doc.Tags, nil
	case sitesearch.FacetCategory:
		if doc.Category == "" {
			return nil, nil
		}
		return []string{doc.Category}, nil
	default:
		return nil, errors.WithSecondaryError(sitesearch.ErrInvalidOption, errors.Newf("unsupported facet %q", field))
	}
}

// aggregateFacets counts values over all matches, ordered by count then value.
func aggregateFacets(matches []scoredDocument, fields []sitesearch.FacetField) []sitesearch.Facet {
	facets := make([]sitesearch.Facet, 0, len(fields))
	for _, field := range fields {
		counts := make(map[string]int)
		for _, m := range matches {
			values, _ := facetValues(field, m.document)
			for _, v := range values {
				counts[v]++
			}
		}

		values := make([]sitesearch.FacetValue, 0, len(counts))
		for v, c := range counts {
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
