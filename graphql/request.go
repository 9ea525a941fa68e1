package graphql

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/letmevibethatforyou/sitesearch"
)

// Operation names the query operation and the data field holding its result.
type Operation struct {
	Name     string
	Field    string
	Document string
}

const (
	DefaultOperationName = "MacTrucksQuery"
	DefaultResultField   = "macktrucksearch"
)

const documentTemplate = `
query %s($q: String, $offset: Int, $limit: Int, $language: MackLocaleEnum!, $facets: [MackFacet], $sort: [MackSortOptionsEnum]) {
  %s(q: $q, offset: $offset, limit: $limit, language: $language, facets: $facets, sort: $sort) {
    count
    items {
      uuid
      score
      metadata {
        title
        description
        url
        lastModified
      }
    }
    facets {
      field
      items {
        value
        count
      }
    }
  }
}
`

// DefaultOperation returns the operation the production service expects.
func DefaultOperation() Operation {
	return NewOperation(DefaultOperationName, DefaultResultField)
}

// NewOperation builds the query document for the given operation and result field.
func NewOperation(name, field string) Operation {
	return Operation{
		Name:     name,
		Field:    field,
		Document: fmt.Sprintf(documentTemplate, name, field),
	}
}

// Request is the POST body.
type Request struct {
	OperationName string    `json:"operationName,omitempty"`
	Query         string    `json:"query"`
	Variables     Variables `json:"variables"`
}

// Variables are the query inputs. Offset is a page index.
type Variables struct {
	Q        string       `json:"q"`
	Language string       `json:"language"`
	Facets   []FacetInput `json:"facets"`
	Offset   int          `json:"offset"`
	Limit    int          `json:"limit"`
	Sort     string       `json:"sort"`
}

type FacetInput struct {
	Field string `json:"field"`
}

// NewRequest converts a search configuration into a request body.
func NewRequest(op Operation, term string, cfg *sitesearch.SearchConfig) Request {
	facets := make([]FacetInput, 0, len(cfg.Facets))
	for _, f := range cfg.Facets {
		facets = append(facets, FacetInput{Field: string(f)})
	}

	return Request{
		OperationName: op.Name,
		Query:         op.Document,
		Variables: Variables{
			Q:        term,
			Language: cfg.Language,
			Facets:   facets,
			Offset:   cfg.Offset,
			Limit:    cfg.Limit,
			Sort:     string(cfg.Sort),
		},
	}
}

// Config returns the search configuration carried by the variables.
func (v Variables) Config() *sitesearch.SearchConfig {
	opts := []sitesearch.SearchOption{
		sitesearch.WithOffset(v.Offset),
		sitesearch.WithLimit(v.Limit),
		sitesearch.WithSort(sitesearch.SortKey(v.Sort)),
		sitesearch.WithLanguage(v.Language),
	}
	if v.Facets != nil {
		fields := make([]sitesearch.FacetField, 0, len(v.Facets))
		for _, f := range v.Facets {
			fields = append(fields, sitesearch.FacetField(strings.ToUpper(f.Field)))
		}
		opts = append(opts, sitesearch.WithFacets(fields...))
	}
	return sitesearch.NewSearchConfig(opts...)
}

// Response is the envelope returned by the service.
type Response struct {
	Data   map[string]*Payload `json:"data,omitempty"`
	Errors []ResponseError     `json:"errors,omitempty"`
}

type ResponseError struct {
	Message string `json:"message"`
}

// Payload is the result of the search operation.
type Payload struct {
	Count  int64          `json:"count"`
	Items  []ItemPayload  `json:"items"`
	Facets []FacetPayload `json:"facets"`
}

type ItemPayload struct {
	UUID     string          `json:"uuid,omitempty"`
	ID       string          `json:"id,omitempty"`
	Score    float64         `json:"score"`
	Metadata MetadataPayload `json:"metadata"`
}

type MetadataPayload struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	URL          string          `json:"url"`
	LastModified json.RawMessage `json:"lastModified,omitempty"`
}

type FacetPayload struct {
	Field string              `json:"field"`
	Items []FacetValuePayload `json:"items"`
}

type FacetValuePayload struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Results converts the payload without reordering or filtering anything.
func (p *Payload) Results(term string) *sitesearch.Results {
	results := &sitesearch.Results{
		Items:  make([]sitesearch.Result, 0, len(p.Items)),
		Total:  p.Count,
		Facets: make([]sitesearch.Facet, 0, len(p.Facets)),
		Query:  term,
	}

	for _, item := range p.Items {
		id := item.UUID
		if id == "" {
			id = item.ID
		}
		results.Items = append(results.Items, sitesearch.Result{
			ID:           id,
			Score:        item.Score,
			Title:        item.Metadata.Title,
			Description:  item.Metadata.Description,
			URL:          item.Metadata.URL,
			LastModified: rawText(item.Metadata.LastModified),
		})
	}

	for _, facet := range p.Facets {
		values := make([]sitesearch.FacetValue, 0, len(facet.Items))
		for _, v := range facet.Items {
			values = append(values, sitesearch.FacetValue{Value: v.Value, Count: v.Count})
		}
		results.Facets = append(results.Facets, sitesearch.Facet{
			Field:  sitesearch.FacetField(facet.Field),
			Values: values,
		})
	}

	return results
}

// NewPayload is the inverse of Results, used by servers speaking this format.
func NewPayload(res *sitesearch.Results) *Payload {
	p := &Payload{
		Count:  res.Total,
		Items:  make([]ItemPayload, 0, len(res.Items)),
		Facets: make([]FacetPayload, 0, len(res.Facets)),
	}

	for _, item := range res.Items {
		var lastModified json.RawMessage
		if item.LastModified != "" {
			lastModified, _ = json.Marshal(item.LastModified)
		}
		p.Items = append(p.Items, ItemPayload{
			UUID:  item.ID,
			Score: item.Score,
			Metadata: MetadataPayload{
				Title:        item.Title,
				Description:  item.Description,
				URL:          item.URL,
				LastModified: lastModified,
			},
		})
	}

	for _, facet := range res.Facets {
		items := make([]FacetValuePayload, 0, len(facet.Values))
		for _, v := range facet.Values {
			items = append(items, FacetValuePayload{Value: v.Value, Count: v.Count})
		}
		p.Facets = append(p.Facets, FacetPayload{Field: string(facet.Field), Items: items})
	}

	return p
}

// rawText returns JSON strings unquoted and any other JSON value as written.
func rawText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
