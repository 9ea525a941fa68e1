// Package staging serves the search wire format over any sitesearch.Searcher,
// so pages on preview and local hosts have an endpoint to talk to.
package staging

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/sitesearch"
	"github.com/letmevibethatforyou/sitesearch/graphql"
)

const defaultTimeout = 10 * time.Second

// Handler answers search operations.
type Handler struct {
	searcher     sitesearch.Searcher
	operation    graphql.Operation
	timeout      time.Duration
	allowOrigins []string
}

// Option configures a Handler.
type Option func(*Handler)

// WithOperation sets the result field answers are keyed by.
func WithOperation(op graphql.Operation) Option {
	return func(h *Handler) {
		h.operation = op
	}
}

// WithTimeout bounds each search.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithAllowOrigins restricts cross-origin callers. The default allows any origin.
func WithAllowOrigins(origins ...string) Option {
	return func(h *Handler) {
		h.allowOrigins = append([]string{}, origins...)
	}
}

// NewHandler creates a handler over searcher.
func NewHandler(searcher sitesearch.Searcher, opts ...Option) *Handler {
	h := &Handler{
		searcher:  searcher,
		operation: graphql.DefaultOperation(),
		timeout:   defaultTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Search decodes one request body and runs it. The returned status and
// envelope are written as-is by the HTTP and Lambda front ends.
func (h *Handler) Search(ctx context.Context, body []byte) (int, graphql.Response) {
	var req graphql.Request
	if err := json.Unmarshal(body, &req); err != nil {
		slog.WarnContext(ctx, "Invalid request payload", "error", err)
		return http.StatusBadRequest, errorResponse("invalid request payload: " + err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	cfg := req.Variables.Config()
	slog.InfoContext(ctx, "Search request",
		"operation", req.OperationName,
		"q", req.Variables.Q,
		"offset", cfg.Offset,
		"limit", cfg.Limit,
		"sort", string(cfg.Sort),
	)

	results, err := h.searcher.Search(ctx, req.Variables.Q,
		sitesearch.WithOffset(cfg.Offset),
		sitesearch.WithLimit(cfg.Limit),
		sitesearch.WithSort(cfg.Sort),
		sitesearch.WithFacets(cfg.Facets...),
		sitesearch.WithLanguage(cfg.Language),
	)
	if err != nil {
		slog.ErrorContext(ctx, "Search failed", "q", req.Variables.Q, "error", err)
		return statusFor(err), errorResponse(err.Error())
	}

	return http.StatusOK, graphql.Response{
		Data: map[string]*graphql.Payload{
			h.operation.Field: graphql.NewPayload(results),
		},
	}
}

// statusFor keeps query errors at 200, the way GraphQL services report them.
func statusFor(err error) int {
	switch {
	case errors.Is(err, sitesearch.ErrInvalidOption):
		return http.StatusOK
	case errors.Is(err, sitesearch.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, sitesearch.ErrBackendUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorResponse(message string) graphql.Response {
	return graphql.Response{Errors: []graphql.ResponseError{{Message: message}}}
}
