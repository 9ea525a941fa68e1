// Package graphql is the Query Client of the search widget. It posts one
// query operation per search to the remote service and normalizes the answer.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/sitesearch"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"
)

const maxResponseBytes = 8 << 20

// Client implements sitesearch.Searcher against the remote search endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	operation  Operation
	language   string
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithOperation replaces the default operation and result field.
func WithOperation(op Operation) Option {
	return func(c *Client) {
		c.operation = op
	}
}

// WithLanguage sets the locale sent with every request.
func WithLanguage(tag language.Tag) Option {
	return func(c *Client) {
		c.language = LocaleEnum(tag)
	}
}

// LocaleEnum maps a language tag to the service enum, e.g. en-US to "EN".
func LocaleEnum(tag language.Tag) string {
	base, _ := tag.Base()
	if base.String() == "und" {
		return sitesearch.DefaultLanguage
	}
	return strings.ToUpper(base.String())
}

// NewClient creates a client posting to endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		endpoint:   endpoint,
		operation:  DefaultOperation(),
		language:   sitesearch.DefaultLanguage,
		tracer:     otel.Tracer("sitesearch-graphql"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL requests are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Search implements the sitesearch.Searcher interface.
func (c *Client) Search(ctx context.Context, term string, opts ...sitesearch.SearchOption) (*sitesearch.Results, error) {
	startTime := time.Now()

	select {
	case <-ctx.Done():
		return nil, sitesearch.ErrCanceled
	default:
	}

	cfg := sitesearch.NewSearchConfig(append([]sitesearch.SearchOption{sitesearch.WithLanguage(c.language)}, opts...)...)

	ctx, span := c.tracer.Start(ctx, "graphql.search",
		trace.WithAttributes(
			attribute.String("search.endpoint", c.endpoint),
			attribute.String("search.operation", c.operation.Name),
			attribute.Int("search.offset", cfg.Offset),
			attribute.Int("search.limit", cfg.Limit),
			attribute.String("search.sort", string(cfg.Sort)),
		),
	)
	defer span.End()

	results, err := c.do(ctx, term, cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, sitesearch.KindOf(err).String())
		return nil, err
	}

	results.Took = time.Since(startTime).Milliseconds()
	span.SetAttributes(
		attribute.Int64("search.total", results.Total),
		attribute.Int("search.items", len(results.Items)),
	)
	span.SetStatus(codes.Ok, "search completed")
	return results, nil
}

func (c *Client) do(ctx context.Context, term string, cfg *sitesearch.SearchConfig) (*sitesearch.Results, error) {
	body, err := json.Marshal(NewRequest(c.operation, term, cfg))
	if err != nil {
		return nil, errors.WithSecondaryError(sitesearch.ErrInvalidOption, errors.Wrap(err, "failed to encode request"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.WithSecondaryError(sitesearch.ErrNetwork, errors.Wrapf(err, "failed to build request for %s", c.endpoint))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(ctx, c.endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, transportError(ctx, c.endpoint, err)
	}

	var envelope Response
	if err := json.Unmarshal(raw, &envelope); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, sitesearch.NewServiceError(fmt.Sprintf("unexpected status %d", resp.StatusCode))
		}
		return nil, errors.WithSecondaryError(sitesearch.ErrService, errors.Wrap(err, "malformed response body"))
	}

	// any errors member, even an empty list, fails the search
	if envelope.Errors != nil {
		messages := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			messages = append(messages, e.Message)
		}
		return nil, sitesearch.NewServiceError(messages...)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, sitesearch.NewServiceError(fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	payload := envelope.Data[c.operation.Field]
	if payload == nil {
		return nil, sitesearch.NewServiceError(fmt.Sprintf("response has no %s result", c.operation.Field))
	}

	return payload.Results(term), nil
}

func transportError(ctx context.Context, endpoint string, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return sitesearch.ErrTimeout
	case errors.Is(ctx.Err(), context.Canceled):
		return sitesearch.ErrCanceled
	}
	return errors.WithSecondaryError(sitesearch.ErrNetwork, errors.Wrapf(err, "POST %s failed", endpoint))
}
