// Package widget wires the URL state, the query client and the renderer of
// one search widget together behind a single Dispatch entry point.
//
// Every interaction runs the same cycle: update the in-memory state, write
// it to the URL, tag a fetch with the next request id, and render the
// response only if no later fetch has been dispatched in the meantime.
package widget

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/sitesearch"
	"github.com/letmevibethatforyou/sitesearch/render"
	"github.com/letmevibethatforyou/sitesearch/urlstate"
	"github.com/segmentio/ksuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrPaginationDisabled is returned when paging in a direction whose
	// button is currently disabled.
	ErrPaginationDisabled = errors.New("pagination disabled")

	// ErrSuperseded is returned when a response arrived after a later
	// dispatch and was dropped.
	ErrSuperseded = errors.New("response superseded by a later request")
)

// Widget is one search widget instance.
type Widget struct {
	location *urlstate.Location
	searcher sitesearch.Searcher
	renderer *render.Renderer
	tracer   trace.Tracer
	session  ksuid.KSUID

	resetOffset bool
	searchOpts  []sitesearch.SearchOption

	mu      sync.Mutex
	state   sitesearch.SearchState
	input   string
	seq     uint64
	current *sitesearch.Results
	view    sitesearch.PaginationView
}

// Option configures a Widget.
type Option func(*Widget)

// WithResetOffset makes Submit and ChangeSort return to the first page.
// By default the current offset is kept.
func WithResetOffset(reset bool) Option {
	return func(w *Widget) {
		w.resetOffset = reset
	}
}

// WithSearchOptions appends options to every search, e.g. a language.
func WithSearchOptions(opts ...sitesearch.SearchOption) Option {
	return func(w *Widget) {
		w.searchOpts = append(w.searchOpts, opts...)
	}
}

// New creates a widget bound to location. Nothing is fetched until Load.
func New(location *urlstate.Location, searcher sitesearch.Searcher, renderer *render.Renderer, opts ...Option) *Widget {
	w := &Widget{
		location: location,
		searcher: searcher,
		renderer: renderer,
		tracer:   otel.Tracer("sitesearch-widget"),
		session:  ksuid.New(),
		state:    sitesearch.SearchState{Sort: sitesearch.SortBestMatch},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SessionID identifies this widget in logs.
func (w *Widget) SessionID() string {
	return w.session.String()
}

// State returns the current query, offset and sort.
func (w *Widget) State() sitesearch.SearchState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Input returns the live input value.
func (w *Widget) Input() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.input
}

// Results returns the currently rendered result set, or nil before the
// first successful fetch.
func (w *Widget) Results() *sitesearch.Results {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// View returns the pagination state of the current render.
func (w *Widget) View() sitesearch.PaginationView {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.view
}

// SetInput models typing into the search box. It does not search.
func (w *Widget) SetInput(value string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.input = value
}

// Load initializes state from the URL and searches when q is non-empty.
func (w *Widget) Load(ctx context.Context) error {
	return w.restore(ctx, "load")
}

// Restore re-reads state from the URL after a history navigation and
// searches again when q is non-empty.
func (w *Widget) Restore(ctx context.Context) error {
	return w.restore(ctx, "restore")
}

func (w *Widget) restore(ctx context.Context, name string) error {
	ctx, span := w.tracer.Start(ctx, "widget."+name)
	defer span.End()

	w.mu.Lock()
	state, ok := readState(w.location)
	w.state = state
	w.input = state.Term
	if !ok {
		w.mu.Unlock()
		slog.DebugContext(ctx, "No query in URL", "session", w.session.String(), "url", w.location.String())
		return nil
	}
	req := w.begin()
	w.mu.Unlock()

	return w.fetch(ctx, span, req)
}

// Dispatch applies a to the state, syncs the URL and runs one search.
func (w *Widget) Dispatch(ctx context.Context, a Action) error {
	ctx, span := w.tracer.Start(ctx, "widget.Dispatch",
		trace.WithAttributes(attribute.String("widget.action", a.Name())),
	)
	defer span.End()

	w.mu.Lock()
	if err := w.apply(a); err != nil {
		w.mu.Unlock()
		slog.DebugContext(ctx, "Action rejected",
			"session", w.session.String(),
			"action", a.Name(),
			"error", err,
		)
		return err
	}
	req := w.begin()
	w.mu.Unlock()

	return w.fetch(ctx, span, req)
}

// apply mutates state and URL for a. Callers hold w.mu.
func (w *Widget) apply(a Action) error {
	switch act := a.(type) {
	case Submit:
		w.state.Term = w.input
		w.maybeResetOffset()
		w.location.SetParam(urlstate.ParamQuery, w.state.Term)
	case ChangeSort:
		w.state.Sort = act.Sort
		if w.state.Sort == "" {
			w.state.Sort = sitesearch.SortBestMatch
		}
		w.maybeResetOffset()
		w.location.SetParam(urlstate.ParamSort, string(w.state.Sort))
	case PaginateNext:
		if !w.view.NextEnabled {
			return ErrPaginationDisabled
		}
		w.state.Next()
		w.location.SetParam(urlstate.ParamStart, strconv.Itoa(w.state.Offset))
	case PaginatePrev:
		if !w.view.PrevEnabled {
			return ErrPaginationDisabled
		}
		w.state.Prev()
		w.location.SetParam(urlstate.ParamStart, strconv.Itoa(w.state.Offset))
	default:
		return errors.Newf("unknown action %T", a)
	}
	return nil
}

func (w *Widget) maybeResetOffset() {
	if w.resetOffset && w.state.Offset != 0 {
		w.state.Offset = 0
		w.location.SetParam(urlstate.ParamStart, "0")
	}
}

type request struct {
	id    uint64
	state sitesearch.SearchState
}

// begin tags a fetch of the current state. Callers hold w.mu.
func (w *Widget) begin() request {
	w.seq++
	return request{id: w.seq, state: w.state}
}

func (w *Widget) fetch(ctx context.Context, span trace.Span, req request) error {
	span.SetAttributes(
		attribute.Int64("widget.request_id", int64(req.id)),
		attribute.String("search.term", req.state.Term),
		attribute.Int("search.offset", req.state.Offset),
		attribute.String("search.sort", string(req.state.Sort)),
	)

	opts := append([]sitesearch.SearchOption{
		sitesearch.WithOffset(req.state.Offset),
		sitesearch.WithSort(req.state.Sort),
		sitesearch.WithLimit(sitesearch.PageSize),
	}, w.searchOpts...)

	results, err := w.searcher.Search(ctx, req.state.Term, opts...)

	w.mu.Lock()
	defer w.mu.Unlock()

	if req.id != w.seq {
		slog.DebugContext(ctx, "Dropping stale response",
			"session", w.session.String(),
			"request_id", req.id,
			"latest_id", w.seq,
		)
		return ErrSuperseded
	}

	if err == nil && results == nil {
		err = errors.WithSecondaryError(sitesearch.ErrService, errors.New("searcher returned no results"))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		slog.ErrorContext(ctx, "Search failed",
			"session", w.session.String(),
			"request_id", req.id,
			"kind", sitesearch.KindOf(err).String(),
			"error", err,
		)
		return err
	}

	view := sitesearch.ComputeView(req.state.Offset, sitesearch.PageSize, results.Total, len(results.Items))
	state := w.renderer.Render(render.Frame{
		Term:    req.state.Term,
		Results: results,
		View:    view,
	})
	if state == render.StateNoResults {
		view.PrevEnabled = false
		view.NextEnabled = false
	}

	w.current = results
	w.view = view

	slog.InfoContext(ctx, "Rendered results",
		"session", w.session.String(),
		"request_id", req.id,
		"term", req.state.Term,
		"offset", req.state.Offset,
		"total", results.Total,
		"state", state.String(),
	)
	return nil
}

// readState parses q, start and sort. ok reports whether q carries a
// non-empty term. A start or sort value that had to be normalized is written
// back in place so the URL matches the state.
func readState(loc *urlstate.Location) (state sitesearch.SearchState, ok bool) {
	state.Term, _ = loc.ReadParam(urlstate.ParamQuery)

	if raw, found := loc.ReadParam(urlstate.ParamStart); found {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			state.Offset = n
		}
		if normalized := strconv.Itoa(state.Offset); normalized != raw {
			loc.ReplaceParam(urlstate.ParamStart, normalized)
		}
	}

	raw, found := loc.ReadParam(urlstate.ParamSort)
	state.Sort = sitesearch.ParseSortKey(raw)
	if found && string(state.Sort) != raw {
		loc.ReplaceParam(urlstate.ParamSort, string(state.Sort))
	}

	return state, state.Term != ""
}
