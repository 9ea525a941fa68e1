package widget

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/sitesearch"
	"github.com/letmevibethatforyou/sitesearch/render"
	"github.com/letmevibethatforyou/sitesearch/urlstate"
)

// plainTemplates renders unescaped text so assertions stay readable.
type plainTemplates struct{}

func (plainTemplates) ResultItems(items []sitesearch.Result, term string) string {
	titles := make([]string, 0, len(items))
	for _, item := range items {
		titles = append(titles, item.Title)
	}
	return strings.Join(titles, "|")
}

func (plainTemplates) Facets(facets []sitesearch.Facet) string {
	return fmt.Sprintf("%d facets", len(facets))
}

func (plainTemplates) NoResults(message, refine string) string {
	return message + " " + refine
}

func (plainTemplates) ShowingResults(summary string) string {
	return summary
}

type call struct {
	term   string
	offset int
	sort   sitesearch.SortKey
}

// fakeSearcher records calls and answers with n generated items out of total.
type fakeSearcher struct {
	mu    sync.Mutex
	calls []call
	total int64
	items int
	err   error
}

func (f *fakeSearcher) Search(ctx context.Context, term string, opts ...sitesearch.SearchOption) (*sitesearch.Results, error) {
	cfg := sitesearch.NewSearchConfig(opts...)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{term: term, offset: cfg.Offset, sort: cfg.Sort})
	if f.err != nil {
		return nil, f.err
	}
	return pageOf(term, f.items, f.total), nil
}

func (f *fakeSearcher) lastCall(t *testing.T) call {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		t.Fatal("Expected a search call")
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func pageOf(term string, n int, total int64) *sitesearch.Results {
	res := &sitesearch.Results{Total: total, Query: term}
	for i := 0; i < n; i++ {
		res.Items = append(res.Items, sitesearch.Result{
			ID:    fmt.Sprintf("%s-%d", term, i),
			Title: fmt.Sprintf("%s %d", term, i),
		})
	}
	return res
}

func newWidget(t *testing.T, raw string, searcher sitesearch.Searcher, opts ...Option) (*Widget, *render.Recorder, *urlstate.Location) {
	t.Helper()
	loc, err := urlstate.New(raw)
	if err != nil {
		t.Fatalf("urlstate.New failed: %v", err)
	}
	rec := render.NewRecorder()
	w := New(loc, searcher, render.New(rec, plainTemplates{}, nil), opts...)
	return w, rec, loc
}

func param(t *testing.T, loc *urlstate.Location, key string) string {
	t.Helper()
	v, ok := loc.ReadParam(key)
	if !ok {
		t.Fatalf("Expected URL parameter %q in %s", key, loc.String())
	}
	return v
}

func TestLoadRendersFirstPage(t *testing.T) {
	searcher := &fakeSearcher{total: 42, items: 25}
	w, rec, _ := newWidget(t, "https://www.example.com/search?q=engine&start=0", searcher)

	if err := w.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	got := searcher.lastCall(t)
	if got != (call{term: "engine", offset: 0, sort: sitesearch.SortBestMatch}) {
		t.Errorf("Unexpected call %+v", got)
	}

	snap := rec.Snapshot()
	if snap.Range != "1-25" {
		t.Errorf("Expected range 1-25, got %q", snap.Range)
	}
	if snap.Count != 42 {
		t.Errorf("Expected count 42, got %d", snap.Count)
	}
	if snap.NextDisabled {
		t.Error("Expected next enabled")
	}
	if !snap.PrevDisabled {
		t.Error("Expected prev disabled")
	}
	if !snap.PaginationVisible || snap.NoResults {
		t.Errorf("Unexpected visibility %+v", snap)
	}
	if want := `Showing 25 of 42 results for "engine", starting at 1`; snap.Summary != want {
		t.Errorf("Expected summary %q, got %q", want, snap.Summary)
	}
	if w.Input() != "engine" {
		t.Errorf("Expected input to be restored, got %q", w.Input())
	}
}

func TestLoadWithoutQuery(t *testing.T) {
	searcher := &fakeSearcher{total: 1, items: 1}
	w, rec, _ := newWidget(t, "https://www.example.com/search?start=3&sort=title", searcher)

	if err := w.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if searcher.callCount() != 0 {
		t.Errorf("Expected no search, got %d", searcher.callCount())
	}
	if rec.Snapshot().Mutations != 0 {
		t.Error("Expected no render")
	}
	state := w.State()
	if state.Offset != 3 || state.Sort != sitesearch.SortTitle {
		t.Errorf("Unexpected state %+v", state)
	}
}

func TestLoadIgnoresInvalidStart(t *testing.T) {
	for _, raw := range []string{"abc", "-2", ""} {
		t.Run(raw, func(t *testing.T) {
			searcher := &fakeSearcher{total: 1, items: 1}
			w, _, _ := newWidget(t, "https://www.example.com/?q=x&start="+raw, searcher)

			if err := w.Load(context.Background()); err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if got := searcher.lastCall(t).offset; got != 0 {
				t.Errorf("Expected offset 0, got %d", got)
			}
		})
	}
}

func TestLoadWithEmptyQuery(t *testing.T) {
	searcher := &fakeSearcher{total: 1, items: 1}
	w, rec, _ := newWidget(t, "https://www.example.com/search?q=&start=2", searcher)

	if err := w.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if searcher.callCount() != 0 {
		t.Errorf("Expected no search, got %d", searcher.callCount())
	}
	if m := rec.Snapshot().Mutations; m != 0 {
		t.Errorf("Expected no render, got %d mutations", m)
	}
	if w.Results() != nil {
		t.Error("Expected no current results")
	}
}

func TestLoadNormalizesURL(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		expectStart string
		expectSort  string
		offset      int
		sort        sitesearch.SortKey
	}{
		{
			name:       "lowercase sort",
			query:      "q=x&sort=title",
			expectSort: "TITLE",
			sort:       sitesearch.SortTitle,
		},
		{
			name:        "negative start",
			query:       "q=x&start=-2&sort=LAST_MODIFIED",
			expectStart: "0",
			expectSort:  "LAST_MODIFIED",
			sort:        sitesearch.SortLastModified,
		},
		{
			name:        "non-numeric start and blank sort",
			query:       "q=x&start=abc&sort=",
			expectStart: "0",
			expectSort:  "BEST_MATCH",
			sort:        sitesearch.SortBestMatch,
		},
		{
			name:        "padded start",
			query:       "q=x&start=03",
			expectStart: "3",
			offset:      3,
			sort:        sitesearch.SortBestMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := "https://www.example.com/search?" + tt.query
			history := urlstate.NewMemoryHistory(raw)
			loc, err := urlstate.New(raw, urlstate.WithHistory(history), urlstate.WithPushHistory())
			if err != nil {
				t.Fatalf("urlstate.New failed: %v", err)
			}
			searcher := &fakeSearcher{total: 100, items: 25}
			w := New(loc, searcher, render.New(render.NewRecorder(), plainTemplates{}, nil))

			if err := w.Load(context.Background()); err != nil {
				t.Fatalf("Load failed: %v", err)
			}

			state := w.State()
			if state.Offset != tt.offset || state.Sort != tt.sort {
				t.Errorf("Unexpected state %+v", state)
			}
			if got := searcher.lastCall(t); got.offset != tt.offset || got.sort != tt.sort {
				t.Errorf("Unexpected call %+v", got)
			}

			if tt.expectStart != "" {
				if got := param(t, loc, urlstate.ParamStart); got != tt.expectStart {
					t.Errorf("Expected start=%s, got %q", tt.expectStart, got)
				}
			}
			if tt.expectSort != "" {
				if got := param(t, loc, urlstate.ParamSort); got != tt.expectSort {
					t.Errorf("Expected sort=%s, got %q", tt.expectSort, got)
				}
			}

			if history.Len() != 1 {
				t.Errorf("Expected corrections to replace the entry, history has %d", history.Len())
			}
			if history.Current() != loc.String() {
				t.Errorf("Expected history at %s, got %s", loc.String(), history.Current())
			}
		})
	}
}

func TestNilResultsAreServiceError(t *testing.T) {
	searcher := sitesearch.SearcherFunc(func(context.Context, string, ...sitesearch.SearchOption) (*sitesearch.Results, error) {
		return nil, nil
	})
	w, rec, _ := newWidget(t, "https://www.example.com/search?q=engine", searcher)

	err := w.Load(context.Background())
	if !errors.Is(err, sitesearch.ErrService) {
		t.Fatalf("Expected ErrService, got %v", err)
	}
	if rec.Snapshot().Mutations != 0 {
		t.Error("Expected no render")
	}
}

func TestPaginatePrev(t *testing.T) {
	searcher := &fakeSearcher{total: 42, items: 17}
	w, rec, loc := newWidget(t, "https://www.example.com/search?q=engine&start=1", searcher)
	ctx := context.Background()

	if err := w.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if rec.Snapshot().Range != "26-42" {
		t.Errorf("Expected range 26-42, got %q", rec.Snapshot().Range)
	}

	searcher.items = 25
	if err := w.Dispatch(ctx, PaginatePrev{}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	if w.State().Offset != 0 {
		t.Errorf("Expected offset 0, got %d", w.State().Offset)
	}
	if got := param(t, loc, urlstate.ParamStart); got != "0" {
		t.Errorf("Expected start=0, got %q", got)
	}
	if got := searcher.lastCall(t); got.offset != 0 || got.term != "engine" {
		t.Errorf("Unexpected call %+v", got)
	}
	if searcher.callCount() != 2 {
		t.Errorf("Expected 2 calls, got %d", searcher.callCount())
	}
	if !rec.Snapshot().PrevDisabled {
		t.Error("Expected prev disabled on first page")
	}
}

func TestPaginateNext(t *testing.T) {
	searcher := &fakeSearcher{total: 42, items: 25}
	w, rec, loc := newWidget(t, "https://www.example.com/search?q=engine&sort=TITLE", searcher)
	ctx := context.Background()

	if err := w.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	searcher.items = 17
	if err := w.Dispatch(ctx, PaginateNext{}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	if got := param(t, loc, urlstate.ParamStart); got != "1" {
		t.Errorf("Expected start=1, got %q", got)
	}
	if got := searcher.lastCall(t); got != (call{term: "engine", offset: 1, sort: sitesearch.SortTitle}) {
		t.Errorf("Expected sort to survive pagination, got %+v", got)
	}

	snap := rec.Snapshot()
	if snap.Range != "26-42" {
		t.Errorf("Expected range 26-42, got %q", snap.Range)
	}
	if snap.PrevDisabled {
		t.Error("Expected prev enabled")
	}
	// 25 <= 42 keeps next enabled on the last page.
	if snap.NextDisabled {
		t.Error("Expected next enabled")
	}
}

func TestPaginationDisabled(t *testing.T) {
	searcher := &fakeSearcher{total: 10, items: 10}
	w, _, _ := newWidget(t, "https://www.example.com/?q=engine", searcher)
	ctx := context.Background()

	if err := w.Dispatch(ctx, PaginateNext{}); !errors.Is(err, ErrPaginationDisabled) {
		t.Errorf("Expected ErrPaginationDisabled before load, got %v", err)
	}

	if err := w.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := w.Dispatch(ctx, PaginatePrev{}); !errors.Is(err, ErrPaginationDisabled) {
		t.Errorf("Expected ErrPaginationDisabled on first page, got %v", err)
	}
	if searcher.callCount() != 1 {
		t.Errorf("Expected rejected actions not to search, got %d calls", searcher.callCount())
	}

	searcher.items, searcher.total = 0, 0
	w.SetInput("nothing")
	if err := w.Dispatch(ctx, Submit{}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if err := w.Dispatch(ctx, PaginateNext{}); !errors.Is(err, ErrPaginationDisabled) {
		t.Errorf("Expected ErrPaginationDisabled after no results, got %v", err)
	}
}

func TestSubmit(t *testing.T) {
	tests := map[string]struct {
		reset        bool
		expectOffset int
	}{
		"keeps_offset":  {reset: false, expectOffset: 2},
		"resets_offset": {reset: true, expectOffset: 0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			searcher := &fakeSearcher{total: 100, items: 25}
			w, rec, loc := newWidget(t, "https://www.example.com/search?lang=en&q=engine&start=2", searcher, WithResetOffset(tc.reset))
			ctx := context.Background()

			if err := w.Load(ctx); err != nil {
				t.Fatalf("Load failed: %v", err)
			}

			w.SetInput("transmission")
			if err := w.Dispatch(ctx, Submit{}); err != nil {
				t.Fatalf("Dispatch failed: %v", err)
			}

			got := searcher.lastCall(t)
			if got.term != "transmission" || got.offset != tc.expectOffset {
				t.Errorf("Unexpected call %+v", got)
			}
			if q := param(t, loc, urlstate.ParamQuery); q != "transmission" {
				t.Errorf("Expected q=transmission, got %q", q)
			}
			if start := param(t, loc, urlstate.ParamStart); start != fmt.Sprint(tc.expectOffset) {
				t.Errorf("Expected start=%d, got %q", tc.expectOffset, start)
			}
			if lang := param(t, loc, "lang"); lang != "en" {
				t.Errorf("Expected unrelated parameter kept, got %q", lang)
			}
			if !strings.Contains(rec.Snapshot().Results, "transmission 0") {
				t.Errorf("Expected new results, got %q", rec.Snapshot().Results)
			}
		})
	}
}

func TestChangeSort(t *testing.T) {
	searcher := &fakeSearcher{total: 100, items: 25}
	w, _, loc := newWidget(t, "https://www.example.com/search?q=engine&start=1", searcher)
	ctx := context.Background()

	if err := w.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Typing without submitting must not change the searched term.
	w.SetInput("draft")
	if err := w.Dispatch(ctx, ChangeSort{Sort: sitesearch.SortLastModified}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	got := searcher.lastCall(t)
	if got != (call{term: "engine", offset: 1, sort: sitesearch.SortLastModified}) {
		t.Errorf("Unexpected call %+v", got)
	}
	if s := param(t, loc, urlstate.ParamSort); s != "LAST_MODIFIED" {
		t.Errorf("Expected sort=LAST_MODIFIED, got %q", s)
	}
}

func TestNoResults(t *testing.T) {
	searcher := &fakeSearcher{}
	w, rec, _ := newWidget(t, "https://www.example.com/search?q=%20%20", searcher)

	if err := w.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	snap := rec.Snapshot()
	if !snap.NoResults {
		t.Error("Expected no-results state")
	}
	if !strings.HasPrefix(snap.Summary, `No results found for " "`) {
		t.Errorf("Unexpected summary %q", snap.Summary)
	}
	if snap.PaginationVisible || snap.SortVisible {
		t.Error("Expected pagination and sort hidden")
	}
}

func TestServiceErrorKeepsRender(t *testing.T) {
	searcher := &fakeSearcher{total: 42, items: 25}
	w, rec, _ := newWidget(t, "https://www.example.com/search?q=engine", searcher)
	ctx := context.Background()

	if err := w.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	before := rec.Snapshot()
	current := w.Results()

	searcher.err = sitesearch.NewServiceError("boom")
	w.SetInput("other")
	err := w.Dispatch(ctx, Submit{})
	if sitesearch.KindOf(err) != sitesearch.KindService {
		t.Fatalf("Expected service error, got %v", err)
	}

	if after := rec.Snapshot(); after != before {
		t.Errorf("Expected no sink mutation on error\nbefore: %+v\nafter:  %+v", before, after)
	}
	if w.Results() != current {
		t.Error("Expected current results to be kept")
	}
}

func TestLatestDispatchWins(t *testing.T) {
	type pending struct {
		results chan *sitesearch.Results
	}
	var (
		mu      sync.Mutex
		waiting = map[string]pending{}
		entered = make(chan string, 2)
	)
	searcher := sitesearch.SearcherFunc(func(ctx context.Context, term string, opts ...sitesearch.SearchOption) (*sitesearch.Results, error) {
		p := pending{results: make(chan *sitesearch.Results, 1)}
		mu.Lock()
		waiting[term] = p
		mu.Unlock()
		entered <- term
		return <-p.results, nil
	})
	release := func(term string, res *sitesearch.Results) {
		mu.Lock()
		p := waiting[term]
		mu.Unlock()
		p.results <- res
	}

	w, rec, _ := newWidget(t, "https://www.example.com/search", searcher)
	ctx := context.Background()

	done := map[string]chan error{"a": make(chan error, 1), "b": make(chan error, 1)}
	for _, term := range []string{"a", "b"} {
		w.SetInput(term)
		go func(term string) {
			done[term] <- w.Dispatch(ctx, Submit{})
		}(term)
		select {
		case got := <-entered:
			if got != term {
				t.Fatalf("Expected %s in flight, got %s", term, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("Timed out waiting for %s", term)
		}
	}

	release("b", pageOf("b", 3, 3))
	if err := <-done["b"]; err != nil {
		t.Fatalf("Dispatch b failed: %v", err)
	}
	release("a", pageOf("a", 5, 5))
	if err := <-done["a"]; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("Expected ErrSuperseded for a, got %v", err)
	}

	snap := rec.Snapshot()
	if snap.Results != "b 0|b 1|b 2" {
		t.Errorf("Expected results of b, got %q", snap.Results)
	}
	if snap.Count != 3 {
		t.Errorf("Expected count 3, got %d", snap.Count)
	}
	if w.Results().Query != "b" {
		t.Errorf("Expected current results of b, got %q", w.Results().Query)
	}
}

func TestRestore(t *testing.T) {
	searcher := &fakeSearcher{total: 60, items: 25}
	history := urlstate.NewMemoryHistory("https://www.example.com/search?q=engine")
	loc, err := urlstate.New("https://www.example.com/search?q=engine", urlstate.WithHistory(history), urlstate.WithPushHistory())
	if err != nil {
		t.Fatalf("urlstate.New failed: %v", err)
	}
	rec := render.NewRecorder()
	w := New(loc, searcher, render.New(rec, plainTemplates{}, nil))
	ctx := context.Background()

	if err := w.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := w.Dispatch(ctx, PaginateNext{}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	prev, ok := history.Back()
	if !ok {
		t.Fatal("Expected a history entry to go back to")
	}
	if err := loc.Navigate(prev); err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}
	if err := w.Restore(ctx); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if w.State().Offset != 0 {
		t.Errorf("Expected offset 0 after back, got %d", w.State().Offset)
	}
	if got := searcher.lastCall(t); got.offset != 0 {
		t.Errorf("Expected refetch of first page, got %+v", got)
	}
	if rec.Snapshot().Range != "1-25" {
		t.Errorf("Expected range 1-25, got %q", rec.Snapshot().Range)
	}
}
