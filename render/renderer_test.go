package render

import (
	"fmt"
	"strings"
	"testing"

	"github.com/letmevibethatforyou/sitesearch"
)

// stubTemplates makes the renderer output easy to assert on.
type stubTemplates struct{}

func (stubTemplates) ResultItems(items []sitesearch.Result, term string) string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return "items:" + strings.Join(ids, ",")
}

func (stubTemplates) Facets(facets []sitesearch.Facet) string {
	return fmt.Sprintf("facets:%d", len(facets))
}

func (stubTemplates) NoResults(message, refine string) string {
	return "none:" + message + "|" + refine
}

func (stubTemplates) ShowingResults(summary string) string {
	return "summary:" + summary
}

func makeItems(n int) []sitesearch.Result {
	items := make([]sitesearch.Result, n)
	for i := range items {
		items[i] = sitesearch.Result{ID: fmt.Sprintf("doc-%d", i+1), Title: fmt.Sprintf("Doc %d", i+1)}
	}
	return items
}

func TestRenderHasResults(t *testing.T) {
	rec := NewRecorder()
	r := New(rec, stubTemplates{}, DefaultLabels())

	res := &sitesearch.Results{
		Items:  makeItems(25),
		Total:  42,
		Facets: []sitesearch.Facet{{Field: sitesearch.FacetTags}, {Field: sitesearch.FacetCategory}},
	}
	state := r.Render(Frame{Term: "engine", Results: res, View: sitesearch.ComputeView(0, sitesearch.PageSize, 42, 25)})

	if state != StateHasResults {
		t.Fatalf("Expected has-results, got %s", state)
	}

	snap := rec.Snapshot()
	if !strings.HasPrefix(snap.Results, "items:doc-1,doc-2") {
		t.Errorf("Unexpected results %q", snap.Results)
	}
	if snap.Facets != "facets:2" {
		t.Errorf("Unexpected facets %q", snap.Facets)
	}
	if snap.Summary != `summary:Showing 25 of 42 results for "engine", starting at 1` {
		t.Errorf("Unexpected summary %q", snap.Summary)
	}
	if snap.Range != "1-25" || snap.Count != 42 {
		t.Errorf("Unexpected range/count %q/%d", snap.Range, snap.Count)
	}
	if !snap.PrevDisabled || snap.NextDisabled {
		t.Errorf("Expected prev disabled and next enabled, got prev=%v next=%v", snap.PrevDisabled, snap.NextDisabled)
	}
	if !snap.PaginationVisible || !snap.SortVisible || snap.NoResults {
		t.Errorf("Unexpected visibility %+v", snap)
	}
}

func TestRenderNoResults(t *testing.T) {
	tests := []struct {
		name     string
		term     string
		expected string
	}{
		{name: "plain term", term: "zzz", expected: `No results found for "zzz"`},
		{name: "empty term", term: "", expected: `No results found for " "`},
		{name: "whitespace term", term: "   \t", expected: `No results found for " "`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecorder()
			r := New(rec, stubTemplates{}, nil)

			// A previous successful render must be fully replaced.
			r.Render(Frame{
				Term:    "engine",
				Results: &sitesearch.Results{Items: makeItems(3), Total: 3, Facets: []sitesearch.Facet{{Field: sitesearch.FacetTags}}},
				View:    sitesearch.ComputeView(0, sitesearch.PageSize, 3, 3),
			})

			state := r.Render(Frame{Term: tt.term, Results: &sitesearch.Results{}, View: sitesearch.ComputeView(0, sitesearch.PageSize, 0, 0)})
			if state != StateNoResults {
				t.Fatalf("Expected no-results, got %s", state)
			}

			snap := rec.Snapshot()
			if snap.Summary != "none:"+tt.expected+"|"+DefaultLabels()[LabelRefine] {
				t.Errorf("Unexpected summary %q", snap.Summary)
			}
			if snap.Results != "" || snap.Facets != "" {
				t.Errorf("Expected results and facets cleared, got %q / %q", snap.Results, snap.Facets)
			}
			if !snap.NoResults || snap.PaginationVisible || snap.SortVisible {
				t.Errorf("Unexpected visibility %+v", snap)
			}
			if !snap.PrevDisabled || !snap.NextDisabled {
				t.Error("Expected both pagination buttons disabled")
			}
			if snap.Count != 0 {
				t.Errorf("Expected count 0, got %d", snap.Count)
			}
		})
	}
}

func TestRenderSummaryUsesRangeStart(t *testing.T) {
	rec := NewRecorder()
	r := New(rec, stubTemplates{}, LabelMap{LabelShowingResults: "$0|$1|$2|$3"})

	r.Render(Frame{
		Term:    "axle",
		Results: &sitesearch.Results{Items: makeItems(17), Total: 42},
		View:    sitesearch.ComputeView(1, sitesearch.PageSize, 42, 17),
	})

	snap := rec.Snapshot()
	if snap.Summary != "summary:26|17|42|axle" {
		t.Errorf("Unexpected summary %q", snap.Summary)
	}
	if snap.Range != "26-42" {
		t.Errorf("Unexpected range %q", snap.Range)
	}
	if snap.PrevDisabled {
		t.Error("Expected prev enabled on second page")
	}
}

func TestInterpolate(t *testing.T) {
	got := Interpolate("$0 to $1 of $2 for $3 ($0)", "1", "25", "42", "engine")
	if got != "1 to 25 of 42 for engine ($0)" {
		t.Errorf("Unexpected interpolation %q", got)
	}
}

func TestLabelMap(t *testing.T) {
	labels := DefaultLabels().Merge(map[string]string{LabelNext: "Weiter"})

	if labels.Label(LabelNext) != "Weiter" {
		t.Errorf("Override not applied: %q", labels.Label(LabelNext))
	}
	if labels.Label("unknown key") != "unknown key" {
		t.Error("Missing labels should fall back to the key")
	}
	if DefaultLabels().Label(LabelNext) != "Next" {
		t.Error("Merge must not modify the receiver")
	}
}
