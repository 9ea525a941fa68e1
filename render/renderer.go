// Package render paints search results onto opaque sinks. A render always
// replaces the previous result, facet and summary content as a whole.
package render

import (
	"strconv"
	"strings"

	"github.com/letmevibethatforyou/sitesearch"
)

// Sinks are the page regions the renderer writes to.
type Sinks interface {
	ReplaceResults(markup string)
	ReplaceFacets(markup string)
	ReplaceSummary(markup string)
	// SetNoResults toggles the no-results marker on the summary region.
	SetNoResults(on bool)
	ShowSort(visible bool)
	ShowPagination(visible bool)
	SetCount(total int64)
	SetRange(text string)
	SetPrevDisabled(disabled bool)
	SetNextDisabled(disabled bool)
}

// Templates turn data into markup.
type Templates interface {
	ResultItems(items []sitesearch.Result, term string) string
	Facets(facets []sitesearch.Facet) string
	NoResults(message, refine string) string
	ShowingResults(summary string) string
}

// State is the renderer state after a render.
type State int

const (
	StateHasResults State = iota
	StateNoResults
)

func (s State) String() string {
	if s == StateNoResults {
		return "no-results"
	}
	return "has-results"
}

// Frame is everything one render needs. Term is the term the fetch was
// submitted with, not the live input value.
type Frame struct {
	Term    string
	Results *sitesearch.Results
	View    sitesearch.PaginationView
}

// Renderer is the result renderer.
type Renderer struct {
	sinks     Sinks
	templates Templates
	labels    Labels
}

// New creates a renderer. A nil labels uses DefaultLabels.
func New(sinks Sinks, templates Templates, labels Labels) *Renderer {
	if labels == nil {
		labels = DefaultLabels()
	}
	return &Renderer{
		sinks:     sinks,
		templates: templates,
		labels:    labels,
	}
}

// Labels returns the label lookup in use.
func (r *Renderer) Labels() Labels {
	return r.labels
}

// Render paints f and returns the resulting state.
func (r *Renderer) Render(f Frame) State {
	items := f.Results.Items
	r.sinks.SetCount(f.Results.Total)

	if len(items) == 0 {
		r.renderNoResults(f.Term)
		return StateNoResults
	}

	summary := Interpolate(r.labels.Label(LabelShowingResults),
		strconv.Itoa(f.View.RangeStart),
		strconv.Itoa(len(items)),
		strconv.FormatInt(f.Results.Total, 10),
		f.Term,
	)

	r.sinks.SetNoResults(false)
	r.sinks.ReplaceResults(r.templates.ResultItems(items, f.Term))
	r.sinks.ReplaceFacets(r.templates.Facets(f.Results.Facets))
	r.sinks.ReplaceSummary(r.templates.ShowingResults(summary))
	r.sinks.ShowSort(true)

	r.sinks.ShowPagination(true)
	r.sinks.SetRange(RangeText(f.View))
	r.sinks.SetPrevDisabled(!f.View.PrevEnabled)
	r.sinks.SetNextDisabled(!f.View.NextEnabled)

	return StateHasResults
}

func (r *Renderer) renderNoResults(term string) {
	message := Interpolate(r.labels.Label(LabelNoResults), `"`+NoResultsTerm(term)+`"`)

	r.sinks.SetNoResults(true)
	r.sinks.ReplaceResults("")
	r.sinks.ReplaceFacets("")
	r.sinks.ReplaceSummary(r.templates.NoResults(message, r.labels.Label(LabelRefine)))
	r.sinks.ShowSort(false)

	r.sinks.ShowPagination(false)
	r.sinks.SetRange("")
	r.sinks.SetPrevDisabled(true)
	r.sinks.SetNextDisabled(true)
}

// NoResultsTerm returns term, or a single space when term is blank so the
// quoted term is never empty.
func NoResultsTerm(term string) string {
	if strings.TrimSpace(term) == "" {
		return " "
	}
	return term
}

// RangeText formats the visible item range, e.g. "26-50".
func RangeText(v sitesearch.PaginationView) string {
	return strconv.Itoa(v.RangeStart) + "-" + strconv.Itoa(v.RangeEnd)
}
