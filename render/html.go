package render

import (
	"html/template"
	"log/slog"
	"strings"

	"github.com/letmevibethatforyou/sitesearch"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// facetName turns a facet field such as TAGS into a heading such as Tags.
func facetName(f sitesearch.FacetField) string {
	return cases.Title(language.English).String(strings.ToLower(string(f)))
}

var htmlTemplates = template.Must(template.New("search").Funcs(template.FuncMap{
	"facetName": facetName,
}).Parse(`
{{define "items"}}<ul class="search-results" data-term="{{.Term}}">
{{- range .Items}}
<li class="search-result" data-id="{{.ID}}"><a class="search-result-title" href="{{.URL}}">{{.Title}}</a>
{{- with .Description}}<p class="search-result-description">{{.}}</p>{{end}}
{{- with .LastModified}}<time class="search-result-date">{{.}}</time>{{end}}</li>
{{- end}}
</ul>{{end}}

{{define "facets"}}<div class="search-facets">
{{- range .}}
<div class="search-facet" data-field="{{.Field}}"><h3>{{facetName .Field}}</h3><ul>
{{- range .Values}}<li><span class="facet-value">{{.Value}}</span> <span class="facet-count">({{.Count}})</span></li>{{end}}
</ul></div>
{{- end}}
</div>{{end}}

{{define "noresults"}}<div class="search-no-results"><p class="no-results-message">{{.Message}}</p><p class="no-results-refine">{{.Refine}}</p></div>{{end}}

{{define "summary"}}<p class="search-summary">{{.}}</p>{{end}}
`))

// HTMLTemplates renders escaped HTML fragments.
type HTMLTemplates struct{}

func (HTMLTemplates) ResultItems(items []sitesearch.Result, term string) string {
	return execute("items", struct {
		Items []sitesearch.Result
		Term  string
	}{items, term})
}

func (HTMLTemplates) Facets(facets []sitesearch.Facet) string {
	return execute("facets", facets)
}

func (HTMLTemplates) NoResults(message, refine string) string {
	return execute("noresults", struct {
		Message string
		Refine  string
	}{message, refine})
}

func (HTMLTemplates) ShowingResults(summary string) string {
	return execute("summary", summary)
}

func execute(name string, data any) string {
	var b strings.Builder
	if err := htmlTemplates.ExecuteTemplate(&b, name, data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
		return ""
	}
	return b.String()
}
