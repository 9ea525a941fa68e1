package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/letmevibethatforyou/sitesearch"
)

// Styles contains the style definitions for terminal output.
type Styles struct {
	Title       lipgloss.Style
	URL         lipgloss.Style
	Description lipgloss.Style
	Date        lipgloss.Style
	FacetName   lipgloss.Style
	FacetValue  lipgloss.Style
	Summary     lipgloss.Style
	Warning     lipgloss.Style
	Dim         lipgloss.Style
}

// NewStyles creates a Styles instance with default values.
func NewStyles() *Styles {
	return &Styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		URL:         lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Underline(true),
		Description: lipgloss.NewStyle().PaddingLeft(2),
		Date:        lipgloss.NewStyle().Faint(true),
		FacetName:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		FacetValue:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Summary:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginBottom(1),
		Warning:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Dim:         lipgloss.NewStyle().Faint(true),
	}
}

// TerminalTemplates renders styled plain text for a terminal.
type TerminalTemplates struct {
	Styles *Styles
}

// NewTerminalTemplates uses NewStyles.
func NewTerminalTemplates() *TerminalTemplates {
	return &TerminalTemplates{Styles: NewStyles()}
}

func (t *TerminalTemplates) ResultItems(items []sitesearch.Result, term string) string {
	s := t.Styles
	lines := make([]string, 0, len(items))
	for _, item := range items {
		var b strings.Builder
		b.WriteString(s.Title.Render(item.Title))
		if item.LastModified != "" {
			b.WriteString(" " + s.Date.Render(item.LastModified))
		}
		b.WriteString("\n  " + s.URL.Render(item.URL))
		if item.Description != "" {
			b.WriteString("\n" + s.Description.Render(item.Description))
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n\n")
}

func (t *TerminalTemplates) Facets(facets []sitesearch.Facet) string {
	s := t.Styles
	lines := make([]string, 0, len(facets))
	for _, facet := range facets {
		values := make([]string, 0, len(facet.Values))
		for _, v := range facet.Values {
			values = append(values, s.FacetValue.Render(fmt.Sprintf("%s (%d)", v.Value, v.Count)))
		}
		name := facetName(facet.Field)
		lines = append(lines, s.FacetName.Render(name+":")+" "+strings.Join(values, s.Dim.Render(" · ")))
	}
	return strings.Join(lines, "\n")
}

func (t *TerminalTemplates) NoResults(message, refine string) string {
	return t.Styles.Warning.Render(message) + "\n" + t.Styles.Dim.Render(refine)
}

func (t *TerminalTemplates) ShowingResults(summary string) string {
	return t.Styles.Summary.Render(summary)
}
