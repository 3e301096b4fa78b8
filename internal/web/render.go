// Package web renders the dashboard as HTML and serves it over HTTP.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/joacominatel/telemetrydash/internal/view"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Card is one summary metric.
type Card struct {
	Label string
	Value string
}

// page is the template data for one render.
type page struct {
	Kind        string
	Title       string
	LoadingText string
	EmptyText   string
	Err         string
	Columns     []string
	Rows        [][]string
	Cards       []Card
	Skeleton    []struct{}
}

// Renderer turns a view.State into HTML.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("dashboard").
		Funcs(template.FuncMap{"even": func(i int) bool { return i%2 == 0 }}).
		ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Fragment writes the dashboard without the surrounding document.
func (r *Renderer) Fragment(w io.Writer, s *view.State) error {
	return r.tmpl.ExecuteTemplate(w, "fragment", newPage(s))
}

// Page writes a complete HTML document.
func (r *Renderer) Page(w io.Writer, s *view.State) error {
	return r.tmpl.ExecuteTemplate(w, "page", newPage(s))
}

// Cards returns the metric cards for s, or nil when none are shown.
func Cards(s *view.State) []Card {
	m := s.Metrics()
	if m == nil {
		return nil
	}
	return []Card{
		{Label: "Total records", Value: strconv.FormatInt(m.TotalRecords, 10)},
		{Label: "Columns", Value: strconv.FormatInt(m.Columns, 10)},
		{Label: "Last 24h", Value: strconv.FormatInt(m.Last24hRecords, 10)},
	}
}

func newPage(s *view.State) page {
	p := page{
		Kind:        s.Kind().String(),
		Title:       view.Title,
		LoadingText: view.LoadingText,
		EmptyText:   view.EmptyText,
		Skeleton:    make([]struct{}, 3),
	}
	switch s.Kind() {
	case view.KindError:
		p.Err = s.Err()
	case view.KindPopulated:
		p.Columns = s.Columns()
		p.Rows = s.Rows()
		p.Cards = Cards(s)
	}
	return p
}
