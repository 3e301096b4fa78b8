// Package printer writes a dashboard view as plain text for
// non-interactive use.
package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/joacominatel/telemetrydash/internal/view"
	"github.com/mattn/go-runewidth"
)

// Options controls text output.
type Options struct {
	MaxWidth int // max width for each column, 0 = 40
}

var (
	titleColor  = color.New(color.FgCyan, color.Bold)
	headerColor = color.New(color.Bold)
	errorColor  = color.New(color.FgRed)
	mutedColor  = color.New(color.FgHiBlack)
	valueColor  = color.New(color.FgYellow, color.Bold)
)

// Render writes the branch selected by s.Kind().
func Render(w io.Writer, s *view.State, opts Options) {
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = 40
	}

	switch s.Kind() {
	case view.KindNotReady:
		return
	case view.KindLoading:
		mutedColor.Fprintln(w, view.LoadingText)
	case view.KindError:
		errorColor.Fprintf(w, "Error: %s\n", s.Err())
	case view.KindEmpty:
		titleColor.Fprintln(w, view.Title)
		fmt.Fprintln(w)
		mutedColor.Fprintln(w, view.EmptyText)
	default:
		titleColor.Fprintln(w, view.Title)
		fmt.Fprintln(w)
		if m := s.Metrics(); m != nil {
			renderCard(w, "Total records", m.TotalRecords)
			renderCard(w, "Columns", m.Columns)
			renderCard(w, "Last 24h", m.Last24hRecords)
			fmt.Fprintln(w)
		}
		renderTable(w, s.Columns(), s.Rows(), opts.MaxWidth)
	}
}

func renderCard(w io.Writer, label string, value int64) {
	mutedColor.Fprintf(w, "%-14s ", label+":")
	valueColor.Fprintf(w, "%d\n", value)
}

func renderTable(w io.Writer, columns []string, rows [][]string, maxWidth int) {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = min(runewidth.StringWidth(col), maxWidth)
	}
	for _, r := range rows {
		for i, cell := range r {
			if l := min(runewidth.StringWidth(cell), maxWidth); l > widths[i] {
				widths[i] = l
			}
		}
	}

	sep := func(ch string) string {
		var b strings.Builder
		b.WriteString("+")
		for i := range widths {
			b.WriteString(strings.Repeat(ch, widths[i]+2))
			b.WriteString("+")
		}
		return b.String()
	}

	writeRow := func(cells []string, c *color.Color) {
		var b strings.Builder
		b.WriteString("|")
		for i, cell := range cells {
			b.WriteString(" ")
			b.WriteString(c.Sprint(runewidth.FillRight(runewidth.Truncate(cell, widths[i], "..."), widths[i])))
			b.WriteString(" |")
		}
		fmt.Fprintln(w, b.String())
	}

	plain := color.New()
	fmt.Fprintln(w, sep("-"))
	writeRow(columns, headerColor)
	fmt.Fprintln(w, sep("="))
	for _, r := range rows {
		writeRow(r, plain)
	}
	fmt.Fprintln(w, sep("-"))
}
