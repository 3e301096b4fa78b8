package dashboard

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joacominatel/telemetrydash/internal/database"
)

// CopiedMsg reports the outcome of a clipboard copy.
type CopiedMsg struct {
	What string
	Err  error
}

var errNothingToCopy = errors.New("no row to copy")

var writeClipboard = clipboard.WriteAll

// copyRow copies the top visible row to the clipboard as JSON or CSV.
func (m Model) copyRow(format string) tea.Cmd {
	if m.state == nil || m.scrollY >= len(m.state.Records()) {
		return func() tea.Msg { return CopiedMsg{Err: errNothingToCopy} }
	}

	var text string
	switch format {
	case "json":
		text = rowToJSON(m.state.Columns(), m.state.Records()[m.scrollY])
	default:
		text = rowToCSV(m.state.Columns(), m.rows[m.scrollY])
	}

	what := "row as " + strings.ToUpper(format)
	return func() tea.Msg {
		return CopiedMsg{What: what, Err: writeClipboard(text)}
	}
}

// rowToJSON keeps column order and the scalar types of the record.
func rowToJSON(columns []string, rec *database.Record) string {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, col := range columns {
		if i > 0 {
			b.WriteByte(',')
		}
		key, _ := json.Marshal(col)
		b.Write(key)
		b.WriteByte(':')

		v, _ := rec.Get(col)
		var val []byte
		switch v.Kind() {
		case database.KindNull:
			val = []byte("null")
		case database.KindNumber:
			if n := v.Number(); math.IsInf(n, 0) || math.IsNaN(n) {
				val, _ = json.Marshal(v.String())
			} else {
				val = []byte(v.String())
			}
		case database.KindBool:
			val = []byte(v.String())
		default:
			val, _ = json.Marshal(v.String())
		}
		b.Write(val)
	}
	b.WriteByte('}')
	return b.String()
}

func rowToCSV(columns, row []string) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(columns)
	_ = w.Write(row)
	w.Flush()
	return b.String()
}
