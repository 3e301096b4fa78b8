package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/telemetrydash/internal/app"
	"github.com/joacominatel/telemetrydash/internal/database"
	"github.com/joacominatel/telemetrydash/internal/database/databasetest"
	"github.com/joacominatel/telemetrydash/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activated(t *testing.T, d database.Driver) *view.State {
	t.Helper()
	svc := app.NewService(d, app.Source{
		Schema:          "public",
		Table:           "curated_intelifalhas",
		TimestampColumn: "data_hora",
		Limit:           10,
		Variant:         app.VariantMetrics,
	}, nil, app.WithClock(func() time.Time { return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC) }))
	c := view.NewController(svc, app.VariantMetrics)
	require.NoError(t, c.Activate(context.Background()))
	return c.State()
}

func TestViewPopulated(t *testing.T) {
	m := New()
	m.SetSize(120, 40)
	m.SetState(activated(t, databasetest.Scenario()))

	out := m.View()
	assert.Contains(t, out, view.Title)
	for _, want := range []string{"id", "data_hora", "status", "2024-01-01T00:00:00Z", "ok", "42", "Last 24h", "1 row(s)"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, view.EmptyText)
}

func TestViewEmpty(t *testing.T) {
	m := New()
	m.SetState(activated(t, &databasetest.Driver{Total: 1}))

	out := m.View()
	assert.Contains(t, out, view.EmptyText)
	assert.NotContains(t, out, "Total records")
}

func TestViewError(t *testing.T) {
	m := New()
	m.SetState(activated(t, &databasetest.Driver{SelectErr: errors.New("connection refused")}))

	out := m.View()
	assert.Contains(t, out, "connection refused")
	assert.Equal(t, 1, strings.Count(out, "Error:"))
	assert.NotContains(t, out, "Total records")
}

func TestViewNotReadyAndLoading(t *testing.T) {
	m := New()
	assert.Empty(t, m.View())

	s := view.NewState(app.VariantMetrics)
	m.SetState(s)
	assert.Empty(t, m.View())

	s.Activate()
	m.SetState(s)
	assert.Contains(t, m.View(), view.LoadingText)
}

func TestScrollIsBounded(t *testing.T) {
	d := databasetest.Scenario()
	d.Records = append(d.Records, databasetest.Record(
		"id", database.Int(2),
		"data_hora", database.String("2024-01-01T01:00:00Z"),
		"status", database.String("fail"),
	))

	m := New()
	m.SetSize(80, 30)
	m.SetState(activated(t, d))

	down := tea.KeyMsg{Type: tea.KeyDown}
	for range 5 {
		m, _ = m.Update(down)
	}
	assert.Equal(t, 1, m.scrollY)

	right := tea.KeyMsg{Type: tea.KeyRight}
	for range 5 {
		m, _ = m.Update(right)
	}
	assert.Equal(t, 2, m.scrollX)
	assert.NotContains(t, m.View(), "data_hora")
}

func TestFit(t *testing.T) {
	assert.Equal(t, "ab   ", fit("ab", 5))
	assert.Equal(t, "abcd…", fit("abcdefgh", 5))
	assert.Equal(t, 5, lipgloss.Width(fit("ação-ação", 5)))
	assert.Equal(t, "…", fit("abc", 0))
}

func TestCopyTopRow(t *testing.T) {
	var copied []string
	orig := writeClipboard
	t.Cleanup(func() { writeClipboard = orig })
	writeClipboard = func(s string) error {
		copied = append(copied, s)
		return nil
	}

	d := databasetest.Scenario()
	d.Records[0].Set("note", database.Null())
	m := New()
	m.SetState(activated(t, d))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	require.NotNil(t, cmd)
	assert.Equal(t, CopiedMsg{What: "row as JSON"}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Y")})
	require.NotNil(t, cmd)
	assert.Equal(t, CopiedMsg{What: "row as CSV"}, cmd())

	require.Len(t, copied, 2)
	assert.Equal(t, `{"id":1,"data_hora":"2024-01-01T00:00:00Z","status":"ok","note":null}`, copied[0])
	assert.Equal(t, "id,data_hora,status,note\n1,2024-01-01T00:00:00Z,ok,-\n", copied[1])
}

func TestCopyWithoutRows(t *testing.T) {
	m := New()
	m.SetState(activated(t, &databasetest.Driver{}))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	require.NotNil(t, cmd)
	assert.Equal(t, CopiedMsg{Err: errNothingToCopy}, cmd())
}
