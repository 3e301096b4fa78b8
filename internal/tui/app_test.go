package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joacominatel/telemetrydash/internal/app"
	"github.com/joacominatel/telemetrydash/internal/database/databasetest"
	"github.com/joacominatel/telemetrydash/internal/tui/dashboard"
	"github.com/joacominatel/telemetrydash/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var source = app.Source{
	Schema:          "public",
	Table:           "curated_intelifalhas",
	TimestampColumn: "data_hora",
	Limit:           10,
	Variant:         app.VariantMetrics,
}

func newModel(d *databasetest.Driver) Model {
	svc := app.NewService(d, source, nil, app.WithClock(func() time.Time {
		return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	}))
	return NewModel(svc, source, "postgresql://localhost/db", nil)
}

func resize(t *testing.T, m Model) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model), cmd
}

// load runs the fetch command synchronously and feeds its result back.
func load(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(m.loadCmd()())
	return next.(Model)
}

func TestNotReadyUntilSized(t *testing.T) {
	d := databasetest.Scenario()
	m := newModel(d)

	assert.Nil(t, m.Init())
	assert.Equal(t, view.KindNotReady, m.State().Kind())
	assert.Empty(t, m.View())
	assert.Empty(t, d.Calls())
}

func TestActivatesOnce(t *testing.T) {
	m := newModel(databasetest.Scenario())

	m, cmd := resize(t, m)
	require.NotNil(t, cmd)
	assert.Equal(t, view.KindLoading, m.State().Kind())
	assert.Contains(t, m.View(), view.LoadingText)

	_, cmd = resize(t, m)
	assert.Nil(t, cmd, "a second resize must not start another fetch")
}

func TestLoadPopulates(t *testing.T) {
	d := databasetest.Scenario()
	m, _ := resize(t, newModel(d))
	m = load(t, m)

	assert.Equal(t, view.KindPopulated, m.State().Kind())
	assert.Equal(t, []string{"connect", "select", "count", "count recent"}, d.Calls())
	assert.True(t, m.connected)

	out := m.View()
	assert.Contains(t, out, "data_hora")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "postgres")
}

func TestConnectFailureShowsError(t *testing.T) {
	d := &databasetest.Driver{ConnectErr: errors.New("connection refused")}
	m, _ := resize(t, newModel(d))
	m = load(t, m)

	assert.Equal(t, view.KindError, m.State().Kind())
	assert.Contains(t, m.View(), "connection refused")
	assert.False(t, m.connected)
}

func TestReloadIsANewActivation(t *testing.T) {
	d := databasetest.Scenario()
	m, _ := resize(t, newModel(d))
	m = load(t, m)
	first := m.State()

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.NotSame(t, first, m.State())
	assert.Equal(t, view.KindLoading, m.State().Kind())

	m = load(t, m)
	assert.Equal(t, view.KindPopulated, m.State().Kind())
	assert.Equal(t, []string{"connect", "select", "count", "count recent", "select", "count", "count recent"}, d.Calls())
}

func TestReloadIgnoredWhileLoading(t *testing.T) {
	m, _ := resize(t, newModel(databasetest.Scenario()))
	before := m.State()

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.Nil(t, cmd)
	assert.Same(t, before, next.(Model).State())
}

func TestStaleResultIgnored(t *testing.T) {
	m, _ := resize(t, newModel(databasetest.Scenario()))
	m = load(t, m)

	next, _ := m.Update(snapshotLoadedMsg{err: errors.New("late failure"), connected: true})
	assert.Equal(t, view.KindPopulated, next.(Model).State().Kind())
}

func TestHelpAndQuit(t *testing.T) {
	m, _ := resize(t, newModel(databasetest.Scenario()))

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	m = next.(Model)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	m = next.(Model)
	assert.NotContains(t, m.View(), "Keyboard Shortcuts")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestCopyResultShownInStatusBar(t *testing.T) {
	m, _ := resize(t, newModel(databasetest.Scenario()))
	m = load(t, m)

	next, _ := m.Update(dashboard.CopiedMsg{What: "row as JSON"})
	m = next.(Model)
	assert.Equal(t, "Copied row as JSON", m.statusbar.Message())

	next, _ = m.Update(dashboard.CopiedMsg{Err: errors.New("no clipboard utility")})
	m = next.(Model)
	assert.Equal(t, "Copy failed: no clipboard utility", m.statusbar.Message())
}
