package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/telemetrydash/internal/app"
	"github.com/joacominatel/telemetrydash/internal/tui/dashboard"
	"github.com/joacominatel/telemetrydash/internal/tui/statusbar"
	"github.com/joacominatel/telemetrydash/internal/tui/theme"
	"github.com/joacominatel/telemetrydash/internal/view"
	"go.uber.org/zap"
)

// Service is what the terminal UI needs from the application layer.
type Service interface {
	view.Loader
	Connect(ctx context.Context, dsn string) error
	DatabaseName() string
}

// Custom messages for async operations.
type (
	snapshotLoadedMsg struct {
		snap      *app.Snapshot
		err       error
		connected bool
	}
)

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Reload  key.Binding
	Copy    key.Binding
	CopyCSV key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Reload, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Copy, k.CopyCSV},
		{k.Reload, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
	Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "scroll columns left")),
	Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "scroll columns right")),
	Reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload (new activation)")),
	Copy:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy top row as JSON")),
	CopyCSV: key.NewBinding(key.WithKeys("Y"), key.WithHelp("Y", "copy top row as CSV")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the top-level bubbletea model. The view becomes ready when
// the terminal first reports its size; that activates the view state
// and starts the fetch cycle.
type Model struct {
	service   Service
	variant   app.Variant
	dsn       string
	logger    *zap.Logger
	state     *view.State
	dashboard dashboard.Model
	statusbar statusbar.Model
	help      help.Model
	width     int
	height    int
	connected bool
	showHelp  bool
	timeout   time.Duration
}

// NewModel creates the top-level model.
func NewModel(service Service, source app.Source, dsn string, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	state := view.NewState(source.Variant)
	d := dashboard.New()
	d.SetState(state)

	return Model{
		service:   service,
		variant:   state.Variant(),
		dsn:       dsn,
		logger:    logger,
		state:     state,
		dashboard: d,
		statusbar: statusbar.New(source.Table),
		help:      help.New(),
		timeout:   30 * time.Second,
	}
}

// State returns the current view state.
func (m Model) State() *view.State {
	return m.state
}

// Init returns the initial command. Nothing is fetched before the view
// is ready.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		cmd := m.activate()
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case m.showHelp:
			m.showHelp = false
			return m, nil
		case key.Matches(msg, keys.Help):
			m.showHelp = true
			return m, nil
		case key.Matches(msg, keys.Reload):
			return m.reload()
		}

	case snapshotLoadedMsg:
		if msg.connected && !m.connected {
			m.connected = true
			m.statusbar.SetConnected(true, m.service.DatabaseName())
		}
		if !m.state.Resolve(msg.snap, msg.err) {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Warn("fetch cycle failed", zap.Error(msg.err))
			m.statusbar.SetMessage("Load failed")
		} else {
			m.statusbar.SetMessage("")
		}
		m.dashboard.SetState(m.state)
		return m, nil

	case dashboard.CopiedMsg:
		if msg.Err != nil {
			m.statusbar.SetMessage("Copy failed: " + msg.Err.Error())
		} else {
			m.statusbar.SetMessage("Copied " + msg.What)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.dashboard, cmd = m.dashboard.Update(msg)
	return m, cmd
}

// activate enters the active phase once and starts the fetch cycle.
func (m *Model) activate() tea.Cmd {
	if !m.state.Activate() {
		return nil
	}
	m.dashboard.SetState(m.state)
	m.statusbar.SetMessage("Loading...")
	return tea.Batch(m.dashboard.Tick(), m.loadCmd())
}

// reload replaces the view with a fresh one and activates it.
func (m Model) reload() (tea.Model, tea.Cmd) {
	if m.state.Kind() == view.KindLoading {
		return m, nil
	}
	m.state = view.NewState(m.variant)
	cmd := m.activate()
	return m, cmd
}

func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	statusHeight := 1
	m.dashboard.SetSize(m.width, m.height-statusHeight)
	m.statusbar.SetWidth(m.width)
	m.help.Width = m.width
}

// Async commands

func (m Model) loadCmd() tea.Cmd {
	service := m.service
	dsn := m.dsn
	connected := m.connected
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if !connected {
			if err := service.Connect(ctx, dsn); err != nil {
				return snapshotLoadedMsg{err: err}
			}
		}
		snap, err := view.Load(ctx, service)
		return snapshotLoadedMsg{snap: snap, err: err, connected: true}
	}
}

// View renders the entire application.
func (m Model) View() string {
	if m.state.Kind() == view.KindNotReady {
		return ""
	}
	if m.showHelp {
		return m.viewHelp()
	}

	body := lipgloss.NewStyle().
		Height(max(m.height-1, 0)).
		Render(m.dashboard.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		body,
		m.statusbar.View(),
	)
}

func (m Model) viewHelp() string {
	h := m.help
	h.ShowAll = true
	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.StyleTitle.Render(view.Title+" - Keyboard Shortcuts"),
		"",
		h.View(keys),
		"",
		theme.StyleMuted.Render("Press any key to close"),
	)
	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
}
