package statusbar

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/telemetrydash/internal/tui/theme"
)

// DefaultHints lists the main keybindings.
const DefaultHints = "r: Reload │ ?: Help │ q: Quit"

// Model is the status bar component.
type Model struct {
	width     int
	connected bool
	connName  string
	table     string
	message   string
}

// New creates a new status bar model.
func New(table string) Model {
	return Model{table: table}
}

// SetWidth updates the component width.
func (m *Model) SetWidth(w int) {
	m.width = w
}

// SetConnected updates the connection status display.
func (m *Model) SetConnected(connected bool, name string) {
	m.connected = connected
	m.connName = name
}

// SetMessage sets a temporary status message.
func (m *Model) SetMessage(msg string) {
	m.message = msg
}

// Message returns the current status message.
func (m Model) Message() string {
	return m.message
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages (status bar has no interactive behavior).
func (m Model) Update(_ tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the status bar.
func (m Model) View() string {
	style := theme.StyleStatusBar.Width(m.width)

	var connIndicator string
	if m.connected {
		connIndicator = lipgloss.NewStyle().
			Foreground(theme.ColorSuccess).
			Render("●") + " " + m.connName
	} else {
		connIndicator = lipgloss.NewStyle().
			Foreground(theme.ColorError).
			Render("●") + " disconnected"
	}
	if m.table != "" {
		connIndicator += " " + theme.StyleMuted.Render(m.table)
	}

	right := DefaultHints
	if m.message != "" {
		right = m.message
	}

	leftLen := lipgloss.Width(connIndicator)
	rightLen := lipgloss.Width(right)
	padding := m.width - leftLen - rightLen - 4 // borders + spacing
	if padding < 1 {
		padding = 1
	}

	bar := connIndicator + strings.Repeat(" ", padding) + right

	return style.Render(bar)
}
