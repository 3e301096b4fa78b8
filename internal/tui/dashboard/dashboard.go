package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/telemetrydash/internal/view"
	"github.com/joacominatel/telemetrydash/internal/tui/theme"
)

const maxColWidth = 40

// Model renders a view.State: skeleton, alert, empty message or metric
// cards plus the record table.
type Model struct {
	state     *view.State
	spinner   spinner.Model
	rows      [][]string
	colWidths []int
	width     int
	height    int
	scrollY   int
	scrollX   int
}

// New creates a new dashboard model.
func New() Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorPrimary)
	return Model{spinner: sp}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetState points the component at a view state and recomputes the
// table projection.
func (m *Model) SetState(s *view.State) {
	m.state = s
	m.scrollY = 0
	m.scrollX = 0
	m.rows = nil
	if s != nil && s.Kind() == view.KindPopulated {
		m.rows = s.Rows()
	}
	m.calculateColumnWidths()
}

// Tick starts the loading spinner.
func (m Model) Tick() tea.Cmd {
	return m.spinner.Tick
}

func (m *Model) calculateColumnWidths() {
	if m.state == nil || len(m.state.Columns()) == 0 {
		m.colWidths = nil
		return
	}

	cols := m.state.Columns()
	m.colWidths = make([]int, len(cols))

	// Use display width (not byte length) for accurate measurement
	for i, col := range cols {
		m.colWidths[i] = lipgloss.Width(col)
	}

	for _, row := range m.rows {
		for i, cell := range row {
			w := lipgloss.Width(cell)
			if i < len(m.colWidths) && w > m.colWidths[i] {
				m.colWidths[i] = w
			}
		}
	}

	for i := range m.colWidths {
		if m.colWidths[i] < 1 {
			m.colWidths[i] = 1
		}
		if m.colWidths[i] > maxColWidth {
			m.colWidths[i] = maxColWidth
		}
	}
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles scrolling and the spinner.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.state == nil || m.state.Kind() != view.KindLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.scrollY > 0 {
				m.scrollY--
			}
		case "down", "j":
			if m.scrollY < len(m.rows)-1 {
				m.scrollY++
			}
		case "left", "h":
			if m.scrollX > 0 {
				m.scrollX--
			}
		case "right", "l":
			if m.scrollX < len(m.colWidths)-1 {
				m.scrollX++
			}
		case "y":
			return m, m.copyRow("json")
		case "Y":
			return m, m.copyRow("csv")
		case "pgup":
			m.scrollY -= m.tableHeight() / 2
			if m.scrollY < 0 {
				m.scrollY = 0
			}
		case "pgdown":
			m.scrollY += m.tableHeight() / 2
			if maxScroll := len(m.rows) - 1; m.scrollY > maxScroll {
				m.scrollY = maxScroll
			}
			if m.scrollY < 0 {
				m.scrollY = 0
			}
		}
	}

	return m, nil
}

// View renders the selected branch of the state.
func (m Model) View() string {
	if m.state == nil {
		return ""
	}

	switch m.state.Kind() {
	case view.KindNotReady:
		return ""
	case view.KindLoading:
		return m.viewLoading()
	case view.KindError:
		return m.viewError()
	case view.KindEmpty:
		return m.viewTitle() + "\n\n" + theme.StyleMuted.Render("  "+view.EmptyText)
	default:
		return m.viewPopulated()
	}
}

func (m Model) viewTitle() string {
	title := theme.StyleTitle.Render(view.Title)
	if m.width > 0 {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, title)
	}
	return title
}

func (m Model) viewLoading() string {
	bar := func(w int) string {
		return theme.StyleSkeleton.Render(strings.Repeat("░", w))
	}
	cards := make([]string, 3)
	for i := range cards {
		cards[i] = theme.StyleCard.Render(bar(12) + "\n" + bar(6))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewTitle(),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, cards...),
		"",
		"  "+m.spinner.View()+" "+theme.StyleMuted.Render(view.LoadingText),
	)
}

func (m Model) viewError() string {
	alert := theme.StyleAlert.Render("Error: " + m.state.Err())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, alert)
	}
	return alert
}

func (m Model) viewCards() string {
	metrics := m.state.Metrics()
	if metrics == nil {
		return ""
	}
	card := func(label string, value int64) string {
		return theme.StyleCard.Render(
			theme.StyleCardLabel.Render(label) + "\n" +
				theme.StyleCardValue.Render(strconv.FormatInt(value, 10)),
		)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total records", metrics.TotalRecords),
		card("Columns", metrics.Columns),
		card("Last 24h", metrics.Last24hRecords),
	)
}

func (m Model) viewPopulated() string {
	var b strings.Builder
	b.WriteString(m.viewTitle())
	b.WriteString("\n\n")

	if cards := m.viewCards(); cards != "" {
		b.WriteString(cards)
		b.WriteString("\n\n")
	}

	stats := fmt.Sprintf("%d row(s)", len(m.rows))
	if ts := m.state.FetchedAt(); !ts.IsZero() {
		stats += " │ fetched " + ts.Local().Format("15:04:05")
	}
	b.WriteString("  " + theme.StyleMuted.Render(stats))
	b.WriteString("\n")

	b.WriteString(m.renderRow(m.state.Columns(), true))
	b.WriteString("\n")
	b.WriteString(m.renderSeparator())

	visible := m.tableHeight()
	for i := m.scrollY; i < len(m.rows) && i < m.scrollY+visible; i++ {
		b.WriteString("\n")
		line := m.renderRow(m.rows[i], false)
		if i%2 == 1 {
			line = lipgloss.NewStyle().Background(theme.ColorStripe).Render(line)
		}
		b.WriteString(line)
	}

	return b.String()
}

// tableHeight is the number of data rows that fit below the cards.
func (m Model) tableHeight() int {
	// title, blank, cards (4 + blank), stats, header, separator
	used := 10
	if m.height <= used {
		return len(m.rows)
	}
	return m.height - used
}

func (m Model) renderRow(cells []string, isHeader bool) string {
	var parts []string
	for i := m.scrollX; i < len(cells); i++ {
		width := 10
		if i < len(m.colWidths) {
			width = m.colWidths[i]
		}
		display := fit(cells[i], width)

		if isHeader {
			display = lipgloss.NewStyle().
				Bold(true).
				Foreground(theme.ColorPrimary).
				Render(display)
		}
		parts = append(parts, display)
	}
	return "  " + strings.Join(parts, " │ ")
}

func (m Model) renderSeparator() string {
	var parts []string
	for i := m.scrollX; i < len(m.colWidths); i++ {
		parts = append(parts, strings.Repeat("─", m.colWidths[i]))
	}
	return "  " + lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(strings.Join(parts, "─┼─"))
}

// fit truncates s with an ellipsis or pads it to exactly width cells.
func fit(s string, width int) string {
	if width < 1 {
		width = 1
	}
	if lipgloss.Width(s) > width {
		runes := []rune(s)
		for len(runes) > 0 && lipgloss.Width(string(runes)) >= width {
			runes = runes[:len(runes)-1]
		}
		s = string(runes) + "…"
	}
	if pad := width - lipgloss.Width(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}
