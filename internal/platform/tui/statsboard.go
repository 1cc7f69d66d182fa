package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/pulsefield/internal/storage"
)

// Stats board layout constants
const (
	minWidthForSidebar = 90  // Minimum width to show the per-source sidebar
	sidebarWidth       = 28  // Width of the per-source sidebar
	maxSessions        = 100 // Max sessions to load
)

// StatsBoardKeyMap defines the key bindings for the stats board.
type StatsBoardKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	NextSource key.Binding
	PrevSource key.Binding
	Quit       key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k StatsBoardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextSource, k.PrevSource, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k StatsBoardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextSource, k.PrevSource},
		{k.Quit},
	}
}

// DefaultStatsBoardKeyMap returns default key bindings.
func DefaultStatsBoardKeyMap() StatsBoardKeyMap {
	return StatsBoardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextSource: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next source"),
		),
		PrevSource: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev source"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// StatsBoardModel lists recorded viewing sessions. The first tab shows
// every source; the others filter by one source.
type StatsBoardModel struct {
	store       *storage.Store
	sessions    []storage.Session
	stats       map[string]*storage.SourceStats
	sources     []string // "" first, meaning all sources
	cursor      int
	table       table.Model
	help        help.Model
	keys        StatsBoardKeyMap
	width       int
	height      int
	quitting    bool
	showSidebar bool
	err         error
}

// NewStatsBoardModel creates a stats board. store may be nil.
func NewStatsBoardModel(store *storage.Store, width, height int) StatsBoardModel {
	h := help.New()
	h.ShowAll = false

	m := StatsBoardModel{
		store:       store,
		keys:        DefaultStatsBoardKeyMap(),
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	m.loadStats()
	m.table = m.createTable()
	m.loadSessions()
	return m
}

// createTable creates a new table with appropriate columns.
func (m *StatsBoardModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Started", Width: 13},
		{Title: "Source", Width: 10},
		{Title: "Mode", Width: 6},
		{Title: "Time", Width: 8},
		{Title: "Events", Width: 8},
		{Title: "Pulses", Width: 8},
		{Title: "Max", Width: 7},
	}

	// Widen the source column when there is room
	tableWidth := m.width - 4
	if m.showSidebar {
		tableWidth -= sidebarWidth + 3
	}
	used := 0
	for _, c := range columns {
		used += c.Width + 2
	}
	if extra := tableWidth - used; extra > 0 {
		columns[1].Width += min(extra, 14)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadStats refreshes the per-source aggregates and the tab list.
func (m *StatsBoardModel) loadStats() {
	m.sources = []string{""}
	m.stats = nil
	if m.store == nil {
		return
	}
	stats, err := m.store.AllSourceStats()
	if err != nil {
		m.err = err
		return
	}
	m.stats = stats
	for id := range stats {
		m.sources = append(m.sources, id)
	}
	sort.Strings(m.sources[1:])
}

// loadSessions loads the sessions for the selected tab.
func (m *StatsBoardModel) loadSessions() {
	m.sessions = nil
	if m.store != nil {
		sessions, err := m.store.RecentSessions(maxSessions)
		if err != nil {
			m.err = err
		}
		source := m.currentSource()
		for _, s := range sessions {
			if source == "" || s.Source == source {
				m.sessions = append(m.sessions, s)
			}
		}
	}
	m.updateTableRows()
}

func (m StatsBoardModel) currentSource() string {
	if m.cursor < 0 || m.cursor >= len(m.sources) {
		return ""
	}
	return m.sources[m.cursor]
}

// updateTableRows updates the table with the loaded sessions.
func (m *StatsBoardModel) updateTableRows() {
	rows := make([]table.Row, len(m.sessions))
	for i, s := range m.sessions {
		rows[i] = SessionRow(s)
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// SessionRow formats one session for tables and plain output.
func SessionRow(s storage.Session) []string {
	return []string{
		s.StartedAt.Format("Jan 02 15:04"),
		s.Source,
		s.Mode,
		formatDuration(s.Duration),
		fmt.Sprintf("%d", s.Events),
		fmt.Sprintf("%d", s.Pulses),
		fmt.Sprintf("%.0f", s.MaxMagnitude),
	}
}

// Init initializes the stats board.
func (m StatsBoardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the stats board.
func (m StatsBoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextSource):
			m.cursor = (m.cursor + 1) % len(m.sources)
			m.loadSessions()
			return m, nil

		case key.Matches(msg, m.keys.PrevSource):
			m.cursor--
			if m.cursor < 0 {
				m.cursor = len(m.sources) - 1
			}
			m.loadSessions()
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the stats board.
func (m StatsBoardModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)

	title := "SESSIONS - all sources"
	if src := m.currentSource(); src != "" {
		title = "SESSIONS - " + src
	}
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	tableRendered := tableStyle.Render(m.renderTableContent())

	if m.showSidebar {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), "  ", tableRendered))
	} else {
		b.WriteString(centerText(tableRendered, m.width))
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("error: " + m.err.Error()))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderSidebar lists the sources with their aggregates.
func (m StatsBoardModel) renderSidebar() string {
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sb strings.Builder
	sb.WriteString("Sources\n")
	sb.WriteString(strings.Repeat("-", sidebarWidth-4))
	sb.WriteString("\n")

	for i, id := range m.sources {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.cursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		name := id
		if name == "" {
			name = "all"
		}
		sb.WriteString(style.Render(cursor + truncate(name, sidebarWidth-6)))
		sb.WriteString("\n")

		if st, ok := m.stats[id]; ok {
			sb.WriteString(fmt.Sprintf("    %d runs, %s\n", st.Sessions, formatDuration(st.Watched)))
			sb.WriteString(fmt.Sprintf("    %.1f ev/min\n", st.EventsPerMinute()))
		}
	}

	return sidebarStyle.Render(sb.String())
}

// renderTableContent renders the table or empty message.
func (m StatsBoardModel) renderTableContent() string {
	if len(m.sessions) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		return emptyStyle.Render("No sessions recorded yet.\nRun `pulsefield watch` to start one!")
	}

	return m.table.View()
}

// RunStatsBoard runs the stats board screen.
func RunStatsBoard(store *storage.Store, width, height int) error {
	p := tea.NewProgram(
		NewStatsBoardModel(store, width, height),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	mins := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, mins)
	}
	return fmt.Sprintf("%dm%02ds", mins, secs)
}
