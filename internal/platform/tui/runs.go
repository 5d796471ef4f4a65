package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/snek/internal/registry"
	"github.com/vovakirdan/snek/internal/storage"
)

// Run browser layout constants
const (
	maxRuns   = 100 // Max runs to load
	idColumn  = 8   // Characters of the run id shown
	minHeight = 10
)

// RunsKeyMap defines the key bindings for the run browser.
type RunsKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Replay   key.Binding
	Delete   key.Binding
	NextMode key.Binding
	PrevMode key.Binding
	Back     key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k RunsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Replay, k.Delete, k.NextMode, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k RunsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextMode, k.PrevMode},
		{k.Replay, k.Delete, k.Back, k.Quit},
	}
}

// DefaultRunsKeyMap returns default key bindings.
func DefaultRunsKeyMap() RunsKeyMap {
	return RunsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Replay: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "replay"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "delete"),
		),
		NextMode: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next mode"),
		),
		PrevMode: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev mode"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// RunsModel is the Bubble Tea model for browsing the run journal.
type RunsModel struct {
	modes      []registry.GameInfo // Index 0 is "all modes"
	modeCursor int
	store      *storage.Store
	runs       []storage.Run
	stats      map[string]*storage.ModeStats
	loadErr    error
	table      table.Model
	help       help.Model
	keys       RunsKeyMap
	width      int
	height     int
	quitting   bool
	goingBack  bool
	replayID   string // Set when the user picks a run to replay
}

// NewRunsModel creates a new run browser.
func NewRunsModel(store *storage.Store, width, height int) RunsModel {
	modes := append([]registry.GameInfo{{ID: "", Title: "All modes"}}, registry.List()...)

	h := help.New()
	h.Width = width

	m := RunsModel{
		modes:  modes,
		store:  store,
		keys:   DefaultRunsKeyMap(),
		help:   h,
		width:  width,
		height: max(height, minHeight),
	}
	m.table = m.createTable()
	m.load()
	return m
}

// createTable creates a new table with appropriate columns.
func (m *RunsModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Run", Width: idColumn},
		{Title: "Mode", Width: 12},
		{Title: "Apples", Width: 7},
		{Title: "Length", Width: 7},
		{Title: "Ticks", Width: 7},
		{Title: "End", Width: 6},
		{Title: "Date", Width: 13},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(m.height-9), // Leave room for header, stats, help and margins
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

// load reads runs and stats for the current mode filter.
func (m *RunsModel) load() {
	m.runs, m.stats, m.loadErr = nil, nil, nil
	if m.store != nil {
		mode := m.modes[m.modeCursor].ID
		if m.runs, m.loadErr = m.store.RecentRuns(mode, maxRuns); m.loadErr == nil {
			m.stats, m.loadErr = m.store.Stats()
		}
	}
	m.updateTableRows()
}

// updateTableRows updates the table with the loaded runs.
func (m *RunsModel) updateTableRows() {
	rows := make([]table.Row, len(m.runs))
	for i, r := range m.runs {
		id := r.ID
		if len(id) > idColumn {
			id = id[:idColumn]
		}
		rows[i] = table.Row{
			id,
			r.Mode,
			fmt.Sprintf("%d", r.Apples),
			fmt.Sprintf("%d", r.Length),
			fmt.Sprintf("%d", r.Ticks),
			r.Cause,
			r.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the run browser.
func (m RunsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the run browser.
func (m RunsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextMode):
			m.modeCursor = (m.modeCursor + 1) % len(m.modes)
			m.load()
			return m, nil

		case key.Matches(msg, m.keys.PrevMode):
			m.modeCursor = (m.modeCursor + len(m.modes) - 1) % len(m.modes)
			m.load()
			return m, nil

		case key.Matches(msg, m.keys.Replay):
			if r := m.selectedRun(); r != nil {
				m.replayID = r.ID
				return m, tea.Quit
			}
			return m, nil

		case key.Matches(msg, m.keys.Delete):
			if r := m.selectedRun(); r != nil && m.store != nil {
				if err := m.store.DeleteRun(r.ID); err != nil {
					m.loadErr = err
					return m, nil
				}
				m.load()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = max(msg.Height, minHeight)
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m RunsModel) selectedRun() *storage.Run {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.runs) {
		return nil
	}
	return &m.runs[i]
}

// View renders the run browser.
func (m RunsModel) View() string {
	if m.quitting || m.goingBack || m.replayID != "" {
		return ""
	}

	var b strings.Builder

	title := fmt.Sprintf("RUN JOURNAL - %s", m.modes[m.modeCursor].Title)
	b.WriteString(titleStyle.MarginBottom(1).Render(centerText(title, m.width)))
	b.WriteString("\n")
	b.WriteString(centerText(m.statsLine(), m.width))
	b.WriteString("\n\n")

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(boxStyle.Render(m.renderTableContent()))

	b.WriteString("\n")
	b.WriteString(footerStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// statsLine summarizes the selected mode, or every mode for "all".
func (m RunsModel) statsLine() string {
	mode := m.modes[m.modeCursor].ID
	var runs, apples, longest int
	for id, st := range m.stats {
		if mode != "" && id != mode {
			continue
		}
		runs += st.Runs
		apples = max(apples, st.MostApples)
		longest = max(longest, st.Longest)
	}
	return fmt.Sprintf("%d runs  |  most apples %d  |  longest snake %d", runs, apples, longest)
}

// renderTableContent renders the table or an empty/error message.
func (m RunsModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	switch {
	case m.loadErr != nil:
		return emptyStyle.Render(fmt.Sprintf("Could not read the journal:\n%v", m.loadErr))
	case m.store == nil:
		return emptyStyle.Render("No run journal open.")
	case len(m.runs) == 0:
		return emptyStyle.Render("No runs recorded yet.\nPlay a game to fill the journal!")
	}
	return m.table.View()
}

// RunsResult holds the result of the run browser.
type RunsResult struct {
	GoBack   bool
	ReplayID string
}

// RunRunsBrowser runs the run browser screen.
func RunRunsBrowser(store *storage.Store, width, height int) (RunsResult, error) {
	p := tea.NewProgram(NewRunsModel(store, width, height), tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return RunsResult{}, err
	}

	m, ok := finalModel.(RunsModel)
	if !ok {
		return RunsResult{}, nil
	}
	return RunsResult{GoBack: m.goingBack, ReplayID: m.replayID}, nil
}
