package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/snek/internal/config"
	"github.com/vovakirdan/snek/internal/core"
)

var difficultyChoices = []config.DifficultyPreset{
	config.DifficultyEasy,
	config.DifficultyNormal,
	config.DifficultyHard,
	config.DifficultyFixed,
}

// DifficultyModel lets users pick a speed preset before a game starts.
type DifficultyModel struct {
	cursor   int
	width    int
	height   int
	current  config.SnekConfig
	keys     MenuKeyMap
	help     help.Model
	chosen   bool
	quitting bool
}

// NewDifficultyModel creates a selector; cfg supplies the interval shown
// for the fixed preset.
func NewDifficultyModel(cfg config.SnekConfig, width, height int) DifficultyModel {
	h := help.New()
	h.Width = width
	return DifficultyModel{
		cursor:  1, // normal
		width:   width,
		height:  height,
		current: cfg,
		keys:    DefaultMenuKeyMap(),
		help:    h,
	}
}

// Init initializes the model.
func (m DifficultyModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m DifficultyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.keys.MapKey(msg) {
		case MenuActionQuit, MenuActionBack:
			m.quitting = true
			return m, tea.Quit
		case MenuActionUp:
			if m.cursor > 0 {
				m.cursor--
			}
		case MenuActionDown:
			if m.cursor < len(difficultyChoices)-1 {
				m.cursor++
			}
		case MenuActionSelect:
			m.chosen = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	}
	return m, nil
}

// View renders the preset list with the tick interval each one gives.
func (m DifficultyModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("S N E K"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Select speed:", m.width))
	b.WriteString("\n\n")

	for i, preset := range difficultyChoices {
		interval := config.IntervalForPreset(preset)
		if interval == 0 {
			interval = m.current.Tick.Interval
		}
		line := fmt.Sprintf("  %-7s %v/tick", preset, interval)
		if i == m.cursor {
			line = cursorStyle.Render(fmt.Sprintf("> %-7s %v/tick", preset, interval))
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText(footerStyle.Render(m.help.ShortHelpView(
		[]key.Binding{m.keys.Up, m.keys.Down, m.keys.Select, m.keys.Back},
	)), m.width))

	return b.String()
}

// Selected returns the chosen preset, or nil if the user backed out.
func (m DifficultyModel) Selected() *config.DifficultyPreset {
	if !m.chosen {
		return nil
	}
	p := difficultyChoices[m.cursor]
	return &p
}

// RunDifficultySelector shows the preset picker. A nil preset means the
// user backed out.
func RunDifficultySelector(cfg config.SnekConfig, rc core.RuntimeConfig) (*config.DifficultyPreset, error) {
	p := tea.NewProgram(NewDifficultyModel(cfg, rc.ScreenW, rc.ScreenH), tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	m, ok := finalModel.(DifficultyModel)
	if !ok {
		return nil, nil
	}
	return m.Selected(), nil
}
