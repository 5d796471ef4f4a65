package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snek/internal/core"
	"github.com/vovakirdan/snek/internal/games/snek"
	"github.com/vovakirdan/snek/internal/registry"
)

// Model is the Bubble Tea model for running one game.
type Model struct {
	game       registry.Game
	screen     *core.Screen
	recorder   RunRecorder
	logger     *log.Logger
	config     core.RuntimeConfig
	keys       GameKeyMap
	help       help.Model
	inputFrame core.InputFrame
	gameState  core.GameState
	inSession  bool // Back returns to the session menu instead of quitting
	quitting   bool
	backToMenu bool
	recorded   bool // Whether the current run has been journaled
}

// NewModel creates a new Bubble Tea model for the given game.
// recorder may be nil, in which case runs are not journaled.
func NewModel(game registry.Game, recorder RunRecorder, logger *log.Logger, cfg core.RuntimeConfig) Model {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	h := help.New()
	h.Width = cfg.ScreenW

	return Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, playHeight(cfg.ScreenH)),
		recorder:   recorder,
		logger:     logger,
		config:     cfg,
		keys:       DefaultGameKeyMap(),
		help:       h,
		inputFrame: core.NewInputFrame(),
	}
}

// playHeight leaves the last terminal row for the controls footer.
func playHeight(h int) int {
	return max(h-1, 1)
}

// Init initializes the model and starts the game.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.config)
	return frameCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, playHeight(msg.Height))
		m.help.Width = msg.Width
		return m, nil

	case FrameMsg:
		return m.handleFrame()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Screenshot) {
		m.saveScreenshot()
		return m, nil
	}

	switch action := m.keys.MapKey(msg); action {
	case core.ActionQuit:
		m.recordRun("quit")
		m.quitting = true
		return m, tea.Quit

	case core.ActionBack:
		// Leaving mid-run would lose it, so only from pause or game over
		if m.gameState.GameOver || m.gameState.Paused {
			m.recordRun("quit")
			if m.inSession {
				m.backToMenu = true
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit
		}

	default:
		if action != core.ActionNone {
			m.inputFrame.Set(action)
		}
	}

	return m, nil
}

// handleFrame polls the game once per render frame.
func (m Model) handleFrame() (tea.Model, tea.Cmd) {
	wasOver := m.gameState.GameOver

	result := m.game.Step(m.inputFrame)
	m.gameState = result.State
	m.inputFrame.Clear()

	switch {
	case m.gameState.GameOver && !wasOver:
		cause := "dead"
		if g, ok := m.game.(*snek.Game); ok {
			cause = string(g.Cause())
		}
		m.recordRun(cause)
	case wasOver && !m.gameState.GameOver:
		// Restarted
		m.recorded = false
	}

	return m, frameCmd(m.config.TickRate)
}

// recordRun journals the current run once. Replays and runs that never
// moved are not recorded.
func (m *Model) recordRun(cause string) {
	if m.recorded || m.recorder == nil {
		return
	}
	g, ok := m.game.(*snek.Game)
	if !ok || g.Replaying() || g.Ticks() == 0 {
		return
	}
	m.recorded = true

	run, moves, err := EncodeRun(g, cause)
	if err != nil {
		m.logger.Error("could not encode run", "mode", g.ID(), "error", err)
		return
	}
	m.recorder.Record(run, moves)
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		m.logger.Warn("screenshot skipped", "error", err)
		return
	}
	dir := filepath.Join(home, ".snek", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.logger.Warn("screenshot skipped", "error", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.logger.Warn("screenshot skipped", "error", err)
	}
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)
	return RenderScreen(m.screen) + "\n" + footerStyle.Render(m.help.View(m.keys))
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to the menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Run starts the Bubble Tea program with the given game and closes the
// game when the program exits.
func Run(game registry.Game, recorder RunRecorder, logger *log.Logger, cfg core.RuntimeConfig) error {
	defer game.Close()

	model := NewModel(game, recorder, logger, cfg)
	p := tea.NewProgram(model, tea.WithAltScreen())

	_, err := p.Run()
	return err
}
