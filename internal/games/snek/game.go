// Package snek wires the snake simulation, the apple and the tick scheduler
// into a playable game. The platform calls Step once per render frame; the
// scheduler decides which frames also advance the simulation.
package snek

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/vovakirdan/snek/internal/config"
	"github.com/vovakirdan/snek/internal/core"
	"github.com/vovakirdan/snek/internal/registry"
	"github.com/vovakirdan/snek/internal/snake"
	"github.com/vovakirdan/snek/internal/tick"
)

// Mode selects the apple variant.
type Mode string

const (
	ModeClassic Mode = "snek"        // standard apple
	ModeGolden  Mode = "snek_golden" // super apple, grows by apple.super_grow
)

// ParseMode validates a mode name as stored in the run journal.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeClassic, ModeGolden:
		return m, nil
	default:
		return "", fmt.Errorf("snek: unknown mode %q", s)
	}
}

// DeathCause records why a run ended.
type DeathCause string

const (
	CauseNone DeathCause = ""
	CauseWall DeathCause = "wall"
	CauseSelf DeathCause = "self"
)

// Pulser paces simulation ticks. *tick.Scheduler is the live implementation.
type Pulser interface {
	Start()
	Stop()
	PollTick() bool
	Running() bool
}

// maxPendingTurns bounds how many turns may wait for the next tick.
const maxPendingTurns = 2

// Package-level config shared by registry factories.
var (
	configMu     sync.RWMutex
	activeConfig = config.DefaultSnekConfig()
)

// SetConfig sets the configuration used by games created through the registry.
func SetConfig(cfg config.SnekConfig) {
	configMu.Lock()
	defer configMu.Unlock()
	activeConfig = cfg
}

func currentConfig() config.SnekConfig {
	configMu.RLock()
	defer configMu.RUnlock()
	return activeConfig
}

func init() {
	registry.Register(string(ModeClassic), func() registry.Game {
		return New(ModeClassic, currentConfig())
	})
	registry.Register(string(ModeGolden), func() registry.Game {
		return New(ModeGolden, currentConfig())
	})
}

// Game implements registry.Game for both snek modes.
type Game struct {
	mode      Mode
	cfg       config.SnekConfig
	newPulser func(config.TickConfig) Pulser

	seed   int64
	rng    *rand.Rand
	snake  *snake.Snake
	apple  *snake.Apple
	pulser Pulser
	bounds snake.Bounds

	ticks   int
	apples  int
	color   core.Color
	cause   DeathCause
	paused  bool
	journal []Move

	// Turns accepted since the last tick block further turns until the
	// snake has moved, so two quick presses cannot fold it onto itself.
	turned  bool
	pending []snake.Direction

	// Replay state; script is nil for live games.
	script     []Move
	scriptPos  int
	replaySeed int64

	screenW int
	screenH int
}

// New creates a game in the given mode. Reset must be called before Step.
func New(mode Mode, cfg config.SnekConfig) *Game {
	return &Game{
		mode:      mode,
		cfg:       cfg,
		newPulser: schedulerPulser,
		color:     core.ColorGreen,
	}
}

func schedulerPulser(tc config.TickConfig) Pulser {
	return tick.New(tc.Interval, tick.WithQueueSize(tc.QueueSize))
}

// ID returns the mode identifier.
func (g *Game) ID() string {
	return string(g.mode)
}

// Title returns the display name.
func (g *Game) Title() string {
	if g.mode == ModeGolden {
		return "Snek (Golden Apple)"
	}
	return "Snek"
}

// Mode returns the game mode.
func (g *Game) Mode() Mode {
	return g.mode
}

// Config returns the configuration the game was built with.
func (g *Game) Config() config.SnekConfig {
	return g.cfg
}

// Seed returns the seed of the current run.
func (g *Game) Seed() int64 {
	return g.seed
}

// Ticks returns the number of simulation ticks in the current run.
func (g *Game) Ticks() int {
	return g.ticks
}

// Cause returns why the current run ended, or CauseNone while alive.
func (g *Game) Cause() DeathCause {
	return g.cause
}

// Reset starts a new run and arms the scheduler.
func (g *Game) Reset(rc core.RuntimeConfig) {
	if g.pulser != nil {
		g.pulser.Stop()
	}

	g.seed = rc.Seed
	if g.script != nil {
		g.seed = g.replaySeed
		g.scriptPos = 0
	}
	g.rng = rand.New(rand.NewSource(g.seed))
	g.screenW = rc.ScreenW
	g.screenH = rc.ScreenH

	bs := g.cfg.Arena.BlockSize
	g.snake = snake.New(g.cfg.Snake.StartLength, bs, g.cfg.Snake.StartRow*bs, g.cfg.Snake.Padding)

	minX, maxX, minY, maxY := g.cfg.Arena.Bounds()
	g.bounds = snake.Bounds{MinX: minX, MaxX: maxX, MinY: minY, MaxY: maxY}

	g.ticks = 0
	g.apples = 0
	g.color = core.ColorGreen
	g.cause = CauseNone
	g.paused = false
	g.journal = nil
	g.turned = false
	g.pending = g.pending[:0]

	if g.mode == ModeGolden {
		g.apple = snake.NewSuperApple(core.Point{}, g.cfg.Apple.SuperGrow)
	} else {
		g.apple = snake.NewStandardApple(core.Point{}, g.cfg.Apple.Grow)
	}
	g.placeApple()

	g.pulser = g.newPulser(g.cfg.Tick)
	g.pulser.Start()
}

// Step processes one render frame: restart and pause handling, queued
// turns, then at most one simulation tick if the scheduler delivered one.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if in.Has(core.ActionRestart) && g.snake.IsDead() {
		g.Reset(core.RuntimeConfig{
			Seed:    g.rng.Int63(),
			ScreenW: g.screenW,
			ScreenH: g.screenH,
		})
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) && !g.snake.IsDead() {
		g.paused = !g.paused
		if g.paused {
			g.pulser.Stop()
		} else {
			g.pulser.Start()
		}
	}

	if g.snake.IsDead() || g.paused {
		return core.StepResult{State: g.State()}
	}

	if g.script == nil {
		for _, a := range in.Turns {
			if d, ok := directionFor(a); ok {
				g.queueTurn(d)
			}
		}
	}

	moved := false
	if g.pulser.PollTick() {
		g.advanceTick()
		moved = true
	}

	return core.StepResult{State: g.State(), Moved: moved}
}

// queueTurn applies d now if the snake has not turned since its last move,
// otherwise holds it for the following tick.
func (g *Game) queueTurn(d snake.Direction) {
	if !g.turned {
		g.turned = g.turn(d)
		return
	}
	if len(g.pending) < maxPendingTurns {
		g.pending = append(g.pending, d)
	}
}

// turn changes the heading and journals the change when it is accepted.
func (g *Game) turn(d snake.Direction) bool {
	if !g.snake.SetDirection(d) {
		return false
	}
	g.journal = append(g.journal, Move{Tick: g.ticks, Dir: d})
	return true
}

// advanceTick runs one tick and then releases held turns.
func (g *Game) advanceTick() {
	if g.script != nil {
		g.feedScript()
	}
	g.Simulate()

	g.turned = false
	for len(g.pending) > 0 && !g.turned {
		d := g.pending[0]
		g.pending = g.pending[1:]
		g.turned = g.turn(d)
	}
}

// Simulate runs one simulation tick: advance, eat, then the death checks.
// A dead snake is left untouched.
func (g *Game) Simulate() {
	if g.snake.IsDead() {
		return
	}

	g.snake.Advance()
	g.ticks++

	if g.snake.IsHeadAt(g.apple.Position()) {
		g.snake.Grow(g.apple.OnCollect())
		g.apples++
		g.placeApple()
		g.color = core.SnakePalette[g.rng.Intn(len(core.SnakePalette))]
	}

	switch {
	case g.snake.IsHeadCollidingWithBody():
		g.die(CauseSelf)
	case !g.snake.IsHeadInBounds(g.bounds):
		g.die(CauseWall)
	}
}

func (g *Game) die(cause DeathCause) {
	g.snake.Die()
	g.cause = cause
	if g.pulser != nil {
		g.pulser.Stop()
	}
}

// placeApple moves the apple to a random grid cell the snake does not
// occupy. With no free cell left the apple stays where it is.
func (g *Game) placeApple() {
	bs := g.cfg.Arena.BlockSize
	free := make([]core.Point, 0, g.cfg.Arena.Cols*g.cfg.Arena.Rows)
	for row := range g.cfg.Arena.Rows {
		for col := range g.cfg.Arena.Cols {
			p := core.Point{X: g.bounds.MinX + col*bs, Y: g.bounds.MinY + row*bs}
			if !g.snake.Occupies(p) {
				free = append(free, p)
			}
		}
	}
	if len(free) == 0 {
		return
	}
	g.apple.Relocate(free[g.rng.Intn(len(free))])
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	if g.snake == nil {
		return core.GameState{}
	}
	return core.GameState{
		Score:    g.apples,
		Length:   g.snake.Len(),
		GameOver: g.snake.IsDead(),
		Paused:   g.paused,
	}
}

// Close stops the scheduler.
func (g *Game) Close() {
	if g.pulser != nil {
		g.pulser.Stop()
	}
}

func directionFor(a core.Action) (snake.Direction, bool) {
	switch a {
	case core.ActionUp:
		return snake.Up, true
	case core.ActionDown:
		return snake.Down, true
	case core.ActionLeft:
		return snake.Left, true
	case core.ActionRight:
		return snake.Right, true
	default:
		return 0, false
	}
}
