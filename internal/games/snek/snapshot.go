package snek

import (
	"slices"

	"github.com/vovakirdan/snek/internal/core"
	"github.com/vovakirdan/snek/internal/snake"
)

// GameStateType represents the current game state.
type GameStateType string

const (
	StatePlaying  GameStateType = "playing"
	StatePaused   GameStateType = "paused"
	StateGameOver GameStateType = "game_over"
)

// Move is a journaled direction change. Tick is the number of simulation
// ticks completed when the change was applied, so it takes effect on
// tick Tick+1.
type Move struct {
	Tick int
	Dir  snake.Direction
}

// Snapshot captures the complete game state for determinism testing and replay.
type Snapshot struct {
	Tick   int
	Mode   Mode
	Seed   int64
	Length int
	Apples int
	Head   core.Point
	Dir    snake.Direction
	Apple  core.Point
	Color  core.Color
	Cause  DeathCause
	State  GameStateType
}

// Snapshot returns the current game snapshot for determinism verification.
func (g *Game) Snapshot() Snapshot {
	state := StatePlaying
	switch {
	case g.snake.IsDead():
		state = StateGameOver
	case g.paused:
		state = StatePaused
	}

	return Snapshot{
		Tick:   g.ticks,
		Mode:   g.mode,
		Seed:   g.seed,
		Length: g.snake.Len(),
		Apples: g.apples,
		Head:   g.snake.Head(),
		Dir:    g.snake.Direction(),
		Apple:  g.apple.Position(),
		Color:  g.color,
		Cause:  g.cause,
		State:  state,
	}
}

// Journal returns the direction changes of the current run in order.
func (g *Game) Journal() []Move {
	return slices.Clone(g.journal)
}
