package snek

import (
	"fmt"

	"github.com/vovakirdan/snek/internal/config"
	"github.com/vovakirdan/snek/internal/core"
)

// NewReplay creates a game that re-enacts a recorded run. Directional
// input is ignored; the recorded moves steer the snake as the scheduler
// ticks. Restart plays the recording again from the start.
func NewReplay(mode Mode, cfg config.SnekConfig, seed int64, moves []Move) (*Game, error) {
	if err := checkMoves(moves); err != nil {
		return nil, err
	}
	g := New(mode, cfg)
	g.script = moves
	if g.script == nil {
		g.script = []Move{}
	}
	g.replaySeed = seed
	return g, nil
}

// Replay re-simulates a recorded run without a scheduler and returns the
// final snapshot. The run stops when the snake dies or after maxTicks.
func Replay(mode Mode, cfg config.SnekConfig, seed int64, moves []Move, maxTicks int) (Snapshot, error) {
	g, err := NewReplay(mode, cfg, seed, moves)
	if err != nil {
		return Snapshot{}, err
	}
	g.newPulser = func(config.TickConfig) Pulser { return idlePulser{} }
	g.Reset(core.RuntimeConfig{Seed: seed})

	for g.ticks < maxTicks && !g.snake.IsDead() {
		g.advanceTick()
	}
	// Turns made after the last recorded tick still belong to the run
	if !g.snake.IsDead() {
		g.feedScript()
	}
	return g.Snapshot(), nil
}

// Replaying reports whether the game re-enacts a recording.
func (g *Game) Replaying() bool {
	return g.script != nil
}

// feedScript applies every recorded move due before the next tick.
func (g *Game) feedScript() {
	for g.scriptPos < len(g.script) && g.script[g.scriptPos].Tick <= g.ticks {
		g.turn(g.script[g.scriptPos].Dir)
		g.scriptPos++
	}
}

func checkMoves(moves []Move) error {
	for i := 1; i < len(moves); i++ {
		if moves[i].Tick < moves[i-1].Tick {
			return fmt.Errorf("snek: move %d at tick %d is before tick %d", i, moves[i].Tick, moves[i-1].Tick)
		}
	}
	return nil
}

// idlePulser never ticks. Headless replay drives the simulation itself.
type idlePulser struct{}

func (idlePulser) Start()         {}
func (idlePulser) Stop()          {}
func (idlePulser) PollTick() bool { return false }
func (idlePulser) Running() bool  { return false }
