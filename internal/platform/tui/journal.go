package tui

import (
	"fmt"

	"github.com/vovakirdan/snek/internal/config"
	"github.com/vovakirdan/snek/internal/games/snek"
	"github.com/vovakirdan/snek/internal/snake"
	"github.com/vovakirdan/snek/internal/storage"
)

// RunRecorder journals finished runs. *storage.Recorder is the live implementation.
type RunRecorder interface {
	Record(run storage.Run, moves []storage.Move)
}

// EncodeRun converts the current run of g into journal rows.
func EncodeRun(g *snek.Game, cause string) (storage.Run, []storage.Move, error) {
	data, err := config.Marshal(g.Config())
	if err != nil {
		return storage.Run{}, nil, err
	}

	journal := g.Journal()
	moves := make([]storage.Move, len(journal))
	for i, mv := range journal {
		moves[i] = storage.Move{Tick: mv.Tick, Direction: mv.Dir.String()}
	}

	st := g.State()
	return storage.Run{
		Mode:   string(g.Mode()),
		Seed:   g.Seed(),
		Config: string(data),
		Apples: st.Score,
		Length: st.Length,
		Ticks:  g.Ticks(),
		Cause:  cause,
	}, moves, nil
}

// DecodedRun is a journal entry turned back into game inputs.
type DecodedRun struct {
	Mode   snek.Mode
	Config config.SnekConfig
	Seed   int64
	Moves  []snek.Move
	Ticks  int
}

// DecodeRun parses journal rows back into something the game can replay.
func DecodeRun(run storage.Run, moves []storage.Move) (DecodedRun, error) {
	mode, err := snek.ParseMode(run.Mode)
	if err != nil {
		return DecodedRun{}, err
	}
	cfg, err := config.Parse([]byte(run.Config))
	if err != nil {
		return DecodedRun{}, fmt.Errorf("run %s: %w", run.ID, err)
	}

	decoded := make([]snek.Move, len(moves))
	for i, mv := range moves {
		d, ok := snake.ParseDirection(mv.Direction)
		if !ok {
			return DecodedRun{}, fmt.Errorf("run %s: move %d has unknown direction %q", run.ID, i, mv.Direction)
		}
		decoded[i] = snek.Move{Tick: mv.Tick, Dir: d}
	}

	return DecodedRun{
		Mode:   mode,
		Config: cfg,
		Seed:   run.Seed,
		Moves:  decoded,
		Ticks:  run.Ticks,
	}, nil
}

// LoadReplay resolves a run id or unique id prefix and builds a game that
// re-enacts it.
func LoadReplay(store *storage.Store, idPrefix string) (*snek.Game, *storage.Run, error) {
	if store == nil {
		return nil, nil, fmt.Errorf("no run journal open")
	}
	run, err := store.FindRun(idPrefix)
	if err != nil {
		return nil, nil, err
	}
	if run == nil {
		return nil, nil, fmt.Errorf("no run matches %q", idPrefix)
	}

	moves, err := store.Moves(run.ID)
	if err != nil {
		return nil, nil, err
	}
	decoded, err := DecodeRun(*run, moves)
	if err != nil {
		return nil, nil, err
	}

	g, err := snek.NewReplay(decoded.Mode, decoded.Config, decoded.Seed, decoded.Moves)
	if err != nil {
		return nil, nil, err
	}
	return g, run, nil
}
