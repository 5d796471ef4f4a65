package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snek/internal/core"
	"github.com/vovakirdan/snek/internal/games/snek"
	"github.com/vovakirdan/snek/internal/platform/tui"
	"github.com/vovakirdan/snek/internal/storage"
)

var flagHeadless bool

var replayCmd = &cobra.Command{
	Use:   "replay <run-id>",
	Short: "Replay a recorded run",
	Long: `Replay a run from the journal. Any unique prefix of the run id works.

The replay ticks at the run's own interval; directional keys are ignored.
With --headless the run is re-simulated instantly and the final state is
checked against what was recorded.

Examples:
  snek replay 3f2a
  snek replay 3f2a9c1e --headless`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&flagHeadless, "headless", false, "Re-simulate without the TUI and print the result")
}

func runReplay(cmd *cobra.Command, args []string) error {
	if flagHeadless {
		store, err := storage.Open(flagDBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		return verifyReplay(store, args[0])
	}

	s := openSession()
	defer s.Close()
	return playReplay(s, args[0], runtimeConfig())
}

func playReplay(s *session, id string, cfg core.RuntimeConfig) error {
	game, run, err := tui.LoadReplay(s.store, id)
	if err != nil {
		return err
	}
	s.logger.Info("replaying", "run", run.ID, "mode", run.Mode, "ticks", run.Ticks)

	// Replays are never journaled, so no recorder
	return tui.Run(game, nil, s.logger, cfg)
}

func verifyReplay(store *storage.Store, id string) error {
	run, err := store.FindRun(id)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("no run matches %q", id)
	}
	moves, err := store.Moves(run.ID)
	if err != nil {
		return err
	}
	decoded, err := tui.DecodeRun(*run, moves)
	if err != nil {
		return err
	}

	snap, err := snek.Replay(decoded.Mode, decoded.Config, decoded.Seed, decoded.Moves, decoded.Ticks)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s (%s, seed %d)\n", run.ID, run.Mode, run.Seed)
	fmt.Printf("  recorded: %d ticks, %d apples, length %d, ended by %s\n", run.Ticks, run.Apples, run.Length, run.Cause)
	fmt.Printf("  replayed: %d ticks, %d apples, length %d, state %s", snap.Tick, snap.Apples, snap.Length, snap.State)
	if snap.Cause != snek.CauseNone {
		fmt.Printf(" (%s)", snap.Cause)
	}
	fmt.Println()

	if snap.Tick != run.Ticks || snap.Apples != run.Apples || snap.Length != run.Length {
		return fmt.Errorf("replay of %s diverged from the recording", run.ID)
	}
	fmt.Println("  replay matches the recording")
	return nil
}
