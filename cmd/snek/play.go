package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snek/internal/games/snek"
	"github.com/vovakirdan/snek/internal/platform/tui"
	"github.com/vovakirdan/snek/internal/registry"
)

var playCmd = &cobra.Command{
	Use:   "play [mode]",
	Short: "Play a mode",
	Long: `Start playing the specified mode (default: snek).

Controls:
  Arrows/WASD/HJKL - Steer
  P/Space          - Pause
  R                - Restart (after game over)
  Esc              - Leave (when paused or after game over)
  Q/Ctrl+C         - Quit
  Ctrl+S           - Screenshot

Difficulty options set the tick interval:
  easy   - 200ms per move
  normal - 150ms per move
  hard   - 90ms per move
  fixed  - Keep the configured interval

Without --difficulty a picker is shown first.

Examples:
  snek play
  snek play snek_golden
  snek play --difficulty hard
  snek play --config ./my-snek.yaml --seed 42`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func runPlay(cmd *cobra.Command, args []string) error {
	gameID := string(snek.ModeClassic)
	if len(args) == 1 {
		gameID = args[0]
	}

	if !registry.Exists(gameID) {
		return fmt.Errorf("unknown mode %q, run 'snek list' to see available modes", gameID)
	}

	cfg := runtimeConfig()

	snekCfg, ok, err := chooseConfig(cfg)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	snek.SetConfig(snekCfg)

	game, err := registry.Create(gameID)
	if err != nil {
		return fmt.Errorf("creating game: %w", err)
	}

	s := openSession()
	defer s.Close()

	s.logger.Info("playing", "mode", gameID, "interval", snekCfg.Tick.Interval)
	return tui.Run(game, s.recorder, s.logger, cfg)
}
