package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snek/internal/games/snek"
	"github.com/vovakirdan/snek/internal/platform/tui"
	"github.com/vovakirdan/snek/internal/registry"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start snek with a mode picker menu",
	Long: `Start snek in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to select a mode, Tab to browse
recorded runs. After a run ends, you return to the menu.

Examples:
  snek menu
  snek menu --fps 30
  snek menu --db ./runs.db`,
	RunE: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) error {
	s := openSession()
	defer s.Close()

	cfg := runtimeConfig()

	for {
		menuResult, err := tui.RunMenu(cfg)
		if err != nil {
			return err
		}
		cfg = menuResult.Config

		if menuResult.Quit {
			return nil
		}

		if menuResult.WantsRuns {
			quit, err := browseRuns(s, cfg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			if quit {
				return nil
			}
			continue
		}

		if menuResult.GameID == "" {
			return nil
		}

		snekCfg, ok, err := chooseConfig(cfg)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		snek.SetConfig(snekCfg)

		game, err := registry.Create(menuResult.GameID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
			continue
		}

		// Fresh seed per run unless one was pinned
		if flagSeed == 0 {
			cfg.Seed = time.Now().UnixNano()
		}

		if err := tui.Run(game, s.recorder, s.logger, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		}
	}
}
