package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snek/internal/core"
	"github.com/vovakirdan/snek/internal/platform/tui"
	"github.com/vovakirdan/snek/internal/registry"
	"github.com/vovakirdan/snek/internal/storage"
)

var (
	flagRunsPlain bool
	flagRunsLimit int
)

var runsCmd = &cobra.Command{
	Use:   "runs [mode]",
	Short: "Browse recorded runs",
	Long: `Browse the run journal. Pick a run and press Enter to replay it.

With --plain the most recent runs are printed instead.

Examples:
  snek runs
  snek runs --plain
  snek runs snek_golden --plain --limit 5`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().BoolVar(&flagRunsPlain, "plain", false, "Print runs instead of opening the browser")
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 10, "Number of runs to print with --plain")
}

func runRuns(cmd *cobra.Command, args []string) error {
	mode := ""
	if len(args) == 1 {
		mode = args[0]
		if !registry.Exists(mode) {
			return fmt.Errorf("unknown mode %q, run 'snek list' to see available modes", mode)
		}
	}

	if flagRunsPlain {
		store, err := storage.Open(flagDBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		return printRuns(store, mode, flagRunsLimit)
	}

	s := openSession()
	defer s.Close()
	_, err := browseRuns(s, runtimeConfig())
	return err
}

// browseRuns shows the run browser, replaying picked runs, until the user
// goes back or quits.
func browseRuns(s *session, cfg core.RuntimeConfig) (quit bool, err error) {
	for {
		result, err := tui.RunRunsBrowser(s.store, cfg.ScreenW, cfg.ScreenH)
		if err != nil {
			return false, err
		}

		switch {
		case result.ReplayID != "":
			if err := playReplay(s, result.ReplayID, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		case result.GoBack:
			return false, nil
		default:
			return true, nil
		}
	}
}

func printRuns(store *storage.Store, mode string, limit int) error {
	runs, err := store.RecentRuns(mode, limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Play 'snek play' to record the first one!")
		return nil
	}

	fmt.Printf("  %-8s  %-12s  %6s  %6s  %6s  %-5s  %s\n", "Run", "Mode", "Apples", "Length", "Ticks", "End", "Date")
	fmt.Printf("  %-8s  %-12s  %6s  %6s  %6s  %-5s  %s\n", "---", "----", "------", "------", "-----", "---", "----")
	for _, r := range runs {
		fmt.Printf("  %-8s  %-12s  %6d  %6d  %6d  %-5s  %s\n",
			shortID(r.ID), r.Mode, r.Apples, r.Length, r.Ticks, r.Cause,
			r.CreatedAt.Local().Format("2006-01-02 15:04"))
	}

	stats, err := store.Stats()
	if err != nil {
		return err
	}

	fmt.Println()
	modes := make([]string, 0, len(stats))
	for m := range stats {
		if mode == "" || m == mode {
			modes = append(modes, m)
		}
	}
	slices.Sort(modes)
	for _, m := range modes {
		st := stats[m]
		fmt.Printf("%s: %d runs, most apples %d, longest %d\n", m, st.Runs, st.MostApples, st.Longest)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
