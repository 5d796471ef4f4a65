// snek is a terminal snake game with a replayable run journal.
//
// Usage:
//
//	snek                    - Pick a mode interactively
//	snek list               - List available modes
//	snek play [mode]        - Play a mode directly
//	snek runs               - Browse the run journal
//	snek replay <run-id>    - Replay a recorded run
//	snek serve              - Start SSH server for remote play
//
// Global flags:
//
//	--fps <rate>           - Set render frame rate (default: 60)
//	--seed <value>         - Set RNG seed for reproducible gameplay
//	--db <path>            - Set run journal path (default: ~/.snek/runs.db)
//	--config <path>        - Custom snek.yaml
//	--difficulty <preset>  - easy, normal, hard or fixed
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/snek/internal/config"
	"github.com/vovakirdan/snek/internal/core"
	"github.com/vovakirdan/snek/internal/platform/tui"
	"github.com/vovakirdan/snek/internal/storage"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfig     string
	flagDifficulty string
	flagLogPath    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "snek",
	Short: "snek - the snake game for your terminal",
	Long: `snek is a terminal snake game. Every run is journaled so it can be
replayed tick for tick.

Available commands:
  list     - Show available modes
  play     - Play a mode directly
  menu     - Interactive mode picker (default)
  runs     - Browse recorded runs
  replay   - Replay a recorded run
  serve    - Start SSH server for remote play

Examples:
  snek
  snek play snek_golden --difficulty hard
  snek runs --plain
  snek replay 3f2a
  snek serve --ssh :2222`,
	SilenceUsage: true,
	RunE:         runMenu,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Render frame rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.snek/runs.db", "Path to the run journal")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom snek config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	rootCmd.PersistentFlags().StringVar(&flagLogPath, "log", "~/.snek/snek.log", "Log file for local play (empty = discard)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(serveCmd)
}

// runtimeConfig sizes the game to the current terminal.
func runtimeConfig() core.RuntimeConfig {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}

// loadConfig reads snek.yaml and applies --difficulty. The returned flag
// reports whether a preset was named on the command line.
func loadConfig() (config.SnekConfig, bool, error) {
	cfg, err := config.LoadSnek(flagConfig)
	if err != nil {
		return config.SnekConfig{}, false, err
	}
	if flagDifficulty == "" {
		return cfg, false, nil
	}

	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		return config.SnekConfig{}, false, err
	}
	config.ApplySnekPreset(&cfg, preset)
	return cfg, true, nil
}

// chooseConfig loads the config and, when no preset was given, asks for one.
// ok is false when the user backed out of the picker.
func chooseConfig(rc core.RuntimeConfig) (cfg config.SnekConfig, ok bool, err error) {
	cfg, named, err := loadConfig()
	if err != nil || named {
		return cfg, err == nil, err
	}

	preset, err := tui.RunDifficultySelector(cfg, rc)
	if err != nil || preset == nil {
		return cfg, false, err
	}
	config.ApplySnekPreset(&cfg, *preset)
	return cfg, true, nil
}

// expandHome expands a leading ~ to the home directory.
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// openLogger returns the logger for local play. The terminal belongs to
// the game, so records go to a file.
func openLogger() (*log.Logger, func()) {
	path := expandHome(flagLogPath)
	if path == "" {
		return log.New(io.Discard), func() {}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
		return log.New(io.Discard), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open log file: %v\n", err)
		return log.New(io.Discard), func() {}
	}

	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Prefix:          "snek",
	})
	return logger, func() { f.Close() }
}

// openJournal opens the run journal. Play continues without one.
func openJournal(logger *log.Logger) *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open run journal: %v\n", err)
		logger.Warn("could not open run journal", "path", flagDBPath, "error", err)
		return nil
	}
	return store
}

// session bundles what a local play session needs.
type session struct {
	logger   *log.Logger
	store    *storage.Store
	recorder *storage.Recorder
	closeLog func()
}

func openSession() *session {
	logger, closeLog := openLogger()
	store := openJournal(logger)
	return &session{
		logger:   logger,
		store:    store,
		recorder: storage.NewRecorder(store, logger),
		closeLog: closeLog,
	}
}

// Close flushes pending runs before the journal is closed.
func (s *session) Close() {
	s.recorder.Close()
	if s.store != nil {
		s.store.Close()
	}
	s.closeLog()
}
