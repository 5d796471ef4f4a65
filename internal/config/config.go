// Package config provides YAML-based configuration loading and difficulty
// presets for snek.
package config

import (
	"fmt"
	"time"
)

// SnekConfig contains all configuration for a snek session.
type SnekConfig struct {
	Arena ArenaConfig `yaml:"arena"`
	Snake SnakeConfig `yaml:"snake"`
	Apple AppleConfig `yaml:"apple"`
	Tick  TickConfig  `yaml:"tick"`
}

// ArenaConfig defines the playing field. The arena is Cols x Rows blocks,
// each BlockSize units on a side.
type ArenaConfig struct {
	Cols      int `yaml:"cols"`
	Rows      int `yaml:"rows"`
	BlockSize int `yaml:"block_size"`
}

// SnakeConfig defines the snake at the start of a run.
type SnakeConfig struct {
	StartLength int `yaml:"start_length"`
	StartRow    int `yaml:"start_row"` // In blocks from the top
	Padding     int `yaml:"padding"`   // Inner square inset, display only
}

// AppleConfig defines how much each apple variant grows the snake.
type AppleConfig struct {
	Grow      int `yaml:"grow"`
	SuperGrow int `yaml:"super_grow"`
}

// TickConfig defines the simulation cadence.
type TickConfig struct {
	Interval  time.Duration `yaml:"interval"`
	QueueSize int           `yaml:"queue_size"`
}

// Bounds returns the arena extent in units as minX, maxX, minY, maxY.
func (a ArenaConfig) Bounds() (int, int, int, int) {
	return 0, a.Cols * a.BlockSize, 0, a.Rows * a.BlockSize
}

// Validate checks that the configuration can build a playable arena.
func (c SnekConfig) Validate() error {
	switch {
	case c.Arena.Cols < 2 || c.Arena.Rows < 2:
		return fmt.Errorf("config: arena must be at least 2x2, got %dx%d", c.Arena.Cols, c.Arena.Rows)
	case c.Arena.BlockSize <= 0:
		return fmt.Errorf("config: block_size must be positive, got %d", c.Arena.BlockSize)
	case c.Snake.StartLength < 1 || c.Snake.StartLength >= c.Arena.Cols:
		return fmt.Errorf("config: start_length must be in [1, %d), got %d", c.Arena.Cols, c.Snake.StartLength)
	case c.Snake.StartRow < 0 || c.Snake.StartRow >= c.Arena.Rows:
		return fmt.Errorf("config: start_row must be in [0, %d), got %d", c.Arena.Rows, c.Snake.StartRow)
	case c.Snake.Padding < 0 || 2*c.Snake.Padding >= c.Arena.BlockSize:
		return fmt.Errorf("config: padding must be in [0, %d), got %d", (c.Arena.BlockSize+1)/2, c.Snake.Padding)
	case c.Apple.Grow < 1 || c.Apple.SuperGrow < 1:
		return fmt.Errorf("config: apple grow amounts must be at least 1, got %d and %d", c.Apple.Grow, c.Apple.SuperGrow)
	case c.Tick.Interval <= 0:
		return fmt.Errorf("config: tick interval must be positive, got %v", c.Tick.Interval)
	}
	return nil
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// IntervalForPreset returns the tick interval for a difficulty preset.
// Fixed and unknown presets return 0, meaning keep the configured value.
func IntervalForPreset(preset DifficultyPreset) time.Duration {
	switch preset {
	case DifficultyEasy:
		return 200 * time.Millisecond
	case DifficultyNormal:
		return 150 * time.Millisecond
	case DifficultyHard:
		return 90 * time.Millisecond
	default:
		return 0
	}
}

// ParsePreset validates a preset name. The empty string means fixed.
func ParsePreset(name string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(name); p {
	case "":
		return DifficultyFixed, nil
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (want easy, normal, hard or fixed)", name)
	}
}
