package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/snek.yaml
var defaultSnekYAML []byte

// DefaultSnekConfig returns the default snek configuration.
func DefaultSnekConfig() SnekConfig {
	return SnekConfig{
		Arena: ArenaConfig{
			Cols:      30,
			Rows:      20,
			BlockSize: 40,
		},
		Snake: SnakeConfig{
			StartLength: 8,
			StartRow:    1,
			Padding:     10,
		},
		Apple: AppleConfig{
			Grow:      1,
			SuperGrow: 3,
		},
		Tick: TickConfig{
			Interval:  150 * time.Millisecond,
			QueueSize: 16,
		},
	}
}

// DefaultYAML returns the embedded default YAML.
func DefaultYAML() []byte {
	return defaultSnekYAML
}
