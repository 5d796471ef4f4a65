package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadSnek loads the snek configuration.
// Search order: customPath -> ~/.snek/configs/snek.yaml -> ./configs/snek.yaml -> embedded default
//
// Files are decoded over the defaults, so a partial file only overrides
// the keys it names. A custom path that cannot be read, parsed or
// validated is an error; the other locations are skipped when broken.
func LoadSnek(customPath string) (SnekConfig, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return SnekConfig{}, fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		cfg, err := Parse(data)
		if err != nil {
			return SnekConfig{}, fmt.Errorf("config: %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("snek.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := Parse(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", "snek.yaml")); err == nil {
		if cfg, err := Parse(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := Parse(defaultSnekYAML)
	if err != nil {
		return DefaultSnekConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (SnekConfig, error) {
	cfg := DefaultSnekConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SnekConfig{}, fmt.Errorf("failed to parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return SnekConfig{}, err
	}
	return cfg, nil
}

// Marshal encodes cfg as YAML. Run journals store this snapshot so a
// replay rebuilds the exact arena the run was played on.
func Marshal(cfg SnekConfig) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("config: failed to encode: %w", err)
	}
	return data, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".snek", "configs", filename)
}

// ApplySnekPreset modifies the config based on a difficulty preset.
func ApplySnekPreset(cfg *SnekConfig, preset DifficultyPreset) {
	if interval := IntervalForPreset(preset); interval > 0 {
		cfg.Tick.Interval = interval
	}
}
