package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
		cfg.LoadedFrom = configPath
	}

	cfg.snapshot()
	applyFlags(cfg)
	cfg.sanitize()

	return cfg, nil
}

// Reload re-reads the file the config came from, keeping flag overrides.
// A config built from defaults only is returned unchanged.
func (c *Config) Reload() (*Config, error) {
	next := Default()
	if c.LoadedFrom != "" {
		if err := loadFromFile(next, c.LoadedFrom); err != nil {
			return nil, fmt.Errorf("reloading config from %s: %w", c.LoadedFrom, err)
		}
		next.LoadedFrom = c.LoadedFrom
		next.snapshot()
	} else {
		*next = *c
	}
	applyFlags(next)
	next.sanitize()
	return next, nil
}

// snapshot records the current values as the on-disk state.
func (c *Config) snapshot() {
	stored := *c
	stored.stored = nil
	c.stored = &stored
}

// sanitize clamps values that would break the renderer.
func (c *Config) sanitize() {
	if c.Water.Detail < 1 {
		c.Water.Detail = 1
	}
	if c.Water.AnimRate <= 0 {
		c.Water.AnimRate = DefaultWater().AnimRate
	}
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./water.yaml",
		filepath.Join(ConfigDir(), "water.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "MidgardWater")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "MidgardWater")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "midgard-water")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "midgard-water")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
