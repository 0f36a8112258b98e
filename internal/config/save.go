package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Save writes the config to the file it was loaded from, or to the user's
// config directory when it came from defaults.
func (c *Config) Save() error {
	if c.LoadedFrom != "" {
		return c.SaveTo(c.LoadedFrom)
	}
	return c.SaveTo(filepath.Join(ConfigDir(), "water.yaml"))
}

// SaveTo writes the config to a specific path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// FileStore persists corrected water settings into a Config and its file.
type FileStore struct {
	Config *Config
}

// PersistWater stores w as the requested water settings and saves the config.
// Only techniques switched off relative to the current request are written;
// flag overrides of this run stay out of the file.
func (s *FileStore) PersistWater(w WaterConfig) error {
	prev := s.Config.Water
	s.Config.Water = w

	var file Config
	if s.Config.stored != nil {
		file = *s.Config.stored
	} else {
		file = *s.Config
		file.Water = prev
	}
	file.Water = disableDropped(file.Water, prev, w)
	file.LoadedFrom = s.Config.LoadedFrom
	file.stored = nil

	if err := file.Save(); err != nil {
		return err
	}
	s.Config.stored = &file
	return nil
}

// disableDropped turns off in base every toggle that was on in from and is
// off in to.
func disableDropped(base, from, to WaterConfig) WaterConfig {
	drop := func(dst *bool, was, now bool) {
		if was && !now {
			*dst = false
		}
	}
	drop(&base.Reflections, from.Reflections, to.Reflections)
	drop(&base.BumpMapping, from.BumpMapping, to.BumpMapping)
	drop(&base.Translucency, from.Translucency, to.Translucency)
	drop(&base.Shaders, from.Shaders, to.Shaders)
	drop(&base.AnimatedBump, from.AnimatedBump, to.AnimatedBump)
	return base
}
