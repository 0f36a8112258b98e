// Package config handles viewer and water renderer configuration.
package config

// Config holds all settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Water    WaterConfig    `yaml:"water"`
	Map      MapConfig      `yaml:"map"`
	Logging  LoggingConfig  `yaml:"logging"`

	// LoadedFrom is the file the config was read from, empty for pure defaults.
	LoadedFrom string `yaml:"-"`

	// stored is the config as read from disk, before flag overrides.
	// Saves start from it so one-shot flags never reach the file.
	stored *Config
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	MSAA       int  `yaml:"msaa"` // multisample count, 0 disables
}

// WaterConfig holds the requested water techniques and their tunables.
// The technique toggles are requests; hardware negotiation may turn them off
// and write the corrected value back.
type WaterConfig struct {
	Reflections  bool `yaml:"reflections"`
	BumpMapping  bool `yaml:"bump_mapping"`
	Translucency bool `yaml:"translucency"`
	Shaders      bool `yaml:"shaders"`
	AnimatedBump bool `yaml:"animated_bump"`

	AlphaMultiplier    float32 `yaml:"alpha_multiplier"`
	AlphaBase          float32 `yaml:"alpha_base"`
	ReflectionStrength float32 `yaml:"reflection_strength"`
	ScrollSpeed        float32 `yaml:"scroll_speed"`
	AnimRate           float32 `yaml:"anim_rate"`
	Detail             int     `yaml:"detail"`
	DynamicLOD         bool    `yaml:"dynamic_lod"`

	// TextureDir holds water%03d images; empty or missing frames are generated.
	TextureDir string `yaml:"texture_dir"`
}

// MapConfig selects the terrain the viewer and tools operate on.
type MapConfig struct {
	GATPath    string  `yaml:"gat_path"`   // empty means a generated basin
	WaterLevel float32 `yaml:"water_level"` // world-space level, z-up
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`

	// Components overrides the level per logger name, e.g. water: debug.
	Components map[string]string `yaml:"components,omitempty"`
}

// DefaultWater returns the default water settings.
func DefaultWater() WaterConfig {
	return WaterConfig{
		Reflections:        true,
		BumpMapping:        true,
		Translucency:       true,
		Shaders:            true,
		AnimatedBump:       true,
		AlphaMultiplier:    0.8,
		AlphaBase:          0.0,
		ReflectionStrength: 0.25,
		ScrollSpeed:        0.05,
		AnimRate:           15,
		Detail:             1,
		DynamicLOD:         false,
	}
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			MSAA:       4,
		},
		Water: DefaultWater(),
		Map: MapConfig{
			WaterLevel: 2.0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
