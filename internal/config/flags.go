package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagNoShaders  = flag.Bool("no-shaders", false, "Disable the shader water technique")
	flagDetail     = flag.Int("detail", 0, "Water tessellation detail factor (1 = per corner)")
	flagMap        = flag.String("map", "", "GAT file to load terrain and water from")
	flagLevel      = flag.Float64("level", 0, "Water level override (0 keeps the configured level)")
	flagTextures   = flag.String("textures", "", "Directory with water%03d/bump%03d images")
	flagLOD        = flag.Bool("lod", false, "Enable distance-based water detail")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagNoShaders {
		cfg.Water.Shaders = false
	}
	if *flagDetail > 0 {
		cfg.Water.Detail = *flagDetail
	}
	if *flagMap != "" {
		cfg.Map.GATPath = *flagMap
	}
	if *flagLevel != 0 {
		cfg.Map.WaterLevel = float32(*flagLevel)
	}
	if *flagTextures != "" {
		cfg.Water.TextureDir = *flagTextures
	}
	if *flagLOD {
		cfg.Water.DynamicLOD = true
	}
}
