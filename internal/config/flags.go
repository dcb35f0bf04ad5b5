package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagServer  = flag.String("server", "", "Planner base URL")
	flagTimeout = flag.Float64("timeout", 0, "Planner request timeout in seconds")
	flagSpeed   = flag.Float64("speed", 0, "Playback speed in world units per second")
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
	if *flagServer != "" {
		cfg.Planner.BaseURL = *flagServer
	}
	if *flagTimeout > 0 {
		cfg.Planner.TimeoutSec = *flagTimeout
	}
	if *flagSpeed > 0 {
		cfg.Playback.Speed = *flagSpeed
	}
}
