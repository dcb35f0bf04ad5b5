// Package config handles towplan configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all settings.
type Config struct {
	Planner   PlannerConfig  `yaml:"planner"`
	World     WorldConfig    `yaml:"world"`
	Obstacles ObstacleConfig `yaml:"obstacles"`
	Playback  PlaybackConfig `yaml:"playback"`
	Logging   LoggingConfig  `yaml:"logging"`
}

// PlannerConfig holds planning service settings.
type PlannerConfig struct {
	BaseURL              string  `yaml:"base_url"`
	TimeoutSec           float64 `yaml:"timeout_sec"`
	XYGridResolution     float64 `yaml:"xy_grid_resolution"`
	YawGridResolutionDeg float64 `yaml:"yaw_grid_resolution_deg"`
	LogDir               string  `yaml:"log_dir"` // request/response trail, empty disables
}

// Timeout returns the request timeout as a duration.
func (p PlannerConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSec * float64(time.Second))
}

// WorldConfig maps engine units onto planner units.
type WorldConfig struct {
	WorldScale float64 `yaml:"world_scale"`
	YLift      float64 `yaml:"y_lift"`
}

// ObstacleConfig holds obstacle sampling settings.
type ObstacleConfig struct {
	Tag                  string  `yaml:"tag"`
	SampleStep           float64 `yaml:"sample_step"`
	IncludeAllIfUntagged bool    `yaml:"include_all_if_untagged"`
}

// PlaybackConfig holds path playback settings.
type PlaybackConfig struct {
	Speed          float64 `yaml:"speed"`           // world units per second
	FollowerOffset float64 `yaml:"follower_offset"` // leader to follower distance
	TickHz         int     `yaml:"tick_hz"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Planner: PlannerConfig{
			BaseURL:              "http://127.0.0.1:8080",
			TimeoutSec:           120,
			XYGridResolution:     2.0,
			YawGridResolutionDeg: 15.0,
		},
		World: WorldConfig{
			WorldScale: 1,
			YLift:      0.05,
		},
		Obstacles: ObstacleConfig{
			Tag:                  "Obstacle",
			SampleStep:           0.5,
			IncludeAllIfUntagged: true,
		},
		Playback: PlaybackConfig{
			Speed:          5,
			FollowerOffset: 3.0,
			TickHz:         60,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values that would make planning or playback meaningless.
func (c *Config) Validate() error {
	switch {
	case c.Planner.BaseURL == "":
		return fmt.Errorf("%w: planner.base_url is empty", ErrInvalid)
	case c.Planner.TimeoutSec <= 0:
		return fmt.Errorf("%w: planner.timeout_sec must be positive, got %v", ErrInvalid, c.Planner.TimeoutSec)
	case c.Planner.XYGridResolution <= 0:
		return fmt.Errorf("%w: planner.xy_grid_resolution must be positive, got %v", ErrInvalid, c.Planner.XYGridResolution)
	case c.Planner.YawGridResolutionDeg <= 0:
		return fmt.Errorf("%w: planner.yaw_grid_resolution_deg must be positive, got %v", ErrInvalid, c.Planner.YawGridResolutionDeg)
	case c.World.WorldScale <= 0:
		return fmt.Errorf("%w: world.world_scale must be positive, got %v", ErrInvalid, c.World.WorldScale)
	case c.Obstacles.SampleStep <= 0:
		return fmt.Errorf("%w: obstacles.sample_step must be positive, got %v", ErrInvalid, c.Obstacles.SampleStep)
	case c.Playback.TickHz <= 0:
		return fmt.Errorf("%w: playback.tick_hz must be positive, got %d", ErrInvalid, c.Playback.TickHz)
	}
	return nil
}
