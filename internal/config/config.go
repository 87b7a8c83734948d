// Package config handles oceanbake configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Faultbox/oceanbake/internal/bake"
	"github.com/Faultbox/oceanbake/internal/engine/water"
)

// Config holds all settings for a run.
type Config struct {
	Ocean     OceanConfig     `yaml:"ocean"`
	Animation AnimationConfig `yaml:"animation"`
	Output    OutputConfig    `yaml:"output"`
	Preview   PreviewConfig   `yaml:"preview"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// OceanConfig describes the plane and its wave.
type OceanConfig struct {
	PlaneName  string  `yaml:"plane_name"`
	Width      float64 `yaml:"width"`
	Depth      float64 `yaml:"depth"`
	Resolution int     `yaml:"resolution"` // vertices per axis
	Frequency  float64 `yaml:"frequency"`
	Amplitude  float64 `yaml:"amplitude"`
}

// AnimationConfig holds the frame loop settings.
type AnimationConfig struct {
	FirstFrame int     `yaml:"first_frame"`
	LastFrame  int     `yaml:"last_frame"`
	TimeStep   float64 `yaml:"time_step"`
	Workers    int     `yaml:"workers"` // 0 = one per CPU
}

// OutputConfig controls where baked curves are written.
type OutputConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"` // okf, yaml, or empty to infer from Path
}

// PreviewConfig controls WebP preview rendering.
type PreviewConfig struct {
	Path  string `yaml:"path"`
	Frame int    `yaml:"frame"`
	Scale int    `yaml:"scale"`
}

// ServerConfig holds live preview server settings.
type ServerConfig struct {
	Addr          string        `yaml:"addr"`
	FrameInterval time.Duration `yaml:"frame_interval"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns the reference ocean run: a 10x10 plane with 50 vertices
// per axis, keyed over frames 1..249 at 0.1 time units per frame.
func Default() *Config {
	return &Config{
		Ocean: OceanConfig{
			PlaneName:  water.DefaultPlaneName,
			Width:      10,
			Depth:      10,
			Resolution: 50,
			Frequency:  1.0,
			Amplitude:  1.0,
		},
		Animation: AnimationConfig{
			FirstFrame: bake.DefaultFirstFrame,
			LastFrame:  bake.DefaultLastFrame,
			TimeStep:   bake.DefaultTimeStep,
			Workers:    0,
		},
		Output: OutputConfig{
			Path:   "ocean.okf",
			Format: "",
		},
		Preview: PreviewConfig{
			Path:  "ocean.webp",
			Frame: 1,
			Scale: 4,
		},
		Server: ServerConfig{
			Addr:          "127.0.0.1:8080",
			FrameInterval: 100 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// WaveParams returns the wave parameters described by the ocean section.
func (c *Config) WaveParams() water.Params {
	return water.Params{
		Width:      c.Ocean.Width,
		Depth:      c.Ocean.Depth,
		Resolution: c.Ocean.Resolution,
		Frequency:  c.Ocean.Frequency,
		Amplitude:  c.Ocean.Amplitude,
	}
}

// BakeSettings returns the frame loop settings.
func (c *Config) BakeSettings() bake.Settings {
	return bake.Settings{
		FirstFrame: c.Animation.FirstFrame,
		LastFrame:  c.Animation.LastFrame,
		TimeStep:   c.Animation.TimeStep,
		Workers:    c.Animation.Workers,
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	var errs []error
	if err := c.WaveParams().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("ocean: %w", err))
	}
	if err := c.BakeSettings().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("animation: %w", err))
	}
	switch c.Output.Format {
	case "", "okf", "yaml":
	default:
		errs = append(errs, fmt.Errorf("output: unknown format %q", c.Output.Format))
	}
	if c.Preview.Scale < 1 {
		errs = append(errs, fmt.Errorf("preview: scale must be at least 1, got %d", c.Preview.Scale))
	}
	if c.Preview.Frame < 1 {
		errs = append(errs, fmt.Errorf("preview: frame must be at least 1, got %d", c.Preview.Frame))
	}
	return errors.Join(errs...)
}

// PreviewFrame returns the frame to render. It must fall inside the
// animation range; only the preview command cares, so Validate does not
// check it.
func (c *Config) PreviewFrame() (int, error) {
	if c.Preview.Frame < c.Animation.FirstFrame || c.Preview.Frame > c.Animation.LastFrame {
		return 0, fmt.Errorf("preview: frame %d outside %d..%d",
			c.Preview.Frame, c.Animation.FirstFrame, c.Animation.LastFrame)
	}
	return c.Preview.Frame, nil
}
