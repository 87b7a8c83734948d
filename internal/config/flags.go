package config

import (
	"flag"
	"time"
)

// Flags holds command-line overrides registered on a FlagSet.
type Flags struct {
	fs *flag.FlagSet

	config     *string
	debug      *bool
	name       *string
	width      *float64
	depth      *float64
	resolution *int
	frequency  *float64
	amplitude  *float64
	first      *int
	last       *int
	timeStep   *float64
	workers    *int
	output     *string
	format     *string
	logFile    *string
	frame      *int
	scale      *int
	image      *string
	addr       *string
	interval   *time.Duration
}

// RegisterFlags adds the shared flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		fs:         fs,
		config:     fs.String("config", "", "Path to config file"),
		debug:      fs.Bool("debug", false, "Enable debug logging"),
		name:       fs.String("name", "", "Plane object name"),
		width:      fs.Float64("width", 0, "Plane width"),
		depth:      fs.Float64("depth", 0, "Plane depth"),
		resolution: fs.Int("resolution", 0, "Vertices per axis"),
		frequency:  fs.Float64("frequency", 0, "Wave frequency"),
		amplitude:  fs.Float64("amplitude", 0, "Wave amplitude"),
		first:      fs.Int("first", 0, "First frame"),
		last:       fs.Int("last", 0, "Last frame"),
		timeStep:   fs.Float64("dt", 0, "Time units per frame"),
		workers:    fs.Int("workers", 0, "Parallel workers (0 = one per CPU)"),
		output:     fs.String("o", "", "Output path"),
		format:     fs.String("format", "", "Output format: okf or yaml"),
		logFile:    fs.String("log-file", "", "Write logs to this file"),
		frame:      fs.Int("frame", 0, "Frame to render as a preview"),
		scale:      fs.Int("scale", 0, "Preview pixels per vertex"),
		image:      fs.String("image", "", "Preview image path"),
		addr:       fs.String("addr", "", "Preview server listen address"),
		interval:   fs.Duration("interval", 0, "Preview server frame interval"),
	}
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return *f.config
}

// applyFlags applies explicitly set flags to the config. Unset flags leave
// the file and default values alone, so zero is a valid override.
func (f *Flags) applyFlags(cfg *Config) {
	if f == nil {
		return
	}
	set := make(map[string]bool)
	f.fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if *f.debug {
		cfg.Logging.Level = "debug"
	}
	if set["name"] {
		cfg.Ocean.PlaneName = *f.name
	}
	if set["width"] {
		cfg.Ocean.Width = *f.width
	}
	if set["depth"] {
		cfg.Ocean.Depth = *f.depth
	}
	if set["resolution"] {
		cfg.Ocean.Resolution = *f.resolution
	}
	if set["frequency"] {
		cfg.Ocean.Frequency = *f.frequency
	}
	if set["amplitude"] {
		cfg.Ocean.Amplitude = *f.amplitude
	}
	if set["first"] {
		cfg.Animation.FirstFrame = *f.first
	}
	if set["last"] {
		cfg.Animation.LastFrame = *f.last
	}
	if set["dt"] {
		cfg.Animation.TimeStep = *f.timeStep
	}
	if set["workers"] {
		cfg.Animation.Workers = *f.workers
	}
	if set["o"] {
		cfg.Output.Path = *f.output
	}
	if set["format"] {
		cfg.Output.Format = *f.format
	}
	if set["log-file"] {
		cfg.Logging.LogFile = *f.logFile
	}
	if set["frame"] {
		cfg.Preview.Frame = *f.frame
	}
	if set["scale"] {
		cfg.Preview.Scale = *f.scale
	}
	if set["image"] {
		cfg.Preview.Path = *f.image
	}
	if set["addr"] {
		cfg.Server.Addr = *f.addr
	}
	if set["interval"] {
		cfg.Server.FrameInterval = *f.interval
	}
}
