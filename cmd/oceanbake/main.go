// oceanbake animates a sine-displaced ocean plane and bakes its vertex
// positions into keyframe curves.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/oceanbake/internal/bake"
	"github.com/Faultbox/oceanbake/internal/config"
	"github.com/Faultbox/oceanbake/internal/engine/scene"
	"github.com/Faultbox/oceanbake/internal/export"
	"github.com/Faultbox/oceanbake/internal/logger"
	"github.com/Faultbox/oceanbake/internal/preview"
	"github.com/Faultbox/oceanbake/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch command {
	case "bake":
		err = cmdBake(ctx, args)
	case "preview":
		err = cmdPreview(ctx, args)
	case "serve":
		err = cmdServe(ctx, args)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Sync()
}

func printUsage() {
	fmt.Println(`oceanbake - procedural ocean plane keyframe baker

Usage:
  oceanbake <command> [options]

Commands:
  bake      Bake keyframes and write them to -o (okf or yaml)
  preview   Bake up to -frame and write a WebP height image to -image
  serve     Bake and stream frames to websocket clients on -addr
  config    Write the effective config to a file (default: user config dir)

Common options:
  -config <file>       YAML config file
  -resolution <n>      Vertices per axis (default 50)
  -width, -depth <f>   Plane size (default 10)
  -frequency <f>       Wave frequency (default 1.0)
  -amplitude <f>       Wave amplitude (default 1.0)
  -first, -last <n>    Frame range (default 1..249)
  -dt <f>              Time per frame (default 0.1)
  -debug               Debug logging

Examples:
  oceanbake bake -o ocean.okf
  oceanbake bake -resolution 8 -last 24 -o ocean.yaml
  oceanbake preview -frame 120 -scale 8 -image frame120.webp
  oceanbake serve -addr :8080`)
}

// setup parses flags, loads config and installs the global logger.
func setup(name string, args []string) (*config.Config, *flag.FlagSet, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	logger.Sugar.Debugf("config: %+v", cfg)
	return cfg, fs, nil
}

// bakeOcean runs the frame loop over settings in a fresh scene.
func bakeOcean(ctx context.Context, cfg *config.Config, settings bake.Settings) (*scene.Object, error) {
	sc := scene.New(logger.Named("scene"))
	obj, res, err := bake.Ocean(ctx, sc, cfg.Ocean.PlaneName, cfg.WaveParams(), settings,
		bake.WithLogger(logger.Named("bake")))
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(os.Stderr, "Baked %s: %d vertices x %d frames (%d keyframes) in %v\n",
		obj.Name, res.Vertices, res.Frames, res.Keyframes, res.Elapsed.Round(time.Millisecond))
	return obj, nil
}

func cmdBake(ctx context.Context, args []string) error {
	cfg, _, err := setup("bake", args)
	if err != nil {
		return err
	}

	obj, err := bakeOcean(ctx, cfg, cfg.BakeSettings())
	if err != nil {
		return err
	}

	if err := export.WriteFile(cfg.Output.Path, obj, cfg.Output.Format); err != nil {
		return err
	}
	logger.Info("curves written", zap.String("path", cfg.Output.Path))
	fmt.Printf("Wrote %s\n", cfg.Output.Path)
	return nil
}

func cmdPreview(ctx context.Context, args []string) error {
	cfg, _, err := setup("preview", args)
	if err != nil {
		return err
	}

	frame, err := cfg.PreviewFrame()
	if err != nil {
		return err
	}

	// Frames are independent, so only the range up to the preview frame is needed.
	settings := cfg.BakeSettings()
	settings.LastFrame = frame

	obj, err := bakeOcean(ctx, cfg, settings)
	if err != nil {
		return err
	}

	img, err := preview.RenderFrame(obj, frame, preview.Options{
		Scale:     cfg.Preview.Scale,
		Amplitude: cfg.Ocean.Amplitude,
	})
	if err != nil {
		return err
	}
	if err := preview.WriteFile(cfg.Preview.Path, img); err != nil {
		return err
	}
	logger.Info("preview written", zap.String("path", cfg.Preview.Path), zap.Int("frame", frame))
	fmt.Printf("Wrote %s\n", cfg.Preview.Path)
	return nil
}

func cmdServe(ctx context.Context, args []string) error {
	cfg, _, err := setup("serve", args)
	if err != nil {
		return err
	}

	obj, err := bakeOcean(ctx, cfg, cfg.BakeSettings())
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Addr:          cfg.Server.Addr,
		FrameInterval: cfg.Server.FrameInterval,
		TimeStep:      cfg.Animation.TimeStep,
	}, obj, logger.Named("server"))
	if err != nil {
		return err
	}
	fmt.Printf("Streaming %s on ws://%s/ws (Ctrl+C to stop)\n", obj.Name, cfg.Server.Addr)
	return srv.ListenAndServe(ctx)
}

func cmdConfig(args []string) error {
	cfg, fs, err := setup("config", args)
	if err != nil {
		return err
	}

	if fs.NArg() > 0 {
		path := fs.Arg(0)
		if err := cfg.SaveTo(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	}

	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Printf("Wrote %s/config.yaml\n", config.ConfigDir())
	return nil
}
