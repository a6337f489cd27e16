// lumen - headless software renderer
// Renders a scene preset for a fixed number of frames and optionally writes
// every frame as a PNG.
//
// Usage:
//
//	lumen [--width=720] [--height=480] [--scene=test|halo|brick] [--write_frames]
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/taigrr/lumen/internal/config"
	"github.com/taigrr/lumen/internal/game"
	"github.com/taigrr/lumen/internal/logger"
)

func main() {
	// Console logging until the config says otherwise, so flag warnings show.
	logger.Init("info", "")

	flags := config.ParseFlags("lumen", os.Args[1:])
	cfg, err := config.Load(flags)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.LogFile)

	if flags.SaveConfig != "" {
		if err := cfg.SaveTo(flags.SaveConfig); err != nil {
			logger.Warn("failed to save config", zap.String("path", flags.SaveConfig), zap.Error(err))
		}
	}

	if err := run(cfg); err != nil {
		logger.Fatal("render failed", zap.Error(err))
	}
	logger.Sync()
}

func run(cfg *config.Config) error {
	logger.Info("starting",
		zap.Int("width", cfg.Render.Width),
		zap.Int("height", cfg.Render.Height),
		zap.String("scene", cfg.Scene.Name),
		zap.Bool("write_frames", cfg.Output.WriteFrames),
		zap.Int("frames", cfg.Output.Frames))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, err := game.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}
	logger.Info("scene ready",
		zap.Int("objects", len(g.Scene.Objects)),
		zap.Int("triangles", g.Scene.TriangleCount()),
		zap.Int("lights", len(g.Scene.Lights)),
		zap.Int("textures", g.Store.Len()))

	var w *game.FrameWriter
	if cfg.Output.WriteFrames {
		if w, err = game.NewFrameWriter(cfg.Output.Dir); err != nil {
			return err
		}
	}

	_, err = g.Run(ctx, cfg.Output.Frames, cfg.Output.Duration, w)
	if errors.Is(err, context.Canceled) {
		logger.Info("interrupted")
		return nil
	}
	return err
}
