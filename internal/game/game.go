// Package game wires a scene, its texture store, a frame buffer and a list
// of per-frame systems into something that can be stepped and rendered.
package game

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/taigrr/lumen/internal/logger"
	"github.com/taigrr/lumen/pkg/render"
	"github.com/taigrr/lumen/pkg/scene"
	"github.com/taigrr/lumen/pkg/texture"
)

// System is called once per update with the frame delta and the absolute
// time, both in seconds.
type System func(g *Game, dt, t float64)

// Game owns everything needed to produce frames.
type Game struct {
	Store    *texture.Store
	Scene    *scene.Scene
	Frame    *render.FrameBuffer
	Renderer *render.Renderer

	systems []System
}

// New creates a game with an empty scene and a width × height frame.
func New(width, height int, r *render.Renderer) *Game {
	if r == nil {
		r = render.NewRenderer()
	}
	return &Game{
		Store:    texture.NewStore(),
		Scene:    scene.New(),
		Frame:    render.NewFrameBuffer(width, height),
		Renderer: r,
	}
}

// AddSystem appends s; systems run in the order they were added.
func (g *Game) AddSystem(s System) {
	g.systems = append(g.systems, s)
}

// Update runs every system.
func (g *Game) Update(dt, t float64) {
	for _, s := range g.systems {
		s(g, dt, t)
	}
}

// Render draws the scene into the frame buffer.
func (g *Game) Render() error {
	if err := g.Renderer.Render(g.Frame, g.Scene, g.Store); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// RunStats summarizes a headless run.
type RunStats struct {
	Frames int
	Total  time.Duration
}

// Average returns the mean update and render time per frame.
func (s RunStats) Average() time.Duration {
	if s.Frames == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Frames)
}

// Run renders frames frames covering duration simulated seconds. Each step
// passes dt = 1/duration and t = i·duration/frames. When w is not nil every
// frame is written as a PNG. Run stops early if ctx is cancelled.
func (g *Game) Run(ctx context.Context, frames int, duration float64, w *FrameWriter) (RunStats, error) {
	var stats RunStats
	for i := range frames {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		start := time.Now()
		g.Update(1/duration, float64(i)*duration/float64(frames))
		if err := g.Render(); err != nil {
			return stats, fmt.Errorf("frame %d: %w", i, err)
		}
		elapsed := time.Since(start)
		stats.Frames++
		stats.Total += elapsed

		st := g.Renderer.Stats
		logger.Info("frame rendered",
			zap.Int("frame", i+1),
			zap.Duration("elapsed", elapsed),
			zap.Int("meshes", st.MeshesDrawn),
			zap.Int("culled", st.MeshesCulled),
			zap.Int64("fragments", st.Fragments))

		if w != nil {
			if err := w.Write(g.Frame, i); err != nil {
				return stats, err
			}
		}
	}

	logger.Info("run complete",
		zap.Int("frames", stats.Frames),
		zap.Duration("average", stats.Average()))
	return stats, nil
}
