// lumenview - interactive terminal viewer for the lumen renderer
// Renders a scene preset into the terminal with half-block cells.
//
// Controls:
//
//	W/A/S/D     - Move (fly) or orbit (orbit mode)
//	Space/E, Q  - Move up, down (hold ctrl for speed)
//	Mouse drag  - Look around
//	Scroll      - Change field of view
//	O           - Toggle orbit mode
//	R           - Reset camera
//	C/F/N/B/T/P - Show color, depth, normal, bitangent, tangent, position
//	Esc         - Quit
package main

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"go.uber.org/zap"

	"github.com/taigrr/lumen/internal/config"
	"github.com/taigrr/lumen/internal/game"
	"github.com/taigrr/lumen/internal/logger"
	"github.com/taigrr/lumen/internal/viewer"
	"github.com/taigrr/lumen/pkg/render"
)

func main() {
	logger.Init("info", "")

	flags := config.ParseFlags("lumenview", os.Args[1:])
	cfg, err := config.Load(flags)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// The terminal belongs to the renderer; logs only go to a file.
	var fileCfg logger.FileConfig
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, false)
	defer logger.Sync()

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var (
	hudFg = color.RGBA{255, 255, 255, 255}
	hudBg = color.RGBA{0, 0, 0, 255}
)

func run(cfg *config.Config) error {
	g, err := game.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}

	channel, err := render.ParseChannel(cfg.Viewer.Channel)
	if err != nil {
		logger.Warn("unknown channel, showing color", zap.Error(err))
	}

	// Create terminal
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Enable mouse mode
	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Enable any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // Enable SGR extended mouse mode

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	// The bottom row holds the status line.
	resize := func() {
		g.Frame.Resize(render.FrameSize(width, max(height-1, 1)))
	}
	resize()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events := make(chan uv.Event, 64)
	go func() {
		for ev := range term.Events() {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	view := &render.TerminalView{Channel: channel}
	ctrl := viewer.NewController(g.Scene.Camera, cfg.Viewer.FPS)
	ctrl.Channel = channel
	input := viewer.NewInputState()
	hud := viewer.NewHUD(cfg.Scene.Name, g.Scene.TriangleCount())

	ticker := time.NewTicker(time.Second / time.Duration(cfg.Viewer.FPS))
	defer ticker.Stop()

	start := time.Now()
	lastFrame := start
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if ws, ok := ev.(uv.WindowSizeEvent); ok {
				width, height = ws.Width, ws.Height
				term.Erase()
				term.Resize(width, height)
				resize()
				continue
			}
			input.HandleEvent(ev, time.Now())
			if input.Quit {
				return nil
			}
			continue
		case <-ticker.C:
		}

		now := time.Now()
		dt := min(now.Sub(lastFrame).Seconds(), 0.1)
		lastFrame = now

		ctrl.Update(&g.Scene.Camera, input, now, dt)
		g.Update(dt, now.Sub(start).Seconds())
		if err := g.Render(); err != nil {
			return err
		}

		view.Channel = ctrl.Channel
		view.Draw(term, uv.Rect(0, 0, width, max(height-1, 1)), g.Frame)
		drawStatus(term, hud.Line(ctrl), width, height-1)
		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}
		hud.UpdateFPS(now)
	}
}

// drawStatus writes line into row, padded to width.
func drawStatus(scr uv.Screen, line string, width, row int) {
	col := 0
	for _, r := range line {
		if col >= width {
			return
		}
		scr.SetCell(col, row, &uv.Cell{
			Content: string(r),
			Width:   1,
			Style:   uv.Style{Fg: hudFg, Bg: hudBg},
		})
		col++
	}
	for ; col < width; col++ {
		scr.SetCell(col, row, &uv.Cell{Content: " ", Width: 1, Style: uv.Style{Bg: hudBg}})
	}
}
