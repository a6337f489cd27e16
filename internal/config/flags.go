package config

import (
	"flag"
	"strconv"

	"go.uber.org/zap"

	"github.com/taigrr/lumen/internal/logger"
)

// Flags holds command-line overrides. Only flags given with a valid value
// are applied; a bad value is logged and the previous value is kept.
type Flags struct {
	Config     string
	SaveConfig string

	width       intFlag
	height      intFlag
	frames      intFlag
	workers     intFlag
	scene       stringFlag
	out         stringFlag
	channel     stringFlag
	logLevel    stringFlag
	logFile     stringFlag
	writeFrames boolFlag
}

// NewFlags registers the launcher flags on fs.
func NewFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{
		width:   intFlag{min: 1},
		height:  intFlag{min: 1},
		frames:  intFlag{min: 1},
		workers: intFlag{min: 0},
	}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.StringVar(&f.SaveConfig, "save_config", "", "Write the effective config to this path")
	fs.Var(&f.width, "width", "Frame width in pixels")
	fs.Var(&f.height, "height", "Frame height in pixels")
	fs.Var(&f.frames, "frames", "Number of frames to render")
	fs.Var(&f.workers, "workers", "Render goroutines (0 = all CPUs)")
	fs.Var(&f.scene, "scene", "Scene preset: test, halo, brick")
	fs.Var(&f.out, "out", "Output directory for written frames")
	fs.Var(&f.channel, "channel", "Initial viewer channel")
	fs.Var(&f.logLevel, "log_level", "Log level: debug, info, warn, error")
	fs.Var(&f.logFile, "log_file", "Also log to this file")
	fs.Var(&f.writeFrames, "write_frames", "Write every frame as a PNG")
	return f
}

// ParseFlags parses args (without the program name) into a new Flags. An
// unknown flag is logged and ends parsing; everything before it applies.
func ParseFlags(name string, args []string) *Flags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	f := NewFlags(fs)
	if err := fs.Parse(args); err != nil {
		logger.Warn("stopped parsing flags", zap.Error(err))
	}
	return f
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	f.width.apply(&cfg.Render.Width)
	f.height.apply(&cfg.Render.Height)
	f.frames.apply(&cfg.Output.Frames)
	f.workers.apply(&cfg.Render.Workers)
	f.out.apply(&cfg.Output.Dir)
	f.channel.apply(&cfg.Viewer.Channel)
	f.logLevel.apply(&cfg.Logging.Level)
	f.logFile.apply(&cfg.Logging.LogFile)
	f.writeFrames.apply(&cfg.Output.WriteFrames)

	if f.scene.set {
		if cfg.HasScene(f.scene.value) {
			cfg.Scene.Name = f.scene.value
		} else {
			logger.Warn("ignoring unknown scene",
				zap.String("scene", f.scene.value),
				zap.String("keeping", cfg.Scene.Name))
		}
	}
}

// intFlag is a flag.Value that never fails: out-of-range or malformed
// values are logged and dropped.
type intFlag struct {
	value int
	set   bool
	min   int
}

func (v *intFlag) String() string { return strconv.Itoa(v.value) }

func (v *intFlag) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < v.min {
		logger.Warn("ignoring invalid integer flag",
			zap.String("value", s),
			zap.Int("min", v.min),
			zap.Error(err))
		return nil
	}
	v.value, v.set = n, true
	return nil
}

func (v *intFlag) apply(dst *int) {
	if v.set {
		*dst = v.value
	}
}

type stringFlag struct {
	value string
	set   bool
}

func (v *stringFlag) String() string { return v.value }

func (v *stringFlag) Set(s string) error {
	v.value, v.set = s, true
	return nil
}

func (v *stringFlag) apply(dst *string) {
	if v.set {
		*dst = v.value
	}
}

type boolFlag struct {
	value bool
	set   bool
}

func (v *boolFlag) String() string { return strconv.FormatBool(v.value) }

func (v *boolFlag) IsBoolFlag() bool { return true }

func (v *boolFlag) Set(s string) error {
	b, err := strconv.ParseBool(s)
	if err != nil {
		logger.Warn("ignoring invalid boolean flag", zap.String("value", s))
		return nil
	}
	v.value, v.set = b, true
	return nil
}

func (v *boolFlag) apply(dst *bool) {
	if v.set {
		*dst = v.value
	}
}
