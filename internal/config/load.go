package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/taigrr/lumen/internal/logger"
)

// Load loads configuration with priority: defaults < file < flags.
func Load(f *Flags) (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	var configPath string
	if f != nil {
		configPath = f.Config
	}
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg, f)
	sanitize(cfg)

	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./lumen.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Lumen")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Lumen")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "lumen")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "lumen")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// sanitize restores defaults for values a config file set out of range.
func sanitize(cfg *Config) {
	def := Default()
	fix := func(name string, bad bool, reset func()) {
		if bad {
			logger.Warn("invalid config value, using default", zap.String("key", name))
			reset()
		}
	}

	fix("render.width", cfg.Render.Width <= 0, func() { cfg.Render.Width = def.Render.Width })
	fix("render.height", cfg.Render.Height <= 0, func() { cfg.Render.Height = def.Render.Height })
	fix("render.workers", cfg.Render.Workers < 0, func() { cfg.Render.Workers = def.Render.Workers })
	fix("output.frames", cfg.Output.Frames <= 0, func() { cfg.Output.Frames = def.Output.Frames })
	fix("output.duration", cfg.Output.Duration <= 0, func() { cfg.Output.Duration = def.Output.Duration })
	fix("viewer.fps", cfg.Viewer.FPS <= 0, func() { cfg.Viewer.FPS = def.Viewer.FPS })
	fix("scene.name", !cfg.HasScene(cfg.Scene.Name), func() { cfg.Scene.Name = def.Scene.Name })
}
