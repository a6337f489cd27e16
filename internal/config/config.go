// Package config handles renderer configuration loading and management.
package config

// Built-in scene presets.
const (
	SceneTest  = "test"
	SceneHalo  = "halo"
	SceneBrick = "brick"
)

// Config holds all launcher settings.
type Config struct {
	Render  RenderConfig      `yaml:"render"`
	Scene   SceneConfig       `yaml:"scene"`
	Output  OutputConfig      `yaml:"output"`
	Viewer  ViewerConfig      `yaml:"viewer"`
	Logging LoggingConfig     `yaml:"logging"`
	Scenes  map[string]string `yaml:"scenes"` // preset name -> model path
}

// RenderConfig holds frame and renderer settings.
type RenderConfig struct {
	Width             int  `yaml:"width"`
	Height            int  `yaml:"height"`
	Workers           int  `yaml:"workers"` // 0 = GOMAXPROCS
	ParallelTriangles bool `yaml:"parallel_triangles"`
	CullMeshes        bool `yaml:"cull_meshes"`
}

// SceneConfig selects the scene to build.
type SceneConfig struct {
	Name string `yaml:"name"`
}

// OutputConfig holds headless frame output settings.
type OutputConfig struct {
	WriteFrames bool    `yaml:"write_frames"`
	Frames      int     `yaml:"frames"`
	Duration    float64 `yaml:"duration"` // simulated seconds covered by all frames
	Dir         string  `yaml:"dir"`
}

// ViewerConfig holds interactive viewer settings.
type ViewerConfig struct {
	FPS     int    `yaml:"fps"`
	Channel string `yaml:"channel"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Width:             720,
			Height:            480,
			Workers:           0,
			ParallelTriangles: true,
			CullMeshes:        true,
		},
		Scene: SceneConfig{
			Name: SceneTest,
		},
		Output: OutputConfig{
			WriteFrames: false,
			Frames:      300,
			Duration:    3,
			Dir:         "frames",
		},
		Viewer: ViewerConfig{
			FPS:     30,
			Channel: "color",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Scenes: map[string]string{
			SceneHalo:  "assets/halo/spartan_armour_mkv_-_halo_reach.obj",
			SceneBrick: "assets/brick/brick.obj",
		},
	}
}

// HasScene reports whether name is the procedural test scene or a
// configured model preset.
func (c *Config) HasScene(name string) bool {
	if name == SceneTest {
		return true
	}
	_, ok := c.Scenes[name]
	return ok
}

// ModelPath returns the model file of the selected scene, or "" for the
// procedural test scene.
func (c *Config) ModelPath() string {
	return c.Scenes[c.Scene.Name]
}
