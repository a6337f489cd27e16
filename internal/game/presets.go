package game

import (
	"fmt"
	"image/color"
	"math"

	"github.com/taigrr/lumen/internal/config"
	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/models"
	"github.com/taigrr/lumen/pkg/render"
	"github.com/taigrr/lumen/pkg/texture"
)

const rigScale = 4.0

// NewFromConfig builds the configured scene preset with a renderer set up
// from cfg.Render.
func NewFromConfig(cfg *config.Config) (*Game, error) {
	g := New(cfg.Render.Width, cfg.Render.Height, NewRenderer(cfg.Render))
	if err := Build(g, cfg.Scene.Name, cfg.ModelPath(), cfg.Viewer.FPS); err != nil {
		return nil, err
	}
	return g, nil
}

// NewRenderer returns a renderer with the configured parallelism.
func NewRenderer(rc config.RenderConfig) *render.Renderer {
	r := render.NewRenderer()
	if rc.Workers > 0 {
		r.Workers = rc.Workers
	}
	r.ParallelTriangles = rc.ParallelTriangles
	r.CullMeshes = rc.CullMeshes
	return r
}

// Build populates g with a preset. Every preset gets the rotating light
// rig and the global light; model presets also load modelPath and add a
// light following the camera, stepped at fps.
func Build(g *Game, name, modelPath string, fps int) error {
	if name != config.SceneTest && modelPath == "" {
		return fmt.Errorf("scene %q: no model configured", name)
	}

	AddRotatingLights(g, rigScale)
	AddGlobalLight(g)

	if name == config.SceneTest {
		buildTestScene(g)
		return nil
	}

	id := g.Scene.AddObject(models.Load(modelPath, g.Store))
	if name == config.SceneBrick {
		AddSpin(g, id, 10)
	}
	AddCameraLight(g, fps)
	return nil
}

// buildTestScene lays out a checkered floor, a spinning cube and two
// spheres without touching the file system.
func buildTestScene(g *Game) {
	checker := texture.NewChecker(64, 64, 8,
		color.NRGBA{200, 200, 200, 255},
		color.NRGBA{60, 60, 70, 255})
	floorMat := models.DefaultMaterial()
	floorMat.Name = "floor"
	floorMat.DiffuseMap = g.Store.Add("checker", checker, texture.ModeColor).ID()

	floor := models.NewLeaf(models.NewQuad(20, floorMat))
	floor.Position = math3d.V3(0, -1, 0)
	floor.Rotation = math3d.V3(-math.Pi/2, 0, 0)
	g.Scene.AddObject(floor)

	cube := models.NewLeaf(models.NewCube(1.2, nil))
	cube.Rotation = math3d.V3(0.4, 0, 0.2)
	AddSpin(g, g.Scene.AddObject(cube), 10)

	shiny := models.DefaultMaterial()
	shiny.Name = "shiny"
	shiny.Diffuse = math3d.V3(0.8, 0.8, 0.9)
	shiny.Shininess = 128

	matte := models.DefaultMaterial()
	matte.Name = "matte"
	matte.Diffuse = math3d.V3(0.9, 0.6, 0.3)
	matte.Shininess = 4

	left := models.NewLeaf(models.NewSphere(0.8, 16, 24, shiny))
	left.Position = math3d.V3(-2.5, 0, 0)
	right := models.NewLeaf(models.NewSphere(0.8, 16, 24, matte))
	right.Position = math3d.V3(2.5, 0, 0)
	g.Scene.AddObject(models.NewGroup(left, right))

	g.Scene.Camera.Position = math3d.V3(0, 1.5, 6)
}
