package testbed

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine"
	"github.com/spaghettifunk/lumen/engine/core"
)

// orbitSpeed is how fast the arrow/WASD keys swing the camera around the
// model, in radians per second.
const orbitSpeed = 1.2

// dollySpeed is how fast Q/E move the camera along its view axis, in scene
// units per second.
const dollySpeed = 2.0

type TestGame struct {
	*engine.Game
}

type gameState struct {
	width  uint32
	height uint32
}

func NewTestGame() (*TestGame, error) {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: &engine.ApplicationConfig{
				StartPosX:   100,
				StartPosY:   100,
				StartWidth:  1280,
				StartHeight: 720,
				Name:        "Lumen Viewer",
				LogLevel:    core.DebugLevel,
				CatalogPath: "assets/scenes.toml",
				AssetDir:    "assets/models",
				ShaderDir:   "assets/shaders",
			},
			State: &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

func (g *TestGame) Initialize() error {
	if g.Graph == nil {
		return fmt.Errorf("the engine has not built the render graph yet")
	}

	pos := g.Graph.Camera.Position
	core.LogInfo("Camera Pos: [%.3f, %.3f, %.3f]", pos.X, pos.Y, pos.Z)
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	cam := g.Graph.Camera
	step := orbitSpeed * float32(deltaTime)

	if core.InputIsKeyDown(core.KEY_A) || core.InputIsKeyDown(core.KEY_LEFT) {
		cam.Orbit(step, 0)
	}
	if core.InputIsKeyDown(core.KEY_D) || core.InputIsKeyDown(core.KEY_RIGHT) {
		cam.Orbit(-step, 0)
	}
	if core.InputIsKeyDown(core.KEY_W) || core.InputIsKeyDown(core.KEY_UP) {
		cam.Orbit(0, step)
	}
	if core.InputIsKeyDown(core.KEY_S) || core.InputIsKeyDown(core.KEY_DOWN) {
		cam.Orbit(0, -step)
	}
	if core.InputIsKeyDown(core.KEY_Q) {
		cam.Dolly(dollySpeed * float32(deltaTime))
	}
	if core.InputIsKeyDown(core.KEY_E) {
		cam.Dolly(-dollySpeed * float32(deltaTime))
	}

	if core.InputIsKeyUp(core.KEY_P) && core.InputWasKeyDown(core.KEY_P) {
		pos := cam.Position
		fps, frameTime := core.MetricsFrame()
		core.LogInfo("FPS: %5.1f(%4.2fms) Pos=[%7.3f %7.3f %7.3f]", fps, frameTime, pos.X, pos.Y, pos.Z)
	}

	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	return nil
}
