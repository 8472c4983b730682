package engine

import (
	"github.com/spaghettifunk/lumen/engine/renderer"
)

// Game glues application behaviour into the engine loop. The engine owns the
// window and the render graph; the game owns camera input and whatever state
// it keeps across frames. Graph is set by the engine during initialization,
// before FnInitialize runs.
type Game struct {
	ApplicationConfig *ApplicationConfig
	Graph             *renderer.RenderGraph
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
