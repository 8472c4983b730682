package engine

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/platform"
	"github.com/spaghettifunk/lumen/engine/renderer"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage Stage
	gameInstance *Game
	isRunning    bool
	isSuspended  bool
	platform     *platform.Platform
	graph        *renderer.RenderGraph
	shaderWatch  *assets.ShaderWatcher
	width        uint32
	height       uint32
	clock        *core.Clock
	lastTime     float64
	statsElapsed float64
}

func New(g *Game) (*Engine, error) {
	if g.ApplicationConfig == nil {
		return nil, fmt.Errorf("the game has no application config")
	}
	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		clock:        core.NewClock(),
		platform:     platform.New(),
		isRunning:    true,
		isSuspended:  false,
		width:        g.ApplicationConfig.StartWidth,
		height:       g.ApplicationConfig.StartHeight,
		lastTime:     0,
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	cfg := e.gameInstance.ApplicationConfig

	core.LogSetLevel(cfg.LogLevel)

	// initialize input
	if err := core.InputInitialize(); err != nil {
		return err
	}

	// initialize events
	if !core.EventSystemInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}

	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent)
	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, e.onKey)
	core.EventRegister(core.EVENT_CODE_KEY_RELEASED, e.onKey)
	core.EventRegister(core.EVENT_CODE_MOUSE_WHEEL, e.onMouseWheel)
	core.EventRegister(core.EVENT_CODE_RESIZED, e.onResized)

	if err := e.platform.Startup(cfg.Name, cfg.StartPosX, cfg.StartPosY, cfg.StartWidth, cfg.StartHeight); err != nil {
		return err
	}

	catalog, err := assets.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	scene, err := catalog.Resolve(cfg.Scene)
	if err != nil {
		return err
	}

	e.graph, err = renderer.New(e.platform, scene, renderer.Config{
		AppName:   cfg.Name,
		Width:     cfg.StartWidth,
		Height:    cfg.StartHeight,
		AssetDir:  cfg.AssetDir,
		ShaderDir: cfg.ShaderDir,
	})
	if err != nil {
		return err
	}
	if err := e.graph.Build(); err != nil {
		return err
	}
	e.gameInstance.Graph = e.graph

	// Shader hot reload is a development convenience; a broken watcher is
	// not worth refusing to start over.
	e.shaderWatch, err = assets.NewShaderWatcher(cfg.ShaderDir)
	if err != nil {
		core.LogWarn("shader watcher unavailable: %s", err.Error())
		e.shaderWatch = nil
	}

	if err := e.gameInstance.FnInitialize(); err != nil {
		return err
	}
	if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
		return err
	}

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.clock.Start()
	e.clock.Update()

	e.lastTime = e.clock.Elapsed()

	for e.isRunning {
		if !e.platform.PumpMessages() {
			e.isRunning = false
		}

		// Dispatch everything the pump enqueued before touching frame
		// state. Listeners run on this goroutine, even while suspended,
		// so the restore resize is not missed.
		core.ProcessEvents()

		if e.isSuspended {
			e.platform.Sleep(100)
			continue
		}

		// Update clock and get delta time.
		e.clock.Update()

		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStartTime := platform.GetAbsoluteTime()

		if e.shaderWatch != nil {
			if changed := e.shaderWatch.TakeChanged(); len(changed) > 0 {
				if err := e.graph.ReloadPipelines(); err != nil {
					core.LogError("pipeline reload failed: %s", err.Error())
				}
			}
		}

		if err := e.gameInstance.FnUpdate(delta); err != nil {
			core.LogFatal("Game update failed, shutting down.")
			e.isRunning = false
			break
		}

		if _, err := e.graph.DrawFrame(delta); err != nil {
			core.LogError("frame draw failed: %s", err.Error())
			e.isRunning = false
			break
		}

		frameElapsed := platform.GetAbsoluteTime() - frameStartTime
		core.MetricsUpdate(frameElapsed)

		e.statsElapsed += delta
		if e.statsElapsed >= 1.0 {
			fps, frameTime := core.MetricsFrame()
			core.LogDebug("FPS: %5.1f (%4.2fms)", fps, frameTime)
			e.statsElapsed = 0
		}

		// NOTE: Input update/state copying should always be handled
		// after any input should be recorded; I.E. before this line.
		// As a safety, input is the last thing to be updated before
		// this frame ends.
		core.InputUpdate(delta)

		e.lastTime = currentTime
	}

	return nil
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError(err.Error())
		}
	}
	if e.shaderWatch != nil {
		if err := e.shaderWatch.Shutdown(); err != nil {
			core.LogError(err.Error())
		}
	}
	if e.graph != nil {
		if err := e.graph.Shutdown(); err != nil {
			return err
		}
	}
	if err := core.EventSystemShutdown(); err != nil {
		return err
	}
	if err := core.InputShutdown(); err != nil {
		return err
	}
	if err := e.platform.Shutdown(); err != nil {
		return err
	}
	return nil
}

// GetFramebufferSize returns the width and height (in this order) of the
// application framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onEvent(context core.EventContext) {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		{
			core.LogInfo("EVENT_CODE_APPLICATION_QUIT recieved, shutting down.\n")
			e.isRunning = false
		}
	}
}

func (e *Engine) onKey(context core.EventContext) {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return
	}

	keyCode := ke.KeyCode

	if context.Type == core.EVENT_CODE_KEY_PRESSED {
		if keyCode == core.KEY_ESCAPE {
			// NOTE: Technically firing an event to itself, but there may be other listeners.
			data := core.EventContext{
				Type: core.EVENT_CODE_APPLICATION_QUIT,
			}
			core.EventFire(data)
			// Block anything else from processing this.
			return
		}
		core.LogDebug("'%c' key pressed in window.", keyCode)
	} else if context.Type == core.EVENT_CODE_KEY_RELEASED {
		core.LogDebug("'%c' key released in window.", keyCode)
	}
}

func (e *Engine) onMouseWheel(context core.EventContext) {
	me, ok := context.Data.(*core.MouseEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return
	}
	if e.graph != nil {
		e.graph.Camera.Dolly(float32(me.Scroll) * 0.25)
	}
}

func (e *Engine) onResized(context core.EventContext) {
	if context.Type != core.EVENT_CODE_RESIZED {
		return
	}
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return
	}

	width := se.WindowWidth
	height := se.WindowHeight

	// Check if different. If so, trigger a resize event.
	if width == e.width && height == e.height {
		return
	}
	e.width = width
	e.height = height

	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if err := e.gameInstance.FnOnResize(width, height); err != nil {
		core.LogError(err.Error())
	}
	if err := e.graph.Resized(uint16(width), uint16(height)); err != nil {
		core.LogError(err.Error())
	}
}
