package engine

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/profiler"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/viewport"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
)

// engine implements the Engine interface.
// Everything runs on the thread that calls Run: window events are dispatched serially and frames
// are rendered only when a redraw has been requested.
type engine struct {
	window   window.Window
	renderer renderer.Renderer
	viewport viewport.ViewportController

	// handlers maps each window event kind to the operation it triggers.
	handlers map[window.EventKind]func(window.Event)

	profiler         *profiler.Profiler
	profilingEnabled bool

	running bool
	exitErr error
}

// Engine is the main entry point for the viewer.
// It wires window events to the viewport controller and the renderer.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the render surface manager.
	//
	// Returns:
	//   - renderer.Renderer: the renderer instance
	Renderer() renderer.Renderer

	// Viewport returns the viewport controller.
	//
	// Returns:
	//   - viewport.ViewportController: the controller instance
	Viewport() viewport.ViewportController

	// EnableProfiler enables per-frame profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables per-frame profiling output.
	DisableProfiler()

	// HandleEvent dispatches a single window event. Run installs this as the window's event handler.
	//
	// Parameters:
	//   - e: the event to dispatch
	HandleEvent(e window.Event)

	// Run initializes the renderer against the window, draws the first frame and blocks in the window
	// message loop until the window closes or an unrecoverable error occurs. GPU and window resources
	// are released before Run returns.
	//
	// Returns:
	//   - error: the fatal error that ended the session, or nil on a normal close
	Run() error

	// Quit asks the message loop to stop. Safe to call multiple times.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// A window must be supplied with WithWindow before Run is called. A WGPU renderer and a default
// viewport controller are created when none are supplied.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		profiler:         profiler.NewProfiler(),
		profilingEnabled: false,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.renderer == nil {
		e.renderer = renderer.NewRenderer(renderer.BackendTypeWGPU)
	}
	if e.viewport == nil {
		e.viewport = viewport.NewViewportController()
	}

	e.handlers = map[window.EventKind]func(window.Event){
		window.EventClose:       e.onClose,
		window.EventPointerMove: e.onPointerMove,
		window.EventScroll:      e.onScroll,
		window.EventResize:      e.onResize,
		window.EventRedraw:      e.onRedraw,
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Viewport() viewport.ViewportController {
	return e.viewport
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) HandleEvent(ev window.Event) {
	if h, ok := e.handlers[ev.Kind]; ok {
		h(ev)
	}
}

func (e *engine) Run() error {
	if e.window == nil {
		return errors.New("engine has no window; use WithWindow")
	}

	if e.renderer.State() == renderer.StateUninitialized {
		if err := e.renderer.Initialize(e.window, e.window.Width(), e.window.Height()); err != nil {
			_ = e.window.Close()
			return fmt.Errorf("failed to initialize renderer: %w", err)
		}
	}

	e.running = true
	e.window.SetEventHandler(e.HandleEvent)
	e.window.RequestRedraw()
	e.window.ProcessMessages()
	e.running = false

	e.renderer.Release()
	if err := e.window.Close(); err != nil {
		common.Logger().Warn("failed to close window", "err", err)
	}
	return e.exitErr
}

func (e *engine) Quit() {
	if !e.running {
		return
	}
	e.running = false
	e.window.RequestClose()
}

func (e *engine) onClose(window.Event) {
	common.Logger().Info("close requested, exiting")
	e.Quit()
}

func (e *engine) onPointerMove(ev window.Event) {
	e.viewport.OnPointerMove(ev.X, ev.Y)
}

func (e *engine) onScroll(ev window.Event) {
	e.viewport.OnScroll(ev.Delta, e.renderer.Size())
	e.window.RequestRedraw()
}

func (e *engine) onResize(ev window.Event) {
	e.renderer.Configure(ev.Width, ev.Height)
	if ev.Width > 0 && ev.Height > 0 {
		e.window.RequestRedraw()
	}
}

// onRedraw pushes the current view to the GPU, renders one frame and reacts to its outcome.
func (e *engine) onRedraw(window.Event) {
	size := e.renderer.Size()
	e.renderer.PushUniforms(e.viewport.CurrentUniformBlock(size))

	res := e.renderer.RenderFrame()
	outcome := profiler.OutcomePresented
	switch res.Status {
	case renderer.FrameOK:
	case renderer.FrameSurfaceLost:
		outcome = profiler.OutcomeLost
		common.Logger().Warn("surface lost, reconfiguring", "size", size.String(), "err", res.Err)
		e.renderer.Configure(int(size.Width), int(size.Height))
		e.window.RequestRedraw()
	case renderer.FrameOutOfMemory, renderer.FrameDeviceLost:
		outcome = profiler.OutcomeSkipped
		common.Logger().Error("unrecoverable gpu failure, exiting", "status", res.Status.String(), "err", res.Err)
		e.exitErr = fmt.Errorf("render frame: %w", res.Err)
		e.Quit()
	default:
		outcome = profiler.OutcomeSkipped
		common.Logger().Warn("frame skipped", "err", res.Err)
	}

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick(outcome)
	}
}
