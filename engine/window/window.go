package window

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and input event delivery.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	// SetEventHandler sets the function receiving every window event.
	//
	// Parameters:
	//   - handler: function to call for each event (or nil to drop events)
	SetEventHandler(handler func(Event))

	// RequestRedraw schedules an EventRedraw. Multiple requests before the redraw is delivered
	// collapse into a single event.
	RequestRedraw()

	// RequestClose asks the message loop to stop after the current event.
	RequestClose()

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Sleeps while there is no input and no pending redraw.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and the event handler.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// maxWidth and maxHeight bound the window size during resize; 0 means unbounded.
	maxWidth  int
	maxHeight int

	// minWidth and minHeight bound the window size during resize; 0 means unbounded.
	minWidth  int
	minHeight int

	// width is the current framebuffer width in pixels.
	width int

	// height is the current framebuffer height in pixels.
	height int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	// onEvent receives every event produced by the platform callbacks.
	onEvent func(Event)

	// redrawPending is set by RequestRedraw and cleared when EventRedraw is delivered.
	redrawPending bool
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the configured window
func NewWindow(options ...WindowBuilderOption) Window {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

// newEngineWindow applies defaults and options without creating the platform window.
func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:  "Oxy Viewer",
		width:  1280,
		height: 720,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *engineWindow) SetEventHandler(handler func(Event)) {
	w.onEvent = handler
}

func (w *engineWindow) RequestRedraw() {
	if w.redrawPending {
		return
	}
	w.redrawPending = true
	platformWake(w)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	w.messageLoop(w.IsRunning, func(block bool) bool {
		if block {
			return platformWaitMessages(w)
		}
		return platformPollMessages(w)
	})
}

// messageLoop delivers redraws and pumps platform input until running reports false or pump fails.
// pump blocks for input when block is true and only drains already queued input otherwise.
// A redraw requested while a redraw is being handled waits for one non-blocking pump, so input
// (including close requests) keeps flowing while frames are requested back to back.
func (w *engineWindow) messageLoop(running func() bool, pump func(block bool) bool) {
	for running() {
		if w.deliverRedraw() {
			if w.redrawPending && !pump(false) {
				break
			}
			continue
		}
		if succ := pump(true); !succ {
			break
		}
	}
}

// deliverRedraw sends a pending EventRedraw, reporting whether one was sent.
func (w *engineWindow) deliverRedraw() bool {
	if !w.redrawPending {
		return false
	}
	w.redrawPending = false
	w.emit(Event{Kind: EventRedraw})
	return true
}

// emit forwards an event to the handler, if one is set.
func (w *engineWindow) emit(e Event) {
	if w.onEvent != nil {
		w.onEvent(e)
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
