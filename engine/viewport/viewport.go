package viewport

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// DefaultZoomFactor is the zoom multiplier applied per scroll tick.
const DefaultZoomFactor float32 = 1.05

// ViewState is the region of world space shown in the window.
// A surface pixel at normalized device coordinates (x, y) maps to world position
// Center + (x * aspect, y) / Zoom.
type ViewState struct {
	Center mgl32.Vec2
	Zoom   float32 // strictly positive
}

// viewportController is the single implementation of ViewportController.
type viewportController struct {
	state ViewState

	// cursor is the last pointer position in window pixels; only meaningful when hasCursor is set.
	cursor    mgl64.Vec2
	hasCursor bool

	zoomFactor float32

	// Optional zoom clamp; zero means unbounded on that side.
	minZoom float32
	maxZoom float32
}

// ViewportController owns the authoritative ViewState and turns pointer and scroll input into
// new view states with a cursor-anchored zoom. It never touches GPU resources; it only produces
// UniformBlock values for the renderer.
type ViewportController interface {
	// OnPointerMove records the pointer position used to anchor subsequent zooms.
	//
	// Parameters:
	//   - x, y: pointer position in window pixels, origin at the top-left
	OnPointerMove(x, y float64)

	// OnScroll zooms in when delta is positive and out otherwise. Only the sign of delta is used,
	// so every input device zooms at the same rate per event. When a pointer position is known,
	// the center moves so the world point under the pointer stays fixed on screen.
	//
	// Parameters:
	//   - delta: scroll amount; positive zooms in
	//   - size: the current surface size, used to map the pointer into world space
	OnScroll(delta float64, size renderer.SurfaceSize)

	// CurrentUniformBlock builds the uniform block for the next frame. It has no side effects.
	//
	// Parameters:
	//   - size: the current surface size, used for the aspect ratio
	//
	// Returns:
	//   - renderer.UniformBlock: the block to push to the renderer
	CurrentUniformBlock(size renderer.SurfaceSize) renderer.UniformBlock

	// WorldAt maps a window pixel to the world-space point currently displayed there.
	//
	// Parameters:
	//   - x, y: position in window pixels
	//   - size: the current surface size
	//
	// Returns:
	//   - mgl32.Vec2: the world-space point
	WorldAt(x, y float64, size renderer.SurfaceSize) mgl32.Vec2

	// ViewState returns a copy of the current view.
	//
	// Returns:
	//   - ViewState: the current view
	ViewState() ViewState

	// SetViewState replaces the current view.
	//
	// Parameters:
	//   - state: the new view; Zoom must be positive
	//
	// Returns:
	//   - error: error if state.Zoom is not positive
	SetViewState(state ViewState) error

	// Cursor returns the last recorded pointer position.
	//
	// Returns:
	//   - float64, float64: pointer position in window pixels
	//   - bool: false if no pointer position has been recorded yet
	Cursor() (x, y float64, ok bool)
}

// Compile-time interface compliance check
var _ ViewportController = &viewportController{}

// NewViewportController creates a controller centered at the origin with unit zoom.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - ViewportController: the newly created controller
func NewViewportController(options ...ViewportControllerOption) ViewportController {
	v := &viewportController{
		state: ViewState{
			Center: mgl32.Vec2{0, 0},
			Zoom:   1.0,
		},
		zoomFactor: DefaultZoomFactor,
	}
	for _, opt := range options {
		opt(v)
	}
	v.state.Zoom = v.clampZoom(v.state.Zoom)
	return v
}

func (v *viewportController) OnPointerMove(x, y float64) {
	v.cursor = mgl64.Vec2{x, y}
	v.hasCursor = true
}

func (v *viewportController) OnScroll(delta float64, size renderer.SurfaceSize) {
	oldZoom := v.state.Zoom
	newZoom := oldZoom
	if delta > 0 {
		newZoom *= v.zoomFactor
	} else {
		newZoom /= v.zoomFactor
	}
	newZoom = v.clampZoom(newZoom)

	if v.hasCursor && size.Valid() {
		ndc := common.PixelToNDC(v.cursor.X(), v.cursor.Y(), size.Width, size.Height)
		offset := common.AspectCorrect(ndc, size.Aspect())

		// World-space distance the cursor point would drift if the center stayed put.
		shift := (1.0 / oldZoom) - (1.0 / newZoom)
		v.state.Center = v.state.Center.Add(offset.Mul(shift))
	}

	v.state.Zoom = newZoom
	common.Logger().Debug("zoom changed", "zoom", fmt.Sprintf("%.2e", newZoom))
}

func (v *viewportController) CurrentUniformBlock(size renderer.SurfaceSize) renderer.UniformBlock {
	return renderer.UniformBlock{
		Center: [2]float32{v.state.Center.X(), v.state.Center.Y()},
		Zoom:   v.state.Zoom,
		Aspect: size.Aspect(),
	}
}

func (v *viewportController) WorldAt(x, y float64, size renderer.SurfaceSize) mgl32.Vec2 {
	if !size.Valid() {
		return v.state.Center
	}
	ndc := common.PixelToNDC(x, y, size.Width, size.Height)
	offset := common.AspectCorrect(ndc, size.Aspect())
	return v.state.Center.Add(offset.Mul(1.0 / v.state.Zoom))
}

func (v *viewportController) ViewState() ViewState {
	return v.state
}

func (v *viewportController) SetViewState(state ViewState) error {
	if !(state.Zoom > 0) {
		return fmt.Errorf("zoom must be positive, got %v", state.Zoom)
	}
	v.state = ViewState{Center: state.Center, Zoom: v.clampZoom(state.Zoom)}
	return nil
}

func (v *viewportController) Cursor() (float64, float64, bool) {
	return v.cursor.X(), v.cursor.Y(), v.hasCursor
}

// clampZoom applies the optional zoom bounds.
func (v *viewportController) clampZoom(zoom float32) float32 {
	if v.minZoom > 0 && zoom < v.minZoom {
		return v.minZoom
	}
	if v.maxZoom > 0 && zoom > v.maxZoom {
		return v.maxZoom
	}
	return zoom
}
