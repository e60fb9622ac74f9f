package viewport

import "github.com/go-gl/mathgl/mgl32"

// ViewportControllerOption is a functional option for configuring a viewportController.
type ViewportControllerOption func(v *viewportController)

// WithZoomFactor sets the multiplier applied per scroll tick. Values <= 1 are ignored.
//
// Parameters:
//   - factor: zoom multiplier per tick (default 1.05)
//
// Returns:
//   - ViewportControllerOption: option function to apply
func WithZoomFactor(factor float32) ViewportControllerOption {
	return func(v *viewportController) {
		if factor > 1 {
			v.zoomFactor = factor
		}
	}
}

// WithCenter sets the initial view center in world space.
//
// Parameters:
//   - x, y: the world-space center
//
// Returns:
//   - ViewportControllerOption: option function to apply
func WithCenter(x, y float32) ViewportControllerOption {
	return func(v *viewportController) {
		v.state.Center = mgl32.Vec2{x, y}
	}
}

// WithZoom sets the initial zoom. Values <= 0 are ignored.
//
// Parameters:
//   - zoom: the initial zoom (default 1)
//
// Returns:
//   - ViewportControllerOption: option function to apply
func WithZoom(zoom float32) ViewportControllerOption {
	return func(v *viewportController) {
		if zoom > 0 {
			v.state.Zoom = zoom
		}
	}
}

// WithZoomBounds clamps zoom to [minZoom, maxZoom]. A zero bound leaves that side unbounded.
// Useful to stop zooming before single-precision math breaks the image down.
//
// Parameters:
//   - minZoom: the smallest allowed zoom, or 0
//   - maxZoom: the largest allowed zoom, or 0
//
// Returns:
//   - ViewportControllerOption: option function to apply
func WithZoomBounds(minZoom, maxZoom float32) ViewportControllerOption {
	return func(v *viewportController) {
		if minZoom < 0 {
			minZoom = 0
		}
		if maxZoom < 0 {
			maxZoom = 0
		}
		v.minZoom = minZoom
		v.maxZoom = maxZoom
	}
}
