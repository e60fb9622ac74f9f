package viewport

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/floats/scalar"
)

var surface800x600 = renderer.SurfaceSize{Width: 800, Height: 600}

func approxEqual(a, b float32) bool {
	return scalar.EqualWithinAbsOrRel(float64(a), float64(b), 1e-4, 1e-5)
}

func TestZoomInOutRoundTrip(t *testing.T) {
	for _, factor := range []float32{1.05, 1.5, 2} {
		for _, zoom := range []float32{0.01, 1, 350} {
			v := NewViewportController(WithZoomFactor(factor), WithZoom(zoom))
			for _, ticks := range []int{1, 5, 40} {
				for i := 0; i < ticks; i++ {
					v.OnScroll(1, surface800x600)
				}
				for i := 0; i < ticks; i++ {
					v.OnScroll(-1, surface800x600)
				}
				if got := v.ViewState().Zoom; !approxEqual(got, zoom) {
					t.Errorf("factor %v zoom %v after %d in/out ticks: got %v", factor, zoom, ticks, got)
				}
			}
		}
	}
}

func TestScrollKeepsCursorPointFixed(t *testing.T) {
	sizes := []renderer.SurfaceSize{surface800x600, {Width: 600, Height: 800}, {Width: 1920, Height: 1080}}
	zooms := []float32{0.05, 1, 42}
	deltas := []float64{1, -1, 0.25, -120}

	for _, size := range sizes {
		pixels := [][2]float64{
			{0, 0},
			{float64(size.Width), float64(size.Height)},
			{float64(size.Width) * 0.3, float64(size.Height) * 0.8},
			{17, float64(size.Height) - 3},
		}
		for _, zoom := range zooms {
			for _, p := range pixels {
				for _, delta := range deltas {
					v := NewViewportController(WithCenter(-0.5, 0.25), WithZoom(zoom))
					v.OnPointerMove(p[0], p[1])

					before := v.WorldAt(p[0], p[1], size)
					v.OnScroll(delta, size)
					after := v.WorldAt(p[0], p[1], size)

					if !approxEqual(before.X(), after.X()) || !approxEqual(before.Y(), after.Y()) {
						t.Errorf("size %v zoom %v pixel %v delta %v: world point moved %v -> %v",
							size, zoom, p, delta, before, after)
					}
				}
			}
		}
	}
}

func TestScrollWithoutCursorLeavesCenter(t *testing.T) {
	v := NewViewportController(WithCenter(0.3, -1.7))
	v.OnScroll(1, surface800x600)
	v.OnScroll(1, surface800x600)
	v.OnScroll(-3, surface800x600)

	state := v.ViewState()
	if state.Center != (mgl32.Vec2{0.3, -1.7}) {
		t.Fatalf("center = %v, want exactly (0.3, -1.7)", state.Center)
	}
	if state.Zoom == 1 {
		t.Fatal("zoom should have changed")
	}
}

func TestScrollAtSurfaceCenterNeverShifts(t *testing.T) {
	v := NewViewportController()
	v.OnPointerMove(400, 300)
	for i := 0; i < 100; i++ {
		v.OnScroll(1, surface800x600)
	}
	if c := v.ViewState().Center; c != (mgl32.Vec2{0, 0}) {
		t.Fatalf("center = %v, want exactly (0, 0)", c)
	}
}

func TestScrollAtRightEdgeShiftsTowardCursor(t *testing.T) {
	v := NewViewportController()
	v.OnPointerMove(800, 300)
	v.OnScroll(1, surface800x600)

	state := v.ViewState()
	if !approxEqual(state.Zoom, 1.05) {
		t.Fatalf("zoom = %v, want 1.05", state.Zoom)
	}

	aspect := float32(800) / float32(600)
	wantX := aspect * (1 - 1/float32(1.05))
	if !approxEqual(state.Center.X(), wantX) || state.Center.X() <= 0 {
		t.Fatalf("center x = %v, want positive %v", state.Center.X(), wantX)
	}
	if state.Center.Y() != 0 {
		t.Fatalf("center y = %v, want 0", state.Center.Y())
	}
}

func TestScrollUsesSignOnly(t *testing.T) {
	small := NewViewportController()
	large := NewViewportController()
	small.OnPointerMove(120, 40)
	large.OnPointerMove(120, 40)

	small.OnScroll(0.01, surface800x600)
	large.OnScroll(15, surface800x600)
	if small.ViewState() != large.ViewState() {
		t.Fatalf("magnitude changed the result: %+v vs %+v", small.ViewState(), large.ViewState())
	}

	zero := NewViewportController()
	zero.OnScroll(0, surface800x600)
	if got := zero.ViewState().Zoom; !approxEqual(got, 1/DefaultZoomFactor) {
		t.Fatalf("zero delta zoom = %v, want zoom-out to %v", got, 1/DefaultZoomFactor)
	}
}

func TestScrollOnDegenerateSurfaceOnlyZooms(t *testing.T) {
	v := NewViewportController()
	v.OnPointerMove(800, 300)
	v.OnScroll(1, renderer.SurfaceSize{Width: 800, Height: 0})
	if c := v.ViewState().Center; c != (mgl32.Vec2{0, 0}) {
		t.Fatalf("center = %v, want unchanged", c)
	}
}

func TestUniformBlockRoundTrip(t *testing.T) {
	v := NewViewportController(WithCenter(-0.743643, 0.131825), WithZoom(1234.5))
	v.OnPointerMove(10, 590)
	v.OnScroll(1, surface800x600)
	want := v.ViewState()

	block := v.CurrentUniformBlock(surface800x600)
	got := ViewState{Center: mgl32.Vec2{block.Center[0], block.Center[1]}, Zoom: block.Zoom}
	if got != want {
		t.Fatalf("view from block = %+v, want %+v", got, want)
	}
	if block.Aspect != float32(800)/float32(600) {
		t.Fatalf("aspect = %v", block.Aspect)
	}
	if v.ViewState() != want {
		t.Fatal("CurrentUniformBlock must not mutate the view")
	}
}

func TestPointerMoveOnlyRecordsCursor(t *testing.T) {
	v := NewViewportController()
	if _, _, ok := v.Cursor(); ok {
		t.Fatal("cursor should be unknown initially")
	}
	before := v.ViewState()
	v.OnPointerMove(12.5, 99)

	x, y, ok := v.Cursor()
	if !ok || x != 12.5 || y != 99 {
		t.Fatalf("cursor = (%v, %v, %v)", x, y, ok)
	}
	if v.ViewState() != before {
		t.Fatal("pointer move must not change the view")
	}
}

func TestZoomBoundsAndSetViewState(t *testing.T) {
	v := NewViewportController(WithZoomBounds(0.5, 2), WithZoomFactor(1.5))
	for i := 0; i < 10; i++ {
		v.OnScroll(1, surface800x600)
	}
	if got := v.ViewState().Zoom; got != 2 {
		t.Fatalf("zoom = %v, want clamped to 2", got)
	}

	if err := v.SetViewState(ViewState{Zoom: 0}); err == nil {
		t.Fatal("expected error for zero zoom")
	}
	if err := v.SetViewState(ViewState{Center: mgl32.Vec2{1, 2}, Zoom: 0.1}); err != nil {
		t.Fatalf("SetViewState: %v", err)
	}
	if got := v.ViewState(); got.Zoom != 0.5 || got.Center != (mgl32.Vec2{1, 2}) {
		t.Fatalf("view = %+v, want center (1,2) zoom clamped to 0.5", got)
	}
}
