package renderer

import (
	"errors"

	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Always supported. This is the default.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// Falls back to VSync when the surface does not offer immediate presentation.
	PresentModeUncapped
)

// SurfaceState is the lifecycle state of the presentation surface.
//
//	Uninitialized -> Configured   (Initialize)
//	Configured    -> Configured   (Configure)
//	Configured    -> Lost         (RenderFrame reports FrameSurfaceLost)
//	Lost          -> Configured   (Configure)
//	Configured    -> Terminated   (RenderFrame reports FrameOutOfMemory or FrameDeviceLost)
type SurfaceState int

const (
	// StateUninitialized is the state before Initialize succeeds. Frames are skipped.
	StateUninitialized SurfaceState = iota

	// StateConfigured means the surface matches the last valid size and frames can be drawn.
	StateConfigured

	// StateLost means the swapchain must be reconfigured before the next frame.
	StateLost

	// StateTerminated is final: the device failed or Release was called.
	StateTerminated
)

func (s SurfaceState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConfigured:
		return "configured"
	case StateLost:
		return "lost"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// FrameStatus is the outcome of a single RenderFrame call. Each value requires a
// specific action from the caller:
//   - FrameOK: nothing to do.
//   - FrameSurfaceLost: call Configure with the last known size, then redraw.
//   - FrameOutOfMemory: terminate the session.
//   - FrameDeviceLost: terminate the session.
//   - FrameSkipped: log and continue; the next natural redraw tries again.
type FrameStatus int

const (
	// FrameOK means the frame was presented.
	FrameOK FrameStatus = iota

	// FrameSurfaceLost means the surface was lost or outdated and needs Configure.
	FrameSurfaceLost

	// FrameOutOfMemory means the device ran out of memory. The renderer is terminated.
	FrameOutOfMemory

	// FrameSkipped means no frame was presented this time, e.g. acquiring the texture timed out.
	FrameSkipped

	// FrameDeviceLost means the GPU device itself was lost. Reconfiguring cannot recover from
	// this, so the renderer is terminated.
	FrameDeviceLost
)

func (s FrameStatus) String() string {
	switch s {
	case FrameOK:
		return "ok"
	case FrameSurfaceLost:
		return "surface lost"
	case FrameOutOfMemory:
		return "out of memory"
	case FrameSkipped:
		return "skipped"
	case FrameDeviceLost:
		return "device lost"
	default:
		return "unknown"
	}
}

// FrameResult pairs a FrameStatus with the error that caused it, if any.
type FrameResult struct {
	Status FrameStatus
	Err    error
}

var (
	// ErrSurfaceLost reports that the swapchain must be reconfigured before it can be drawn to again.
	ErrSurfaceLost = errors.New("surface lost")

	// ErrOutOfMemory reports that the device ran out of memory while acquiring or drawing a frame.
	ErrOutOfMemory = errors.New("gpu out of memory")

	// ErrDeviceLost reports that the GPU device was lost. The session cannot continue.
	ErrDeviceLost = errors.New("gpu device lost")

	// ErrNotInitialized is returned when a frame is requested before Initialize succeeded.
	ErrNotInitialized = errors.New("renderer not initialized")

	// ErrPreviousFrameHeld is returned when a swapchain texture from an earlier frame was never presented.
	ErrPreviousFrameHeld = errors.New("previous frame surface not yet presented")
)

// classifyFrameError maps an error returned by the backend draw path onto a FrameStatus.
func classifyFrameError(err error) FrameStatus {
	switch {
	case err == nil:
		return FrameOK
	case errors.Is(err, ErrOutOfMemory):
		return FrameOutOfMemory
	case errors.Is(err, ErrDeviceLost):
		return FrameDeviceLost
	case errors.Is(err, ErrSurfaceLost):
		return FrameSurfaceLost
	default:
		return FrameSkipped
	}
}

// SurfaceSource provides the platform surface descriptor the renderer presents into.
// window.Window satisfies this interface.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
}

// backendConfig is the pre-creation configuration collected from builder options.
type backendConfig struct {
	presentMode          PresentMode
	forceFallbackAdapter bool
	shaderSource         string
	clearColor           wgpu.Color
}

// surfaceBackend is the GPU API boundary driven by the renderer's surface state machine.
// Errors returned from DrawFrame wrap ErrSurfaceLost or ErrOutOfMemory when they belong to
// those categories; anything else is treated as transient.
type surfaceBackend interface {
	// Init acquires the device and queue, creates and configures the surface for size, builds the
	// pipeline, uploads the quad geometry and allocates the uniform buffer and bind group.
	Init(source SurfaceSource, size SurfaceSize) error

	// Configure reapplies the surface configuration with new dimensions.
	Configure(size SurfaceSize)

	// WriteUniforms overwrites the whole uniform buffer.
	WriteUniforms(data []byte)

	// DrawFrame acquires, clears, draws, submits and presents one frame.
	DrawFrame() error

	// Release frees every GPU resource held by the backend.
	Release()
}
