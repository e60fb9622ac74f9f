package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	backendType RendererBackendType
	backend     surfaceBackend

	// Pre-creation config collected from builder options
	config backendConfig

	state    SurfaceState
	size     SurfaceSize
	uniforms UniformBlock

	// terminal is the result replayed by RenderFrame once the device has failed.
	terminal FrameResult
}

// Renderer owns the presentation surface and everything needed to draw the full-viewport quad:
// device and queue, surface configuration, pipeline, quad vertex buffer and the uniform block.
//
// The surface is always either not yet configured or configured to match the latest valid
// size passed to Configure. See SurfaceState for the lifecycle.
type Renderer interface {
	// Initialize acquires a device and queue, creates the surface from source, configures it for
	// the initial size, builds the pipeline, uploads the quad geometry and allocates the uniform buffer.
	// A failure here means the environment cannot run the viewer and must not be retried.
	//
	// Parameters:
	//   - source: provider of the platform surface descriptor (typically the window)
	//   - width, height: the initial surface size in pixels
	//
	// Returns:
	//   - error: error if no compatible adapter or device exists, or surface creation fails
	Initialize(source SurfaceSource, width, height int) error

	// Configure applies a new surface size. A request with either dimension at zero is ignored and the
	// last valid configuration is kept. Configuring a lost surface restores it.
	//
	// Parameters:
	//   - width, height: the new surface size in pixels
	Configure(width, height int)

	// PushUniforms overwrites the GPU-resident uniform buffer with block. It does not render.
	//
	// Parameters:
	//   - block: the uniform block for the next frame
	PushUniforms(block UniformBlock)

	// RenderFrame acquires the next swapchain image, clears it, draws the quad, submits and presents.
	//
	// Returns:
	//   - FrameResult: the frame outcome and the underlying error, if any
	RenderFrame() FrameResult

	// Size returns the last applied surface size, or the zero size before Initialize.
	//
	// Returns:
	//   - SurfaceSize: the current surface size
	Size() SurfaceSize

	// State returns the current surface lifecycle state.
	//
	// Returns:
	//   - SurfaceState: the lifecycle state
	State() SurfaceState

	// Uniforms returns the block most recently written with PushUniforms.
	//
	// Returns:
	//   - UniformBlock: the last pushed block
	Uniforms() UniformBlock

	// Release frees all GPU resources. The renderer is terminated afterwards.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates an uninitialized Renderer for the given backend type.
// Call Initialize with a surface source before configuring or rendering.
//
// Parameters:
//   - backendType: the GPU backend to use
//   - options: functional options for present mode, clear color, shader source and adapter selection
//
// Returns:
//   - Renderer: the new renderer
func NewRenderer(backendType RendererBackendType, options ...RendererBuilderOption) Renderer {
	return newRenderer(backendType, options...)
}

// newRenderer applies defaults and options. Without withBackend the backend is created from the
// backend type when Initialize runs.
func newRenderer(backendType RendererBackendType, options ...RendererBuilderOption) *renderer {
	r := &renderer{
		backendType: backendType,
		config: backendConfig{
			presentMode:  PresentModeVSync,
			shaderSource: FractalShaderSource,
			clearColor:   wgpu.Color{R: 0.1, G: 0.2, B: 0.3, A: 1.0},
		},
		state:    StateUninitialized,
		uniforms: DefaultUniformBlock(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *renderer) Initialize(source SurfaceSource, width, height int) error {
	if r.state != StateUninitialized {
		return fmt.Errorf("renderer already initialized (state %s)", r.state)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid initial surface size %dx%d", width, height)
	}

	if r.backend == nil {
		switch r.backendType {
		case BackendTypeWGPU:
			r.backend = newWGPURendererBackend(r.config)
		default:
			return fmt.Errorf("unsupported renderer backend type %d", r.backendType)
		}
	}

	size := SurfaceSize{Width: uint32(width), Height: uint32(height)}
	if err := r.backend.Init(source, size); err != nil {
		return fmt.Errorf("failed to initialize render surface: %w", err)
	}

	r.size = size
	r.state = StateConfigured
	common.Logger().Info("render surface configured", "size", size.String())
	return nil
}

func (r *renderer) Configure(width, height int) {
	// Minimized or degenerate windows report a zero dimension; keep the last valid configuration.
	if width <= 0 || height <= 0 {
		return
	}
	if r.state == StateUninitialized || r.state == StateTerminated {
		return
	}

	size := SurfaceSize{Width: uint32(width), Height: uint32(height)}
	if r.state == StateConfigured && size == r.size {
		return
	}

	r.backend.Configure(size)
	r.size = size
	r.state = StateConfigured
	common.Logger().Debug("render surface reconfigured", "size", size.String())
}

func (r *renderer) PushUniforms(block UniformBlock) {
	if r.state == StateUninitialized || r.state == StateTerminated {
		return
	}
	r.backend.WriteUniforms(block.Marshal())
	r.uniforms = block
}

func (r *renderer) RenderFrame() FrameResult {
	switch r.state {
	case StateUninitialized:
		return FrameResult{Status: FrameSkipped, Err: ErrNotInitialized}
	case StateTerminated:
		if r.terminal.Err != nil {
			return r.terminal
		}
		return FrameResult{Status: FrameOutOfMemory, Err: ErrOutOfMemory}
	case StateLost:
		return FrameResult{Status: FrameSurfaceLost, Err: ErrSurfaceLost}
	}

	err := r.backend.DrawFrame()
	status := classifyFrameError(err)
	switch status {
	case FrameSurfaceLost:
		r.state = StateLost
	case FrameOutOfMemory, FrameDeviceLost:
		r.state = StateTerminated
		r.terminal = FrameResult{Status: status, Err: err}
	}
	return FrameResult{Status: status, Err: err}
}

func (r *renderer) Size() SurfaceSize {
	return r.size
}

func (r *renderer) State() SurfaceState {
	return r.state
}

func (r *renderer) Uniforms() UniformBlock {
	return r.uniforms
}

func (r *renderer) Release() {
	if r.backend != nil && r.state != StateUninitialized {
		r.backend.Release()
	}
	r.state = StateTerminated
}
