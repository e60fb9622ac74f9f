package renderer

import "github.com/cogentcore/webgpu/wgpu"

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.config.presentMode = mode
	}
}

// WithClearColor sets the background color the surface is cleared to before the quad is drawn.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(c wgpu.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.config.clearColor = c
	}
}

// WithShaderSource replaces the embedded fractal program with custom WGSL source.
// The source must provide vs_main and fs_main entry points and declare a uniform
// matching UniformBlock at group 0, binding 0.
//
// Parameters:
//   - source: the WGSL source code
//
// Returns:
//   - RendererBuilderOption: a function that applies the shader option to a renderer
func WithShaderSource(source string) RendererBuilderOption {
	return func(r *renderer) {
		if source != "" {
			r.config.shaderSource = source
		}
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.config.forceFallbackAdapter = force
	}
}

// withBackend replaces the GPU backend the renderer drives. Nil is ignored.
func withBackend(backend surfaceBackend) RendererBuilderOption {
	return func(r *renderer) {
		if backend != nil {
			r.backend = backend
		}
	}
}
