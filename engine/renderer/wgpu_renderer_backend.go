package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuRendererBackendImpl struct {
	config backendConfig

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceConfig *wgpu.SurfaceConfiguration

	shaderModule    *wgpu.ShaderModule
	bindGroupLayout *wgpu.BindGroupLayout
	pipelineLayout  *wgpu.PipelineLayout
	pipeline        *wgpu.RenderPipeline
	vertexBuffer    *wgpu.Buffer
	uniformBuffer   *wgpu.Buffer
	bindGroup       *wgpu.BindGroup

	// frameSurface is non-nil only between acquire and present within DrawFrame.
	frameSurface *wgpu.Texture
}

var _ surfaceBackend = &wgpuRendererBackendImpl{}

// quadVertexLayout describes GPUVertex: a single Float32x3 position at location 0.
var quadVertexLayout = wgpu.VertexBufferLayout{
	ArrayStride: GPUVertexSize,
	StepMode:    wgpu.VertexStepModeVertex,
	Attributes: []wgpu.VertexAttribute{
		{
			Format:         wgpu.VertexFormatFloat32x3,
			Offset:         0,
			ShaderLocation: 0,
		},
	},
}

func newWGPURendererBackend(config backendConfig) *wgpuRendererBackendImpl {
	return &wgpuRendererBackendImpl{config: config}
}

func (b *wgpuRendererBackendImpl) Init(source SurfaceSource, size SurfaceSize) error {
	// wgpu-native and GLFW surfaces must stay on the thread that created them.
	runtime.LockOSThread()

	if source == nil {
		return errors.New("no surface source provided")
	}
	descriptor := source.SurfaceDescriptor()
	if descriptor == nil {
		return errors.New("surface source has no surface descriptor")
	}

	b.instance = wgpu.CreateInstance(nil)
	b.surface = b.instance.CreateSurface(descriptor)
	if b.surface == nil {
		return errors.New("failed to create surface")
	}

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.config.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return fmt.Errorf("failed to find a compatible adapter: %w", err)
	}
	b.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Viewer Device",
	})
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}
	b.device = device
	b.queue = device.GetQueue()
	common.Logger().Info("gpu device acquired", "fallback", b.config.forceFallbackAdapter)

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		return errors.New("surface reports no supported texture formats")
	}

	b.surfaceConfig = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      preferredSurfaceFormat(capabilities.Formats),
		Width:       size.Width,
		Height:      size.Height,
		PresentMode: resolvePresentMode(b.config.presentMode, capabilities.PresentModes),
	}
	if len(capabilities.AlphaModes) > 0 {
		b.surfaceConfig.AlphaMode = capabilities.AlphaModes[0]
	}
	b.surface.Configure(b.adapter, b.device, b.surfaceConfig)

	if err := b.createUniformBinding(); err != nil {
		return err
	}
	if err := b.createPipeline(); err != nil {
		return err
	}
	return b.createVertexBuffer()
}

// createUniformBinding allocates the uniform buffer, seeds it with DefaultUniformBlock and binds it
// at group 0, binding 0 for both shader stages.
func (b *wgpuRendererBackendImpl) createUniformBinding() error {
	layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Uniform Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: UniformBlockSize,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create uniform bind group layout: %w", err)
	}
	b.bindGroupLayout = layout

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "Uniform Buffer",
		Size:             UniformBlockSize,
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return fmt.Errorf("failed to create uniform buffer: %w", err)
	}
	b.uniformBuffer = buf
	initial := DefaultUniformBlock()
	b.queue.WriteBuffer(buf, 0, initial.Marshal())

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Uniform Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create uniform bind group: %w", err)
	}
	b.bindGroup = bindGroup
	return nil
}

func (b *wgpuRendererBackendImpl) createPipeline() error {
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Viewer Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: b.config.shaderSource,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to compile shader module: %w", err)
	}
	b.shaderModule = module

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Render Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.bindGroupLayout},
	})
	if err != nil {
		return fmt.Errorf("failed to create pipeline layout: %w", err)
	}
	b.pipelineLayout = pipelineLayout

	replace := wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorZero,
		Operation: wgpu.BlendOperationAdd,
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{quadVertexLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					// Must match the surface configuration.
					Format:    b.surfaceConfig.Format,
					Blend:     &wgpu.BlendState{Color: replace, Alpha: replace},
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create render pipeline: %w", err)
	}
	b.pipeline = created
	return nil
}

func (b *wgpuRendererBackendImpl) createVertexBuffer() error {
	data := QuadVertexData()
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "Quad Vertex Buffer",
		Size:             uint64(len(data)),
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return fmt.Errorf("failed to create vertex buffer: %w", err)
	}
	b.queue.WriteBuffer(buf, 0, data)
	b.vertexBuffer = buf
	return nil
}

func (b *wgpuRendererBackendImpl) Configure(size SurfaceSize) {
	b.surfaceConfig.Width = size.Width
	b.surfaceConfig.Height = size.Height
	b.surface.Configure(b.adapter, b.device, b.surfaceConfig)
}

func (b *wgpuRendererBackendImpl) WriteUniforms(data []byte) {
	b.queue.WriteBuffer(b.uniformBuffer, 0, data)
}

func (b *wgpuRendererBackendImpl) DrawFrame() error {
	if b.frameSurface != nil {
		return ErrPreviousFrameHeld
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return surfaceError(err)
	}
	b.frameSurface = surfaceTexture
	defer func() {
		b.frameSurface.Release()
		b.frameSurface = nil
	}()

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return surfaceError(err)
	}
	defer view.Release()

	encoder, err := b.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{
		Label: "Render Encoder",
	})
	if err != nil {
		return surfaceError(err)
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: b.config.clearColor,
			},
		},
	})
	defer pass.Release()
	pass.SetPipeline(b.pipeline)
	pass.SetBindGroup(0, b.bindGroup, nil)
	pass.SetVertexBuffer(0, b.vertexBuffer, 0, wgpu.WholeSize)
	pass.Draw(uint32(len(QuadVertices)), 1, 0, 0)
	if err := pass.End(); err != nil {
		return surfaceError(err)
	}

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return surfaceError(err)
	}
	defer commandBuffer.Release()

	b.queue.Submit(commandBuffer)
	b.surface.Present()
	return nil
}

func (b *wgpuRendererBackendImpl) Release() {
	if b.bindGroup != nil {
		b.bindGroup.Release()
		b.bindGroup = nil
	}
	if b.uniformBuffer != nil {
		b.uniformBuffer.Release()
		b.uniformBuffer = nil
	}
	if b.vertexBuffer != nil {
		b.vertexBuffer.Release()
		b.vertexBuffer = nil
	}
	if b.pipeline != nil {
		b.pipeline.Release()
		b.pipeline = nil
	}
	if b.pipelineLayout != nil {
		b.pipelineLayout.Release()
		b.pipelineLayout = nil
	}
	if b.bindGroupLayout != nil {
		b.bindGroupLayout.Release()
		b.bindGroupLayout = nil
	}
	if b.shaderModule != nil {
		b.shaderModule.Release()
		b.shaderModule = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// preferredSurfaceFormat returns the first sRGB format offered by the surface, or the first format
// when none are sRGB. formats must not be empty.
func preferredSurfaceFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	for _, f := range formats {
		if f == wgpu.TextureFormatRGBA8UnormSrgb || f == wgpu.TextureFormatBGRA8UnormSrgb {
			return f
		}
	}
	return formats[0]
}

// resolvePresentMode maps a PresentMode onto a wgpu present mode the surface supports.
// Fifo is required by WebGPU, so it is the fallback for everything.
func resolvePresentMode(mode PresentMode, supported []wgpu.PresentMode) wgpu.PresentMode {
	if mode == PresentModeUncapped && slices.Contains(supported, wgpu.PresentModeImmediate) {
		return wgpu.PresentModeImmediate
	}
	return wgpu.PresentModeFifo
}

// surfaceError wraps a wgpu error with ErrOutOfMemory, ErrDeviceLost or ErrSurfaceLost when it
// belongs to one of those categories. Outdated surfaces count as lost; both are fixed by
// reconfiguring. A lost device is not.
func surfaceError(err error) error {
	var gpuErr *wgpu.Error
	if errors.As(err, &gpuErr) && gpuErr.Type == wgpu.ErrorTypeOutOfMemory {
		return fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "out of memory"), strings.Contains(msg, "outofmemory"):
		return fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	case strings.Contains(msg, "device") && strings.Contains(msg, "lost"):
		return fmt.Errorf("%w: %w", ErrDeviceLost, err)
	case strings.Contains(msg, "outdated"), strings.TrimSpace(msg) == "lost",
		strings.Contains(msg, "surface") && strings.Contains(msg, "lost"):
		return fmt.Errorf("%w: %w", ErrSurfaceLost, err)
	default:
		return err
	}
}
