package renderer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

// fakeBackend records every call made by the renderer and returns scripted draw results.
type fakeBackend struct {
	initErr    error
	initSize   SurfaceSize
	configured []SurfaceSize
	written    [][]byte
	drawErrs   []error
	draws      int
	released   bool
}

func (f *fakeBackend) Init(_ SurfaceSource, size SurfaceSize) error {
	f.initSize = size
	return f.initErr
}

func (f *fakeBackend) Configure(size SurfaceSize) {
	f.configured = append(f.configured, size)
}

func (f *fakeBackend) WriteUniforms(data []byte) {
	f.written = append(f.written, data)
}

func (f *fakeBackend) DrawFrame() error {
	f.draws++
	if len(f.drawErrs) == 0 {
		return nil
	}
	err := f.drawErrs[0]
	f.drawErrs = f.drawErrs[1:]
	return err
}

func (f *fakeBackend) Release() {
	f.released = true
}

type fakeSource struct{}

func (fakeSource) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return &wgpu.SurfaceDescriptor{} }

func newTestRenderer(t *testing.T, backend *fakeBackend, width, height int) *renderer {
	t.Helper()
	r := newRenderer(BackendTypeWGPU, withBackend(backend))
	if err := r.Initialize(fakeSource{}, width, height); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return r
}

func TestInitializeConfiguresInitialSize(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(t, backend, 800, 600)

	if r.State() != StateConfigured {
		t.Fatalf("state = %s, want configured", r.State())
	}
	want := SurfaceSize{Width: 800, Height: 600}
	if r.Size() != want || backend.initSize != want {
		t.Fatalf("size = %v (backend %v), want %v", r.Size(), backend.initSize, want)
	}
}

func TestInitializeFailures(t *testing.T) {
	t.Run("backend error", func(t *testing.T) {
		backend := &fakeBackend{initErr: errors.New("no adapter")}
		r := newRenderer(BackendTypeWGPU, withBackend(backend))
		err := r.Initialize(fakeSource{}, 800, 600)
		if err == nil || !errors.Is(err, backend.initErr) {
			t.Fatalf("err = %v, want wrapped %v", err, backend.initErr)
		}
		if r.State() != StateUninitialized {
			t.Fatalf("state = %s, want uninitialized", r.State())
		}
	})

	t.Run("zero size", func(t *testing.T) {
		r := newRenderer(BackendTypeWGPU, withBackend(&fakeBackend{}))
		if err := r.Initialize(fakeSource{}, 0, 600); err == nil {
			t.Fatal("expected error for zero width")
		}
	})

	t.Run("twice", func(t *testing.T) {
		r := newTestRenderer(t, &fakeBackend{}, 800, 600)
		if err := r.Initialize(fakeSource{}, 800, 600); err == nil {
			t.Fatal("expected error on second Initialize")
		}
	})
}

func TestConfigureIgnoresZeroDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"zero width", 0, 600},
		{"zero height", 1024, 0},
		{"both zero", 0, 0},
		{"negative", -1, 600},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			backend := &fakeBackend{}
			r := newTestRenderer(t, backend, 800, 600)
			r.Configure(tc.width, tc.height)

			if got := r.Size(); got != (SurfaceSize{Width: 800, Height: 600}) {
				t.Fatalf("size = %v, want 800x600", got)
			}
			if len(backend.configured) != 0 {
				t.Fatalf("backend reconfigured %d times, want 0", len(backend.configured))
			}
		})
	}
}

func TestConfigureAppliesNewSizeOnce(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(t, backend, 800, 600)

	r.Configure(1024, 768)
	r.Configure(1024, 768)

	want := SurfaceSize{Width: 1024, Height: 768}
	if r.Size() != want {
		t.Fatalf("size = %v, want %v", r.Size(), want)
	}
	if len(backend.configured) != 1 || backend.configured[0] != want {
		t.Fatalf("configured = %v, want [%v]", backend.configured, want)
	}
}

func TestConfigureBeforeInitializeIsIgnored(t *testing.T) {
	backend := &fakeBackend{}
	r := newRenderer(BackendTypeWGPU, withBackend(backend))
	r.Configure(800, 600)

	if r.State() != StateUninitialized || r.Size() != (SurfaceSize{}) {
		t.Fatalf("state = %s size = %v, want uninitialized and zero size", r.State(), r.Size())
	}
	if len(backend.configured) != 0 {
		t.Fatal("backend should not be touched before Initialize")
	}
}

func TestPushUniformsWritesWholeBlock(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(t, backend, 800, 600)

	block := UniformBlock{Center: [2]float32{-0.75, 0.1}, Zoom: 3.5, Aspect: 800.0 / 600.0}
	r.PushUniforms(block)

	if len(backend.written) != 1 {
		t.Fatalf("writes = %d, want 1", len(backend.written))
	}
	got, err := UnmarshalUniformBlock(backend.written[0])
	if err != nil {
		t.Fatalf("UnmarshalUniformBlock: %v", err)
	}
	if got != block || r.Uniforms() != block {
		t.Fatalf("pushed %+v, renderer holds %+v, want %+v", got, r.Uniforms(), block)
	}
	if backend.draws != 0 {
		t.Fatal("PushUniforms must not render")
	}
}

func TestRenderFrameClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    FrameStatus
		nextState SurfaceState
	}{
		{"ok", nil, FrameOK, StateConfigured},
		{"lost", fmt.Errorf("%w: acquire", ErrSurfaceLost), FrameSurfaceLost, StateLost},
		{"out of memory", fmt.Errorf("%w: acquire", ErrOutOfMemory), FrameOutOfMemory, StateTerminated},
		{"device lost", fmt.Errorf("%w: acquire", ErrDeviceLost), FrameDeviceLost, StateTerminated},
		{"timeout", errors.New("timeout"), FrameSkipped, StateConfigured},
		{"frame held", ErrPreviousFrameHeld, FrameSkipped, StateConfigured},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			backend := &fakeBackend{drawErrs: []error{tc.err}}
			r := newTestRenderer(t, backend, 800, 600)

			res := r.RenderFrame()
			if res.Status != tc.status {
				t.Fatalf("status = %s, want %s", res.Status, tc.status)
			}
			if !errors.Is(res.Err, tc.err) {
				t.Fatalf("err = %v, want %v", res.Err, tc.err)
			}
			if r.State() != tc.nextState {
				t.Fatalf("state = %s, want %s", r.State(), tc.nextState)
			}
		})
	}
}

func TestSurfaceLostRecoversAfterConfigure(t *testing.T) {
	backend := &fakeBackend{drawErrs: []error{ErrSurfaceLost}}
	r := newTestRenderer(t, backend, 800, 600)

	if res := r.RenderFrame(); res.Status != FrameSurfaceLost {
		t.Fatalf("first frame = %s, want surface lost", res.Status)
	}
	// A lost surface is not drawn to until it is reconfigured.
	if res := r.RenderFrame(); res.Status != FrameSurfaceLost || backend.draws != 1 {
		t.Fatalf("frame while lost = %s after %d draws, want surface lost after 1", res.Status, backend.draws)
	}

	last := r.Size()
	r.Configure(int(last.Width), int(last.Height))
	if r.State() != StateConfigured {
		t.Fatalf("state after configure = %s, want configured", r.State())
	}
	if len(backend.configured) != 1 || backend.configured[0] != last {
		t.Fatalf("configured = %v, want [%v]", backend.configured, last)
	}

	if res := r.RenderFrame(); res.Status != FrameOK {
		t.Fatalf("frame after configure = %s (%v), want ok", res.Status, res.Err)
	}
}

func TestTerminatedIsFinal(t *testing.T) {
	backend := &fakeBackend{drawErrs: []error{ErrOutOfMemory}}
	r := newTestRenderer(t, backend, 800, 600)
	r.RenderFrame()

	r.Configure(1024, 768)
	r.PushUniforms(DefaultUniformBlock())
	res := r.RenderFrame()

	if r.State() != StateTerminated || res.Status != FrameOutOfMemory {
		t.Fatalf("state = %s status = %s, want terminated / out of memory", r.State(), res.Status)
	}
	if len(backend.configured) != 0 || len(backend.written) != 0 || backend.draws != 1 {
		t.Fatalf("backend touched after termination: configured=%d written=%d draws=%d",
			len(backend.configured), len(backend.written), backend.draws)
	}
}

func TestDeviceLostIsFinal(t *testing.T) {
	backend := &fakeBackend{drawErrs: []error{fmt.Errorf("%w: parent device is lost", ErrDeviceLost)}}
	r := newTestRenderer(t, backend, 800, 600)
	if res := r.RenderFrame(); res.Status != FrameDeviceLost {
		t.Fatalf("first frame = %s, want device lost", res.Status)
	}

	// Reconfiguring must not bring a lost device back.
	r.Configure(1024, 768)
	res := r.RenderFrame()
	if r.State() != StateTerminated || res.Status != FrameDeviceLost || !errors.Is(res.Err, ErrDeviceLost) {
		t.Fatalf("state = %s result = %+v, want terminated / device lost", r.State(), res)
	}
	if len(backend.configured) != 0 || backend.draws != 1 {
		t.Fatalf("backend touched after device loss: configured=%d draws=%d", len(backend.configured), backend.draws)
	}
}

func TestWithBackendIgnoresNil(t *testing.T) {
	if r := newRenderer(BackendTypeWGPU, withBackend(nil)); r.backend != nil {
		t.Fatal("nil backend must leave backend creation to Initialize")
	}
	backend := &fakeBackend{}
	if r := newRenderer(BackendTypeWGPU, withBackend(backend)); r.backend != backend {
		t.Fatal("backend not applied")
	}
}

func TestRenderFrameBeforeInitialize(t *testing.T) {
	r := newRenderer(BackendTypeWGPU, withBackend(&fakeBackend{}))
	res := r.RenderFrame()
	if res.Status != FrameSkipped || !errors.Is(res.Err, ErrNotInitialized) {
		t.Fatalf("result = %+v, want skipped / ErrNotInitialized", res)
	}
}

func TestReleaseTerminates(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(t, backend, 800, 600)
	r.Release()
	if !backend.released || r.State() != StateTerminated {
		t.Fatalf("released=%v state=%s", backend.released, r.State())
	}
}

func TestBuilderOptions(t *testing.T) {
	bg := wgpu.Color{R: 1, G: 0, B: 0, A: 1}
	r := newRenderer(BackendTypeWGPU,
		WithPresentMode(PresentModeUncapped),
		WithClearColor(bg),
		WithShaderSource("// custom"),
		WithForceSoftwareRenderer(true),
	)
	if r.config.presentMode != PresentModeUncapped || r.config.clearColor != bg ||
		r.config.shaderSource != "// custom" || !r.config.forceFallbackAdapter {
		t.Fatalf("config = %+v", r.config)
	}

	r = newRenderer(BackendTypeWGPU, WithShaderSource(""))
	if r.config.shaderSource != FractalShaderSource {
		t.Fatal("empty shader source must keep the embedded program")
	}
}
