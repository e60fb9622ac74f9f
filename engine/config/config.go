// Package config loads viewer settings from a YAML file and turns them into builder options for the
// window, renderer, viewport and engine packages.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/viewport"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultTitle is the window title used when none is configured.
	DefaultTitle = "Oxy Viewer"

	// DefaultWidth and DefaultHeight are the initial window size in pixels.
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// Config is the on-disk viewer configuration. Zero values mean "use the package default".
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Renderer RendererConfig `yaml:"renderer"`
	Viewport ViewportConfig `yaml:"viewport"`

	Profiling bool   `yaml:"profiling"`
	LogLevel  string `yaml:"log_level"`
}

// WindowConfig holds the window title, initial size and optional resize limits. A zero limit
// leaves that side unbounded.
type WindowConfig struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	MinWidth  int    `yaml:"min_width"`
	MinHeight int    `yaml:"min_height"`
	MaxWidth  int    `yaml:"max_width"`
	MaxHeight int    `yaml:"max_height"`
}

// RendererConfig selects presentation and drawing settings for the renderer.
type RendererConfig struct {
	// PresentMode is "vsync" (default) or "uncapped".
	PresentMode string `yaml:"present_mode"`

	// ClearColor is RGBA in [0, 1]; only used when exactly four components are given.
	ClearColor []float64 `yaml:"clear_color"`

	// ShaderPath replaces the embedded fractal shader with a WGSL file from disk.
	ShaderPath string `yaml:"shader_path"`

	ForceSoftware bool `yaml:"force_software"`
}

// ViewportConfig holds the zoom step, the initial view and optional zoom bounds.
type ViewportConfig struct {
	ZoomFactor float32    `yaml:"zoom_factor"`
	Center     [2]float32 `yaml:"center"`
	Zoom       float32    `yaml:"zoom"`
	MinZoom    float32    `yaml:"min_zoom"`
	MaxZoom    float32    `yaml:"max_zoom"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  DefaultTitle,
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
		Renderer: RendererConfig{PresentMode: "vsync"},
		Viewport: ViewportConfig{
			ZoomFactor: viewport.DefaultZoomFactor,
			Zoom:       1.0,
		},
		LogLevel: "info",
	}
}

// Load reads and validates a YAML configuration file. Missing fields fall back to Default.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - Config: the parsed configuration
//   - error: error if the file cannot be read, parsed or validated
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes into a Config, applies defaults and validates the result.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Config: the parsed configuration
//   - error: error if the document is malformed or holds invalid values
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	c.Window.Title = common.Coalesce(c.Window.Title, def.Window.Title)
	c.Window.Width = common.Coalesce(c.Window.Width, def.Window.Width)
	c.Window.Height = common.Coalesce(c.Window.Height, def.Window.Height)
	c.Renderer.PresentMode = common.Coalesce(strings.ToLower(c.Renderer.PresentMode), def.Renderer.PresentMode)
	c.Viewport.ZoomFactor = common.Coalesce(c.Viewport.ZoomFactor, def.Viewport.ZoomFactor)
	c.Viewport.Zoom = common.Coalesce(c.Viewport.Zoom, def.Viewport.Zoom)
	c.LogLevel = common.Coalesce(strings.ToLower(c.LogLevel), def.LogLevel)
}

// Validate reports the first invalid field.
//
// Returns:
//   - error: nil if the configuration is usable
func (c Config) Validate() error {
	if c.Window.Width < 0 || c.Window.Height < 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if _, err := c.presentMode(); err != nil {
		return err
	}
	if n := len(c.Renderer.ClearColor); n != 0 && n != 4 {
		return fmt.Errorf("clear_color needs 4 components, got %d", n)
	}
	if c.Viewport.ZoomFactor <= 1 {
		return fmt.Errorf("zoom_factor must be greater than 1, got %v", c.Viewport.ZoomFactor)
	}
	if c.Viewport.Zoom <= 0 {
		return fmt.Errorf("zoom must be positive, got %v", c.Viewport.Zoom)
	}
	if c.Viewport.MinZoom < 0 || c.Viewport.MaxZoom < 0 {
		return fmt.Errorf("zoom bounds must not be negative")
	}
	if c.Viewport.MaxZoom > 0 && c.Viewport.MinZoom > c.Viewport.MaxZoom {
		return fmt.Errorf("min_zoom %v exceeds max_zoom %v", c.Viewport.MinZoom, c.Viewport.MaxZoom)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

func (c Config) presentMode() (renderer.PresentMode, error) {
	switch c.Renderer.PresentMode {
	case "", "vsync":
		return renderer.PresentModeVSync, nil
	case "uncapped":
		return renderer.PresentModeUncapped, nil
	}
	return 0, fmt.Errorf("unknown present_mode %q", c.Renderer.PresentMode)
}

// SlogLevel maps LogLevel onto a slog.Level.
//
// Returns:
//   - slog.Level: the parsed level
//   - error: error if the level name is unknown
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(common.Coalesce(c.LogLevel, "info"))); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// WindowOptions converts the window section into window builder options.
//
// Returns:
//   - []window.WindowBuilderOption: options for window.NewWindow
func (c Config) WindowOptions() []window.WindowBuilderOption {
	opts := []window.WindowBuilderOption{
		window.WithTitle(c.Window.Title),
		window.WithWidth(c.Window.Width),
		window.WithHeight(c.Window.Height),
	}
	if c.Window.MinWidth > 0 || c.Window.MinHeight > 0 {
		opts = append(opts, window.WithMinSize(c.Window.MinWidth, c.Window.MinHeight))
	}
	if c.Window.MaxWidth > 0 || c.Window.MaxHeight > 0 {
		opts = append(opts, window.WithMaxSize(c.Window.MaxWidth, c.Window.MaxHeight))
	}
	return opts
}

// RendererOptions converts the renderer section into renderer builder options. A configured shader
// file is read here so that a bad path fails before any window is opened.
//
// Returns:
//   - []renderer.RendererBuilderOption: options for renderer.NewRenderer
//   - error: error if the shader file cannot be read
func (c Config) RendererOptions() ([]renderer.RendererBuilderOption, error) {
	mode, err := c.presentMode()
	if err != nil {
		return nil, err
	}
	opts := []renderer.RendererBuilderOption{
		renderer.WithPresentMode(mode),
		renderer.WithForceSoftwareRenderer(c.Renderer.ForceSoftware),
	}
	if cc := c.Renderer.ClearColor; len(cc) == 4 {
		opts = append(opts, renderer.WithClearColor(wgpu.Color{R: cc[0], G: cc[1], B: cc[2], A: cc[3]}))
	}
	if c.Renderer.ShaderPath != "" {
		src, err := os.ReadFile(c.Renderer.ShaderPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read shader %s: %w", c.Renderer.ShaderPath, err)
		}
		opts = append(opts, renderer.WithShaderSource(string(src)))
	}
	return opts, nil
}

// ViewportOptions converts the zoom behaviour settings into viewport controller options. The
// initial view is applied separately by NewViewport.
//
// Returns:
//   - []viewport.ViewportControllerOption: options for viewport.NewViewportController
func (c Config) ViewportOptions() []viewport.ViewportControllerOption {
	opts := []viewport.ViewportControllerOption{
		viewport.WithZoomFactor(c.Viewport.ZoomFactor),
	}
	if c.Viewport.MinZoom > 0 || c.Viewport.MaxZoom > 0 {
		opts = append(opts, viewport.WithZoomBounds(c.Viewport.MinZoom, c.Viewport.MaxZoom))
	}
	return opts
}

// InitialView returns the configured starting center and zoom.
//
// Returns:
//   - viewport.ViewState: the view the session starts from
func (c Config) InitialView() viewport.ViewState {
	return viewport.ViewState{
		Center: mgl32.Vec2{c.Viewport.Center[0], c.Viewport.Center[1]},
		Zoom:   c.Viewport.Zoom,
	}
}

// NewViewport creates a viewport controller from the configuration and moves it to the initial
// view. The initial zoom is clamped to the configured bounds.
//
// Returns:
//   - viewport.ViewportController: the configured controller
//   - error: error if the initial view is rejected
func (c Config) NewViewport() (viewport.ViewportController, error) {
	v := viewport.NewViewportController(c.ViewportOptions()...)
	if err := v.SetViewState(c.InitialView()); err != nil {
		return nil, fmt.Errorf("invalid initial view: %w", err)
	}
	return v, nil
}

// EngineOptions builds the renderer and viewport from the configuration and returns engine options
// wiring them together with the given window.
//
// Parameters:
//   - w: the window the engine presents into
//
// Returns:
//   - []engine.EngineBuilderOption: options for engine.NewEngine
//   - error: error if the renderer options or the initial view cannot be built
func (c Config) EngineOptions(w window.Window) ([]engine.EngineBuilderOption, error) {
	rOpts, err := c.RendererOptions()
	if err != nil {
		return nil, err
	}
	v, err := c.NewViewport()
	if err != nil {
		return nil, err
	}
	return []engine.EngineBuilderOption{
		engine.WithWindow(w),
		engine.WithRenderer(renderer.NewRenderer(renderer.BackendTypeWGPU, rOpts...)),
		engine.WithViewport(v),
		engine.WithProfiling(c.Profiling),
	}, nil
}
