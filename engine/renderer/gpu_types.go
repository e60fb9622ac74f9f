package renderer

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"
)

// FractalShaderSource is the default WGSL program drawn over the full-viewport quad.
// It exposes vs_main and fs_main entry points and reads a ViewUniform at group 0, binding 0
// whose layout matches UniformBlock exactly.
//
//go:embed assets/fractal.wgsl
var FractalShaderSource string

// UniformBlockSize is the byte size of a marshaled UniformBlock.
const UniformBlockSize = 16

// GPUVertexSize is the byte size of a marshaled GPUVertex.
const GPUVertexSize = 12

// SurfaceSize is a surface extent in physical pixels.
type SurfaceSize struct {
	Width  uint32
	Height uint32
}

// Valid reports whether both dimensions are non-zero.
//
// Returns:
//   - bool: true if the size can be applied to a surface
func (s SurfaceSize) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// Aspect returns the width divided by the height.
// A size with zero height reports an aspect of 1.
//
// Returns:
//   - float32: the aspect ratio
func (s SurfaceSize) Aspect() float32 {
	if s.Height == 0 {
		return 1.0
	}
	return float32(s.Width) / float32(s.Height)
}

func (s SurfaceSize) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// UniformBlock is the GPU representation of the view parameters consumed by the fragment program.
// Matches the WGSL ViewUniform struct layout exactly (see FractalShaderSource).
// Size: 16 bytes, no padding.
type UniformBlock struct {
	Center [2]float32 // offset  0: view center in world space (vec2<f32>)
	Zoom   float32    // offset  8: zoom factor, world span per half-height is 1/Zoom (f32)
	Aspect float32    // offset 12: surface width / height (f32)
}

// DefaultUniformBlock returns the block uploaded before the first PushUniforms call:
// centered at the origin with unit zoom on a square surface.
//
// Returns:
//   - UniformBlock: the default block
func DefaultUniformBlock() UniformBlock {
	return UniformBlock{Center: [2]float32{0, 0}, Zoom: 1.0, Aspect: 1.0}
}

// Size returns the size of the UniformBlock struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (u *UniformBlock) Size() int {
	return int(unsafe.Sizeof(*u))
}

// Marshal serializes the UniformBlock into a little-endian byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the 16-byte serialized block
func (u *UniformBlock) Marshal() []byte {
	buf := make([]byte, UniformBlockSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(u.Center[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(u.Center[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(u.Zoom))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(u.Aspect))
	return buf
}

// UnmarshalUniformBlock decodes a 16-byte little-endian buffer produced by UniformBlock.Marshal.
//
// Parameters:
//   - data: the serialized block
//
// Returns:
//   - UniformBlock: the decoded block
//   - error: error if data is not exactly UniformBlockSize bytes
func UnmarshalUniformBlock(data []byte) (UniformBlock, error) {
	if len(data) != UniformBlockSize {
		return UniformBlock{}, fmt.Errorf("uniform block must be %d bytes, got %d", UniformBlockSize, len(data))
	}
	return UniformBlock{
		Center: [2]float32{
			math.Float32frombits(binary.LittleEndian.Uint32(data[0:4])),
			math.Float32frombits(binary.LittleEndian.Uint32(data[4:8])),
		},
		Zoom:   math.Float32frombits(binary.LittleEndian.Uint32(data[8:12])),
		Aspect: math.Float32frombits(binary.LittleEndian.Uint32(data[12:16])),
	}, nil
}

// GPUVertex is a single vertex of the full-viewport quad.
// Matches the vertex stage input `@location(0) position: vec3<f32>`.
// Size: 12 bytes.
type GPUVertex struct {
	Position [3]float32 // offset 0: position in normalized device coordinates
}

// Marshal serializes the GPUVertex into a little-endian byte buffer.
//
// Returns:
//   - []byte: the 12-byte serialized vertex
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, GPUVertexSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	return buf
}

// QuadVertices are two counter-clockwise triangles covering NDC (-1,-1) to (1,1).
var QuadVertices = [6]GPUVertex{
	{Position: [3]float32{-1.0, 1.0, 0.0}},  // top left
	{Position: [3]float32{-1.0, -1.0, 0.0}}, // bottom left
	{Position: [3]float32{1.0, -1.0, 0.0}},  // bottom right
	{Position: [3]float32{-1.0, 1.0, 0.0}},  // top left
	{Position: [3]float32{1.0, -1.0, 0.0}},  // bottom right
	{Position: [3]float32{1.0, 1.0, 0.0}},   // top right
}

// QuadVertexData returns QuadVertices serialized back to back, ready for vertex buffer upload.
//
// Returns:
//   - []byte: 72 bytes of vertex data
func QuadVertexData() []byte {
	buf := make([]byte, 0, len(QuadVertices)*GPUVertexSize)
	for i := range QuadVertices {
		buf = append(buf, QuadVertices[i].Marshal()...)
	}
	return buf
}
