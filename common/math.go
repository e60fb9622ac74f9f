package common

import "github.com/go-gl/mathgl/mgl32"

// PixelToNDC converts a window pixel position into normalized device coordinates.
// The result spans [-1, 1] on both axes with the vertical axis flipped so that up is positive.
// The caller must ensure width and height are non-zero.
//
// Parameters:
//   - x, y: the pixel position, origin at the top-left corner of the window
//   - width, height: the surface dimensions in pixels
//
// Returns:
//   - mgl32.Vec2: the position in normalized device coordinates
func PixelToNDC(x, y float64, width, height uint32) mgl32.Vec2 {
	ndcX := float32(x)/float32(width)*2.0 - 1.0
	ndcY := 1.0 - float32(y)/float32(height)*2.0
	return mgl32.Vec2{ndcX, ndcY}
}

// AspectCorrect scales the horizontal component of an NDC position by the surface aspect ratio,
// mapping the stretched [-1, 1] quad onto a space where one unit is the same length on both axes.
//
// Parameters:
//   - ndc: the position in normalized device coordinates
//   - aspect: surface width divided by height
//
// Returns:
//   - mgl32.Vec2: the aspect-corrected position
func AspectCorrect(ndc mgl32.Vec2, aspect float32) mgl32.Vec2 {
	return mgl32.Vec2{ndc.X() * aspect, ndc.Y()}
}
