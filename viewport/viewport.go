// Package viewport maps the normalized simulation field onto the drawing surface.
package viewport

import "math"

// Viewport describes the visible drawing area and its backing buffer.
// Drawing happens in logical units; the backing buffer holds Scale device
// pixels per logical unit so output stays sharp on high-density displays.
type Viewport struct {
	// Logical (visible) size
	Width, Height float32

	// Device pixels per logical unit
	Scale float32

	// Cleared area as a multiple of the logical size
	ClearMargin float32
}

// Default logical size used when a dimension is missing.
const (
	DefaultWidth  = 800
	DefaultHeight = 800
)

// DefaultClearMargin replaces a ClearMargin that would not cover the viewport.
const DefaultClearMargin = 1.1

// New creates a viewport. Non-positive dimensions fall back to the defaults
// and a pixel ratio that is non-positive, NaN or infinite falls back to 1.
func New(width, height int, pixelRatio float32) *Viewport {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Viewport{
		Width:       float32(width),
		Height:      float32(height),
		Scale:       sanitizeRatio(pixelRatio),
		ClearMargin: DefaultClearMargin,
	}
}

func sanitizeRatio(r float32) float32 {
	f := float64(r)
	if math.IsNaN(f) || math.IsInf(f, 0) || r <= 0 {
		return 1
	}
	return r
}

// SetScale updates the pixel ratio, applying the same fallback as New.
func (v *Viewport) SetScale(pixelRatio float32) {
	v.Scale = sanitizeRatio(pixelRatio)
}

// Size returns the logical size.
func (v *Viewport) Size() (w, h float32) {
	return v.Width, v.Height
}

// BufferSize returns the backing buffer size in device pixels.
func (v *Viewport) BufferSize() (w, h int32) {
	return int32(math.Round(float64(v.Width * v.Scale))), int32(math.Round(float64(v.Height * v.Scale)))
}

// ToPixels converts a normalized field position to logical pixels.
func (v *Viewport) ToPixels(nx, ny float32) (px, py float32) {
	return nx * v.Width, ny * v.Height
}

// ToNormalized converts logical pixels back to a normalized field position.
func (v *Viewport) ToNormalized(px, py float32) (nx, ny float32) {
	return px / v.Width, py / v.Height
}

// Length converts a size given as a fraction of the viewport width to pixels.
func (v *Viewport) Length(f float32) float32 {
	return f * v.Width
}

// ClearRect returns the area to clear before each frame, anchored at the origin.
// It always extends past the visible area.
func (v *Viewport) ClearRect() (x, y, w, h float32) {
	m := v.ClearMargin
	if m <= 1 || math.IsNaN(float64(m)) {
		m = DefaultClearMargin
	}
	return 0, 0, v.Width * m, v.Height * m
}
