// Package renderer draws world snapshots onto any Canvas. It holds no
// global state: callers pass the canvas, viewport and snapshot explicitly.
package renderer

import (
	"image/color"
	"math"

	"github.com/pthm-cable/forage/sim"
	"github.com/pthm-cable/forage/viewport"
)

// Entity colors.
var (
	AnimalColor = color.RGBA{R: 232, G: 106, B: 146, A: 255}
	FoodColor   = color.RGBA{R: 247, G: 231, B: 51, A: 255}
)

// Point is a position in logical pixels.
type Point struct {
	X, Y float32
}

// Canvas is the minimal drawing surface the renderer needs.
type Canvas interface {
	ClearRect(x, y, w, h float32)
	FillTriangle(a, b, c Point, col color.RGBA)
	FillCircle(center Point, radius float32, col color.RGBA)
}

// Style holds entity sizes as fractions of the viewport width.
type Style struct {
	AnimalSide float32
	FoodRadius float32
}

// DefaultStyle matches the stock proportions.
var DefaultStyle = Style{AnimalSide: 0.02, FoodRadius: 0.005}

// AnimalVertices returns the arrowhead for an animal at (x, y): the nose at
// 1.5*side along rotation, the two rear corners at side along rotation+120°
// and rotation+240°.
func AnimalVertices(x, y, rotation, side float32) [3]Point {
	vertex := func(angle float64, dist float32) Point {
		sin, cos := math.Sincos(angle)
		return Point{X: x + float32(cos)*dist, Y: y + float32(sin)*dist}
	}

	r := float64(rotation)
	return [3]Point{
		vertex(r, side*1.5),
		vertex(r+2*math.Pi/3, side),
		vertex(r+4*math.Pi/3, side),
	}
}

// DrawAnimal fills the arrowhead for one animal.
func DrawAnimal(c Canvas, x, y, rotation, side float32) {
	v := AnimalVertices(x, y, rotation, side)
	c.FillTriangle(v[0], v[1], v[2], AnimalColor)
}

// DrawFood fills the circle for one food item.
func DrawFood(c Canvas, x, y, radius float32) {
	c.FillCircle(Point{X: x, Y: y}, radius, FoodColor)
}

// DrawWorld draws every food and then every animal of a snapshot, scaling
// normalized coordinates by the viewport size.
func DrawWorld(c Canvas, vp *viewport.Viewport, w sim.World, style Style) {
	radius := vp.Length(style.FoodRadius)
	for _, f := range w.Foods {
		x, y := vp.ToPixels(f.X, f.Y)
		DrawFood(c, x, y, radius)
	}

	side := vp.Length(style.AnimalSide)
	for _, a := range w.Animals {
		x, y := vp.ToPixels(a.X, a.Y)
		DrawAnimal(c, x, y, a.Rotation, side)
	}
}

// Clear wipes the viewport's clear area.
func Clear(c Canvas, vp *viewport.Viewport) {
	c.ClearRect(vp.ClearRect())
}

// Nop discards all drawing. Used for headless runs.
type Nop struct{}

// Nop methods satisfy Canvas.
func (Nop) ClearRect(x, y, w, h float32)                            {}
func (Nop) FillTriangle(a, b, c Point, col color.RGBA)              {}
func (Nop) FillCircle(center Point, radius float32, col color.RGBA) {}
