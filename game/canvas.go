package game

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/forage/renderer"
)

// rlCanvas draws renderer primitives with raylib. It must be used between
// Begin/End drawing calls on the main thread.
type rlCanvas struct {
	background rl.Color
}

func (c *rlCanvas) ClearRect(x, y, w, h float32) {
	rl.DrawRectangleRec(rl.Rectangle{X: x, Y: y, Width: w, Height: h}, c.background)
}

// FillTriangle expects vertices in the renderer's order and flips them to the
// counter-clockwise winding raylib requires.
func (c *rlCanvas) FillTriangle(a, b, p renderer.Point, col color.RGBA) {
	rl.DrawTriangle(vec(a), vec(p), vec(b), rl.Color(col))
}

func (c *rlCanvas) FillCircle(center renderer.Point, radius float32, col color.RGBA) {
	rl.DrawCircleV(vec(center), radius, rl.Color(col))
}

func vec(p renderer.Point) rl.Vector2 {
	return rl.Vector2{X: p.X, Y: p.Y}
}
