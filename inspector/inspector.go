// Package inspector lets the user click an animal and shows what it sees
// and how its brain responds.
package inspector

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/forage/sim"
	"github.com/pthm-cable/forage/viewport"
)

// Panel dimensions
const (
	PanelWidth   = 300
	PanelPadding = 10
	HeaderHeight = 30
	diagramH     = 220
)

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 240}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorCloseBtn    = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorSectionText = rl.Color{R: 200, G: 200, B: 220, A: 255}
	ColorReceptor    = rl.Color{R: 247, G: 231, B: 51, A: 255}
	ColorSelection   = rl.Color{R: 255, G: 255, B: 255, A: 200}
	ColorFOV         = rl.Color{R: 255, G: 255, B: 255, A: 40}
)

// Inspector manages animal selection and panel rendering.
type Inspector struct {
	selected    uint32
	hasSelected bool
	panelX      int32
	panelY      int32

	detail    sim.AnimalDetail
	hasDetail bool
}

// NewInspector creates an inspector whose panel sits at the right edge.
func NewInspector(screenWidth int32) *Inspector {
	return &Inspector{
		panelX: screenWidth - PanelWidth - 10,
		panelY: 10,
	}
}

// HandleInput selects the animal under a left click. Right click or Escape
// deselects. pickRadius is in normalized field units.
func (ins *Inspector) HandleInput(mouse rl.Vector2, vp *viewport.Viewport, s *sim.Simulation, pickRadius float32) {
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) || rl.IsKeyPressed(rl.KeyEscape) {
		ins.Deselect()
		return
	}
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}

	mx, my := int32(mouse.X), int32(mouse.Y)
	if ins.hasSelected {
		closeX := ins.panelX + PanelWidth - 25
		closeY := ins.panelY + 5
		if mx >= closeX && mx <= closeX+20 && my >= closeY && my <= closeY+20 {
			ins.Deselect()
			return
		}
		// Clicks inside the panel are ignored
		if mx >= ins.panelX && mx <= ins.panelX+PanelWidth && my >= ins.panelY && my <= ins.panelY+ins.panelHeight() {
			return
		}
	}

	nx, ny := vp.ToNormalized(mouse.X, mouse.Y)
	if id, ok := s.AnimalAt(nx, ny, pickRadius); ok {
		ins.selected = id
		ins.hasSelected = true
	}
}

// Update refreshes the selected animal's detail. The selection is dropped
// once its generation ends.
func (ins *Inspector) Update(s *sim.Simulation) {
	if !ins.hasSelected {
		return
	}
	detail, ok := s.Inspect(ins.selected)
	if !ok {
		ins.Deselect()
		return
	}
	ins.detail = detail
	ins.hasDetail = true
}

// Deselect clears the current selection.
func (ins *Inspector) Deselect() {
	ins.hasSelected = false
	ins.hasDetail = false
	ins.detail = sim.AnimalDetail{}
}

// Selected returns the currently selected animal.
func (ins *Inspector) Selected() (uint32, bool) {
	return ins.selected, ins.hasSelected
}

// DrawSelection outlines the selected animal and its field of view in
// logical screen pixels.
func (ins *Inspector) DrawSelection(vp *viewport.Viewport, fovRange, fovAngle float32) {
	if !ins.hasDetail {
		return
	}
	d := ins.detail
	x, y := vp.ToPixels(d.X, d.Y)
	center := rl.Vector2{X: x, Y: y}

	rangePx := vp.Length(fovRange)
	startDeg := float32((float64(d.Rotation) - float64(fovAngle)/2) * 180 / math.Pi)
	endDeg := float32((float64(d.Rotation) + float64(fovAngle)/2) * 180 / math.Pi)

	rl.DrawCircleSector(center, rangePx, startDeg, endDeg, 32, ColorFOV)
	rl.DrawCircleLinesV(center, vp.Length(0.02)*2, ColorSelection)
}

// Draw renders the inspector panel if an animal is selected.
func (ins *Inspector) Draw() {
	if !ins.hasDetail {
		return
	}
	d := ins.detail
	height := ins.panelHeight()

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, height, ColorPanelBg)
	rl.DrawRectangleLinesEx(
		rl.Rectangle{X: float32(ins.panelX), Y: float32(ins.panelY), Width: PanelWidth, Height: float32(height)},
		1,
		ColorPanelBorder,
	)

	// Header with close button
	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText(fmt.Sprintf("Animal #%d", d.ID), ins.panelX+PanelPadding, ins.panelY+8, 16, ColorHeaderText)
	closeX := ins.panelX + PanelWidth - 25
	rl.DrawRectangle(closeX, ins.panelY+5, 20, 20, ColorCloseBtn)
	rl.DrawText("x", closeX+6, ins.panelY+7, 16, ColorHeaderText)

	x := ins.panelX + PanelPadding
	y := ins.panelY + HeaderHeight + PanelPadding

	rl.DrawText(fmt.Sprintf("Eaten: %d", d.Consumed), x, y, 12, ColorSectionText)
	y += 16
	rl.DrawText(fmt.Sprintf("Speed: %.4f  Heading: %+.2f", d.Speed, d.Rotation), x, y, 12, ColorSectionText)
	y += 16
	rl.DrawText(fmt.Sprintf("Position: (%.3f, %.3f)", d.X, d.Y), x, y, 12, ColorSectionText)
	y += 24

	rl.DrawText("Vision", x, y, 14, ColorHeaderText)
	y += 18
	y = drawReceptors(x, y, PanelWidth-2*PanelPadding, d.Vision)
	y += 10

	rl.DrawText("Brain", x, y, 14, ColorHeaderText)
	y += 18
	DrawNetworkDiagram(x, y, PanelWidth-2*PanelPadding, diagramH, d.Brain, d.Activations)
}

// drawReceptors draws one vertical bar per photoreceptor, left to right
// from the animal's left-most receptor.
func drawReceptors(x, y, width int32, vision []float64) int32 {
	const barH = 40
	if len(vision) == 0 {
		return y
	}

	gap := int32(3)
	barW := (width - gap*int32(len(vision)-1)) / int32(len(vision))
	for i, v := range vision {
		bx := x + int32(i)*(barW+gap)
		rl.DrawRectangle(bx, y, barW, barH, ColorPanelHeader)

		fill := float32(v)
		if fill > 1 {
			fill = 1
		}
		h := int32(fill * barH)
		rl.DrawRectangle(bx, y+barH-h, barW, h, ColorReceptor)
	}
	return y + barH
}

func (ins *Inspector) panelHeight() int32 {
	return HeaderHeight + PanelPadding*2 + 16*2 + 24 + 18 + 40 + 10 + 18 + diagramH
}
