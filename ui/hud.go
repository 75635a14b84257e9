package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	gui "github.com/gen2brain/raylib-go/raygui"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Generation       int
	Age              int
	GenerationLength int
	Tick             int64
	Animals          int
	Foods            int
	FPS              int32

	// Fitness of the last finished generation
	HasStats   bool
	MinFitness float64
	AvgFitness float64
	MaxFitness float64
	BestEver   float64
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewHUD creates a HUD anchored at the given top-left corner.
func NewHUD(x, y, width int32) *HUD {
	return &HUD{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Draw renders the stats panel and returns true when the fast-forward
// button was pressed this frame.
func (h *HUD) Draw(data HUDData) bool {
	r := h.renderer
	pad := r.Theme.Padding
	lines := int32(8)
	if data.HasStats {
		lines += 4
	}
	height := lines*r.Theme.LineHeight + pad*3 + 30

	r.DrawPanel(h.x, h.y, h.width, height)

	x := h.x + pad
	y := h.y + pad
	inner := h.width - pad*2

	y = r.DrawSectionHeader(x, y, "Simulation")
	y = r.DrawLabelValue(x, y, "Generation", fmt.Sprintf("%d", data.Generation))
	y = r.DrawLabelValue(x, y, "Tick", fmt.Sprintf("%d", data.Tick))
	y = r.DrawLabelValue(x, y, "Population", fmt.Sprintf("%d animals, %d foods", data.Animals, data.Foods))
	y = r.DrawLabelValue(x, y, "FPS", fmt.Sprintf("%d", data.FPS))

	progress := float32(0)
	if data.GenerationLength > 0 {
		progress = float32(data.Age) / float32(data.GenerationLength)
	}
	y = r.DrawBar(x, y, "Age", progress, inner)

	if data.HasStats {
		y += 4
		y = r.DrawSectionHeader(x, y, "Last generation")
		y = r.DrawLabelValue(x, y, "Min / Avg", fmt.Sprintf("%.0f / %.2f", data.MinFitness, data.AvgFitness))
		y = r.DrawLabelValue(x, y, "Max", fmt.Sprintf("%.0f", data.MaxFitness))
		y = r.DrawLabelValue(x, y, "Best ever", fmt.Sprintf("%.0f", data.BestEver))
	}

	y += 6
	pressed := gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(inner), Height: 24}, "Fast-forward generation")
	y += 30
	r.DrawHint(x, y, "[G] fast-forward  [H] toggle HUD")

	return pressed
}
