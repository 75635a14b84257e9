package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	gui "github.com/gen2brain/raylib-go/raygui"

	"github.com/pthm-cable/forage/config"
)

// slider describes one integer parameter of the setup form.
type slider struct {
	label    string
	min, max float32
	value    *float32
}

// SetupForm collects the construction parameters before a run starts.
type SetupForm struct {
	renderer *Renderer
	x, y     int32
	width    int32

	generationLength float32
	animals          float32
	foods            float32
}

// NewSetupForm creates a form prefilled with initial. Missing values show
// their defaults.
func NewSetupForm(x, y, width int32, initial config.SimulationConfig) *SetupForm {
	initial = initial.Resolve()
	return &SetupForm{
		renderer:         NewRenderer(),
		x:                x,
		y:                y,
		width:            width,
		generationLength: float32(initial.GenerationLength),
		animals:          float32(initial.Animals),
		foods:            float32(initial.Foods),
	}
}

// Values returns the form contents as simulation parameters.
func (f *SetupForm) Values() config.SimulationConfig {
	return config.SimulationConfig{
		GenerationLength: int(f.generationLength + 0.5),
		Animals:          int(f.animals + 0.5),
		Foods:            int(f.foods + 0.5),
	}.Resolve()
}

// Draw renders the form and returns true when Start was pressed.
func (f *SetupForm) Draw() bool {
	r := f.renderer
	pad := r.Theme.Padding
	sliders := []slider{
		{label: "Generation length", min: 100, max: 10000, value: &f.generationLength},
		{label: "Animals", min: 1, max: 200, value: &f.animals},
		{label: "Foods", min: 1, max: 300, value: &f.foods},
	}

	height := int32(len(sliders))*44 + pad*3 + 60
	r.DrawPanel(f.x, f.y, f.width, height)

	x := f.x + pad
	y := f.y + pad
	inner := float32(f.width - pad*2)

	rl.DrawText("New simulation", x, y, 18, r.Theme.Title)
	y += 28

	for _, s := range sliders {
		rl.DrawText(s.label, x, y, r.Theme.FontSize, r.Theme.LabelColor)
		y += r.Theme.LineHeight
		*s.value = gui.SliderBar(
			rl.Rectangle{X: float32(x), Y: float32(y), Width: inner - 60, Height: 18},
			"", "",
			*s.value, s.min, s.max,
		)
		rl.DrawText(fmt.Sprintf("%.0f", *s.value), x+int32(inner)-50, y+2, r.Theme.FontSize+2, r.Theme.ValueColor)
		y += 28
	}

	y += 6
	return gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: inner, Height: 30}, "Start")
}
