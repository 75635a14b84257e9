package inspector

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/forage/neural"
)

// Output labels for the network visualization.
var OutputLabels = []string{"Speed", "Turn"}

// NetworkColors for activation visualization.
var (
	ColorNodePositive = rl.Color{R: 255, G: 100, B: 100, A: 255}
	ColorNodeNegative = rl.Color{R: 100, G: 100, B: 255, A: 255}
	ColorEdgePositive = rl.Color{R: 200, G: 80, B: 80, A: 100}
	ColorEdgeNegative = rl.Color{R: 80, G: 80, B: 200, A: 100}
	ColorLabelDim     = rl.Color{R: 120, G: 120, B: 120, A: 255}
)

// DrawNetworkDiagram renders the network one column per layer, with edges
// for every weight of magnitude at least 0.1.
func DrawNetworkDiagram(x, y, width, height int32, nn *neural.Network, activations [][]float64) {
	if nn == nil || len(activations) != len(nn.Layers)+1 {
		rl.DrawText("No network data", x+10, y+10, 14, ColorLabelDim)
		return
	}

	nodeRadius := float32(5)
	colWidth := float32(width) / float32(len(activations))

	// Node positions per layer, each column centered vertically
	nodes := make([][]rl.Vector2, len(activations))
	for l, layer := range activations {
		spacing := float32(height-20) / float32(len(layer))
		if spacing > 24 {
			spacing = 24
		}
		top := float32(y) + 10 + (float32(height-20)-spacing*float32(len(layer)))/2
		cx := float32(x) + colWidth*float32(l) + colWidth/2

		nodes[l] = make([]rl.Vector2, len(layer))
		for i := range layer {
			nodes[l][i] = rl.Vector2{X: cx, Y: top + spacing*float32(i) + spacing/2}
		}
	}

	for l, layer := range nn.Layers {
		for j, neuron := range layer.Neurons {
			for i, w := range neuron.Weights {
				if math.Abs(w) < 0.1 {
					continue
				}
				drawEdge(nodes[l][i], nodes[l+1][j], float32(w))
			}
		}
	}

	last := len(activations) - 1
	for l, layer := range activations {
		radius := nodeRadius
		if l == last {
			radius += 2
		}
		for i, a := range layer {
			drawNode(nodes[l][i], radius, float32(a))
			if l == last && i < len(OutputLabels) {
				rl.DrawText(OutputLabels[i], int32(nodes[l][i].X+radius+4), int32(nodes[l][i].Y)-5, 10, ColorLabelDim)
			}
		}
	}
}

// drawNode renders a single neuron node.
func drawNode(pos rl.Vector2, radius, activation float32) {
	rl.DrawCircleV(pos, radius, activationColor(activation))
	rl.DrawCircleLinesV(pos, radius, rl.Color{R: 100, G: 100, B: 100, A: 255})
}

// drawEdge renders a connection between nodes.
func drawEdge(from, to rl.Vector2, weight float32) {
	thickness := absFloat(weight) * 1.5
	if thickness > 3 {
		thickness = 3
	}
	if thickness < 0.5 {
		thickness = 0.5
	}

	color := ColorEdgePositive
	if weight < 0 {
		color = ColorEdgeNegative
	}
	alpha := uint8(40 + int(absFloat(weight)*40))
	if alpha > 150 {
		alpha = 150
	}
	color.A = alpha

	rl.DrawLineEx(from, to, thickness, color)
}

// activationColor returns a color based on activation value.
// Negative = blue, Zero = gray, Positive = red.
func activationColor(activation float32) rl.Color {
	if activation > 0 {
		t := min(activation, 1)
		return rl.Color{
			R: uint8(60 + t*195),
			G: uint8(60 - t*30),
			B: uint8(60 - t*30),
			A: 255,
		}
	}
	t := min(-activation, 1)
	return rl.Color{
		R: uint8(60 - t*30),
		G: uint8(60 - t*30),
		B: uint8(60 + t*195),
		A: 255,
	}
}

func absFloat(x float32) float32 {
	return float32(math.Abs(float64(x)))
}
