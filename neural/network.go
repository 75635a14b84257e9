// Package neural provides the feedforward networks used as animal brains.
package neural

import (
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrTopology is returned when a network is requested with fewer than two layers.
	ErrTopology = errors.New("neural: topology needs at least an input and an output layer")
	// ErrWeightCount is returned when a flat weight slice does not fit a topology.
	ErrWeightCount = errors.New("neural: weight count does not match topology")
)

// LayerTopology describes one layer of a network by its neuron count.
type LayerTopology struct {
	Neurons int
}

// Neuron is a single ReLU unit with one weight per input.
type Neuron struct {
	Bias    float64
	Weights []float64
}

// Propagate returns max(0, bias + weights·inputs).
func (n *Neuron) Propagate(inputs []float64) float64 {
	out := n.Bias + floats.Dot(n.Weights, inputs)
	if out < 0 {
		return 0
	}
	return out
}

// Layer is a fully connected set of neurons.
type Layer struct {
	Neurons []Neuron
}

// Propagate feeds inputs through every neuron of the layer.
func (l *Layer) Propagate(inputs []float64) []float64 {
	out := make([]float64, len(l.Neurons))
	for i := range l.Neurons {
		out[i] = l.Neurons[i].Propagate(inputs)
	}
	return out
}

// Network is a stack of fully connected ReLU layers.
type Network struct {
	Layers []Layer
}

// Random builds a network for the given topology with biases and weights
// drawn uniformly from [-1, 1].
func Random(rng *rand.Rand, topology []LayerTopology) (*Network, error) {
	if len(topology) < 2 {
		return nil, ErrTopology
	}

	nn := &Network{Layers: make([]Layer, 0, len(topology)-1)}
	for i := 1; i < len(topology); i++ {
		inputs, outputs := topology[i-1].Neurons, topology[i].Neurons
		layer := Layer{Neurons: make([]Neuron, outputs)}
		for j := range layer.Neurons {
			neuron := Neuron{
				Bias:    uniform(rng),
				Weights: make([]float64, inputs),
			}
			for k := range neuron.Weights {
				neuron.Weights[k] = uniform(rng)
			}
			layer.Neurons[j] = neuron
		}
		nn.Layers = append(nn.Layers, layer)
	}
	return nn, nil
}

func uniform(rng *rand.Rand) float64 {
	return rng.Float64()*2 - 1
}

// Propagate runs inputs through every layer in order and returns the
// activations of the last one.
func (nn *Network) Propagate(inputs []float64) []float64 {
	for i := range nn.Layers {
		inputs = nn.Layers[i].Propagate(inputs)
	}
	return inputs
}

// Trace propagates inputs and returns the activations of every layer,
// starting with the inputs themselves.
func (nn *Network) Trace(inputs []float64) [][]float64 {
	trace := make([][]float64, 0, len(nn.Layers)+1)
	trace = append(trace, append([]float64(nil), inputs...))
	for i := range nn.Layers {
		inputs = nn.Layers[i].Propagate(inputs)
		trace = append(trace, inputs)
	}
	return trace
}

// WeightCount returns how many values Weights produces for a topology.
func WeightCount(topology []LayerTopology) int {
	n := 0
	for i := 1; i < len(topology); i++ {
		n += topology[i].Neurons * (topology[i-1].Neurons + 1)
	}
	return n
}

// Weights flattens the network into a single slice. Each neuron contributes
// its bias followed by its weights, layer by layer.
func (nn *Network) Weights() []float64 {
	var out []float64
	for _, layer := range nn.Layers {
		for _, neuron := range layer.Neurons {
			out = append(out, neuron.Bias)
			out = append(out, neuron.Weights...)
		}
	}
	return out
}

// FromWeights rebuilds a network from the layout produced by Weights.
func FromWeights(topology []LayerTopology, weights []float64) (*Network, error) {
	if len(topology) < 2 {
		return nil, ErrTopology
	}
	if want := WeightCount(topology); len(weights) != want {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrWeightCount, len(weights), want)
	}

	nn := &Network{Layers: make([]Layer, 0, len(topology)-1)}
	pos := 0
	for i := 1; i < len(topology); i++ {
		inputs, outputs := topology[i-1].Neurons, topology[i].Neurons
		layer := Layer{Neurons: make([]Neuron, outputs)}
		for j := range layer.Neurons {
			w := make([]float64, inputs)
			copy(w, weights[pos+1:pos+1+inputs])
			layer.Neurons[j] = Neuron{Bias: weights[pos], Weights: w}
			pos += inputs + 1
		}
		nn.Layers = append(nn.Layers, layer)
	}
	return nn, nil
}

// Topology reports the layer sizes of the network, including the input layer.
func (nn *Network) Topology() []LayerTopology {
	if len(nn.Layers) == 0 {
		return nil
	}
	out := make([]LayerTopology, 0, len(nn.Layers)+1)
	out = append(out, LayerTopology{Neurons: len(nn.Layers[0].Neurons[0].Weights)})
	for _, layer := range nn.Layers {
		out = append(out, LayerTopology{Neurons: len(layer.Neurons)})
	}
	return out
}
