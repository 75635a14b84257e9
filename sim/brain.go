package sim

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/forage/genetic"
	"github.com/pthm-cable/forage/neural"
)

// Brain maps an animal's vision to speed and rotation changes.
type Brain struct {
	nn *neural.Network
}

// BrainTopology returns the network shape for an eye: one input per
// photoreceptor, hiddenMultiplier hidden neurons per photoreceptor, and two
// outputs (speed, rotation).
func BrainTopology(eye *Eye, hiddenMultiplier int) []neural.LayerTopology {
	if hiddenMultiplier <= 0 {
		hiddenMultiplier = 1
	}
	return []neural.LayerTopology{
		{Neurons: eye.Photoreceptors},
		{Neurons: hiddenMultiplier * eye.Photoreceptors},
		{Neurons: 2},
	}
}

// RandomBrain creates a brain with random weights.
func RandomBrain(rng *rand.Rand, topology []neural.LayerTopology) (*Brain, error) {
	nn, err := neural.Random(rng, topology)
	if err != nil {
		return nil, fmt.Errorf("creating brain: %w", err)
	}
	return &Brain{nn: nn}, nil
}

// BrainFromChromosome rebuilds a brain from evolved genes.
func BrainFromChromosome(topology []neural.LayerTopology, c genetic.Chromosome) (*Brain, error) {
	nn, err := neural.FromWeights(topology, c.Genes)
	if err != nil {
		return nil, fmt.Errorf("decoding brain: %w", err)
	}
	return &Brain{nn: nn}, nil
}

// Chromosome encodes the brain's weights as genes.
func (b *Brain) Chromosome() genetic.Chromosome {
	return genetic.Chromosome{Genes: b.nn.Weights()}
}

// Think returns the raw speed and rotation responses to vision.
func (b *Brain) Think(vision []float64) (speed, rotation float32) {
	out := b.nn.Propagate(vision)
	return float32(out[0]), float32(out[1])
}

// Network returns the underlying network.
func (b *Brain) Network() *neural.Network {
	return b.nn
}
