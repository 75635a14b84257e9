package genetic

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// ErrMutationParams is returned for a mutation chance outside [0,1] or a negative coefficient.
var ErrMutationParams = errors.New("genetic: invalid mutation parameters")

// RouletteWheelSelection picks individuals with probability proportional to
// their fitness. Negative fitness counts as zero; when every individual scores
// zero the pick is uniform.
type RouletteWheelSelection struct{}

// Select implements SelectionMethod.
func (RouletteWheelSelection) Select(rng *rand.Rand, population []Individual) Individual {
	if len(population) == 0 {
		panic("genetic: cannot select from an empty population")
	}

	weights := make([]float64, len(population))
	for i, ind := range population {
		if f := ind.Fitness(); f > 0 {
			weights[i] = f
		}
	}

	total := floats.Sum(weights)
	if total == 0 {
		return population[rng.Intn(len(population))]
	}

	cumulative := floats.CumSum(make([]float64, len(weights)), weights)
	target := rng.Float64() * total
	idx := sort.Search(len(cumulative), func(i int) bool {
		return cumulative[i] > target
	})
	if idx == len(cumulative) {
		idx--
	}
	return population[idx]
}

// UniformCrossover takes each gene from either parent with equal probability.
type UniformCrossover struct{}

// Crossover implements CrossoverMethod. Panics when parent lengths differ.
func (UniformCrossover) Crossover(rng *rand.Rand, a, b Chromosome) Chromosome {
	if a.Len() != b.Len() {
		panic(fmt.Sprintf("genetic: crossover of chromosomes with %d and %d genes", a.Len(), b.Len()))
	}

	child := make([]float64, a.Len())
	for i := range child {
		if rng.Intn(2) == 0 {
			child[i] = a.Genes[i]
		} else {
			child[i] = b.Genes[i]
		}
	}
	return Chromosome{Genes: child}
}

// GaussianMutation nudges each gene, with probability Chance, by up to
// Coeff in a random direction.
type GaussianMutation struct {
	Chance float64
	Coeff  float64
}

// NewGaussianMutation validates and returns a mutation method.
func NewGaussianMutation(chance, coeff float64) (GaussianMutation, error) {
	if chance < 0 || chance > 1 || coeff < 0 {
		return GaussianMutation{}, fmt.Errorf("%w: chance=%g coeff=%g", ErrMutationParams, chance, coeff)
	}
	return GaussianMutation{Chance: chance, Coeff: coeff}, nil
}

// Mutate implements MutationMethod.
func (m GaussianMutation) Mutate(rng *rand.Rand, child *Chromosome) {
	for i := range child.Genes {
		sign := 1.0
		if rng.Intn(2) == 0 {
			sign = -1.0
		}
		if rng.Float64() < m.Chance {
			child.Genes[i] += sign * m.Coeff * rng.Float64()
		}
	}
}
