// Package genetic implements the evolution step that turns one generation of
// scored individuals into the chromosomes of the next.
package genetic

import (
	"math/rand"
)

// Chromosome is the flat gene vector of an individual.
type Chromosome struct {
	Genes []float64
}

// Len returns the number of genes.
func (c Chromosome) Len() int {
	return len(c.Genes)
}

// Clone returns a deep copy.
func (c Chromosome) Clone() Chromosome {
	genes := make([]float64, len(c.Genes))
	copy(genes, c.Genes)
	return Chromosome{Genes: genes}
}

// Individual is anything the algorithm can score and breed.
type Individual interface {
	Fitness() float64
	Chromosome() Chromosome
}

// SelectionMethod picks a parent from the population.
type SelectionMethod interface {
	Select(rng *rand.Rand, population []Individual) Individual
}

// CrossoverMethod combines two parents into one child.
type CrossoverMethod interface {
	Crossover(rng *rand.Rand, a, b Chromosome) Chromosome
}

// MutationMethod perturbs a child in place.
type MutationMethod interface {
	Mutate(rng *rand.Rand, child *Chromosome)
}

// GeneticAlgorithm wires selection, crossover and mutation together.
type GeneticAlgorithm struct {
	Selection SelectionMethod
	Crossover CrossoverMethod
	Mutation  MutationMethod
}

// New returns an algorithm using the given methods.
func New(selection SelectionMethod, crossover CrossoverMethod, mutation MutationMethod) *GeneticAlgorithm {
	return &GeneticAlgorithm{
		Selection: selection,
		Crossover: crossover,
		Mutation:  mutation,
	}
}

// Evolve breeds a new generation of the same size as population and reports
// the fitness statistics of the generation that was consumed.
// Panics if population is empty.
func (ga *GeneticAlgorithm) Evolve(rng *rand.Rand, population []Individual) ([]Chromosome, Statistics) {
	if len(population) == 0 {
		panic("genetic: cannot evolve an empty population")
	}

	children := make([]Chromosome, len(population))
	for i := range children {
		a := ga.Selection.Select(rng, population).Chromosome()
		b := ga.Selection.Select(rng, population).Chromosome()

		child := ga.Crossover.Crossover(rng, a, b)
		ga.Mutation.Mutate(rng, &child)
		children[i] = child
	}

	return children, NewStatistics(population)
}
