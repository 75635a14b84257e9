package genetic

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Statistics summarizes the fitness of one generation.
type Statistics struct {
	Size   int
	Min    float64
	Max    float64
	Avg    float64
	Median float64
	StdDev float64
	Best   Chromosome // chromosome of the fittest individual

	// Fitness holds every individual's score, sorted ascending.
	Fitness []float64
}

// NewStatistics computes fitness statistics for a non-empty population.
func NewStatistics(population []Individual) Statistics {
	if len(population) == 0 {
		return Statistics{}
	}

	fitness := make([]float64, len(population))
	for i, ind := range population {
		fitness[i] = ind.Fitness()
	}
	best := floats.MaxIdx(fitness)

	s := Statistics{
		Size: len(population),
		Min:  floats.Min(fitness),
		Max:  fitness[best],
		Avg:  stat.Mean(fitness, nil),
		Best: population[best].Chromosome().Clone(),
	}
	if len(fitness) > 1 {
		s.StdDev = stat.StdDev(fitness, nil)
	}

	sorted := append([]float64(nil), fitness...)
	sort.Float64s(sorted)
	s.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	s.Fitness = sorted

	return s
}
