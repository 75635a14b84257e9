package main

import (
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/sim"
	"github.com/pthm-cable/forage/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	generations int
	seeds       []int64
	baseConfig  *config.Config

	// Best run tracking
	mu             sync.Mutex
	bestFitness    float64
	bestHallOfFame *telemetry.HallOfFame
	lastMeanFood   float64 // mean food per animal from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, generations int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	if generations < 2 {
		generations = 2
	}
	return &FitnessEvaluator{
		params:      params,
		generations: generations,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestHallOfFame returns the hall of fame from the best evaluation.
func (fe *FitnessEvaluator) BestHallOfFame() *telemetry.HallOfFame {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestHallOfFame
}

// LastMeanFood returns the mean food eaten per animal in the most recent evaluation.
func (fe *FitnessEvaluator) LastMeanFood() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastMeanFood
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	meanFood   float64
	hallOfFame *telemetry.HallOfFame
	err        error
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the negated average food eaten per animal over the second half
// of the run, so it rewards populations that have learned to forage.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	// Every seed gets its own simulation and RNG
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	var bestSeedFood = math.Inf(-1)
	var bestSeedHallOfFame *telemetry.HallOfFame
	for _, r := range results {
		if r.err != nil {
			// Invalid parameter combination
			return 0
		}
		total += r.meanFood
		if r.meanFood > bestSeedFood {
			bestSeedFood = r.meanFood
			bestSeedHallOfFame = r.hallOfFame
		}
	}

	meanFood := total / float64(len(results))
	fitness := -meanFood

	fe.mu.Lock()
	fe.lastMeanFood = meanFood
	if fitness < fe.bestFitness {
		fe.bestFitness = fitness
		fe.bestHallOfFame = bestSeedHallOfFame
	}
	fe.mu.Unlock()

	return fitness
}

// runSimulation evolves one population for the configured number of
// generations.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) seedResult {
	s, err := sim.New(sim.ConfigFrom(cfg), rand.New(rand.NewSource(seed)))
	if err != nil {
		return seedResult{err: err}
	}

	hof := telemetry.NewHallOfFame(cfg.Telemetry.HallOfFameSize)
	averages := make([]float64, 0, fe.generations)
	s.OnGeneration(func(r sim.GenerationReport) {
		averages = append(averages, r.Statistics.Avg)
		hof.Consider(r.Generation, r.Statistics)
	})

	for s.Generation() < fe.generations {
		s.FastForward()
	}

	return seedResult{
		meanFood:   stat.Mean(averages[len(averages)/2:], nil),
		hallOfFame: hof,
	}
}

// copyConfig creates a deep copy of the base config.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}
