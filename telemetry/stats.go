package telemetry

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/forage/sim"
)

// GenerationStats holds the fitness summary of one finished generation.
type GenerationStats struct {
	Generation int   `csv:"generation"`
	Tick       int64 `csv:"tick"`
	Population int   `csv:"population"`

	// Fitness is food eaten during the generation
	MinFitness    float64 `csv:"min_fitness"`
	MaxFitness    float64 `csv:"max_fitness"`
	AvgFitness    float64 `csv:"avg_fitness"`
	MedianFitness float64 `csv:"median_fitness"`
	StdDevFitness float64 `csv:"stddev_fitness"`
	P10Fitness    float64 `csv:"p10_fitness"`
	P90Fitness    float64 `csv:"p90_fitness"`

	// Wall-clock time the generation took
	DurationMS int64 `csv:"duration_ms"`
}

// NewGenerationStats flattens a generation report for logging and CSV export.
func NewGenerationStats(r sim.GenerationReport, elapsed time.Duration) GenerationStats {
	s := r.Statistics
	return GenerationStats{
		Generation:    r.Generation,
		Tick:          r.Tick,
		Population:    s.Size,
		MinFitness:    s.Min,
		MaxFitness:    s.Max,
		AvgFitness:    s.Avg,
		MedianFitness: s.Median,
		StdDevFitness: s.StdDev,
		P10Fitness:    Percentile(s.Fitness, 0.10),
		P90Fitness:    Percentile(s.Fitness, 0.90),
		DurationMS:    elapsed.Milliseconds(),
	}
}

// LogStats logs the generation summary.
func (s GenerationStats) LogStats() {
	slog.Info("generation",
		"generation", s.Generation,
		"tick", s.Tick,
		"population", s.Population,
		"min_fitness", s.MinFitness,
		"avg_fitness", s.AvgFitness,
		"max_fitness", s.MaxFitness,
		"median_fitness", s.MedianFitness,
		"duration_ms", s.DurationMS,
	)
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Int64("tick", s.Tick),
		slog.Int("population", s.Population),
		slog.Float64("min_fitness", s.MinFitness),
		slog.Float64("max_fitness", s.MaxFitness),
		slog.Float64("avg_fitness", s.AvgFitness),
		slog.Float64("median_fitness", s.MedianFitness),
		slog.Float64("stddev_fitness", s.StdDevFitness),
		slog.Float64("p10_fitness", s.P10Fitness),
		slog.Float64("p90_fitness", s.P90Fitness),
	)
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
