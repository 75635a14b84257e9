package telemetry

import (
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/pthm-cable/forage/genetic"
	"github.com/pthm-cable/forage/sim"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestNewGenerationStats(t *testing.T) {
	report := sim.GenerationReport{
		Generation: 4,
		Tick:       12505,
		Statistics: genetic.Statistics{
			Size:    10,
			Min:     0,
			Max:     9,
			Avg:     4.5,
			Median:  4,
			Fitness: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		},
	}

	s := NewGenerationStats(report, 1500*time.Millisecond)
	if s.Generation != 4 || s.Tick != 12505 || s.Population != 10 {
		t.Errorf("unexpected identity fields: %+v", s)
	}
	if s.MaxFitness != 9 || s.AvgFitness != 4.5 || s.MedianFitness != 4 {
		t.Errorf("unexpected fitness fields: %+v", s)
	}
	if math.Abs(s.P10Fitness-0.9) > 1e-9 || math.Abs(s.P90Fitness-8.1) > 1e-9 {
		t.Errorf("p10/p90 = %v/%v, want 0.9/8.1", s.P10Fitness, s.P90Fitness)
	}
	if s.DurationMS != 1500 {
		t.Errorf("duration = %d, want 1500", s.DurationMS)
	}

	if v := s.LogValue(); v.Kind() != slog.KindGroup {
		t.Errorf("LogValue kind = %v, want group", v.Kind())
	}
}
