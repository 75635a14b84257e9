package telemetry

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/genetic"
	"github.com/pthm-cable/forage/sim"
)

func TestCollectorRecordGeneration(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer om.Close()

	c := NewCollector(om, NewHallOfFame(2), nil, 0)
	clock := time.Unix(0, 0)
	c.genStart = clock
	c.now = func() time.Time {
		clock = clock.Add(250 * time.Millisecond)
		return clock
	}

	if _, ok := c.Last(); ok {
		t.Error("expected no stats before the first generation")
	}

	for gen, max := range []float64{2, 6, 4} {
		c.RecordGeneration(sim.GenerationReport{
			Generation: gen,
			Tick:       int64(gen+1) * 100,
			Statistics: genetic.Statistics{Size: 3, Max: max, Fitness: []float64{0, 1, max}, Best: genetic.Chromosome{Genes: []float64{max}}},
		})
	}

	last, ok := c.Last()
	if !ok || last.Generation != 2 || last.DurationMS != 250 {
		t.Errorf("unexpected last stats: %+v", last)
	}
	if got := countLines(t, filepath.Join(dir, "generations.csv")); got != 4 {
		t.Errorf("expected header plus 3 rows in generations.csv, got %d lines", got)
	}

	hof := c.HallOfFame()
	if hof.Len() != 2 || hof.TopFitness() != 6 {
		t.Errorf("hall of fame has %d entries with top %v, want 2 and 6", hof.Len(), hof.TopFitness())
	}
	if _, err := os.Stat(filepath.Join(dir, "hall_of_fame.json")); err != nil {
		t.Errorf("expected hall_of_fame.json: %v", err)
	}
}

func TestCollectorAttach(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	simCfg := sim.ConfigFrom(cfg)
	simCfg.GenerationLength = 5
	simCfg.Animals = 4
	s, err := sim.New(simCfg, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatal(err)
	}

	c := NewCollector(nil, nil, nil, 0)
	c.Attach(s)
	s.FastForward()
	s.FastForward()

	if last, ok := c.Last(); !ok || last.Population != 4 || last.Generation != 1 {
		t.Errorf("unexpected last stats: %+v", last)
	}
}

func TestCollectorPerfFlush(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	perf := NewPerfCollector(10)
	perf.StartTick()
	perf.StartPhase(PhaseStep)
	perf.EndTick()

	c := NewCollector(om, nil, perf, 10)
	for tick := int64(1); tick <= 35; tick++ {
		c.MaybeFlushPerf(tick)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	// Rows at ticks 10, 20 and 30 plus the header.
	if lines := countLines(t, filepath.Join(dir, "perf.csv")); lines != 4 {
		t.Errorf("expected 4 lines in perf.csv, got %d", lines)
	}
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return bytes.Count(data, []byte("\n"))
}
