package telemetry

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pthm-cable/forage/sim"
)

// Collector turns finished generations into logs, CSV rows and hall of fame
// entries. Attach it to a simulation with Attach.
type Collector struct {
	out  *OutputManager
	hof  *HallOfFame
	perf *PerfCollector

	perfEvery int64
	now       func() time.Time

	mu        sync.Mutex
	genStart  time.Time
	last      GenerationStats
	hasLast   bool
	lastPerf  int64
	writeErrs int
}

// NewCollector creates a collector. out and perf may be nil.
// perfEvery is the number of ticks between perf.csv rows; zero disables them.
func NewCollector(out *OutputManager, hof *HallOfFame, perf *PerfCollector, perfEvery int64) *Collector {
	return &Collector{
		out:       out,
		hof:       hof,
		perf:      perf,
		perfEvery: perfEvery,
		now:       time.Now,
		genStart:  time.Now(),
	}
}

// Attach registers the collector's generation hook on s.
func (c *Collector) Attach(s *sim.Simulation) {
	s.OnGeneration(c.RecordGeneration)
}

// RecordGeneration handles one finished generation.
func (c *Collector) RecordGeneration(r sim.GenerationReport) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	stats := NewGenerationStats(r, now.Sub(c.genStart))
	c.genStart = now

	stats.LogStats()
	c.last = stats
	c.hasLast = true

	if err := c.out.WriteGeneration(stats); err != nil {
		c.writeFailed(err)
	}
	if c.hof != nil && c.hof.Consider(r.Generation, r.Statistics) {
		slog.Debug("hall of fame updated", "generation", r.Generation, "fitness", r.Statistics.Max)
		if err := c.out.WriteHallOfFame(c.hof); err != nil {
			c.writeFailed(err)
		}
	}
}

// MaybeFlushPerf writes a perf.csv row once perfEvery ticks have passed.
func (c *Collector) MaybeFlushPerf(tick int64) {
	if c.perf == nil || c.perfEvery <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if tick-c.lastPerf < c.perfEvery {
		return
	}
	c.lastPerf = tick

	stats := c.perf.Stats()
	stats.LogStats()
	if err := c.out.WritePerf(stats, tick); err != nil {
		c.writeFailed(err)
	}
}

func (c *Collector) writeFailed(err error) {
	c.writeErrs++
	slog.Error("telemetry write failed", "error", err, "failures", c.writeErrs)
}

// Last returns the most recent generation summary.
func (c *Collector) Last() (GenerationStats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.hasLast
}

// HallOfFame returns the hall the collector feeds, possibly nil.
func (c *Collector) HallOfFame() *HallOfFame {
	return c.hof
}
