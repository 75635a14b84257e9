// Package session wires one simulation run to its render loop and telemetry.
// Both the window and the headless runner drive a Session.
package session

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync/atomic"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/loop"
	"github.com/pthm-cable/forage/renderer"
	"github.com/pthm-cable/forage/sim"
	"github.com/pthm-cable/forage/telemetry"
	"github.com/pthm-cable/forage/viewport"
)

// Options configures a run independently of the display.
type Options struct {
	Seed           int64
	OutputDir      string // empty disables file output
	SeedFrom       string // hall_of_fame.json whose brains seed the first generation
	MaxTicks       int64  // 0 = unlimited
	MaxGenerations int    // 0 = unlimited
}

// Session wires one simulation to its loop and telemetry.
type Session struct {
	Sim       *sim.Simulation
	Loop      *loop.Loop
	Collector *telemetry.Collector
	Output    *telemetry.OutputManager
	Perf      *telemetry.PerfCollector

	opts Options
	done atomic.Bool
}

// New builds a simulation from cfg with the given construction
// parameters and attaches telemetry. Extra loop options are applied last.
func New(cfg *config.Config, params config.SimulationConfig, vp *viewport.Viewport, opts Options, loopOpts ...loop.Option) (*Session, error) {
	simCfg := sim.ConfigFrom(cfg).WithSimulation(params)

	s, err := sim.New(simCfg, rand.New(rand.NewSource(opts.Seed)))
	if err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}

	if opts.SeedFrom != "" {
		hof, err := telemetry.LoadHallOfFameFromFile(opts.SeedFrom)
		if err != nil {
			return nil, err
		}
		if err := s.SeedBrains(hof.Chromosomes()); err != nil {
			return nil, fmt.Errorf("seeding from %s: %w", opts.SeedFrom, err)
		}
		slog.Info("seeded population", "path", opts.SeedFrom, "brains", hof.Len())
	}

	out, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := out.WriteConfig(cfg); err != nil {
		out.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	collector := telemetry.NewCollector(out, telemetry.NewHallOfFame(cfg.Telemetry.HallOfFameSize), perf, int64(cfg.Telemetry.PerfWindow))
	collector.Attach(s)

	sess := &Session{
		Sim:       s,
		Collector: collector,
		Output:    out,
		Perf:      perf,
		opts:      opts,
	}

	style := renderer.Style{
		AnimalSide: float32(cfg.Render.AnimalSide),
		FoodRadius: float32(cfg.Render.FoodRadius),
	}
	all := []loop.Option{
		loop.WithStyle(style),
		loop.WithPerf(perf),
		loop.WithMaxTicks(opts.MaxTicks),
		loop.WithAfterTick(sess.afterTick),
	}
	sess.Loop = loop.New(s, vp, append(all, loopOpts...)...)

	if opts.MaxGenerations > 0 {
		s.OnGeneration(func(r sim.GenerationReport) {
			if r.Generation+1 >= opts.MaxGenerations {
				slog.Info("max generations reached", "generations", r.Generation+1)
				sess.finish()
			}
		})
	}

	slog.Info("session started",
		"seed", opts.Seed,
		"generation_length", simCfg.GenerationLength,
		"animals", simCfg.Animals,
		"foods", simCfg.Foods,
		"output_dir", out.Dir(),
	)
	return sess, nil
}

func (s *Session) afterTick(ticks int64) {
	s.Collector.MaybeFlushPerf(ticks)
	if s.opts.MaxTicks > 0 && ticks >= s.opts.MaxTicks {
		s.finish()
	}
}

func (s *Session) finish() {
	if s.done.CompareAndSwap(false, true) {
		s.Loop.Stop()
	}
}

// Done reports whether a tick or generation limit has been reached.
func (s *Session) Done() bool {
	return s.done.Load()
}

// Close writes the final hall of fame and closes output files.
func (s *Session) Close() error {
	if err := s.Output.WriteHallOfFame(s.Collector.HallOfFame()); err != nil {
		slog.Error("failed to write hall of fame", "error", err)
	}
	slog.Info("session finished",
		"ticks", s.Sim.Tick(),
		"generations", s.Sim.Generation(),
		"fast_forwards", s.Loop.FastForwards(),
		"best_fitness", s.Collector.HallOfFame().TopFitness(),
	)
	return s.Output.Close()
}
