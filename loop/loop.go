// Package loop drives an engine once per frame and draws what it returns.
package loop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pthm-cable/forage/renderer"
	"github.com/pthm-cable/forage/sim"
	"github.com/pthm-cable/forage/telemetry"
	"github.com/pthm-cable/forage/viewport"
)

// ErrAlreadyStarted is returned by Run on a loop that has already been started.
var ErrAlreadyStarted = errors.New("loop: already started")

// DefaultInterval targets roughly 60 ticks per second.
const DefaultInterval = time.Second / 60

// Engine is the narrow surface the loop needs from a simulation.
type Engine interface {
	Step()
	World() sim.World
	FastForward()
}

// Option configures a Loop.
type Option func(*Loop)

// WithInterval sets the time between ticks. Zero runs uncapped.
func WithInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d < 0 {
			d = 0
		}
		l.interval = d
	}
}

// WithMaxTicks makes Run return after n ticks. Zero means unlimited.
func WithMaxTicks(n int64) Option {
	return func(l *Loop) { l.maxTicks = n }
}

// WithStyle overrides entity proportions.
func WithStyle(s renderer.Style) Option {
	return func(l *Loop) { l.style = s }
}

// WithPerf records per-phase tick timings into p.
func WithPerf(p *telemetry.PerfCollector) Option {
	return func(l *Loop) { l.perf = p }
}

// WithAfterTick calls fn with the tick count after every frame, outside the
// engine lock.
func WithAfterTick(fn func(ticks int64)) Option {
	return func(l *Loop) { l.afterTick = fn }
}

// Loop owns the engine handle and viewport for the lifetime of a run.
type Loop struct {
	engine   Engine
	vp       *viewport.Viewport
	style    renderer.Style
	interval time.Duration
	maxTicks int64
	perf     *telemetry.PerfCollector

	afterTick func(ticks int64)

	// mu serializes every call into the engine
	mu sync.Mutex

	ticks        atomic.Int64
	fastForwards atomic.Int64
	started      atomic.Bool

	stopOnce sync.Once
	stop     chan struct{}
}

// New returns a loop that is ready to Run or to be ticked manually.
func New(engine Engine, vp *viewport.Viewport, opts ...Option) *Loop {
	l := &Loop{
		engine:   engine,
		vp:       vp,
		style:    renderer.DefaultStyle,
		interval: DefaultInterval,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tick runs one frame: clear, step the engine once, fetch the world, then
// draw all foods followed by all animals.
func (l *Loop) Tick(c renderer.Canvas) {
	n := l.tick(c)
	if l.afterTick != nil {
		l.afterTick(n)
	}
}

func (l *Loop) tick(c renderer.Canvas) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.perf != nil {
		l.perf.StartTick()
		l.perf.StartPhase(telemetry.PhaseClear)
	}
	renderer.Clear(c, l.vp)

	if l.perf != nil {
		l.perf.StartPhase(telemetry.PhaseStep)
	}
	l.engine.Step()

	if l.perf != nil {
		l.perf.StartPhase(telemetry.PhaseSnapshot)
	}
	world := l.engine.World()

	if l.perf != nil {
		l.perf.StartPhase(telemetry.PhaseDraw)
	}
	renderer.DrawWorld(c, l.vp, world, l.style)

	if l.perf != nil {
		l.perf.EndTick()
	}
	return l.ticks.Add(1)
}

// Run ticks until Stop is called, ctx is done, or the tick limit is hit.
// It returns ctx.Err() when the context ends the run and nil otherwise.
// A loop can only be run once.
func (l *Loop) Run(ctx context.Context, c renderer.Canvas) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	var next <-chan time.Time
	if l.interval > 0 {
		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()
		next = ticker.C
	}

	for {
		if l.maxTicks > 0 && l.ticks.Load() >= l.maxTicks {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stop:
			return nil
		default:
		}

		l.Tick(c)

		if next == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stop:
			return nil
		case <-next:
		}
	}
}

// Stop ends a running loop. Safe to call more than once and from any goroutine.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// FastForward asks the engine to finish the current generation immediately.
// The next tick draws the result.
func (l *Loop) FastForward() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.engine.FastForward()
	l.fastForwards.Add(1)
}

// Ticks returns how many frames have been run.
func (l *Loop) Ticks() int64 { return l.ticks.Load() }

// FastForwards returns how many fast-forward requests were served.
func (l *Loop) FastForwards() int64 { return l.fastForwards.Load() }

// Started reports whether Run has been called.
func (l *Loop) Started() bool { return l.started.Load() }
