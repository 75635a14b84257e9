package loop

import (
	"context"
	"errors"
	"image/color"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/pthm-cable/forage/renderer"
	"github.com/pthm-cable/forage/sim"
	"github.com/pthm-cable/forage/telemetry"
	"github.com/pthm-cable/forage/viewport"
)

// journal is shared by the fake engine and canvas so call order can be checked.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(s string) {
	j.mu.Lock()
	j.entries = append(j.entries, s)
	j.mu.Unlock()
}

func (j *journal) snapshot() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

type fakeEngine struct {
	log   *journal
	world sim.World

	mu           sync.Mutex
	steps        int
	fastForwards int
}

func (e *fakeEngine) Step() {
	e.mu.Lock()
	e.steps++
	e.mu.Unlock()
	e.log.add("step")
}

func (e *fakeEngine) World() sim.World {
	e.log.add("world")
	return e.world
}

func (e *fakeEngine) FastForward() {
	e.mu.Lock()
	e.fastForwards++
	e.mu.Unlock()
	e.log.add("fast_forward")
}

func (e *fakeEngine) counts() (steps, ffwd int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.steps, e.fastForwards
}

type fakeCanvas struct {
	log *journal
}

func (c *fakeCanvas) ClearRect(x, y, w, h float32) { c.log.add("clear") }
func (c *fakeCanvas) FillTriangle(a, b, p renderer.Point, col color.RGBA) {
	c.log.add("animal")
}
func (c *fakeCanvas) FillCircle(center renderer.Point, radius float32, col color.RGBA) {
	c.log.add("food")
}

func newFixture() (*fakeEngine, *fakeCanvas, *journal) {
	log := &journal{}
	engine := &fakeEngine{
		log: log,
		world: sim.World{
			Animals: []sim.Animal{{X: 0.1, Y: 0.2}, {X: 0.3, Y: 0.4, Rotation: 1}},
			Foods:   []sim.Food{{X: 0.5, Y: 0.5}, {X: 0.6, Y: 0.7}, {X: 0.9, Y: 0.1}},
		},
	}
	return engine, &fakeCanvas{log: log}, log
}

func TestTickOrder(t *testing.T) {
	engine, canvas, log := newFixture()
	l := New(engine, viewport.New(800, 800, 1))

	l.Tick(canvas)

	want := []string{"clear", "step", "world", "food", "food", "food", "animal", "animal"}
	got := log.snapshot()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d = %s, want %s (full: %v)", i, got[i], want[i], got)
		}
	}
	if l.Ticks() != 1 {
		t.Errorf("expected 1 tick, got %d", l.Ticks())
	}
}

func TestRunMaxTicks(t *testing.T) {
	engine, canvas, _ := newFixture()
	l := New(engine, viewport.New(800, 800, 1), WithInterval(0), WithMaxTicks(25))

	if err := l.Run(context.Background(), canvas); err != nil {
		t.Fatalf("Run: %v", err)
	}

	steps, _ := engine.counts()
	if steps != 25 || l.Ticks() != 25 {
		t.Errorf("expected exactly 25 steps and ticks, got %d steps and %d ticks", steps, l.Ticks())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	engine, canvas, _ := newFixture()
	l := New(engine, viewport.New(800, 800, 1), WithInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx, canvas) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	steps, _ := engine.counts()
	if int64(steps) != l.Ticks() {
		t.Errorf("steps (%d) and ticks (%d) out of step", steps, l.Ticks())
	}
	if l.Ticks() == 0 {
		t.Error("expected at least one tick before cancel")
	}
}

func TestStop(t *testing.T) {
	engine, canvas, _ := newFixture()
	l := New(engine, viewport.New(800, 800, 1), WithInterval(0))

	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background(), canvas) }()

	time.Sleep(5 * time.Millisecond)
	l.Stop()
	l.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil error after Stop, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}

	before := l.Ticks()
	time.Sleep(5 * time.Millisecond)
	if l.Ticks() != before {
		t.Error("loop kept ticking after Stop")
	}
}

func TestRunOnlyOnce(t *testing.T) {
	engine, canvas, _ := newFixture()
	l := New(engine, viewport.New(800, 800, 1), WithInterval(0), WithMaxTicks(1))

	if err := l.Run(context.Background(), canvas); err != nil {
		t.Fatal(err)
	}
	if err := l.Run(context.Background(), canvas); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}
	if !l.Started() {
		t.Error("expected Started to report true")
	}
}

func TestFastForwardOncePerRequest(t *testing.T) {
	engine, canvas, log := newFixture()
	l := New(engine, viewport.New(800, 800, 1))

	l.FastForward()
	l.FastForward()
	l.FastForward()

	_, ffwd := engine.counts()
	if ffwd != 3 || l.FastForwards() != 3 {
		t.Errorf("expected 3 fast-forwards, engine saw %d, loop counted %d", ffwd, l.FastForwards())
	}
	if steps, _ := engine.counts(); steps != 0 {
		t.Errorf("fast-forward must not step through the loop, saw %d steps", steps)
	}

	l.Tick(canvas)
	entries := log.snapshot()
	if entries[3] != "clear" || entries[4] != "step" {
		t.Errorf("expected the next tick after fast-forwards, got %v", entries)
	}
}

func TestFastForwardDuringRun(t *testing.T) {
	engine, canvas, _ := newFixture()
	l := New(engine, viewport.New(800, 800, 1), WithInterval(0), WithMaxTicks(500))

	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background(), canvas) }()

	for i := 0; i < 10; i++ {
		l.FastForward()
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	steps, ffwd := engine.counts()
	if steps != 500 || ffwd != 10 {
		t.Errorf("expected 500 steps and 10 fast-forwards, got %d and %d", steps, ffwd)
	}
}

func TestTickWithPerf(t *testing.T) {
	engine, canvas, _ := newFixture()
	perf := telemetry.NewPerfCollector(10)
	l := New(engine, viewport.New(800, 800, 1), WithPerf(perf))

	for i := 0; i < 3; i++ {
		l.Tick(canvas)
	}

	stats := perf.Stats()
	for _, phase := range []string{telemetry.PhaseClear, telemetry.PhaseStep, telemetry.PhaseSnapshot, telemetry.PhaseDraw} {
		if _, ok := stats.PhaseAvg[phase]; !ok {
			t.Errorf("expected phase %s to be timed", phase)
		}
	}
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func TestWithRealEngine(t *testing.T) {
	engine, err := sim.New(sim.Config{
		SpeedMin: 0.001, SpeedMax: 0.005, SpeedAccel: 0.2, RotationAccel: 1.57, EatRadius: 0.01,
		FOVRange: 0.25, FOVAngle: 3.93, Photoreceptors: 9, HiddenMultiplier: 2,
		MutationChance: 0.01, MutationCoeff: 0.3,
	}, newRand())
	if err != nil {
		t.Fatal(err)
	}

	l := New(engine, viewport.New(800, 800, 1), WithInterval(0), WithMaxTicks(3))
	if err := l.Run(context.Background(), renderer.Nop{}); err != nil {
		t.Fatal(err)
	}

	w := engine.World()
	if len(w.Animals) > 20 || len(w.Foods) > 30 {
		t.Errorf("expected at most 20 animals and 30 foods, got %d and %d", len(w.Animals), len(w.Foods))
	}
	if engine.Tick() != 3 {
		t.Errorf("expected engine at tick 3, got %d", engine.Tick())
	}
}

func TestAfterTick(t *testing.T) {
	engine, canvas, _ := newFixture()

	var seen []int64
	var l *Loop
	l = New(engine, viewport.New(800, 800, 1), WithInterval(0), WithMaxTicks(4),
		WithAfterTick(func(n int64) {
			seen = append(seen, n)
			if n == 2 {
				// The engine lock must be released by now.
				l.FastForward()
			}
		}))

	if err := l.Run(context.Background(), canvas); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 4 || seen[0] != 1 || seen[3] != 4 {
		t.Errorf("unexpected after-tick calls: %v", seen)
	}
	if _, ffwd := engine.counts(); ffwd != 1 {
		t.Errorf("expected 1 fast-forward from the hook, got %d", ffwd)
	}
}
