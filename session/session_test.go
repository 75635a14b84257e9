package session

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/loop"
	"github.com/pthm-cable/forage/neural"
	"github.com/pthm-cable/forage/renderer"
	"github.com/pthm-cable/forage/viewport"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	return cfg
}

var smallWorld = config.SimulationConfig{GenerationLength: 5, Animals: 4, Foods: 5}

func newTestSession(t *testing.T, opts Options) *Session {
	t.Helper()
	sess, err := New(testConfig(t), smallWorld, viewport.New(800, 800, 1), opts, loop.WithInterval(0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return sess
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return bytes.Count(data, []byte("\n"))
}

func TestMaxGenerationsStopsRun(t *testing.T) {
	dir := t.TempDir()
	sess := newTestSession(t, Options{Seed: 42, OutputDir: dir, MaxGenerations: 1})

	if err := sess.Loop.Run(context.Background(), renderer.Nop{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !sess.Done() {
		t.Error("expected session to be done after the generation limit")
	}
	if sess.Sim.Generation() != 1 {
		t.Errorf("expected 1 generation, got %d", sess.Sim.Generation())
	}
	// The generation ends on the step after the fifth.
	if sess.Loop.Ticks() != 6 {
		t.Errorf("expected the run to stop at tick 6, got %d", sess.Loop.Ticks())
	}

	if err := sess.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := countLines(t, filepath.Join(dir, "generations.csv")); got != 2 {
		t.Errorf("expected header plus 1 row in generations.csv, got %d lines", got)
	}
	for _, name := range []string{"config.yaml", "hall_of_fame.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}

func TestMaxTicksStopsRun(t *testing.T) {
	sess := newTestSession(t, Options{Seed: 1, MaxTicks: 7})
	defer sess.Close()

	if err := sess.Loop.Run(context.Background(), renderer.Nop{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !sess.Done() || sess.Loop.Ticks() != 7 {
		t.Errorf("expected done at 7 ticks, got done=%v ticks=%d", sess.Done(), sess.Loop.Ticks())
	}
	if sess.Sim.Tick() != 7 {
		t.Errorf("expected 7 engine steps, got %d", sess.Sim.Tick())
	}
}

func TestNotDoneWithoutLimits(t *testing.T) {
	sess := newTestSession(t, Options{Seed: 1})
	defer sess.Close()

	for i := 0; i < 20; i++ {
		sess.Loop.Tick(renderer.Nop{})
	}
	if sess.Done() {
		t.Error("session without limits reported done")
	}
	if sess.Sim.Generation() == 0 {
		t.Error("expected at least one generation after 20 ticks")
	}
}

func TestSeedFromGeneCountMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hall_of_fame.json")
	data := []byte(`{"max_size": 2, "entries": [{"generation": 0, "fitness": 3, "genes": [0.5, -0.5]}]}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	_, err := New(testConfig(t), smallWorld, viewport.New(800, 800, 1), Options{SeedFrom: path})
	if err == nil {
		t.Fatal("expected error for chromosomes that do not fit the brain")
	}
	if !errors.Is(err, neural.ErrWeightCount) {
		t.Errorf("expected wrapped ErrWeightCount, got %v", err)
	}
}

func TestSeedFromMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.json")
	_, err := New(testConfig(t), smallWorld, viewport.New(800, 800, 1), Options{SeedFrom: missing})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped os.ErrNotExist, got %v", err)
	}
}

func TestSeedFromPreviousRun(t *testing.T) {
	dir := t.TempDir()
	first := newTestSession(t, Options{Seed: 42, OutputDir: dir, MaxGenerations: 2})
	if err := first.Loop.Run(context.Background(), renderer.Nop{}); err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second := newTestSession(t, Options{Seed: 7, SeedFrom: filepath.Join(dir, "hall_of_fame.json"), MaxTicks: 3})
	defer second.Close()
	if err := second.Loop.Run(context.Background(), renderer.Nop{}); err != nil {
		t.Fatal(err)
	}
	if second.Sim.Tick() != 3 {
		t.Errorf("expected seeded session to run 3 ticks, got %d", second.Sim.Tick())
	}
}
