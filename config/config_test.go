package config

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Simulation.GenerationLength != 2500 || cfg.Simulation.Animals != 20 || cfg.Simulation.Foods != 30 {
		t.Errorf("unexpected simulation defaults: %+v", cfg.Simulation)
	}
	if cfg.Screen.Width != 800 || cfg.Screen.Height != 800 {
		t.Errorf("unexpected screen defaults: %+v", cfg.Screen)
	}
	if cfg.Eye.Photoreceptors != 9 {
		t.Errorf("expected 9 photoreceptors, got %d", cfg.Eye.Photoreceptors)
	}
	if math.Abs(cfg.Eye.FOVAngle-(math.Pi+math.Pi/4)) > 1e-9 {
		t.Errorf("expected fov angle pi+pi/4, got %f", cfg.Eye.FOVAngle)
	}
	if cfg.Derived.HiddenMultiplier != 2 || cfg.Derived.ClearMargin != 1.1 {
		t.Errorf("unexpected derived values: %+v", cfg.Derived)
	}
}

func TestDerivedFallbacks(t *testing.T) {
	tests := []struct {
		name       string
		yaml       string
		wantHidden int
		wantMargin float32
	}{
		{"zero margin", "render:\n  clear_margin: 0\n", 2, DefaultClearMargin},
		{"margin of one", "render:\n  clear_margin: 1\n", 2, DefaultClearMargin},
		{"wide margin", "render:\n  clear_margin: 1.5\n", 2, 1.5},
		{"zero hidden", "brain:\n  hidden_multiplier: 0\n", 1, DefaultClearMargin},
		{"negative hidden", "brain:\n  hidden_multiplier: -4\n", 1, DefaultClearMargin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "user.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.Derived.HiddenMultiplier != tt.wantHidden {
				t.Errorf("hidden multiplier = %d, want %d", cfg.Derived.HiddenMultiplier, tt.wantHidden)
			}
			if cfg.Derived.ClearMargin != tt.wantMargin {
				t.Errorf("clear margin = %v, want %v", cfg.Derived.ClearMargin, tt.wantMargin)
			}
		})
	}
}

func TestLoadMergesUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.yaml")
	data := []byte("simulation:\n  animals: 50\ngenetic:\n  mutation_chance: 0.05\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simulation.Animals != 50 {
		t.Errorf("expected animals override 50, got %d", cfg.Simulation.Animals)
	}
	if cfg.Simulation.Foods != 30 {
		t.Errorf("expected untouched foods default 30, got %d", cfg.Simulation.Foods)
	}
	if cfg.Genetic.MutationChance != 0.05 {
		t.Errorf("expected mutation chance 0.05, got %f", cfg.Genetic.MutationChance)
	}
	if cfg.Genetic.MutationCoeff != 0.3 {
		t.Errorf("expected default mutation coeff 0.3, got %f", cfg.Genetic.MutationCoeff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestSimulationResolve(t *testing.T) {
	tests := []struct {
		name string
		in   SimulationConfig
		want SimulationConfig
	}{
		{"all missing", SimulationConfig{}, SimulationConfig{2500, 20, 30}},
		{"negative", SimulationConfig{-1, -5, -3}, SimulationConfig{2500, 20, 30}},
		{"explicit", SimulationConfig{100, 4, 7}, SimulationConfig{100, 4, 7}},
		{"partial", SimulationConfig{Animals: 3}, SimulationConfig{2500, 3, 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Resolve(); got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Simulation.Foods = 77

	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load snapshot: %v", err)
	}
	if loaded.Simulation.Foods != 77 {
		t.Errorf("expected foods 77 after reload, got %d", loaded.Simulation.Foods)
	}
}
