// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Defaults used when a simulation parameter is missing or non-positive.
const (
	DefaultGenerationLength = 2500
	DefaultAnimals          = 20
	DefaultFoods            = 30

	DefaultScreenWidth  = 800
	DefaultScreenHeight = 800
)

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Simulation SimulationConfig `yaml:"simulation"`
	Animal     AnimalConfig     `yaml:"animal"`
	Eye        EyeConfig        `yaml:"eye"`
	Brain      BrainConfig      `yaml:"brain"`
	Genetic    GeneticConfig    `yaml:"genetic"`
	Render     RenderConfig     `yaml:"render"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	PixelRatio float64 `yaml:"pixel_ratio"` // 0 = query the display
	TargetFPS  int     `yaml:"target_fps"`  // 0 = uncapped
}

// SimulationConfig holds the three engine construction parameters.
type SimulationConfig struct {
	GenerationLength int `yaml:"generation_length"` // Steps per generation
	Animals          int `yaml:"animals"`
	Foods            int `yaml:"foods"`
}

// Resolve returns a copy where every missing (zero) or negative value is
// replaced by its default.
func (s SimulationConfig) Resolve() SimulationConfig {
	if s.GenerationLength <= 0 {
		s.GenerationLength = DefaultGenerationLength
	}
	if s.Animals <= 0 {
		s.Animals = DefaultAnimals
	}
	if s.Foods <= 0 {
		s.Foods = DefaultFoods
	}
	return s
}

// AnimalConfig holds movement and feeding parameters. Distances are in
// normalized world units.
type AnimalConfig struct {
	SpeedMin      float64 `yaml:"speed_min"`
	SpeedMax      float64 `yaml:"speed_max"`
	SpeedAccel    float64 `yaml:"speed_accel"`    // Max speed change per step
	RotationAccel float64 `yaml:"rotation_accel"` // Max turn per step (radians)
	EatRadius     float64 `yaml:"eat_radius"`
}

// EyeConfig holds vision parameters.
type EyeConfig struct {
	FOVRange       float64 `yaml:"fov_range"`
	FOVAngle       float64 `yaml:"fov_angle"` // radians
	Photoreceptors int     `yaml:"photoreceptors"`
}

// BrainConfig holds neural network shape parameters.
type BrainConfig struct {
	HiddenMultiplier int `yaml:"hidden_multiplier"` // Hidden neurons per photoreceptor
}

// GeneticConfig holds evolution parameters.
type GeneticConfig struct {
	MutationChance float64 `yaml:"mutation_chance"`
	MutationCoeff  float64 `yaml:"mutation_coeff"`
}

// RenderConfig holds drawing proportions relative to the viewport width.
type RenderConfig struct {
	AnimalSide  float64 `yaml:"animal_side"`
	FoodRadius  float64 `yaml:"food_radius"`
	ClearMargin float64 `yaml:"clear_margin"` // Cleared area as a multiple of the viewport
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow     int `yaml:"perf_window"` // Ticks in the rolling perf window
	HallOfFameSize int `yaml:"hall_of_fame_size"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	HiddenMultiplier int     // Brain.HiddenMultiplier, at least 1
	ClearMargin      float32 // Render.ClearMargin, DefaultClearMargin unless above 1
}

// DefaultClearMargin is used when render.clear_margin would not cover the viewport.
const DefaultClearMargin = 1.1

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.Screen.Width <= 0 {
		c.Screen.Width = DefaultScreenWidth
	}
	if c.Screen.Height <= 0 {
		c.Screen.Height = DefaultScreenHeight
	}
	c.Simulation = c.Simulation.Resolve()

	c.Derived.HiddenMultiplier = max(c.Brain.HiddenMultiplier, 1)

	c.Derived.ClearMargin = float32(c.Render.ClearMargin)
	if c.Derived.ClearMargin <= 1 {
		c.Derived.ClearMargin = DefaultClearMargin
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
