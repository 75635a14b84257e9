// Package sim is the evolution engine: animals steered by neural networks
// forage on the unit square, and every generation the genetic algorithm
// breeds the next population from the best eaters.
package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/genetic"
	"github.com/pthm-cable/forage/neural"
)

// Config holds everything needed to construct a Simulation.
type Config struct {
	GenerationLength int
	Animals          int
	Foods            int

	SpeedMin      float32
	SpeedMax      float32
	SpeedAccel    float32
	RotationAccel float32
	EatRadius     float32

	FOVRange       float32
	FOVAngle       float32
	Photoreceptors int

	HiddenMultiplier int

	MutationChance float64
	MutationCoeff  float64
}

// ConfigFrom builds an engine config from the loaded application config.
func ConfigFrom(cfg *config.Config) Config {
	s := cfg.Simulation.Resolve()
	return Config{
		GenerationLength: s.GenerationLength,
		Animals:          s.Animals,
		Foods:            s.Foods,
		SpeedMin:         float32(cfg.Animal.SpeedMin),
		SpeedMax:         float32(cfg.Animal.SpeedMax),
		SpeedAccel:       float32(cfg.Animal.SpeedAccel),
		RotationAccel:    float32(cfg.Animal.RotationAccel),
		EatRadius:        float32(cfg.Animal.EatRadius),
		FOVRange:         float32(cfg.Eye.FOVRange),
		FOVAngle:         float32(cfg.Eye.FOVAngle),
		Photoreceptors:   cfg.Eye.Photoreceptors,
		HiddenMultiplier: cfg.Derived.HiddenMultiplier,
		MutationChance:   cfg.Genetic.MutationChance,
		MutationCoeff:    cfg.Genetic.MutationCoeff,
	}
}

// DefaultConfig returns the engine config built from the embedded defaults.
func DefaultConfig() Config {
	cfg, err := config.Load("")
	if err != nil {
		panic(fmt.Sprintf("sim: embedded defaults: %v", err))
	}
	return ConfigFrom(cfg)
}

// withDefaults fills every zero field from def. Negative or otherwise
// invalid values are kept so construction can reject them.
func (c Config) withDefaults(def Config) Config {
	fill32 := func(v *float32, d float32) {
		if *v == 0 {
			*v = d
		}
	}
	fill64 := func(v *float64, d float64) {
		if *v == 0 {
			*v = d
		}
	}
	fill32(&c.SpeedMin, def.SpeedMin)
	fill32(&c.SpeedMax, def.SpeedMax)
	fill32(&c.SpeedAccel, def.SpeedAccel)
	fill32(&c.RotationAccel, def.RotationAccel)
	fill32(&c.EatRadius, def.EatRadius)
	fill32(&c.FOVRange, def.FOVRange)
	fill32(&c.FOVAngle, def.FOVAngle)
	if c.Photoreceptors == 0 {
		c.Photoreceptors = def.Photoreceptors
	}
	if c.HiddenMultiplier == 0 {
		c.HiddenMultiplier = def.HiddenMultiplier
	}
	fill64(&c.MutationChance, def.MutationChance)
	fill64(&c.MutationCoeff, def.MutationCoeff)
	return c
}

// WithSimulation returns a copy using the given construction parameters.
// Missing or non-positive values keep their defaults.
func (c Config) WithSimulation(s config.SimulationConfig) Config {
	s = s.Resolve()
	c.GenerationLength = s.GenerationLength
	c.Animals = s.Animals
	c.Foods = s.Foods
	return c
}

// GenerationReport is delivered to OnGeneration hooks when a generation ends.
type GenerationReport struct {
	Generation int // index of the generation that just finished
	Tick       int64
	Statistics genetic.Statistics
}

// Simulation owns the world state and advances it one step at a time.
type Simulation struct {
	cfg Config
	rng *rand.Rand

	world *ecs.World

	animalMapper *ecs.Map4[
		components.Position,
		components.Heading,
		components.Motion,
		components.Forager,
	]
	animalFilter *ecs.Filter4[
		components.Position,
		components.Heading,
		components.Motion,
		components.Forager,
	]
	foodMapper *ecs.Map2[components.Position, components.Food]
	foodFilter *ecs.Filter2[components.Position, components.Food]
	posMap     *ecs.Map1[components.Position]

	eye      *Eye
	ga       *genetic.GeneticAlgorithm
	topology []neural.LayerTopology
	brains   map[uint32]*Brain
	nextID   uint32

	age        int
	generation int
	tick       int64

	last     genetic.Statistics
	hasStats bool

	hooks []func(GenerationReport)

	// scratch buffers reused across steps
	foodEntities []ecs.Entity
	foodPoints   []Point
	foodGrid     *foodGrid
	nearby       []int
	visible      []Point
}

// New creates a simulation with a random initial population. Zero fields
// take their default values, so a Config holding only the generation length
// and population sizes is enough.
func New(cfg Config, rng *rand.Rand) (*Simulation, error) {
	cfg = cfg.withDefaults(DefaultConfig())
	cfg = cfg.WithSimulation(config.SimulationConfig{
		GenerationLength: cfg.GenerationLength,
		Animals:          cfg.Animals,
		Foods:            cfg.Foods,
	})
	if cfg.SpeedMax < cfg.SpeedMin {
		return nil, fmt.Errorf("sim: speed_max %g below speed_min %g", cfg.SpeedMax, cfg.SpeedMin)
	}

	eye, err := NewEye(cfg.FOVRange, cfg.FOVAngle, cfg.Photoreceptors)
	if err != nil {
		return nil, err
	}
	mutation, err := genetic.NewGaussianMutation(cfg.MutationChance, cfg.MutationCoeff)
	if err != nil {
		return nil, err
	}

	world := ecs.NewWorld()

	s := &Simulation{
		cfg:      cfg,
		rng:      rng,
		world:    world,
		eye:      eye,
		ga:       genetic.New(genetic.RouletteWheelSelection{}, genetic.UniformCrossover{}, mutation),
		topology: BrainTopology(eye, cfg.HiddenMultiplier),
		brains:   make(map[uint32]*Brain, cfg.Animals),
		animalMapper: ecs.NewMap4[
			components.Position,
			components.Heading,
			components.Motion,
			components.Forager,
		](world),
		animalFilter: ecs.NewFilter4[
			components.Position,
			components.Heading,
			components.Motion,
			components.Forager,
		](world),
		foodMapper: ecs.NewMap2[components.Position, components.Food](world),
		foodFilter: ecs.NewFilter2[components.Position, components.Food](world),
		posMap:     ecs.NewMap1[components.Position](world),
		foodGrid:   newFoodGrid(cfg.FOVRange),
	}

	for i := 0; i < cfg.Animals; i++ {
		brain, err := RandomBrain(rng, s.topology)
		if err != nil {
			return nil, err
		}
		s.spawnAnimal(brain)
	}
	for i := 0; i < cfg.Foods; i++ {
		pos := s.randomPosition()
		s.foodMapper.NewEntity(&pos, &components.Food{})
	}

	return s, nil
}

// OnGeneration registers a hook called after every evolution.
func (s *Simulation) OnGeneration(fn func(GenerationReport)) {
	s.hooks = append(s.hooks, fn)
}

// Config returns the resolved construction parameters.
func (s *Simulation) Config() Config { return s.cfg }

// Generation returns how many generations have completed.
func (s *Simulation) Generation() int { return s.generation }

// Age returns the number of steps taken in the current generation.
func (s *Simulation) Age() int { return s.age }

// Tick returns the total number of steps since construction.
func (s *Simulation) Tick() int64 { return s.tick }

// LastStatistics returns the statistics of the most recently finished generation.
func (s *Simulation) LastStatistics() (genetic.Statistics, bool) {
	return s.last, s.hasStats
}

// Step advances the world by one tick: feeding, thinking, moving, and
// evolving once the generation has run its course.
func (s *Simulation) Step() {
	s.collectFoods()
	s.processCollisions()
	s.processBrains()
	s.processMovements()

	s.tick++
	s.age++
	if s.age > s.cfg.GenerationLength {
		s.evolve()
	}
}

// FastForward steps until the current generation ends.
func (s *Simulation) FastForward() {
	gen := s.generation
	for s.generation == gen {
		s.Step()
	}
}

// World returns a fresh snapshot of all animals and foods.
func (s *Simulation) World() World {
	w := World{
		Animals: make([]Animal, 0, s.cfg.Animals),
		Foods:   make([]Food, 0, s.cfg.Foods),
	}

	query := s.animalFilter.Query()
	for query.Next() {
		pos, head, _, _ := query.Get()
		w.Animals = append(w.Animals, Animal{X: pos.X, Y: pos.Y, Rotation: head.Angle})
	}

	foods := s.foodFilter.Query()
	for foods.Next() {
		pos, _ := foods.Get()
		w.Foods = append(w.Foods, Food{X: pos.X, Y: pos.Y})
	}

	return w
}

// SeedBrains replaces the brains of the current population with the given
// chromosomes, cycling through them when there are fewer than animals.
func (s *Simulation) SeedBrains(chromosomes []genetic.Chromosome) error {
	if len(chromosomes) == 0 {
		return nil
	}

	brains := make([]*Brain, len(chromosomes))
	for i, c := range chromosomes {
		brain, err := BrainFromChromosome(s.topology, c)
		if err != nil {
			return fmt.Errorf("sim: seeding brain %d: %w", i, err)
		}
		brains[i] = brain
	}

	i := 0
	query := s.animalFilter.Query()
	for query.Next() {
		_, _, _, forager := query.Get()
		s.brains[forager.ID] = brains[i%len(brains)]
		i++
	}
	return nil
}

// collectFoods refreshes the food scratch buffers and the food grid.
func (s *Simulation) collectFoods() {
	s.foodEntities = s.foodEntities[:0]
	s.foodPoints = s.foodPoints[:0]
	s.foodGrid.Clear()

	query := s.foodFilter.Query()
	for query.Next() {
		pos, _ := query.Get()
		p := Point{X: pos.X, Y: pos.Y}
		s.foodGrid.Insert(len(s.foodPoints), p)
		s.foodEntities = append(s.foodEntities, query.Entity())
		s.foodPoints = append(s.foodPoints, p)
	}
}

// processCollisions lets every animal eat the food it touches. Eaten food
// reappears at a random position.
func (s *Simulation) processCollisions() {
	radius := float64(s.cfg.EatRadius)

	query := s.animalFilter.Query()
	for query.Next() {
		pos, _, _, forager := query.Get()
		s.nearby = s.foodGrid.QueryInto(s.nearby[:0], Point{X: pos.X, Y: pos.Y}, s.cfg.EatRadius)
		for _, i := range s.nearby {
			food := s.foodPoints[i]
			dist := math.Hypot(float64(pos.X-food.X), float64(pos.Y-food.Y))
			if dist > radius {
				continue
			}
			forager.Consumed++

			moved := s.randomPosition()
			*s.posMap.Get(s.foodEntities[i]) = moved
			s.foodPoints[i] = Point{X: moved.X, Y: moved.Y}
			s.foodGrid.Move(i, food, s.foodPoints[i])
		}
	}
}

// processBrains feeds each animal's vision through its brain and applies
// the clamped responses to speed and heading.
func (s *Simulation) processBrains() {
	query := s.animalFilter.Query()
	for query.Next() {
		pos, head, motion, forager := query.Get()

		at := Point{X: pos.X, Y: pos.Y}
		s.nearby = s.foodGrid.QueryInto(s.nearby[:0], at, s.eye.FOVRange)
		s.visible = s.visible[:0]
		for _, i := range s.nearby {
			s.visible = append(s.visible, s.foodPoints[i])
		}

		vision := s.eye.ProcessVision(at, head.Angle, s.visible)
		speed, rotation := s.brains[forager.ID].Think(vision)

		speed = clamp(speed, -s.cfg.SpeedAccel, s.cfg.SpeedAccel)
		rotation = clamp(rotation, -s.cfg.RotationAccel, s.cfg.RotationAccel)

		motion.Speed = clamp(motion.Speed+speed, s.cfg.SpeedMin, s.cfg.SpeedMax)
		head.Angle = normalizeAngle(head.Angle + rotation)
	}
}

// processMovements moves animals along their heading, wrapping at the field edges.
func (s *Simulation) processMovements() {
	query := s.animalFilter.Query()
	for query.Next() {
		pos, head, motion, _ := query.Get()
		sin, cos := math.Sincos(float64(head.Angle))

		pos.X = float32(wrap(float64(pos.X)+cos*float64(motion.Speed), 0, 1))
		pos.Y = float32(wrap(float64(pos.Y)+sin*float64(motion.Speed), 0, 1))
	}
}

// animalIndividual adapts a finished animal to the genetic algorithm.
type animalIndividual struct {
	fitness    float64
	chromosome genetic.Chromosome
}

func (a animalIndividual) Fitness() float64               { return a.fitness }
func (a animalIndividual) Chromosome() genetic.Chromosome { return a.chromosome }

// evolve replaces the population with the next generation and scatters the food.
func (s *Simulation) evolve() {
	// First pass: score animals (query must complete before removal)
	type finished struct {
		entity ecs.Entity
		id     uint32
	}
	var old []finished
	var population []genetic.Individual

	query := s.animalFilter.Query()
	for query.Next() {
		_, _, _, forager := query.Get()
		old = append(old, finished{entity: query.Entity(), id: forager.ID})
		population = append(population, animalIndividual{
			fitness:    float64(forager.Consumed),
			chromosome: s.brains[forager.ID].Chromosome(),
		})
	}

	// Second pass: remove the old generation
	for _, f := range old {
		s.world.RemoveEntity(f.entity)
		delete(s.brains, f.id)
	}

	children, stats := s.ga.Evolve(s.rng, population)
	for _, child := range children {
		brain, err := BrainFromChromosome(s.topology, child)
		if err != nil {
			panic(fmt.Sprintf("sim: evolved chromosome does not fit brain: %v", err))
		}
		s.spawnAnimal(brain)
	}

	s.collectFoods()
	for _, e := range s.foodEntities {
		*s.posMap.Get(e) = s.randomPosition()
	}

	s.age = 0
	s.last = stats
	s.hasStats = true

	report := GenerationReport{Generation: s.generation, Tick: s.tick, Statistics: stats}
	s.generation++
	for _, fn := range s.hooks {
		fn(report)
	}
}

// spawnAnimal creates an animal at a random spot with the given brain.
func (s *Simulation) spawnAnimal(brain *Brain) ecs.Entity {
	id := s.nextID
	s.nextID++
	s.brains[id] = brain

	pos := s.randomPosition()
	head := components.Heading{Angle: normalizeAngle(s.rng.Float32() * 2 * math.Pi)}
	motion := components.Motion{Speed: s.cfg.SpeedMin + s.rng.Float32()*(s.cfg.SpeedMax-s.cfg.SpeedMin)}
	forager := components.Forager{ID: id}

	return s.animalMapper.NewEntity(&pos, &head, &motion, &forager)
}

func (s *Simulation) randomPosition() components.Position {
	return components.Position{X: s.rng.Float32(), Y: s.rng.Float32()}
}

// normalizeAngle wraps angle to [-pi, pi] with single-step correction.
// Safe when angle changes are bounded (heading += small_delta per tick).
func normalizeAngle(a float32) float32 {
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
