package sim

// Animal is the per-frame view of one animal.
type Animal struct {
	X, Y     float32
	Rotation float32 // radians
}

// Food is the per-frame view of one food item.
type Food struct {
	X, Y float32
}

// World is a snapshot of every entity, rebuilt on each call to
// Simulation.World. Coordinates are normalized to [0, 1].
type World struct {
	Animals []Animal
	Foods   []Food
}
