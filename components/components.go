// Package components defines ECS components for the simulation.
// All positions are in normalized world units: the field is the unit square
// with its origin at the top-left corner.
package components

// Position represents an entity's location on the field.
type Position struct {
	X, Y float32
}

// Heading is an animal's facing direction in radians, measured from the +X
// axis towards +Y.
type Heading struct {
	Angle float32
}

// Motion holds an animal's current forward speed per step.
type Motion struct {
	Speed float32
}

// Forager identifies an animal and tracks how much it has eaten in the
// current generation.
type Forager struct {
	ID       uint32
	Consumed int // food eaten this generation; used as fitness
}

// Food tags a food entity.
type Food struct{}
