package sim

import (
	"math"

	"github.com/pthm-cable/forage/neural"
)

// AnimalDetail is a snapshot of one animal's state and what its brain
// currently makes of its surroundings.
type AnimalDetail struct {
	ID       uint32
	X, Y     float32
	Rotation float32
	Speed    float32
	Consumed int

	// Receptor activations, one per photoreceptor
	Vision []float64

	// Activations of every brain layer, inputs first
	Activations [][]float64

	// Brain is shared with the simulation and must not be modified
	Brain *neural.Network
}

// AnimalAt returns the ID of the animal nearest to (x, y) within radius.
func (s *Simulation) AnimalAt(x, y, radius float32) (uint32, bool) {
	best := math.Inf(1)
	var id uint32
	found := false

	query := s.animalFilter.Query()
	for query.Next() {
		pos, _, _, forager := query.Get()
		d := math.Hypot(float64(pos.X-x), float64(pos.Y-y))
		if d <= float64(radius) && d < best {
			best, id, found = d, forager.ID, true
		}
	}
	return id, found
}

// Inspect returns the detail of a living animal. IDs are not reused, so an
// animal from a finished generation is reported as not found.
func (s *Simulation) Inspect(id uint32) (AnimalDetail, bool) {
	brain, ok := s.brains[id]
	if !ok {
		return AnimalDetail{}, false
	}

	var detail AnimalDetail
	found := false
	query := s.animalFilter.Query()
	for query.Next() {
		pos, head, motion, forager := query.Get()
		if forager.ID != id {
			continue
		}
		detail = AnimalDetail{
			ID:       id,
			X:        pos.X,
			Y:        pos.Y,
			Rotation: head.Angle,
			Speed:    motion.Speed,
			Consumed: forager.Consumed,
		}
		found = true
		query.Close()
		break
	}
	if !found {
		return AnimalDetail{}, false
	}

	s.collectFoods()
	detail.Vision = s.eye.ProcessVision(Point{X: detail.X, Y: detail.Y}, detail.Rotation, s.foodPoints)
	detail.Brain = brain.Network()
	detail.Activations = detail.Brain.Trace(detail.Vision)
	return detail, true
}
