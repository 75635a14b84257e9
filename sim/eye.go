package sim

import (
	"errors"
	"fmt"
	"math"
)

// ErrEye is returned for an eye with a non-positive range, angle or receptor count.
var ErrEye = errors.New("sim: invalid eye parameters")

// Point is a location in normalized world units.
type Point struct {
	X, Y float32
}

// Eye turns nearby food into per-photoreceptor heat.
type Eye struct {
	FOVRange       float32 // how far the animal sees
	FOVAngle       float32 // total field of view in radians, centered on the heading
	Photoreceptors int
}

// NewEye validates and returns an eye.
func NewEye(fovRange, fovAngle float32, photoreceptors int) (*Eye, error) {
	if !(fovRange > 0) || !(fovAngle > 0) || photoreceptors <= 0 {
		return nil, fmt.Errorf("%w: range=%g angle=%g photoreceptors=%d", ErrEye, fovRange, fovAngle, photoreceptors)
	}
	return &Eye{FOVRange: fovRange, FOVAngle: fovAngle, Photoreceptors: photoreceptors}, nil
}

// ProcessVision returns one value per photoreceptor. Each food closer than
// FOVRange and within FOVAngle/2 of the heading adds (range-dist)/range to
// the receptor covering its direction. Receptor 0 looks furthest towards
// negative angles.
func (e *Eye) ProcessVision(pos Point, rotation float32, foods []Point) []float64 {
	cells := make([]float64, e.Photoreceptors)

	// Reduce the heading to (-pi, pi] the same way an atan2 of its unit vector would.
	heading := math.Atan2(math.Sin(float64(rotation)), math.Cos(float64(rotation)))
	fov := float64(e.FOVAngle)

	for _, food := range foods {
		dx := food.X - pos.X
		dy := food.Y - pos.Y
		dist := float32(math.Hypot(float64(dx), float64(dy)))
		if dist >= e.FOVRange {
			continue
		}

		angle := wrap(math.Atan2(float64(dy), float64(dx))-heading, -math.Pi, math.Pi)
		if angle < -fov/2 || angle > fov/2 {
			continue
		}

		cell := int((angle + fov/2) / fov * float64(e.Photoreceptors))
		if cell > e.Photoreceptors-1 {
			cell = e.Photoreceptors - 1
		}

		cells[cell] += float64((e.FOVRange - dist) / e.FOVRange)
	}

	return cells
}

// wrap folds val into [min, max] by whole periods of max-min.
func wrap(val, min, max float64) float64 {
	width := max - min
	if val < min {
		for val < min {
			val += width
		}
	} else if val > max {
		for val > max {
			val -= width
		}
	}
	return val
}
