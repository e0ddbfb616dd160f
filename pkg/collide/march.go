package collide

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/chitin/pkg/field"
)

// MinimumStep is the smallest advance the field marcher takes per
// sample. It bounds the iteration count of a march at length/MinimumStep
// and sets the resolution floor for thin features.
const MinimumStep = 0.001

// marchResult is the outcome of one marchEdge call. When hit is true the
// traveling point came within the probe radius of the surface at travel;
// otherwise travel and distance describe the closest approach sampled
// before the length bound was reached.
type marchResult struct {
	hit      bool
	travel   float64
	distance float64
}

// marchEdge sphere-traces a field from start along dir until the sampled
// distance drops to radius or below, or accumulated travel reaches
// length. start and dir are in the field's local frame; dir must be unit
// length. The closest approach is approximate: each step advances by the
// sampled safe distance, so the true minimum can fall between samples.
func marchEdge(f field.Field, start, dir mgl64.Vec3, radius, length float64) marchResult {
	traveled := 0.0
	closest := marchResult{travel: 0, distance: math.Inf(1)}

	for traveled < length {
		pos := start.Add(dir.Mul(traveled))
		dist := f.Distance(pos)
		// TODO: Difference and intersect solids can leave sign
		// discontinuities the march steps over. Continue past negative
		// samples to the true sign change instead of settling here.
		if dist <= radius {
			return marchResult{hit: true, travel: traveled, distance: dist}
		}
		if dist < closest.distance {
			closest.travel = traveled
			closest.distance = dist
		}

		traveled += math.Max(dist-radius, MinimumStep)
	}

	return closest
}
