package collide

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/chitin/pkg/field"
)

// Collider couples a shape with a uniform scale factor. The scale
// multiplies every spatial dimension of the shape (radii, half-lengths,
// field geometry) at query time; the shape's stored dimensions are never
// mutated. Colliders may be held across queries by the host, which is
// what the staleness flag exists for.
type Collider struct {
	Shape Shape
	Scale float64

	stale bool
}

// NewSphere returns an unscaled sphere collider.
func NewSphere(radius float64) Collider {
	return Collider{Shape: Sphere{Radius: radius}, Scale: 1}
}

// NewCapsule returns an unscaled capsule collider.
func NewCapsule(radius, halfLength float64) Collider {
	return Collider{Shape: Capsule{Radius: radius, HalfLength: halfLength}, Scale: 1}
}

// NewSurface returns an unscaled surface collider bound to ref.
func NewSurface(ref field.Ref) Collider {
	return Collider{Shape: Surface{Ref: ref}, Scale: 1}
}

// ScaleVector returns the uniform scale splatted across all three axes.
func (c *Collider) ScaleVector() mgl64.Vec3 {
	return mgl64.Vec3{c.Scale, c.Scale, c.Scale}
}

// SetScaleVector collapses a 3-axis scale vector to its minimum
// component. Only uniform scaling is supported, so hosts carrying
// non-uniform scale lose the larger components.
func (c *Collider) SetScaleVector(v mgl64.Vec3) {
	c.Scale = math.Min(v.X(), math.Min(v.Y(), v.Z()))
}

// References reports whether the collider is a surface shape bound to ref.
func (c *Collider) References(ref field.Ref) bool {
	s, ok := c.Shape.(Surface)
	return ok && s.Ref == ref
}

// Stale reports whether the collider's field data was reprocessed since
// the last Refresh. Always false for non-surface shapes.
func (c *Collider) Stale() bool { return c.stale }

// Refresh clears the stale flag after the host has re-queried.
func (c *Collider) Refresh() { c.stale = false }

// Invalidate marks every collider referencing the reprocessed field as
// stale and returns the number of colliders marked.
func Invalidate(ev field.Processed, colliders ...*Collider) int {
	marked := 0
	for _, c := range colliders {
		if c.References(ev.Ref) {
			c.stale = true
			marked++
		}
	}
	return marked
}
