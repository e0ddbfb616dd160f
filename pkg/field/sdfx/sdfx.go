// Package sdfx adapts the github.com/deadsy/sdfx CAD library as a field
// backend. Solids built from its primitives and boolean combinators
// evaluate as field.Field values with central-difference gradients.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/chitin/pkg/field"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
)

// Compile-time interface check.
var _ field.Field = (*Solid)(nil)

// gradientStep is the half-width of the central-difference stencil used
// to estimate gradients; sdfx solids expose distance only.
const gradientStep = 1e-4

// Solid wraps an sdf.SDF3 to implement field.Field.
type Solid struct {
	s sdf.SDF3
}

// Wrap exposes an arbitrary sdf.SDF3 as a field.Field.
func Wrap(s sdf.SDF3) *Solid {
	return &Solid{s: s}
}

// SDF3 returns the wrapped sdfx solid.
func (s *Solid) SDF3() sdf.SDF3 {
	return s.s
}

// Distance evaluates the wrapped solid's signed distance at p.
func (s *Solid) Distance(p mgl64.Vec3) float64 {
	return s.s.Evaluate(v3.Vec{X: p.X(), Y: p.Y(), Z: p.Z()})
}

// Gradient estimates the outward direction at p by normalized central
// differences, with +Y where the estimate vanishes.
func (s *Solid) Gradient(p mgl64.Vec3) mgl64.Vec3 {
	const h = gradientStep
	g := mgl64.Vec3{
		s.Distance(mgl64.Vec3{p.X() + h, p.Y(), p.Z()}) - s.Distance(mgl64.Vec3{p.X() - h, p.Y(), p.Z()}),
		s.Distance(mgl64.Vec3{p.X(), p.Y() + h, p.Z()}) - s.Distance(mgl64.Vec3{p.X(), p.Y() - h, p.Z()}),
		s.Distance(mgl64.Vec3{p.X(), p.Y(), p.Z() + h}) - s.Distance(mgl64.Vec3{p.X(), p.Y(), p.Z() - h}),
	}
	l := g.Len()
	if l == 0 || math.IsNaN(l) {
		return mgl64.Vec3{0, 1, 0}
	}
	return g.Mul(1 / l)
}

// Bounds returns the wrapped solid's axis-aligned bounding box.
func (s *Solid) Bounds() (min, max mgl64.Vec3) {
	bb := s.s.BoundingBox()
	min = mgl64.Vec3{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = mgl64.Vec3{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// Box returns a box with the given full side lengths, centered at the
// local origin.
func Box(x, y, z float64) (*Solid, error) {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx box: %w", err)
	}
	return Wrap(s), nil
}

// Sphere returns a sphere of the given radius centered at the local
// origin.
func Sphere(radius float64) (*Solid, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx sphere: %w", err)
	}
	return Wrap(s), nil
}

// Cylinder returns a cylinder of the given full height and radius,
// centered at the local origin with its axis along local Z.
func Cylinder(height, radius float64) (*Solid, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx cylinder: %w", err)
	}
	return Wrap(s), nil
}

// Union returns the union of two solids.
func Union(a, b *Solid) *Solid {
	return Wrap(sdf.Union3D(a.s, b.s))
}

// Difference returns the difference a - b.
func Difference(a, b *Solid) *Solid {
	return Wrap(sdf.Difference3D(a.s, b.s))
}

// Intersection returns the intersection of two solids.
func Intersection(a, b *Solid) *Solid {
	return Wrap(sdf.Intersect3D(a.s, b.s))
}

// Translate moves a solid by (x, y, z) in its local frame.
func Translate(s *Solid, x, y, z float64) *Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return Wrap(sdf.Transform3D(s.s, m))
}

// Rotate rotates a solid by Euler angles (degrees) around the local X, Y
// and Z axes, applied in X, Y, Z order.
func Rotate(s *Solid, x, y, z float64) *Solid {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return Wrap(sdf.Transform3D(s.s, m))
}
