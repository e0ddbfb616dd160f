package collide

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/chitin/pkg/field"
)

// AABB is a world-space axis-aligned bounding box.
type AABB struct {
	Min, Max mgl64.Vec3
}

// Center returns the box midpoint.
func (b AABB) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Bounds returns the world-space axis-aligned bounds of a placed
// collider, suitable for broad-phase pruning. Surface bounds transform
// all eight corners of the field's local bounding box. An unresolvable
// surface reference logs a warning and reports ok false.
func Bounds(c Collider, pose Pose, lookup field.Lookup) (bb AABB, ok bool) {
	switch s := c.Shape.(type) {
	case Sphere:
		r := s.Radius * c.Scale
		ext := mgl64.Vec3{r, r, r}
		return AABB{Min: pose.Translation.Sub(ext), Max: pose.Translation.Add(ext)}, true

	case Capsule:
		r := s.Radius * c.Scale
		axis := pose.Up().Mul(s.HalfLength * c.Scale)
		top := pose.Translation.Add(axis)
		bottom := pose.Translation.Sub(axis)
		ext := mgl64.Vec3{r, r, r}
		return AABB{
			Min: vecMin(top, bottom).Sub(ext),
			Max: vecMax(top, bottom).Add(ext),
		}, true

	case Surface:
		sf, found := resolveSurface(s, pose, c.Scale, lookup)
		if !found {
			Logger().Warn("surface field not found", "ref", s.Ref, "query", "bounds")
			return AABB{}, false
		}
		lo, hi := sf.f.Bounds()
		first := true
		for _, x := range [2]float64{lo.X(), hi.X()} {
			for _, y := range [2]float64{lo.Y(), hi.Y()} {
				for _, z := range [2]float64{lo.Z(), hi.Z()} {
					corner := pose.World(mgl64.Vec3{x, y, z}.Mul(c.Scale))
					if first {
						bb = AABB{Min: corner, Max: corner}
						first = false
						continue
					}
					bb.Min = vecMin(bb.Min, corner)
					bb.Max = vecMax(bb.Max, corner)
				}
			}
		}
		return bb, true
	}

	return AABB{}, false
}

func vecMin(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Min(a.X(), b.X()), math.Min(a.Y(), b.Y()), math.Min(a.Z(), b.Z())}
}

func vecMax(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Max(a.X(), b.X()), math.Max(a.Y(), b.Y()), math.Max(a.Z(), b.Z())}
}
