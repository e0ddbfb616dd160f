package collide

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/chitin/pkg/field"
)

// probeRadius is the probe used when marching a bare ray through a
// field, in field-local units.
const probeRadius = 0.001

// Ray is a world-space ray. Dir must be unit length; Max bounds travel.
type Ray struct {
	Origin mgl64.Vec3
	Dir    mgl64.Vec3
	Max    float64
}

// Along returns the point at travel distance t along the ray.
func (r Ray) Along(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// RayCast returns the travel distance at which the ray meets the placed
// collider. solid controls rays starting inside the shape: a solid
// shape reports distance 0, a hollow one reports the exit boundary.
// Surface shapes march the field with a fixed probe radius, so only a
// true surface hit within Max counts. An unresolvable surface reference
// is a miss.
func RayCast(c Collider, pose Pose, ray Ray, solid bool, lookup field.Lookup) (float64, bool) {
	origin := pose.Local(ray.Origin)
	dir := pose.LocalDir(ray.Dir)

	switch s := c.Shape.(type) {
	case Sphere:
		dist, ok := raySphere(s.Radius*c.Scale, origin, dir, solid)
		if !ok || dist > ray.Max {
			return 0, false
		}
		return dist, true

	case Capsule:
		scaled := Capsule{Radius: s.Radius * c.Scale, HalfLength: s.HalfLength * c.Scale}
		return rayCapsule(scaled, origin, dir, ray.Max, solid)

	case Surface:
		sf, ok := resolveSurface(s, pose, c.Scale, lookup)
		if !ok {
			return 0, false
		}
		res := marchEdge(sf.f, sf.local(ray.Origin), dir, probeRadius, ray.Max/sf.scale)
		if !res.hit {
			return 0, false
		}
		return res.travel * sf.scale, true
	}

	return 0, false
}

// raySphere returns the travel distance at which a local-frame ray
// meets a sphere of the given radius centered at the origin. An outside
// origin pointing away is a miss. An outside origin pointing toward the
// sphere always reports a crossing: a negative discriminant carries its
// sign through the square root, yielding the closest-approach distance
// rather than a miss. An inside origin reports 0 for solid shapes and
// the exit boundary for hollow ones.
func raySphere(radius float64, origin, dir mgl64.Vec3, solid bool) (float64, bool) {
	c := origin.LenSqr() - radius*radius
	if c > 0 {
		b := origin.Dot(dir)
		if b > 0 {
			return 0, false
		}
		d := b*b - c
		return -b - math.Copysign(math.Sqrt(math.Abs(d)), d), true
	}

	if solid {
		return 0, true
	}

	b := origin.Dot(dir)
	d := b*b - c
	return -b + math.Sqrt(d), true
}

// rayCapsule returns the travel distance at which a local-frame ray
// meets a capsule centered at the origin with its axis along Y. Based
// on Inigo Quilez's ray-capsule intersector: solve the infinite
// cylinder first, accept solutions inside the band, and fall through to
// a hemisphere sphere test otherwise. maxDist bounds accepted
// solutions; solid gives inside origins distance 0.
func rayCapsule(cap Capsule, origin, dir mgl64.Vec3, maxDist float64, solid bool) (float64, bool) {
	radiusSquared := cap.Radius * cap.Radius

	ba := 2 * cap.HalfLength
	oa := mgl64.Vec3{origin.X(), origin.Y() + cap.HalfLength, origin.Z()}

	baba := ba * ba
	bard := ba * dir.Y()
	baoa := ba * oa.Y()
	rdoa := dir.Dot(oa)
	oaoa := oa.Dot(oa)

	// machEps keeps the division finite for rays parallel to the axis.
	a := math.Max(baba-bard*bard, machEps)
	b := baba*rdoa - baoa*bard
	c := baba*oaoa - baoa*baoa - radiusSquared*baba
	d := b*b - a*c

	if d < 0 {
		return 0, false
	}

	insideHorizontal := c < 0
	insideVertical := math.Abs(origin.Y()) < cap.HalfLength
	// Hemisphere membership tests the radial x offset and the axial gap
	// only.
	axialGap := cap.HalfLength - math.Abs(origin.Y())
	intersectsHemisphere := insideHorizontal &&
		origin.X()*origin.X()+axialGap*axialGap < radiusSquared
	originInside := intersectsHemisphere || (insideHorizontal && insideVertical)

	if solid && originInside {
		return 0, true
	}

	cylinderDist := (-b - math.Sqrt(d)) / a
	if originInside {
		cylinderDist = (-b + math.Sqrt(d)) / a
	}

	y := baoa + cylinderDist*bard

	// Cylindrical band hit.
	if y > 0 && y < baba && cylinderDist > 0 {
		if cylinderDist > maxDist {
			return 0, false
		}
		return cylinderDist, true
	}

	// Otherwise a hemisphere; which one depends on the side the
	// cylinder solution fell off.
	offsetOrigin := oa
	if y > 0 {
		offsetOrigin = mgl64.Vec3{origin.X(), origin.Y() - cap.HalfLength, origin.Z()}
	}

	hb := offsetOrigin.Dot(dir)
	hc := offsetOrigin.LenSqr() - radiusSquared

	if hc > 0 && hb > 0 {
		return 0, false
	}

	hd := hb*hb - hc
	if hd < 0 {
		return 0, false
	}
	sqrtHd := math.Sqrt(hd)

	t2 := -hb - sqrtHd
	if originInside {
		t2 = -hb + sqrtHd
	}
	if t2 > 0 && t2 <= maxDist {
		return t2, true
	}

	// The ray starts inside the hit hemisphere; take the far root.
	t1 := -hb + sqrtHd
	if t1 > maxDist {
		return 0, false
	}
	return t1, true
}

// SurfaceNormal returns the collider's outward normal at a point given
// in the collider's local frame. Spheres normalize the point itself,
// capsules the offset from the clamped axis point; surface shapes
// sample the field gradient, with +Y when the reference cannot be
// resolved.
func SurfaceNormal(c Collider, local mgl64.Vec3, lookup field.Lookup) mgl64.Vec3 {
	up := mgl64.Vec3{0, 1, 0}

	switch s := c.Shape.(type) {
	case Sphere:
		return normalOr(local, up)

	case Capsule:
		t := mgl64.Clamp(local.Y(), -s.HalfLength*c.Scale, s.HalfLength*c.Scale)
		return normalOr(local.Sub(mgl64.Vec3{0, t, 0}), up)

	case Surface:
		if lookup == nil {
			return up
		}
		f, ok := lookup.Get(s.Ref)
		if !ok {
			return up
		}
		return f.Gradient(local.Mul(1 / c.Scale))
	}

	return up
}

// normalOr returns v normalized, or fallback when v has no usable
// direction.
func normalOr(v, fallback mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 || math.IsNaN(l) {
		return fallback
	}
	return v.Mul(1 / l)
}

// ShapeCastHit reports a swept-sphere impact. Point and Normal are in
// the target collider's local frame (the field's unscaled frame for
// surface shapes); Distance is travel along the cast ray in world
// units.
type ShapeCastHit struct {
	Distance float64
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
}

// ShapeCast sweeps a sphere of castRadius along the ray against the
// placed collider. Sphere and capsule targets expand their radius by
// the cast radius and reuse the analytic ray tests; surface targets
// march the field with the cast radius as the probe. An unresolvable
// surface reference is a miss.
func ShapeCast(c Collider, pose Pose, castRadius float64, ray Ray, lookup field.Lookup) (ShapeCastHit, bool) {
	origin := pose.Local(ray.Origin)
	dir := pose.LocalDir(ray.Dir)
	up := mgl64.Vec3{0, 1, 0}

	switch s := c.Shape.(type) {
	case Sphere:
		radius := s.Radius * c.Scale
		dist, ok := raySphere(radius+castRadius, origin, dir, true)
		if !ok || dist > ray.Max {
			return ShapeCastHit{}, false
		}
		normal := normalOr(origin.Add(dir.Mul(dist)), up)
		return ShapeCastHit{Distance: dist, Point: normal.Mul(radius), Normal: normal}, true

	case Capsule:
		radius := s.Radius * c.Scale
		halfLength := s.HalfLength * c.Scale
		expanded := Capsule{Radius: radius + castRadius, HalfLength: halfLength}
		dist, ok := rayCapsule(expanded, origin, dir, ray.Max, true)
		if !ok {
			return ShapeCastHit{}, false
		}
		at := origin.Add(dir.Mul(dist))
		t := mgl64.Clamp(at.Y(), -halfLength, halfLength)
		normal := normalOr(at.Sub(mgl64.Vec3{0, t, 0}), up)
		return ShapeCastHit{Distance: dist, Point: normal.Mul(radius), Normal: normal}, true

	case Surface:
		sf, ok := resolveSurface(s, pose, c.Scale, lookup)
		if !ok {
			return ShapeCastHit{}, false
		}
		start := sf.local(ray.Origin)
		res := marchEdge(sf.f, start, dir, castRadius/sf.scale, ray.Max/sf.scale)
		if !res.hit {
			return ShapeCastHit{}, false
		}
		pos := start.Add(dir.Mul(res.travel))
		gradient := sf.f.Gradient(pos)
		return ShapeCastHit{
			Distance: res.travel * sf.scale,
			Point:    pos.Sub(gradient.Mul(res.distance)),
			Normal:   gradient,
		}, true
	}

	return ShapeCastHit{}, false
}

// Intersects reports whether two placed colliders overlap, by building
// a zero-margin manifold and checking it for any contact with
// non-negative penetration. The surface vs surface pair reports false.
func Intersects(a Collider, poseA Pose, b Collider, poseB Pose, lookup field.Lookup) bool {
	for _, contact := range Collide(a, poseA, b, poseB, lookup, 0) {
		if contact.Penetration >= 0 {
			return true
		}
	}
	return false
}

// ClosestPoint is declared as part of the query surface but not
// implemented.
func ClosestPoint(c Collider, pose Pose, point mgl64.Vec3, solid bool, lookup field.Lookup) mgl64.Vec3 {
	panic("collide: ClosestPoint not implemented")
}

// ContainsPoint is declared as part of the query surface but not
// implemented.
func ContainsPoint(c Collider, pose Pose, point mgl64.Vec3, lookup field.Lookup) bool {
	panic("collide: ContainsPoint not implemented")
}
