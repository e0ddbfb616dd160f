package collide

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/chitin/pkg/field"
)

// Collide produces the contact manifold for a collider pair. margin is
// the speculative distance: pairs separated by more than margin yield no
// contacts, pairs separated by less yield contacts with negative
// penetration. Contact normals point from a toward b. lookup resolves
// surface shapes and may be nil when neither collider is a surface; an
// unresolvable reference yields an empty manifold. The surface vs
// surface pair is unsupported and yields an empty manifold after a
// logged warning.
func Collide(a Collider, poseA Pose, b Collider, poseB Pose, lookup field.Lookup, margin float64) Manifold {
	var out Manifold

	switch sa := a.Shape.(type) {
	case Sphere:
		sa.Radius *= a.Scale
		switch sb := b.Shape.(type) {
		case Sphere:
			sb.Radius *= b.Scale
			sphereSphere(sa, poseA, sb, poseB, normalAdder(&out), margin)
		case Capsule:
			sb.Radius *= b.Scale
			sb.HalfLength *= b.Scale
			sphereCapsule(sa, poseA, sb, poseB, normalAdder(&out), margin)
		case Surface:
			if sf, ok := resolveSurface(sb, poseB, b.Scale, lookup); ok {
				sphereSurface(sa, poseA, sf, normalAdder(&out), margin)
			}
		}
	case Capsule:
		sa.Radius *= a.Scale
		sa.HalfLength *= a.Scale
		switch sb := b.Shape.(type) {
		case Sphere:
			sb.Radius *= b.Scale
			sphereCapsule(sb, poseB, sa, poseA, flippedAdder(&out), margin)
		case Capsule:
			sb.Radius *= b.Scale
			sb.HalfLength *= b.Scale
			capsuleCapsule(sa, poseA, sb, poseB, normalAdder(&out), margin)
		case Surface:
			if sf, ok := resolveSurface(sb, poseB, b.Scale, lookup); ok {
				capsuleSurface(sa, poseA, sf, normalAdder(&out), margin)
			}
		}
	case Surface:
		if _, ok := b.Shape.(Surface); ok {
			Logger().Warn("unsupported collision pair", "a", a.Shape.Kind(), "b", b.Shape.Kind())
			return out
		}
		sf, ok := resolveSurface(sa, poseA, a.Scale, lookup)
		if !ok {
			return out
		}
		switch sb := b.Shape.(type) {
		case Sphere:
			sb.Radius *= b.Scale
			sphereSurface(sb, poseB, sf, flippedAdder(&out), margin)
		case Capsule:
			sb.Radius *= b.Scale
			sb.HalfLength *= b.Scale
			capsuleSurface(sb, poseB, sf, flippedAdder(&out), margin)
		}
	}

	return out
}

// surfaceFrame bundles a resolved field with its placement and scale so
// contact and query routines can move between world space and the
// field's unscaled local frame.
type surfaceFrame struct {
	f     field.Field
	pose  Pose
	scale float64
}

// local maps a world point into the field's unscaled local frame.
func (sf surfaceFrame) local(world mgl64.Vec3) mgl64.Vec3 {
	return sf.pose.Local(world).Mul(1 / sf.scale)
}

// worldNormal orients a local outward gradient into a world-space
// contact normal pointing toward the surface.
func (sf surfaceFrame) worldNormal(gradient mgl64.Vec3) mgl64.Vec3 {
	return sf.pose.Rotation.Rotate(gradient.Mul(-1))
}

// resolveSurface looks up a surface shape's field. A nil lookup or a
// missing reference resolves to nothing.
func resolveSurface(s Surface, pose Pose, scale float64, lookup field.Lookup) (surfaceFrame, bool) {
	if lookup == nil {
		return surfaceFrame{}, false
	}
	f, ok := lookup.Get(s.Ref)
	if !ok {
		return surfaceFrame{}, false
	}
	return surfaceFrame{f: f, pose: pose, scale: scale}, true
}

func sphereSphere(a Sphere, poseA Pose, b Sphere, poseB Pose, add adder, margin float64) {
	offset := poseB.Translation.Sub(poseA.Translation)
	centerDist := offset.Len()
	dist := centerDist - a.Radius - b.Radius
	if dist > margin {
		return
	}

	// Coincident centers have no defined direction; fall back to +Y.
	normal := mgl64.Vec3{0, 1, 0}
	if centerDist > 0 {
		normal = offset.Mul(1 / centerDist)
	}

	anchorA := normal.Mul(a.Radius + dist*0.5)
	point := poseA.Translation.Add(anchorA)
	anchorB := point.Sub(poseB.Translation)

	add.push(point, anchorA, anchorB, normal, -dist)
}

// sphereCapsule reduces to sphereSphere against a sphere of the
// capsule's radius centered at the clamped projection of the sphere
// center onto the capsule axis.
func sphereCapsule(s Sphere, poseS Pose, c Capsule, poseC Pose, add adder, margin float64) {
	up := poseC.Up()
	t := mgl64.Clamp(poseS.Translation.Sub(poseC.Translation).Dot(up), -c.HalfLength, c.HalfLength)

	capSphere := Sphere{Radius: c.Radius}
	capPose := Pose{Translation: poseC.Translation.Add(up.Mul(t)), Rotation: poseC.Rotation}
	sphereSphere(s, poseS, capSphere, capPose, add, margin)
}

func capsuleCapsule(a Capsule, poseA Pose, b Capsule, poseB Pose, add adder, margin float64) {
	upA := poseA.Up()
	upB := poseB.Up()
	bottomA := poseA.Translation.Sub(upA.Mul(a.HalfLength))
	bottomB := poseB.Translation.Sub(upB.Mul(b.HalfLength))
	toEndA := upA.Mul(2 * a.HalfLength)
	toEndB := upB.Mul(2 * b.HalfLength)

	s, t := closestOnSegments(bottomA, toEndA, bottomB, toEndB)

	pA := bottomA.Add(toEndA.Mul(s))
	pB := bottomB.Add(toEndB.Mul(t))
	offset := pB.Sub(pA)
	centerDist := offset.Len()
	dist := centerDist - a.Radius - b.Radius
	if dist > margin {
		return
	}

	normal := mgl64.Vec3{0, 1, 0}
	if centerDist > 0 {
		normal = offset.Mul(1 / centerDist)
	}

	// Anchor = closest axis point relative to the capsule center, plus
	// the radial term to the midpoint of the gap.
	anchorA := pA.Sub(poseA.Translation).Add(normal.Mul(a.Radius + dist*0.5))
	point := poseA.Translation.Add(anchorA)
	anchorB := point.Sub(poseB.Translation)

	add.push(point, anchorA, anchorB, normal, -dist)
}

func sphereSurface(s Sphere, poseS Pose, sf surfaceFrame, add adder, margin float64) {
	localPos := sf.local(poseS.Translation)
	dist := sf.f.Distance(localPos) * sf.scale
	if dist >= s.Radius+margin {
		return
	}

	normal := sf.worldNormal(sf.f.Gradient(localPos))

	pen := s.Radius - dist
	anchorA := normal.Mul(s.Radius - pen*0.5)
	point := poseS.Translation.Add(anchorA)
	anchorB := point.Sub(sf.pose.Translation)

	add.push(point, anchorA, anchorB, normal, pen)
}

// capsuleSurface marches the capsule axis through the field twice, once
// from each cap, emitting up to one contact per cap. Marching runs
// entirely in the field's unscaled local frame; lengths and sampled
// distances convert by the scale factor at the boundaries.
func capsuleSurface(c Capsule, poseC Pose, sf surfaceFrame, add adder, margin float64) {
	localRadius := c.Radius / sf.scale
	localHalf := c.HalfLength / sf.scale
	localMargin := margin / sf.scale

	localCenter := sf.local(poseC.Translation)
	if sf.f.Distance(localCenter) > localRadius+localHalf+localMargin {
		return
	}

	localUp := sf.pose.LocalDir(poseC.Up())
	worldUp := poseC.Up()

	total := 2 * localHalf

	start := localCenter.Sub(localUp.Mul(localHalf))
	res := marchEdge(sf.f, start, localUp, localRadius, total)

	// A hit leaves the remainder of the axis to the second march; a
	// closest result already covered the whole axis.
	remaining := 0.0
	if res.hit {
		remaining = total - res.travel
	}

	if res.distance < localRadius+localMargin {
		localMin := start.Add(localUp.Mul(res.travel))
		normal := sf.worldNormal(sf.f.Gradient(localMin))

		at := res.travel * sf.scale
		pen := c.Radius - res.distance*sf.scale
		anchorA := worldUp.Mul(at - c.HalfLength).Add(normal.Mul(c.Radius - pen*0.5))
		point := poseC.Translation.Add(anchorA)
		anchorB := point.Sub(sf.pose.Translation)

		add.push(point, anchorA, anchorB, normal, pen)
	}

	start = localCenter.Add(localUp.Mul(localHalf))
	res = marchEdge(sf.f, start, localUp.Mul(-1), localRadius, remaining)

	if res.distance < localRadius+localMargin {
		localMin := start.Sub(localUp.Mul(res.travel))
		normal := sf.worldNormal(sf.f.Gradient(localMin))

		at := res.travel * sf.scale
		pen := c.Radius - res.distance*sf.scale
		anchorA := worldUp.Mul(c.HalfLength - at).Add(normal.Mul(c.Radius - pen*0.5))
		point := poseC.Translation.Add(anchorA)
		anchorB := point.Sub(sf.pose.Translation)

		add.push(point, anchorA, anchorB, normal, pen)
	}
}
