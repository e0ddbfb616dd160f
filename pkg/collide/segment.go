package collide

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats/scalar"
)

// machEps is the double-precision machine epsilon.
const machEps = 0x1p-52

// segmentUlps is the ULP tolerance for the collinearity test on the
// segment determinant.
const segmentUlps = 4

// closestOnSegments returns the normalized parameters s, t in [0,1] of
// the closest points on two segments, each given as (origin, vector to
// the other end). Based on the segment-segment routine in Ericson's
// Real-Time Collision Detection. Zero-length segments collapse to point
// projections; a determinant a*e - b*b within segmentUlps of zero means
// the segments are treated as collinear, with s pinned to 0.
func closestOnSegments(origin1, toEnd1, origin2, toEnd2 mgl64.Vec3) (s, t float64) {
	r := origin1.Sub(origin2)

	a := toEnd1.LenSqr()
	e := toEnd2.LenSqr()
	c := toEnd1.Dot(r)
	f := toEnd2.Dot(r)

	switch {
	case a <= machEps && e <= machEps:
		return 0, 0
	case a <= machEps:
		return 0, mgl64.Clamp(f/e, 0, 1)
	case e <= machEps:
		return mgl64.Clamp(-c/a, 0, 1), 0
	}

	b := toEnd1.Dot(toEnd2)
	ae := a * e
	bb := b * b
	denom := ae - bb

	if denom > machEps && !scalar.EqualWithinULP(ae, bb, segmentUlps) {
		s = mgl64.Clamp((b*f-c*e)/denom, 0, 1)
	}

	t = (b*s + f) / e

	if t < 0 {
		t = 0
		s = mgl64.Clamp(-c/a, 0, 1)
	} else if t > 1 {
		t = 1
		s = mgl64.Clamp((b-c)/a, 0, 1)
	}

	return s, t
}
