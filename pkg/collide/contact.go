package collide

import "github.com/go-gl/mathgl/mgl64"

// Contact is a single contact point between two shapes.
type Contact struct {
	// Point is the contact location in world space.
	Point mgl64.Vec3
	// AnchorA and AnchorB are the contact point relative to each
	// shape's origin, in world orientation.
	AnchorA mgl64.Vec3
	AnchorB mgl64.Vec3
	// Normal is a unit vector pointing from shape A toward shape B.
	Normal mgl64.Vec3
	// Penetration is positive when the shapes overlap and negative when
	// they are separated within the speculative margin.
	Penetration float64
}

// Manifold holds the 0 to 2 contacts produced for one shape pair, in
// insertion order.
type Manifold []Contact

// adder accumulates contacts into a manifold. Contact routines are
// written for one argument ordering; the flipped variant swaps anchors
// and negates the normal so the same routine serves both orderings.
type adder struct {
	out     *Manifold
	flipped bool
}

func normalAdder(out *Manifold) adder  { return adder{out: out} }
func flippedAdder(out *Manifold) adder { return adder{out: out, flipped: true} }

func (a adder) push(point, anchorA, anchorB, normal mgl64.Vec3, penetration float64) {
	if a.flipped {
		anchorA, anchorB = anchorB, anchorA
		normal = normal.Mul(-1)
	}
	*a.out = append(*a.out, Contact{
		Point:       point,
		AnchorA:     anchorA,
		AnchorB:     anchorB,
		Normal:      normal,
		Penetration: penetration,
	})
}
