package collide

import "github.com/chazu/chitin/pkg/field"

// ShapeKind enumerates the shapes a collider can carry.
type ShapeKind int

const (
	KindSphere  ShapeKind = iota // ball centered on the collider pose
	KindCapsule                  // segment along local Y swept by a radius
	KindSurface                  // implicit surface sampled through a field ref
)

func (k ShapeKind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindCapsule:
		return "capsule"
	case KindSurface:
		return "surface"
	default:
		return "unknown"
	}
}

// Shape is the interface for collider geometry payloads.
type Shape interface {
	Kind() ShapeKind
	shape() // marker method restricting implementations to this package
}

// Sphere is a ball of the given radius centered on the collider pose.
type Sphere struct {
	Radius float64
}

func (Sphere) Kind() ShapeKind { return KindSphere }
func (Sphere) shape()          {}

// Capsule is a segment of half the given length along the pose's local Y
// axis, swept by the given radius. Its total height is therefore
// 2*HalfLength + 2*Radius.
type Capsule struct {
	Radius     float64
	HalfLength float64
}

func (Capsule) Kind() ShapeKind { return KindCapsule }
func (Capsule) shape()          {}

// Surface selects a signed distance field by reference. The field itself
// is resolved through a field.Lookup at query time so that colliders stay
// plain values and fields can be rebuilt independently.
type Surface struct {
	Ref field.Ref
}

func (Surface) Kind() ShapeKind { return KindSurface }
func (Surface) shape()          {}

var (
	_ Shape = Sphere{}
	_ Shape = Capsule{}
	_ Shape = Surface{}
)
