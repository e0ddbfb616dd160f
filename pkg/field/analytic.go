package field

import "github.com/go-gl/mathgl/mgl64"

// Compile-time interface checks.
var (
	_ Field = SphereField{}
	_ Field = PlaneField{}
)

// planeExtent caps the reported bounds of unbounded half-space fields.
const planeExtent = 1.0e6

// SphereField is the closed-form field of a solid sphere centered at the
// local origin.
type SphereField struct {
	Radius float64
}

// Distance returns |p| minus the radius.
func (f SphereField) Distance(p mgl64.Vec3) float64 {
	return p.Len() - f.Radius
}

// Gradient returns the outward radial direction, defaulting to +Y at the
// exact center where the direction is undefined.
func (f SphereField) Gradient(p mgl64.Vec3) mgl64.Vec3 {
	l := p.Len()
	if l == 0 {
		return mgl64.Vec3{0, 1, 0}
	}
	return p.Mul(1 / l)
}

// Bounds returns the cube enclosing the sphere.
func (f SphereField) Bounds() (min, max mgl64.Vec3) {
	r := f.Radius
	return mgl64.Vec3{-r, -r, -r}, mgl64.Vec3{r, r, r}
}

// PlaneField is the half-space on the negative side of a plane with the
// given outward unit normal, offset along the normal from the local
// origin. With Normal = +Y and Offset = 0 it is a ground plane.
type PlaneField struct {
	Normal mgl64.Vec3
	Offset float64
}

// Distance returns the signed distance above the plane.
func (f PlaneField) Distance(p mgl64.Vec3) float64 {
	return p.Dot(f.Normal) - f.Offset
}

// Gradient returns the plane normal everywhere.
func (f PlaneField) Gradient(p mgl64.Vec3) mgl64.Vec3 {
	return f.Normal
}

// Bounds returns a large fixed cube; half-spaces are unbounded, so the
// broad-phase sees an effectively always-overlapping box.
func (f PlaneField) Bounds() (min, max mgl64.Vec3) {
	return mgl64.Vec3{-planeExtent, -planeExtent, -planeExtent},
		mgl64.Vec3{planeExtent, planeExtent, planeExtent}
}
