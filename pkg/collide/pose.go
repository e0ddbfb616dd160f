package collide

import "github.com/go-gl/mathgl/mgl64"

// Pose places a collider in world space. Rotation must be a unit
// quaternion; scale lives on the Collider, not here.
type Pose struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
}

// NewPose returns a pose with the given translation and rotation.
func NewPose(translation mgl64.Vec3, rotation mgl64.Quat) Pose {
	return Pose{Translation: translation, Rotation: rotation}
}

// At returns an unrotated pose at the given translation.
func At(translation mgl64.Vec3) Pose {
	return Pose{Translation: translation, Rotation: mgl64.QuatIdent()}
}

// World maps a point from the pose's local frame to world space.
func (p Pose) World(local mgl64.Vec3) mgl64.Vec3 {
	return p.Translation.Add(p.Rotation.Rotate(local))
}

// Local maps a world-space point into the pose's local frame.
func (p Pose) Local(world mgl64.Vec3) mgl64.Vec3 {
	return p.Rotation.Conjugate().Rotate(world.Sub(p.Translation))
}

// WorldDir rotates a local direction into world space.
func (p Pose) WorldDir(local mgl64.Vec3) mgl64.Vec3 {
	return p.Rotation.Rotate(local)
}

// LocalDir rotates a world direction into the pose's local frame.
func (p Pose) LocalDir(world mgl64.Vec3) mgl64.Vec3 {
	return p.Rotation.Conjugate().Rotate(world)
}

// Up returns the pose's local Y axis in world space. Capsules extend
// along this axis.
func (p Pose) Up() mgl64.Vec3 {
	return p.Rotation.Rotate(mgl64.Vec3{0, 1, 0})
}
