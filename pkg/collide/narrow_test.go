package collide

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/chitin/pkg/field"
)

const geomTol = 1e-9

func assertVec(t *testing.T, want, got mgl64.Vec3, tol float64) {
	t.Helper()
	assert.InDelta(t, want.X(), got.X(), tol)
	assert.InDelta(t, want.Y(), got.Y(), tol)
	assert.InDelta(t, want.Z(), got.Z(), tol)
}

func groundStore() *field.Store {
	s := field.NewStore()
	s.Put("ground", field.PlaneField{Normal: mgl64.Vec3{0, 1, 0}})
	return s
}

func TestSphereSphereContact(t *testing.T) {
	a := NewSphere(1)
	b := NewSphere(1)

	m := Collide(a, At(mgl64.Vec3{0, 0, 0}), b, At(mgl64.Vec3{1.5, 0, 0}), nil, 0)

	require.Len(t, m, 1)
	c := m[0]
	assert.InDelta(t, 0.5, c.Penetration, geomTol)
	assertVec(t, mgl64.Vec3{1, 0, 0}, c.Normal, geomTol)
	assertVec(t, mgl64.Vec3{0.75, 0, 0}, c.Point, geomTol)
	assertVec(t, mgl64.Vec3{0.75, 0, 0}, c.AnchorA, geomTol)
	assertVec(t, mgl64.Vec3{-0.75, 0, 0}, c.AnchorB, geomTol)
}

func TestSphereSphereSeparated(t *testing.T) {
	a := NewSphere(1)
	b := NewSphere(1)

	m := Collide(a, At(mgl64.Vec3{0, 0, 0}), b, At(mgl64.Vec3{5, 0, 0}), nil, 0)

	assert.Empty(t, m)
}

func TestCoincidentSpheresFallback(t *testing.T) {
	a := NewSphere(1)
	b := NewSphere(1)

	m := Collide(a, At(mgl64.Vec3{}), b, At(mgl64.Vec3{}), nil, 0)

	require.Len(t, m, 1)
	c := m[0]
	assertVec(t, mgl64.Vec3{0, 1, 0}, c.Normal, 0)
	assert.InDelta(t, 2, c.Penetration, geomTol)
	assertVec(t, mgl64.Vec3{}, c.Point, geomTol)
}

func TestPairSymmetry(t *testing.T) {
	sphere := NewSphere(1)
	capsule := NewCapsule(0.5, 1)
	poseS := At(mgl64.Vec3{0, 0, 0})
	poseC := At(mgl64.Vec3{1.2, 0.3, 0})

	direct := Collide(sphere, poseS, capsule, poseC, nil, 0.1)
	swapped := Collide(capsule, poseC, sphere, poseS, nil, 0.1)

	require.Len(t, direct, 1)
	require.Len(t, swapped, 1)
	assert.InDelta(t, direct[0].Penetration, swapped[0].Penetration, geomTol)
	assertVec(t, direct[0].Normal.Mul(-1), swapped[0].Normal, geomTol)
	assertVec(t, direct[0].Point, swapped[0].Point, geomTol)
	assertVec(t, direct[0].AnchorA, swapped[0].AnchorB, geomTol)
	assertVec(t, direct[0].AnchorB, swapped[0].AnchorA, geomTol)
}

func TestMarginAdmitsNearMiss(t *testing.T) {
	a := NewSphere(1)
	b := NewSphere(1)
	poseA := At(mgl64.Vec3{0, 0, 0})
	poseB := At(mgl64.Vec3{2.5, 0, 0})

	// Separation is 0.5: below that margin no contact, above it a
	// speculative contact with negative penetration.
	assert.Empty(t, Collide(a, poseA, b, poseB, nil, 0.3))

	near := Collide(a, poseA, b, poseB, nil, 0.6)
	require.Len(t, near, 1)
	assert.InDelta(t, -0.5, near[0].Penetration, geomTol)
	assertVec(t, mgl64.Vec3{1, 0, 0}, near[0].Normal, geomTol)

	wide := Collide(a, poseA, b, poseB, nil, 1.0)
	require.Len(t, wide, 1)
	assertVec(t, near[0].Normal, wide[0].Normal, geomTol)
	assert.InDelta(t, near[0].Penetration, wide[0].Penetration, geomTol)
}

func TestParallelCapsules(t *testing.T) {
	a := NewCapsule(0.3, 1)
	b := NewCapsule(0.3, 1)

	m := Collide(a, At(mgl64.Vec3{0, 0, 0}), b, At(mgl64.Vec3{0.4, 0, 0}), nil, 0)

	require.Len(t, m, 1)
	c := m[0]
	assert.InDelta(t, 0.2, c.Penetration, geomTol)
	assertVec(t, mgl64.Vec3{1, 0, 0}, c.Normal, geomTol)
}

func TestCrossedCapsules(t *testing.T) {
	a := NewCapsule(0.25, 1)
	b := NewCapsule(0.25, 1)
	poseA := At(mgl64.Vec3{0, 0, 0})
	// Axis along X, crossing above a at an offset in z.
	poseB := NewPose(mgl64.Vec3{0, 0.4, 0.3}, mgl64.QuatRotate(-math.Pi/2, mgl64.Vec3{0, 0, 1}))

	m := Collide(a, poseA, b, poseB, nil, 0)

	require.Len(t, m, 1)
	c := m[0]
	assert.InDelta(t, 0.2, c.Penetration, geomTol)
	assertVec(t, mgl64.Vec3{0, 0, 1}, c.Normal, geomTol)
	assertVec(t, mgl64.Vec3{0, 0.4, 0.15}, c.Point, geomTol)
}

func TestScaledPairConsistency(t *testing.T) {
	a := NewSphere(1)
	b := NewSphere(1)
	a.SetScaleVector(mgl64.Vec3{2, 2, 2})
	b.SetScaleVector(mgl64.Vec3{2, 2, 2})

	m := Collide(a, At(mgl64.Vec3{0, 0, 0}), b, At(mgl64.Vec3{3, 0, 0}), nil, 0)

	require.Len(t, m, 1)
	assert.InDelta(t, 1.0, m[0].Penetration, geomTol)
	assertVec(t, mgl64.Vec3{1, 0, 0}, m[0].Normal, geomTol)
}

func TestSphereOnGroundField(t *testing.T) {
	store := groundStore()
	sphere := NewSphere(1)
	ground := NewSurface("ground")

	m := Collide(sphere, At(mgl64.Vec3{0, 0.5, 0}), ground, At(mgl64.Vec3{}), store, 0)

	require.Len(t, m, 1)
	c := m[0]
	assert.InDelta(t, 0.5, c.Penetration, geomTol)
	assertVec(t, mgl64.Vec3{0, -1, 0}, c.Normal, geomTol)
	assertVec(t, mgl64.Vec3{0, -0.25, 0}, c.Point, geomTol)
}

func TestSphereNearScaledSurface(t *testing.T) {
	store := field.NewStore()
	store.Put("ball", field.SphereField{Radius: 1})
	surface := NewSurface("ball")
	surface.Scale = 2
	sphere := NewSphere(0.5)

	m := Collide(sphere, At(mgl64.Vec3{3, 0, 0}), surface, At(mgl64.Vec3{}), store, 0.6)

	require.Len(t, m, 1)
	c := m[0]
	assert.InDelta(t, -0.5, c.Penetration, geomTol)
	assertVec(t, mgl64.Vec3{-1, 0, 0}, c.Normal, geomTol)
	assertVec(t, mgl64.Vec3{2.25, 0, 0}, c.Point, geomTol)
}

func TestCapsuleOnGroundField(t *testing.T) {
	store := groundStore()
	capsule := NewCapsule(0.5, 1)
	ground := NewSurface("ground")

	// Upright, bottom cap 0.25 into reach: one contact at the bottom
	// cap; the top cap grazes at exactly the radius and stays out.
	m := Collide(capsule, At(mgl64.Vec3{0, 1.25, 0}), ground, At(mgl64.Vec3{}), store, 0)

	require.Len(t, m, 1)
	c := m[0]
	assert.InDelta(t, 0.25, c.Penetration, geomTol)
	assertVec(t, mgl64.Vec3{0, -1, 0}, c.Normal, geomTol)
	assertVec(t, mgl64.Vec3{0, -0.125, 0}, c.Point, geomTol)
}

func TestCapsuleLyingOnGround(t *testing.T) {
	store := groundStore()
	capsule := NewCapsule(0.5, 1)
	ground := NewSurface("ground")
	pose := NewPose(mgl64.Vec3{0, 0.4, 0}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1}))

	m := Collide(capsule, pose, ground, At(mgl64.Vec3{}), store, 0)

	require.Len(t, m, 2)
	for _, c := range m {
		assert.InDelta(t, 0.1, c.Penetration, geomTol)
		assertVec(t, mgl64.Vec3{0, -1, 0}, c.Normal, geomTol)
		assert.InDelta(t, -0.05, c.Point.Y(), geomTol)
	}
	// One contact per cap end.
	assert.InDelta(t, 1, m[0].Point.X(), geomTol)
	assert.InDelta(t, -1, m[1].Point.X(), geomTol)
}

func TestSurfaceFirstOrdering(t *testing.T) {
	store := groundStore()
	ground := NewSurface("ground")
	sphere := NewSphere(1)

	m := Collide(ground, At(mgl64.Vec3{}), sphere, At(mgl64.Vec3{0, 0.5, 0}), store, 0)

	require.Len(t, m, 1)
	c := m[0]
	assert.InDelta(t, 0.5, c.Penetration, geomTol)
	assertVec(t, mgl64.Vec3{0, 1, 0}, c.Normal, geomTol)
	assertVec(t, mgl64.Vec3{0, -0.25, 0}, c.AnchorA, geomTol)
	assertVec(t, mgl64.Vec3{0, -0.75, 0}, c.AnchorB, geomTol)
}

func TestSurfaceSurfaceUnsupported(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer SetLogger(nil)

	store := groundStore()
	a := NewSurface("ground")
	b := NewSurface("ground")

	m := Collide(a, At(mgl64.Vec3{}), b, At(mgl64.Vec3{0, 1, 0}), store, 0)

	assert.Empty(t, m)
	assert.Contains(t, buf.String(), "unsupported collision pair")
}

func TestMissingFieldReference(t *testing.T) {
	sphere := NewSphere(1)
	surface := NewSurface("nowhere")

	m := Collide(sphere, At(mgl64.Vec3{}), surface, At(mgl64.Vec3{}), field.NewStore(), 0)
	assert.Empty(t, m)

	m = Collide(sphere, At(mgl64.Vec3{}), surface, At(mgl64.Vec3{}), nil, 0)
	assert.Empty(t, m)
}
