package collide

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/chitin/pkg/field"
)

func TestRayCastSphere(t *testing.T) {
	c := NewSphere(1)
	pose := At(mgl64.Vec3{5, 0, 0})
	ray := Ray{Origin: mgl64.Vec3{}, Dir: mgl64.Vec3{1, 0, 0}, Max: 100}

	dist, ok := RayCast(c, pose, ray, true, nil)
	require.True(t, ok)
	assert.InDelta(t, 4, dist, geomTol)
	assertVec(t, mgl64.Vec3{4, 0, 0}, ray.Along(dist), geomTol)

	_, ok = RayCast(c, pose, Ray{Dir: mgl64.Vec3{-1, 0, 0}, Max: 100}, true, nil)
	assert.False(t, ok)

	_, ok = RayCast(c, pose, Ray{Dir: mgl64.Vec3{1, 0, 0}, Max: 3}, true, nil)
	assert.False(t, ok)
}

func TestRayCastSphereInside(t *testing.T) {
	c := NewSphere(1)
	pose := At(mgl64.Vec3{})
	ray := Ray{Origin: mgl64.Vec3{}, Dir: mgl64.Vec3{1, 0, 0}, Max: 100}

	dist, ok := RayCast(c, pose, ray, true, nil)
	require.True(t, ok)
	assert.Zero(t, dist)

	dist, ok = RayCast(c, pose, ray, false, nil)
	require.True(t, ok)
	assert.InDelta(t, 1, dist, geomTol)
}

func TestRayCastSphereClosestApproach(t *testing.T) {
	// The ray passes the center at perpendicular distance 2, outside the
	// radius. An outside origin pointing toward the sphere still reports
	// the closest-approach crossing.
	c := NewSphere(1)
	pose := At(mgl64.Vec3{5, 2, 0})
	ray := Ray{Origin: mgl64.Vec3{}, Dir: mgl64.Vec3{1, 0, 0}, Max: 100}

	dist, ok := RayCast(c, pose, ray, true, nil)

	require.True(t, ok)
	assert.InDelta(t, 5+math.Sqrt(3), dist, geomTol)
}

func TestRayCastCapsule(t *testing.T) {
	c := NewCapsule(0.5, 1)
	pose := At(mgl64.Vec3{})

	t.Run("band", func(t *testing.T) {
		ray := Ray{Origin: mgl64.Vec3{5, 0, 0}, Dir: mgl64.Vec3{-1, 0, 0}, Max: 100}
		dist, ok := RayCast(c, pose, ray, true, nil)
		require.True(t, ok)
		assert.InDelta(t, 4.5, dist, geomTol)
	})

	t.Run("cap", func(t *testing.T) {
		ray := Ray{Origin: mgl64.Vec3{0, 5, 0}, Dir: mgl64.Vec3{0, -1, 0}, Max: 100}
		dist, ok := RayCast(c, pose, ray, true, nil)
		require.True(t, ok)
		assert.InDelta(t, 3.5, dist, geomTol)
	})

	t.Run("inside solid", func(t *testing.T) {
		ray := Ray{Origin: mgl64.Vec3{0.1, 0, 0}, Dir: mgl64.Vec3{1, 0, 0}, Max: 100}
		dist, ok := RayCast(c, pose, ray, true, nil)
		require.True(t, ok)
		assert.Zero(t, dist)
	})

	t.Run("inside hollow", func(t *testing.T) {
		ray := Ray{Origin: mgl64.Vec3{0.1, 0, 0}, Dir: mgl64.Vec3{1, 0, 0}, Max: 100}
		dist, ok := RayCast(c, pose, ray, false, nil)
		require.True(t, ok)
		assert.InDelta(t, 0.4, dist, geomTol)
	})

	t.Run("rotated", func(t *testing.T) {
		lying := NewPose(mgl64.Vec3{5, 0, 0}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1}))
		ray := Ray{Origin: mgl64.Vec3{}, Dir: mgl64.Vec3{1, 0, 0}, Max: 100}
		dist, ok := RayCast(c, lying, ray, true, nil)
		require.True(t, ok)
		assert.InDelta(t, 3.5, dist, geomTol)
	})

	t.Run("beyond max", func(t *testing.T) {
		ray := Ray{Origin: mgl64.Vec3{5, 0, 0}, Dir: mgl64.Vec3{-1, 0, 0}, Max: 4}
		_, ok := RayCast(c, pose, ray, true, nil)
		assert.False(t, ok)
	})
}

func TestRayCastSurface(t *testing.T) {
	store := field.NewStore()
	store.Put("ball", field.SphereField{Radius: 1})
	c := NewSurface("ball")
	c.Scale = 2
	pose := At(mgl64.Vec3{5, 0, 0})

	ray := Ray{Origin: mgl64.Vec3{}, Dir: mgl64.Vec3{1, 0, 0}, Max: 100}
	dist, ok := RayCast(c, pose, ray, true, store)
	require.True(t, ok)
	assert.InDelta(t, 3, dist, 0.01)

	_, ok = RayCast(c, pose, Ray{Dir: mgl64.Vec3{1, 0, 0}, Max: 1}, true, store)
	assert.False(t, ok)

	_, ok = RayCast(c, pose, ray, true, field.NewStore())
	assert.False(t, ok)
}

func TestSurfaceNormal(t *testing.T) {
	up := mgl64.Vec3{0, 1, 0}

	sphere := NewSphere(1)
	assertVec(t, mgl64.Vec3{0, 0, 1}, SurfaceNormal(sphere, mgl64.Vec3{0, 0, 3}, nil), geomTol)
	assertVec(t, up, SurfaceNormal(sphere, mgl64.Vec3{}, nil), geomTol)

	capsule := NewCapsule(0.5, 1)
	got := SurfaceNormal(capsule, mgl64.Vec3{0.4, 2, 0}, nil)
	assertVec(t, mgl64.Vec3{0.4, 1, 0}.Normalize(), got, geomTol)
	assertVec(t, up, SurfaceNormal(capsule, mgl64.Vec3{0, 0.5, 0}, nil), geomTol)

	store := groundStore()
	ground := NewSurface("ground")
	assertVec(t, up, SurfaceNormal(ground, mgl64.Vec3{3, 7, 0}, store), geomTol)
	assertVec(t, up, SurfaceNormal(NewSurface("nowhere"), mgl64.Vec3{1, 0, 0}, store), geomTol)
	assertVec(t, up, SurfaceNormal(ground, mgl64.Vec3{1, 0, 0}, nil), geomTol)
}

func TestShapeCastSphere(t *testing.T) {
	c := NewSphere(1)
	pose := At(mgl64.Vec3{10, 0, 0})
	ray := Ray{Origin: mgl64.Vec3{}, Dir: mgl64.Vec3{1, 0, 0}, Max: 100}

	hit, ok := ShapeCast(c, pose, 0.5, ray, nil)

	require.True(t, ok)
	assert.InDelta(t, 8.5, hit.Distance, geomTol)
	assertVec(t, mgl64.Vec3{-1, 0, 0}, hit.Normal, geomTol)
	assertVec(t, mgl64.Vec3{-1, 0, 0}, hit.Point, geomTol)
}

func TestShapeCastCapsule(t *testing.T) {
	c := NewCapsule(0.5, 1)
	pose := At(mgl64.Vec3{})
	ray := Ray{Origin: mgl64.Vec3{5, 0.3, 0}, Dir: mgl64.Vec3{-1, 0, 0}, Max: 100}

	hit, ok := ShapeCast(c, pose, 0.25, ray, nil)

	require.True(t, ok)
	assert.InDelta(t, 4.25, hit.Distance, geomTol)
	assertVec(t, mgl64.Vec3{1, 0, 0}, hit.Normal, geomTol)
	assertVec(t, mgl64.Vec3{0.5, 0, 0}, hit.Point, geomTol)
}

func TestShapeCastSurface(t *testing.T) {
	store := groundStore()
	c := NewSurface("ground")
	pose := At(mgl64.Vec3{})

	ray := Ray{Origin: mgl64.Vec3{0, 3, 0}, Dir: mgl64.Vec3{0, -1, 0}, Max: 100}
	hit, ok := ShapeCast(c, pose, 0.5, ray, store)

	require.True(t, ok)
	assert.InDelta(t, 2.5, hit.Distance, geomTol)
	assertVec(t, mgl64.Vec3{}, hit.Point, geomTol)
	assertVec(t, mgl64.Vec3{0, 1, 0}, hit.Normal, geomTol)

	away := Ray{Origin: mgl64.Vec3{0, 3, 0}, Dir: mgl64.Vec3{0, 1, 0}, Max: 100}
	_, ok = ShapeCast(c, pose, 0.5, away, store)
	assert.False(t, ok)
}

func TestIntersects(t *testing.T) {
	a := NewSphere(1)
	b := NewSphere(1)

	assert.True(t, Intersects(a, At(mgl64.Vec3{}), b, At(mgl64.Vec3{1.5, 0, 0}), nil))
	// Touching counts as intersecting.
	assert.True(t, Intersects(a, At(mgl64.Vec3{}), b, At(mgl64.Vec3{2, 0, 0}), nil))
	assert.False(t, Intersects(a, At(mgl64.Vec3{}), b, At(mgl64.Vec3{2.5, 0, 0}), nil))

	store := groundStore()
	s1 := NewSurface("ground")
	s2 := NewSurface("ground")
	assert.False(t, Intersects(s1, At(mgl64.Vec3{}), s2, At(mgl64.Vec3{}), store))

	missing := NewSurface("nowhere")
	assert.False(t, Intersects(a, At(mgl64.Vec3{}), missing, At(mgl64.Vec3{}), store))
}

func TestUnimplementedQueries(t *testing.T) {
	c := NewSphere(1)

	assert.PanicsWithValue(t, "collide: ClosestPoint not implemented", func() {
		ClosestPoint(c, At(mgl64.Vec3{}), mgl64.Vec3{}, true, nil)
	})
	assert.PanicsWithValue(t, "collide: ContainsPoint not implemented", func() {
		ContainsPoint(c, At(mgl64.Vec3{}), mgl64.Vec3{}, nil)
	})
}
