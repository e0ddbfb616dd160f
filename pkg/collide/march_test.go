package collide

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/chitin/pkg/field"
	"github.com/chazu/chitin/pkg/field/sdfx"
)

// flatField reports the same distance everywhere, forcing the marcher
// onto its minimum step.
type flatField struct {
	d float64
}

func (f flatField) Distance(mgl64.Vec3) float64 { return f.d }
func (f flatField) Gradient(mgl64.Vec3) mgl64.Vec3 { return mgl64.Vec3{0, 1, 0} }
func (f flatField) Bounds() (min, max mgl64.Vec3) { return mgl64.Vec3{}, mgl64.Vec3{} }

// countingField counts Distance samples.
type countingField struct {
	field.Field
	samples int
}

func (c *countingField) Distance(p mgl64.Vec3) float64 {
	c.samples++
	return c.Field.Distance(p)
}

func TestMarchHitsSphere(t *testing.T) {
	f := field.SphereField{Radius: 1}

	res := marchEdge(f, mgl64.Vec3{-5, 0, 0}, mgl64.Vec3{1, 0, 0}, 0.001, 10)

	require.True(t, res.hit)
	assert.InDelta(t, 3.999, res.travel, 1e-9)
	assert.LessOrEqual(t, res.distance, 0.001)
}

func TestMarchClosestApproach(t *testing.T) {
	f := field.SphereField{Radius: 2}

	// The line y=3 passes 1 unit above the sphere.
	res := marchEdge(f, mgl64.Vec3{-5, 3, 0}, mgl64.Vec3{1, 0, 0}, 0.001, 10)

	require.False(t, res.hit)
	assert.InDelta(t, 1.0, res.distance, 0.01)
	assert.InDelta(t, 5.05, res.travel, 0.1)
}

func TestMarchIterationBound(t *testing.T) {
	cf := &countingField{Field: flatField{d: 0.0015}}

	res := marchEdge(cf, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, 0.001, 1)

	require.False(t, res.hit)
	assert.InDelta(t, 0.0015, res.distance, 1e-12)
	// Constant distance forces MinimumStep advances, so the sample count
	// stays within one of length/MinimumStep.
	bound := int(1/MinimumStep) + 1
	assert.LessOrEqual(t, cf.samples, bound)
	assert.GreaterOrEqual(t, cf.samples, bound-2)
}

func TestMarchZeroLength(t *testing.T) {
	f := field.SphereField{Radius: 1}

	res := marchEdge(f, mgl64.Vec3{5, 0, 0}, mgl64.Vec3{1, 0, 0}, 0.001, 0)

	require.False(t, res.hit)
	assert.Equal(t, 0.0, res.travel)
	assert.True(t, math.IsInf(res.distance, 1))
}

// A channel carved out of a box must stay open to the marcher: a line
// through the removed volume ends in a closest-approach result instead
// of hitting where material used to be.
func TestMarchCarvedChannelStaysOpen(t *testing.T) {
	box, err := sdfx.Box(2, 2, 2)
	require.NoError(t, err)
	channel, err := sdfx.Cylinder(3, 0.5)
	require.NoError(t, err)
	carved := sdfx.Difference(box, channel)

	start := mgl64.Vec3{0, 0, -5}
	dir := mgl64.Vec3{0, 0, 1}

	solid := marchEdge(box, start, dir, 0.001, 10)
	require.True(t, solid.hit)
	assert.InDelta(t, 3.999, solid.travel, 1e-9)

	open := marchEdge(carved, start, dir, 0.001, 10)
	require.False(t, open.hit)
	assert.Greater(t, open.distance, 0.2)
	assert.Less(t, open.distance, 0.51)
}
