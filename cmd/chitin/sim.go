package main

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/chitin/pkg/collide"
	"github.com/chazu/chitin/pkg/field"
	"github.com/chazu/chitin/pkg/scene"
)

// body pairs a placed collider with simulation state. Surface colliders
// are static terrain; everything else falls under gravity.
type body struct {
	placed  scene.Placed
	vel     mgl64.Vec3
	dynamic bool
}

// simulation steps colliders under gravity with positional contact
// correction. No impulses or rotation updates; penetrating contacts are
// resolved by translating bodies apart along the contact normal.
type simulation struct {
	bodies  []body
	lookup  field.Lookup
	gravity float64
	margin  float64
}

func newSimulation(sc *scene.Scene, gravity, margin float64) *simulation {
	sim := &simulation{lookup: sc.Fields, gravity: gravity, margin: margin}
	for _, p := range sc.Colliders {
		sim.bodies = append(sim.bodies, body{
			placed:  p,
			dynamic: p.Collider.Shape.Kind() != collide.KindSurface,
		})
	}
	return sim
}

// step advances one timestep and returns the number of penetrating
// contacts resolved.
func (s *simulation) step(dt float64) int {
	for i := range s.bodies {
		b := &s.bodies[i]
		if !b.dynamic {
			continue
		}
		b.vel = b.vel.Add(mgl64.Vec3{0, -s.gravity * dt, 0})
		b.placed.Pose.Translation = b.placed.Pose.Translation.Add(b.vel.Mul(dt))
	}

	resolved := 0
	for i := 0; i < len(s.bodies); i++ {
		for j := i + 1; j < len(s.bodies); j++ {
			a, b := &s.bodies[i], &s.bodies[j]
			if !a.dynamic && !b.dynamic {
				continue
			}
			m := collide.Collide(
				a.placed.Collider, a.placed.Pose,
				b.placed.Collider, b.placed.Pose,
				s.lookup, s.margin)
			for _, c := range m {
				if c.Penetration <= 0 {
					continue
				}
				s.separate(a, b, c)
				resolved++
			}
		}
	}
	return resolved
}

// separate pushes the pair apart along the contact normal and removes
// the approaching velocity component. The normal points from a toward b.
func (s *simulation) separate(a, b *body, c collide.Contact) {
	push := c.Normal.Mul(c.Penetration)
	switch {
	case a.dynamic && b.dynamic:
		a.placed.Pose.Translation = a.placed.Pose.Translation.Sub(push.Mul(0.5))
		b.placed.Pose.Translation = b.placed.Pose.Translation.Add(push.Mul(0.5))
	case a.dynamic:
		a.placed.Pose.Translation = a.placed.Pose.Translation.Sub(push)
	case b.dynamic:
		b.placed.Pose.Translation = b.placed.Pose.Translation.Add(push)
	}

	if a.dynamic {
		if vn := a.vel.Dot(c.Normal); vn > 0 {
			a.vel = a.vel.Sub(c.Normal.Mul(vn))
		}
	}
	if b.dynamic {
		if vn := b.vel.Dot(c.Normal); vn < 0 {
			b.vel = b.vel.Sub(c.Normal.Mul(vn))
		}
	}
}

// report logs the resting positions of dynamic bodies and probes the
// scene with a vertical ray from above.
func (s *simulation) report(logger *slog.Logger) {
	for _, b := range s.bodies {
		if !b.dynamic {
			continue
		}
		t := b.placed.Pose.Translation
		logger.Info("settled",
			"collider", b.placed.Name,
			"x", t.X(), "y", t.Y(), "z", t.Z())
	}

	probe := collide.Ray{Origin: mgl64.Vec3{0, 10, 0}, Dir: mgl64.Vec3{0, -1, 0}, Max: 100}
	for _, b := range s.bodies {
		dist, ok := collide.RayCast(b.placed.Collider, b.placed.Pose, probe, true, s.lookup)
		if ok {
			logger.Info("probe hit", "collider", b.placed.Name, "travel", dist)
		}
	}
}
