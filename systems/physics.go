// Package systems contains the per-tick passes that advance the simulation.
package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/store"
)

// epsilon is the distance below which two centers are treated as coincident.
const epsilon = 1e-9

// Manifold describes the contact between two overlapping bodies.
// Normal points from A to B and Penetration is never negative.
type Manifold struct {
	A, B        store.Entity
	Normal      r2.Vec
	Penetration float64
}

// CircleContact computes the contact normal and penetration of two circles.
// Coincident centers fall back to the normal (1, 0) with penetration ra.
func CircleContact(pa, pb r2.Vec, ra, rb float64) (normal r2.Vec, penetration float64, ok bool) {
	n := r2.Sub(pb, pa)
	r := ra + rb
	if r2.Dot(n, n) > r*r {
		return r2.Vec{}, 0, false
	}
	dist := r2.Norm(n)
	if dist > epsilon {
		return r2.Scale(1/dist, n), r - dist, true
	}
	return r2.Vec{X: 1, Y: 0}, ra, true
}

// PhysicsSystem integrates motion and resolves contacts between bodies.
type PhysicsSystem struct {
	s          *store.Store
	positions  *store.Column[components.Position]
	velocities *store.Column[components.Velocity]
	bodies     *store.Column[components.Body]

	percent, slop         float64
	width, height, margin float64
}

// NewPhysicsSystem creates a physics system for the configured world.
func NewPhysicsSystem(s *store.Store, cfg *config.Config) *PhysicsSystem {
	return &PhysicsSystem{
		s:          s,
		positions:  store.NewColumn[components.Position](s),
		velocities: store.NewColumn[components.Velocity](s),
		bodies:     store.NewColumn[components.Body](s),
		percent:    cfg.Physics.Percent,
		slop:       cfg.Physics.Slop,
		width:      cfg.World.Width,
		height:     cfg.World.Height,
		margin:     cfg.Derived.Margin,
	}
}

// GenManifold returns the contact between a and b, if their bodies overlap.
func (p *PhysicsSystem) GenManifold(a, b store.Entity) (Manifold, bool) {
	pa, pb := p.positions.Get(a), p.positions.Get(b)
	ra, rb := p.bodies.Get(a).Radius, p.bodies.Get(b).Radius
	normal, pen, ok := CircleContact(pa.Vec, pb.Vec, ra, rb)
	if !ok {
		return Manifold{}, false
	}
	return Manifold{A: a, B: b, Normal: normal, Penetration: pen}, true
}

// velocity returns e's velocity, or zero for entities without one.
func (p *PhysicsSystem) velocity(e store.Entity) (r2.Vec, bool) {
	if !p.velocities.Has(e) {
		return r2.Vec{}, false
	}
	return p.velocities.Get(e).Vec, true
}

// Resolve applies the collision impulse for m.
// It returns false, changing nothing, when the bodies are already separating.
func (p *PhysicsSystem) Resolve(m Manifold) bool {
	va, hasA := p.velocity(m.A)
	vb, hasB := p.velocity(m.B)

	veln := r2.Dot(r2.Sub(vb, va), m.Normal)
	if veln > 0 {
		return false
	}

	ba, bb := p.bodies.Get(m.A), p.bodies.Get(m.B)
	invSum := ba.InvMass + bb.InvMass
	if invSum == 0 {
		return true
	}

	e := min(ba.Restitution, bb.Restitution)
	j := -(1 + e) * veln / invSum
	impulse := r2.Scale(j, m.Normal)

	if hasA {
		p.velocities.GetMut(m.A).Vec = r2.Sub(va, r2.Scale(ba.InvMass, impulse))
	}
	if hasB {
		p.velocities.GetMut(m.B).Vec = r2.Add(vb, r2.Scale(bb.InvMass, impulse))
	}
	return true
}

// Correct pushes the bodies of m apart to counter sinking.
func (p *PhysicsSystem) Correct(m Manifold) {
	ba, bb := p.bodies.Get(m.A), p.bodies.Get(m.B)
	invSum := ba.InvMass + bb.InvMass
	if invSum == 0 {
		return
	}
	amount := max(m.Penetration-p.slop, 0) / invSum * p.percent
	correction := r2.Scale(amount, m.Normal)

	pa := p.positions.GetMut(m.A)
	pa.Vec = r2.Sub(pa.Vec, r2.Scale(ba.InvMass, correction))
	pb := p.positions.GetMut(m.B)
	pb.Vec = r2.Add(pb.Vec, r2.Scale(bb.InvMass, correction))
}

// Integrate advances every moving entity by dt and wraps it around the world.
func (p *PhysicsSystem) Integrate(dt float64) {
	store.Each2(p.s, func(_ store.Entity, pos *components.Position, vel *components.Velocity) {
		pos.Vec = r2.Add(pos.Vec, r2.Scale(dt, vel.Vec))
		pos.X = wrap(pos.X, p.width, p.margin)
		pos.Y = wrap(pos.Y, p.height, p.margin)
	})
}
