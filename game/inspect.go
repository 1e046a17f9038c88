package game

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/critters/store"
)

// Components returns copies of every component attached to e, in a fixed
// display order. It returns nil for entities that are gone.
func (sim *Simulation) Components(e store.Entity) []any {
	if !sim.s.Alive(e) || sim.s.IsDeleted(e) {
		return nil
	}
	var out []any
	if sim.creatureCol.Has(e) {
		out = append(out, sim.creatureCol.Get(e))
	}
	if sim.foodCol.Has(e) {
		out = append(out, sim.foodCol.Get(e))
	}
	if sim.positions.Has(e) {
		out = append(out, sim.positions.Get(e))
	}
	if sim.velocities.Has(e) {
		out = append(out, sim.velocities.Get(e))
	}
	if sim.directions.Has(e) {
		out = append(out, sim.directions.Get(e))
	}
	if sim.bodies.Has(e) {
		out = append(out, sim.bodies.Get(e))
	}
	if sim.inputs.Has(e) {
		out = append(out, sim.inputs.Get(e))
	}
	if sim.outputs.Has(e) {
		out = append(out, sim.outputs.Get(e))
	}
	return out
}

// CreatureAt returns the smallest creature whose body contains the world
// point p, accounting for wrap.
func (sim *Simulation) CreatureAt(p r2.Vec) (store.Entity, bool) {
	periodW := sim.cfg.World.Width + 2*sim.cfg.Derived.Margin
	periodH := sim.cfg.World.Height + 2*sim.cfg.Derived.Margin

	var best store.Entity
	found := false
	bestR := math.Inf(1)
	for _, e := range sim.creatures {
		pos := sim.positions.Get(e)
		d := r2.Sub(pos.Vec, p)
		d.X -= periodW * math.Round(d.X/periodW)
		d.Y -= periodH * math.Round(d.Y/periodH)
		r := sim.bodies.Get(e).Radius
		if r2.Norm(d) <= r && r < bestR {
			best, found, bestR = e, true, r
		}
	}
	return best, found
}
