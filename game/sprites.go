package game

import (
	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/store"
)

// SpriteClass identifies what a sprite depicts.
type SpriteClass uint8

const (
	SpriteFood SpriteClass = iota
	SpriteVegan
	SpriteCarnivore
)

// String returns the lowercase class name.
func (c SpriteClass) String() string {
	switch c {
	case SpriteFood:
		return "food"
	case SpriteVegan:
		return "vegan"
	case SpriteCarnivore:
		return "carnivore"
	default:
		return "unknown"
	}
}

// Sprite is an immutable drawing record for one entity.
// Frames built from sprites are safe to hand to other goroutines.
type Sprite struct {
	Entity       store.Entity     `json:"id"`
	X            float64          `json:"x"`
	Y            float64          `json:"y"`
	Radius       float64          `json:"r"`
	Direction    float64          `json:"dir,omitempty"`
	HasDirection bool             `json:"has_dir,omitempty"`
	Color        components.Color `json:"color"`
	Class        SpriteClass      `json:"class"`
}

// Sprites returns drawing records for foods followed by creatures, so
// creatures are drawn on top.
func (sim *Simulation) Sprites() []Sprite {
	out := make([]Sprite, 0, len(sim.foods)+len(sim.creatures))
	for _, e := range sim.foods {
		out = append(out, sim.sprite(e, SpriteFood))
	}
	for _, e := range sim.creatures {
		class := SpriteVegan
		if sim.creatureCol.Get(e).Kind.IsCarnivore() {
			class = SpriteCarnivore
		}
		out = append(out, sim.sprite(e, class))
	}
	return out
}

func (sim *Simulation) sprite(e store.Entity, class SpriteClass) Sprite {
	pos := sim.positions.Get(e)
	sp := Sprite{
		Entity: e,
		X:      pos.X,
		Y:      pos.Y,
		Radius: sim.bodies.Get(e).Radius,
		Class:  class,
	}
	if sim.appearances.Has(e) {
		sp.Color = sim.appearances.Get(e).Color
	}
	if sim.directions.Has(e) {
		sp.Direction = sim.directions.Get(e).Angle
		sp.HasDirection = true
	}
	return sp
}
