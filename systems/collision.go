package systems

import (
	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/store"
)

// CollisionStats counts what happened during one collision pass.
type CollisionStats struct {
	Contacts   int // approaching pairs that received an impulse
	Matings    int
	Offspring  int
	Predations int
	Meals      int
}

// Add accumulates o into s.
func (s *CollisionStats) Add(o CollisionStats) {
	s.Contacts += o.Contacts
	s.Matings += o.Matings
	s.Offspring += o.Offspring
	s.Predations += o.Predations
	s.Meals += o.Meals
}

// CollisionSystem resolves contacts between all pairs of bodies and applies
// their gameplay effects: mating, predation and eating.
type CollisionSystem struct {
	s        *store.Store
	cfg      *config.Config
	physics  *PhysicsSystem
	breeding *BreedingSystem

	bodies    *store.Column[components.Body]
	creatures *store.Column[components.Creature]
	foods     *store.Column[components.Food]
}

// NewCollisionSystem creates a collision system.
func NewCollisionSystem(s *store.Store, cfg *config.Config, physics *PhysicsSystem, breeding *BreedingSystem) *CollisionSystem {
	return &CollisionSystem{
		s:         s,
		cfg:       cfg,
		physics:   physics,
		breeding:  breeding,
		bodies:    store.NewColumn[components.Body](s),
		creatures: store.NewColumn[components.Creature](s),
		foods:     store.NewColumn[components.Food](s),
	}
}

// Update checks every unordered pair of entities once.
// Entities removed earlier in the pass are skipped for the remaining pairs.
func (c *CollisionSystem) Update(entities []store.Entity) CollisionStats {
	var stats CollisionStats
	for i, a := range entities {
		for _, b := range entities[i+1:] {
			if a == b || !c.bodies.Has(a) || !c.bodies.Has(b) {
				continue
			}
			m, ok := c.physics.GenManifold(a, b)
			if !ok {
				continue
			}
			approaching := c.physics.Resolve(m)
			c.physics.Correct(m)
			if !approaching {
				continue
			}
			stats.Contacts++
			c.interact(a, b, &stats)
		}
	}
	return stats
}

// interact applies the effect of a contact between a and b.
func (c *CollisionSystem) interact(a, b store.Entity, stats *CollisionStats) {
	aCreature, bCreature := c.creatures.Has(a), c.creatures.Has(b)

	switch {
	case aCreature && bCreature:
		ca, cb := c.creatures.Get(a), c.creatures.Get(b)
		if CanMate(ca, cb) {
			stats.Matings++
			stats.Offspring += c.breeding.Mate(a, b)
			return
		}
		switch {
		case ca.Kind.IsCarnivore() && !cb.Kind.IsCarnivore():
			c.eat(a, b, KindConfig(c.cfg, cb.Kind).Nutrition)
			stats.Predations++
		case cb.Kind.IsCarnivore() && !ca.Kind.IsCarnivore():
			c.eat(b, a, KindConfig(c.cfg, ca.Kind).Nutrition)
			stats.Predations++
		}

	case aCreature && c.foods.Has(b):
		c.eat(a, b, c.cfg.Food.Nutrition)
		stats.Meals++

	case bCreature && c.foods.Has(a):
		c.eat(b, a, c.cfg.Food.Nutrition)
		stats.Meals++
	}
}

// eat lowers the eater's hunger and marks the meal for removal.
// Hunger never drops below zero.
func (c *CollisionSystem) eat(eater, meal store.Entity, nutrition float64) {
	cr := c.creatures.GetMut(eater)
	cr.Hunger = max(cr.Hunger-nutrition, 0)
	c.s.MarkDeleted(meal)
}
