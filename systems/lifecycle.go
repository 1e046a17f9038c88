package systems

import (
	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/store"
)

// AgingSystem advances creature clocks and marks starved creatures for removal.
type AgingSystem struct {
	s         *store.Store
	cfg       *config.Config
	creatures *store.Column[components.Creature]
}

// NewAgingSystem creates an aging system.
func NewAgingSystem(s *store.Store, cfg *config.Config) *AgingSystem {
	return &AgingSystem{
		s:         s,
		cfg:       cfg,
		creatures: store.NewColumn[components.Creature](s),
	}
}

// Update lowers reproduction timeouts and raises life and hunger by dt.
// Creatures whose hunger exceeds their kind's starvation threshold are
// marked deleted. Returns the number of creatures that starved.
func (a *AgingSystem) Update(dt float64, creatures []store.Entity) int {
	starved := 0
	for _, e := range creatures {
		if !a.creatures.Has(e) {
			continue
		}
		c := a.creatures.GetMut(e)
		c.Timeout -= dt
		c.Life += dt
		c.Hunger += dt
		if c.Hunger > KindConfig(a.cfg, c.Kind).Starve {
			a.s.MarkDeleted(e)
			starved++
		}
	}
	return starved
}
