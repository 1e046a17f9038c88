package systems

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/neural"
	"github.com/pthm-cable/critters/store"
	"github.com/pthm-cable/critters/traits"
)

// BreedingSystem spawns offspring when two compatible creatures touch.
// Children are created through the deferred buffer and appear at the next commit.
type BreedingSystem struct {
	s   *store.Store
	cfg *config.Config
	rng *rand.Rand

	creatures   *store.Column[components.Creature]
	positions   *store.Column[components.Position]
	velocities  *store.Column[components.Velocity]
	directions  *store.Column[components.Direction]
	bodies      *store.Column[components.Body]
	appearances *store.Column[components.Appearance]
	inputs      *store.Column[components.Inputs]
	outputs     *store.Column[components.Outputs]
	desired     *store.Column[components.Desired]
	networks    *store.Column[components.Network]

	params traits.Params
}

// NewBreedingSystem creates a breeding system.
func NewBreedingSystem(s *store.Store, cfg *config.Config, rng *rand.Rand) *BreedingSystem {
	return &BreedingSystem{
		s:           s,
		cfg:         cfg,
		rng:         rng,
		creatures:   store.NewColumn[components.Creature](s),
		positions:   store.NewColumn[components.Position](s),
		velocities:  store.NewColumn[components.Velocity](s),
		directions:  store.NewColumn[components.Direction](s),
		bodies:      store.NewColumn[components.Body](s),
		appearances: store.NewColumn[components.Appearance](s),
		inputs:      store.NewColumn[components.Inputs](s),
		outputs:     store.NewColumn[components.Outputs](s),
		desired:     store.NewColumn[components.Desired](s),
		networks:    store.NewColumn[components.Network](s),
		params: traits.Params{
			Factor:   cfg.Mutation.Factor,
			Chance:   cfg.Mutation.Chance,
			Mutation: cfg.Mutation.Mutation,
		},
	}
}

// CanMate reports whether a and b are the same kind and both ready to breed.
func CanMate(a, b components.Creature) bool {
	return a.Kind == b.Kind && a.Timeout <= 0 && b.Timeout <= 0
}

// Mate resets both parents' reproduction timeouts and queues between one
// and the kind's maximum number of children at the parents' midpoint.
// The child's kind comes from a. Returns the number of children queued.
func (b *BreedingSystem) Mate(pa, pb store.Entity) int {
	ca, cb := b.creatures.GetMut(pa), b.creatures.GetMut(pb)
	ca.Timeout = KindConfig(b.cfg, ca.Kind).Cooldown
	cb.Timeout = KindConfig(b.cfg, cb.Kind).Cooldown

	kind := ca.Kind
	kc := KindConfig(b.cfg, kind)
	mid := r2.Scale(0.5, r2.Add(b.positions.Get(pa).Vec, b.positions.Get(pb).Vec))

	bodyA, bodyB := b.bodies.Get(pa), b.bodies.Get(pb)
	colorA, colorB := b.appearances.Get(pa).Color, b.appearances.Get(pb).Color

	n := b.rng.Intn(kc.MaxOffspring) + 1
	for i := 0; i < n; i++ {
		child := b.s.CreateLazy()
		b.creatures.InsertLazy(child, components.Creature{
			Kind:    kind,
			Timeout: kc.Cooldown,
		})
		b.positions.InsertLazy(child, components.Position{Vec: mid})
		b.velocities.InsertLazy(child, components.Velocity{})
		b.directions.InsertLazy(child, components.Direction{})
		b.bodies.InsertLazy(child, traits.MutateBody(b.rng, bodyA, bodyB, b.params, b.cfg.Derived.Margin))
		b.appearances.InsertLazy(child, components.Appearance{
			Color: traits.MutateColor(b.rng, colorA, colorB, b.params),
		})
		b.inputs.InsertLazy(child, components.Inputs{Values: components.Zeroed(b.cfg.Derived.NumInputs)})
		b.outputs.InsertLazy(child, components.Outputs{Values: components.Zeroed(b.cfg.Neural.Directions)})
		b.desired.InsertLazy(child, components.Desired{Values: components.Zeroed(b.cfg.Neural.Directions)})
		b.networks.InsertLazy(child, components.Network{
			Network: neural.NewNetwork(b.rng, b.cfg.Derived.Layers, b.cfg.Neural.Memory),
		})
	}
	return n
}
