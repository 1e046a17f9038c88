package systems

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/neural"
	"github.com/pthm-cable/critters/store"
)

// testWorld bundles a store with the columns tests inspect directly.
type testWorld struct {
	s   *store.Store
	cfg *config.Config
	rng *rand.Rand

	positions  *store.Column[components.Position]
	velocities *store.Column[components.Velocity]
	directions *store.Column[components.Direction]
	bodies     *store.Column[components.Body]
	creatures  *store.Column[components.Creature]
	foods      *store.Column[components.Food]
	inputs     *store.Column[components.Inputs]
	outputs    *store.Column[components.Outputs]
	desired    *store.Column[components.Desired]
	networks   *store.Column[components.Network]
	looks      *store.Column[components.Appearance]
}

func newTestWorld(t *testing.T) *testWorld {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	s := store.New()
	return &testWorld{
		s:          s,
		cfg:        cfg,
		rng:        rand.New(rand.NewSource(42)),
		positions:  store.NewColumn[components.Position](s),
		velocities: store.NewColumn[components.Velocity](s),
		directions: store.NewColumn[components.Direction](s),
		bodies:     store.NewColumn[components.Body](s),
		creatures:  store.NewColumn[components.Creature](s),
		foods:      store.NewColumn[components.Food](s),
		inputs:     store.NewColumn[components.Inputs](s),
		outputs:    store.NewColumn[components.Outputs](s),
		desired:    store.NewColumn[components.Desired](s),
		networks:   store.NewColumn[components.Network](s),
		looks:      store.NewColumn[components.Appearance](s),
	}
}

func (w *testWorld) creature(kind components.Kind, x, y, radius float64) store.Entity {
	e := w.s.CreateEntity()
	w.creatures.Insert(e, components.Creature{Kind: kind})
	w.positions.Insert(e, components.Position{Vec: r2.Vec{X: x, Y: y}})
	w.velocities.Insert(e, components.Velocity{})
	w.directions.Insert(e, components.Direction{})
	w.bodies.Insert(e, components.NewBody(radius, 1, 0.5))
	w.looks.Insert(e, components.Appearance{Color: components.Color{R: 0.5, G: 0.5, B: 0.5, A: 1}})
	w.inputs.Insert(e, components.Inputs{Values: make([]float64, w.cfg.Derived.NumInputs)})
	w.outputs.Insert(e, components.Outputs{Values: make([]float64, w.cfg.Neural.Directions)})
	w.desired.Insert(e, components.Desired{Values: make([]float64, w.cfg.Neural.Directions)})
	w.networks.Insert(e, components.Network{
		Network: neural.NewNetwork(w.rng, w.cfg.Derived.Layers, w.cfg.Neural.Memory),
	})
	return e
}

func (w *testWorld) food(x, y, radius float64) store.Entity {
	e := w.s.CreateEntity()
	w.foods.Insert(e, components.Food{})
	w.positions.Insert(e, components.Position{Vec: r2.Vec{X: x, Y: y}})
	w.bodies.Insert(e, components.NewBody(radius, 1, 0.5))
	return e
}

func (w *testWorld) collisionSystem() *CollisionSystem {
	physics := NewPhysicsSystem(w.s, w.cfg)
	return NewCollisionSystem(w.s, w.cfg, physics, NewBreedingSystem(w.s, w.cfg, w.rng))
}
