package game

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/neural"
	"github.com/pthm-cable/critters/store"
	"github.com/pthm-cable/critters/systems"
)

// seed populates an empty store: foods first, then survivors, then fresh
// creatures until the configured population is reached.
//
// Survivors count toward the carnivore quota, so the seeded population keeps
// the configured ratio when enough fresh creatures remain.
func (sim *Simulation) seed(survivors []Survivor) error {
	cfg := sim.cfg

	for i := 0; i < cfg.Population.Foods; i++ {
		sim.foods = append(sim.foods, sim.spawnFood())
	}

	carnivores := int(math.Round(float64(cfg.Population.Creatures) * cfg.Population.CarnivoreRatio))
	fresh := cfg.Population.Creatures

	for i, sv := range survivors {
		nn, err := survivorNetwork(cfg, sv)
		if err != nil {
			return fmt.Errorf("survivor %d: %w", i, err)
		}
		kind := sv.Creature.Kind
		if kind.IsCarnivore() && carnivores > 0 {
			carnivores--
		}
		sim.creatures = append(sim.creatures, sim.spawnCreature(kind, nn))
		fresh--
	}

	for i := 0; i < fresh; i++ {
		kind := components.Vegan
		if carnivores > 0 {
			kind = components.Carnivorous
			carnivores--
		}
		nn := neural.NewNetwork(sim.rng, cfg.Derived.Layers, cfg.Neural.Memory)
		sim.creatures = append(sim.creatures, sim.spawnCreature(kind, nn))
	}
	return nil
}

// survivorNetwork rebuilds a survivor's network and checks it fits the
// configured topology.
func survivorNetwork(cfg *config.Config, sv Survivor) (*neural.Network, error) {
	nn, err := neural.FromWeights(sv.Weights)
	if err != nil {
		return nil, err
	}
	want := cfg.Derived.Layers
	if len(nn.Layers) != len(want) {
		return nil, fmt.Errorf("network has layers %v, config wants %v", nn.Layers, want)
	}
	for i := range want {
		if nn.Layers[i] != want[i] {
			return nil, fmt.Errorf("network has layers %v, config wants %v", nn.Layers, want)
		}
	}
	return nn, nil
}

// randomPosition returns a uniformly random point in the world.
func (sim *Simulation) randomPosition() r2.Vec {
	return r2.Vec{
		X: sim.rng.Float64() * sim.cfg.World.Width,
		Y: sim.rng.Float64() * sim.cfg.World.Height,
	}
}

// randomRadius returns a radius uniformly distributed in [lo, hi].
func randomRadius(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// spawnFood creates a food entity with a gray shade, random mass and restitution.
// Food has no velocity, so impulses never set it moving.
func (sim *Simulation) spawnFood() store.Entity {
	fc := sim.cfg.Food
	radius := randomRadius(sim.rng, fc.MinRadius, fc.MaxRadius)
	shade := sim.rng.Float64()

	e := sim.s.CreateEntity()
	sim.foodCol.Insert(e, components.Food{})
	sim.positions.Insert(e, components.Position{Vec: sim.randomPosition()})
	sim.bodies.Insert(e, components.NewBody(radius, sim.rng.Float64(), sim.rng.Float64()))
	sim.appearances.Insert(e, components.Appearance{
		Color: components.Color{R: shade, G: shade, B: shade, A: 1},
	})
	return e
}

// kindColor returns a random color for the kind: greens for vegans,
// reds for carnivores, both with a little blue.
func kindColor(rng *rand.Rand, kind components.Kind) components.Color {
	if kind.IsCarnivore() {
		return components.Color{R: rng.Float64(), G: 0, B: rng.Float64() * 0.2, A: 1}
	}
	return components.Color{R: 0, G: rng.Float64(), B: rng.Float64() * 0.2, A: 1}
}

// spawnCreature creates a creature of the given kind driven by nn.
// Radius, mass, restitution, color and position are random. The creature
// starts on its mating cooldown.
func (sim *Simulation) spawnCreature(kind components.Kind, nn *neural.Network) store.Entity {
	kc := systems.KindConfig(sim.cfg, kind)
	radius := randomRadius(sim.rng, kc.MinRadius, kc.MaxRadius)
	color := kindColor(sim.rng, kind)

	e := sim.s.CreateEntity()
	sim.creatureCol.Insert(e, components.Creature{Kind: kind, Timeout: kc.Cooldown})
	sim.positions.Insert(e, components.Position{Vec: sim.randomPosition()})
	sim.velocities.Insert(e, components.Velocity{})
	sim.directions.Insert(e, components.Direction{})
	sim.bodies.Insert(e, components.NewBody(radius, sim.rng.Float64(), sim.rng.Float64()))
	sim.appearances.Insert(e, components.Appearance{Color: color})
	sim.inputs.Insert(e, components.Inputs{Values: components.Zeroed(sim.cfg.Derived.NumInputs)})
	sim.outputs.Insert(e, components.Outputs{Values: components.Zeroed(sim.cfg.Neural.Directions)})
	sim.desired.Insert(e, components.Desired{Values: components.Zeroed(sim.cfg.Neural.Directions)})
	sim.networks.Insert(e, components.Network{Network: nn})
	return e
}

// respawnFood adds a batch of food every food interval.
func (sim *Simulation) respawnFood(dt float64) {
	interval := sim.cfg.Population.FoodInterval
	if interval <= 0 {
		return
	}
	sim.foodTimer += dt
	for sim.foodTimer > interval {
		sim.foodTimer -= interval
		for i := 0; i < sim.cfg.Population.Foods; i++ {
			sim.foods = append(sim.foods, sim.spawnFood())
		}
	}
}
