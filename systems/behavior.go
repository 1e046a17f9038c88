package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/neural"
	"github.com/pthm-cable/critters/store"
)

// BehaviorSystem runs each creature's network and turns its output into motion.
type BehaviorSystem struct {
	cfg *config.Config
	rng *rand.Rand

	creatures  *store.Column[components.Creature]
	networks   *store.Column[components.Network]
	inputs     *store.Column[components.Inputs]
	outputs    *store.Column[components.Outputs]
	desired    *store.Column[components.Desired]
	velocities *store.Column[components.Velocity]
	directions *store.Column[components.Direction]

	selfTrain bool
}

// NewBehaviorSystem creates a behavior system.
func NewBehaviorSystem(s *store.Store, cfg *config.Config, rng *rand.Rand) *BehaviorSystem {
	return &BehaviorSystem{
		cfg:        cfg,
		rng:        rng,
		creatures:  store.NewColumn[components.Creature](s),
		networks:   store.NewColumn[components.Network](s),
		inputs:     store.NewColumn[components.Inputs](s),
		outputs:    store.NewColumn[components.Outputs](s),
		desired:    store.NewColumn[components.Desired](s),
		velocities: store.NewColumn[components.Velocity](s),
		directions: store.NewColumn[components.Direction](s),
		selfTrain:  cfg.Neural.SelfTrain,
	}
}

// Think runs inference for every creature and stores the prediction in Outputs.
//
// With self-training enabled, a creature holding Desired targets then takes
// one gradient step whose learning rate is the cost of its own prediction.
func (b *BehaviorSystem) Think(creatures []store.Entity) {
	for _, e := range creatures {
		if !b.networks.Has(e) || !b.inputs.Has(e) || !b.outputs.Has(e) {
			continue
		}
		nn := b.networks.Get(e).Network
		in := b.inputs.Get(e).Values
		out := nn.Feedforward(in)
		b.outputs.GetMut(e).Values = out

		if !b.selfTrain || !b.desired.Has(e) {
			continue
		}
		want := b.desired.Get(e).Values
		if len(want) != len(out) {
			continue
		}
		nn.TrainStep(in, want, neural.Cost(out, want))
	}
}

// Move sets each creature's velocity and heading from its latest output.
func (b *BehaviorSystem) Move(creatures []store.Entity) {
	for _, e := range creatures {
		if !b.creatures.Has(e) || !b.outputs.Has(e) || !b.velocities.Has(e) {
			continue
		}
		out := b.outputs.Get(e).Values
		if len(out) == 0 {
			continue
		}
		angle := DirectionAngle(ChooseDirection(b.rng, out), len(out))
		speed := KindConfig(b.cfg, b.creatures.Get(e).Kind).Speed

		b.velocities.GetMut(e).Vec = r2.Scale(speed, r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)})
		if b.directions.Has(e) {
			b.directions.GetMut(e).Angle = angle
		}
	}
}

// ChooseDirection returns the index of the largest output, the first on ties.
// When every output is equal a uniformly random index is chosen instead.
func ChooseDirection(rng *rand.Rand, out []float64) int {
	if floats.Max(out) == floats.Min(out) {
		return rng.Intn(len(out))
	}
	return floats.MaxIdx(out)
}

// DirectionAngle maps direction i of n to its angle in radians.
func DirectionAngle(i, n int) float64 {
	return normalizeHeading(2 * math.Pi / float64(n) * float64(i))
}
