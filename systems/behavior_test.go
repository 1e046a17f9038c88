package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/neural"
	"github.com/pthm-cable/critters/store"
)

func TestChooseDirection(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name string
		out  []float64
		want int
	}{
		{"single max", []float64{0.1, 0.9, 0.3}, 1},
		{"first of ties", []float64{0.2, 0.7, 0.7, 0.1}, 1},
		{"last", []float64{0.1, 0.2, 0.3}, 2},
	}
	for _, tc := range tests {
		if got := ChooseDirection(rng, tc.out); got != tc.want {
			t.Errorf("%s: ChooseDirection = %d, want %d", tc.name, got, tc.want)
		}
	}

	seen := make(map[int]bool)
	flat := []float64{0.5, 0.5, 0.5, 0.5}
	for i := 0; i < 200; i++ {
		got := ChooseDirection(rng, flat)
		if got < 0 || got >= len(flat) {
			t.Fatalf("index %d out of range", got)
		}
		seen[got] = true
	}
	if len(seen) != len(flat) {
		t.Errorf("equal outputs picked only %v", seen)
	}
}

func TestDirectionAngle(t *testing.T) {
	if got := DirectionAngle(2, 8); math.Abs(got-math.Pi/2) > 1e-12 {
		t.Errorf("DirectionAngle(2, 8) = %v, want pi/2", got)
	}
	if got := DirectionAngle(0, 8); got != 0 {
		t.Errorf("DirectionAngle(0, 8) = %v, want 0", got)
	}
}

func TestMoveSetsVelocity(t *testing.T) {
	w := newTestWorld(t)
	b := NewBehaviorSystem(w.s, w.cfg, w.rng)
	e := w.creature(components.Carnivorous, 0, 0, 3)
	out := make([]float64, w.cfg.Neural.Directions)
	out[2] = 1
	w.outputs.Insert(e, components.Outputs{Values: out})

	b.Move([]store.Entity{e})

	want := 2 * math.Pi / float64(len(out)) * 2
	if got := w.directions.Get(e).Angle; math.Abs(got-want) > 1e-12 {
		t.Errorf("direction = %v, want %v", got, want)
	}
	v := w.velocities.Get(e)
	speed := w.cfg.Carnivore.Speed
	if math.Abs(v.X-math.Cos(want)*speed) > 1e-9 || math.Abs(v.Y-math.Sin(want)*speed) > 1e-9 {
		t.Errorf("velocity = %v, want speed %v at %v", v.Vec, speed, want)
	}
}

func TestThinkWritesOutputs(t *testing.T) {
	w := newTestWorld(t)
	b := NewBehaviorSystem(w.s, w.cfg, w.rng)
	e := w.creature(components.Vegan, 0, 0, 3)

	b.Think([]store.Entity{e})
	out := w.outputs.Get(e).Values
	if len(out) != w.cfg.Neural.Directions {
		t.Fatalf("len(outputs) = %d", len(out))
	}
	for i, v := range out {
		if v <= 0 || v >= 1 {
			t.Errorf("output[%d] = %v outside (0,1)", i, v)
		}
	}
}

func TestThinkSelfTrain(t *testing.T) {
	w := newTestWorld(t)
	w.cfg.Neural.SelfTrain = true
	w.cfg.Neural.Memory = false
	b := NewBehaviorSystem(w.s, w.cfg, w.rng)

	e := w.creature(components.Vegan, 0, 0, 3)
	w.networks.Insert(e, components.Network{
		Network: neural.NewNetwork(rand.New(rand.NewSource(8)), w.cfg.Derived.Layers, false),
	})
	want := make([]float64, w.cfg.Neural.Directions)
	want[0] = 1
	w.desired.Insert(e, components.Desired{Values: want})

	nn := w.networks.Get(e).Network
	in := w.inputs.Get(e).Values
	before := neural.Cost(nn.Feedforward(in), want)
	for i := 0; i < 20; i++ {
		b.Think([]store.Entity{e})
	}
	after := neural.Cost(nn.Feedforward(in), want)
	t.Logf("cost %.4f -> %.4f", before, after)
	if after >= before {
		t.Errorf("self-training did not lower cost: %v -> %v", before, after)
	}
}
