// Package traits implements inheritance of heritable creature traits.
package traits

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/critters/components"
)

// Params controls how parent traits are blended and jittered.
type Params struct {
	Factor   float64 // weight of parent A in the blend
	Chance   float64 // probability the blended value is jittered
	Mutation float64 // maximum relative jitter
}

// Mutate blends a and b as a*Factor + b*(1-Factor). With probability Chance
// the result is then scaled by a uniform factor in [1-Mutation, 1+Mutation].
func Mutate(rng *rand.Rand, a, b float64, p Params) float64 {
	result := a*p.Factor + b*(1-p.Factor)
	if rng.Float64() < p.Chance {
		result *= rng.Float64()*2*p.Mutation + (1 - p.Mutation)
	}
	return result
}

// MutateColor mutates each channel independently and clamps it to [0, 1].
func MutateColor(rng *rand.Rand, a, b components.Color, p Params) components.Color {
	return components.Color{
		R: clamp01(Mutate(rng, a.R, b.R, p)),
		G: clamp01(Mutate(rng, a.G, b.G, p)),
		B: clamp01(Mutate(rng, a.B, b.B, p)),
		A: clamp01(Mutate(rng, a.A, b.A, p)),
	}
}

// minRadius keeps mutated bodies from collapsing to a point.
const minRadius = 0.01

// MutateBody derives a child body from two parents.
// Restitution is clamped to [0, 1]. The radius drifts freely but stays
// positive and no larger than maxRadius, the largest size the world wrap
// margin allows.
func MutateBody(rng *rand.Rand, a, b components.Body, p Params, maxRadius float64) components.Body {
	radius := math.Min(math.Max(Mutate(rng, a.Radius, b.Radius, p), minRadius), maxRadius)
	mass := Mutate(rng, a.Mass, b.Mass, p)
	if mass < 0 {
		mass = 0
	}
	restitution := clamp01(Mutate(rng, a.Restitution, b.Restitution, p))
	return components.NewBody(radius, mass, restitution)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
