// Package components defines the component types attached to simulation entities.
package components

import "github.com/pthm-cable/critters/neural"

// Inputs holds the encoded sensor readings fed to the network.
type Inputs struct {
	Values []float64 `inspect:"bar"`
}

// Outputs holds the network's latest prediction.
type Outputs struct {
	Values []float64 `inspect:"bar"`
}

// Desired holds training targets for the network.
type Desired struct {
	Values []float64 `inspect:"skip"`
}

// Network wraps a creature's decision network.
// Weights are not inherited; every creature starts with its own random network.
type Network struct {
	*neural.Network
}

// Color is a linear RGBA color with channels in [0, 1].
type Color struct {
	R, G, B, A float64
}

// Appearance is the rendering handle of an entity.
type Appearance struct {
	Color Color `inspect:"skip"`
}

// Zeroed returns a slice of n zeros.
func Zeroed(n int) []float64 {
	return make([]float64, n)
}
