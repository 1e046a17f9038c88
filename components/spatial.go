package components

import "gonum.org/v1/gonum/spatial/r2"

// Position represents an entity's world position.
type Position struct {
	r2.Vec
}

// Velocity represents an entity's velocity in world units per second.
type Velocity struct {
	r2.Vec
}

// Direction represents an entity's heading.
type Direction struct {
	Angle float64 `inspect:"angle"` // radians
}
