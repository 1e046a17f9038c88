package components

// Body holds the physical properties of a circular entity.
// Radius must be positive and Restitution must lie in [0, 1].
type Body struct {
	Radius      float64 `inspect:"label,fmt:%.2f"`
	Mass        float64 `inspect:"label,fmt:%.3f"`
	InvMass     float64 `inspect:"skip"` // 0 for immovable bodies
	Restitution float64 `inspect:"bar,max:1"`
}

// NewBody returns a body with its inverse mass precomputed.
// A zero mass yields an immovable body.
func NewBody(radius, mass, restitution float64) Body {
	inv := 0.0
	if mass != 0 {
		inv = 1 / mass
	}
	return Body{
		Radius:      radius,
		Mass:        mass,
		InvMass:     inv,
		Restitution: restitution,
	}
}
