package systems

import (
	"math"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/config"
)

// wrap maps x back into [-margin, limit+margin] with period limit+2*margin,
// so bodies leave one edge fully before reappearing at the other.
//
// The band holds both margins. With a period of limit+margin, a body leaving
// past limit+margin would land at 0 and pop in fully visible at the far seam.
// With this period it lands at -margin, still just out of view.
func wrap(x, limit, margin float64) float64 {
	period := limit + 2*margin
	if x > limit+margin {
		x -= period
	} else if x < -margin {
		x += period
	}
	return x
}

// normalizeHeading wraps a heading to [0, 2*Pi).
func normalizeHeading(h float64) float64 {
	h = math.Mod(h, 2*math.Pi)
	if h < 0 {
		h += 2 * math.Pi
	}
	return h
}

// KindConfig returns the configuration section for a creature kind.
func KindConfig(cfg *config.Config, k components.Kind) *config.KindConfig {
	if k.IsCarnivore() {
		return &cfg.Carnivore
	}
	return &cfg.Vegan
}
