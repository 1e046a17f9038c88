// Package telemetry provides population statistics, performance timing and CSV output.
package telemetry

import "github.com/pthm-cable/critters/components"

// Population is a snapshot of the living population used when flushing a window.
type Population struct {
	Vegans, Carnivores, Foods int
	Hungers, Lives, Radii     []float64
}

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowSec float64
	elapsed   float64

	// Event counters for current window
	veganBirths       int
	carnivoreBirths   int
	starvedVegans     int
	starvedCarnivores int
	predations        int
	meals             int
	matings           int
	contacts          int
}

// NewCollector creates a collector that flushes every windowSec simulated seconds.
func NewCollector(windowSec float64) *Collector {
	if windowSec <= 0 {
		windowSec = 10
	}
	return &Collector{windowSec: windowSec}
}

// Advance adds dt simulated seconds to the current window.
func (c *Collector) Advance(dt float64) {
	c.elapsed += dt
}

// ShouldFlush returns true once the current window has lasted windowSec.
func (c *Collector) ShouldFlush() bool {
	return c.elapsed >= c.windowSec
}

// RecordBirth records a birth event.
func (c *Collector) RecordBirth(kind components.Kind) {
	if kind.IsCarnivore() {
		c.carnivoreBirths++
	} else {
		c.veganBirths++
	}
}

// RecordStarved records a creature that died of hunger.
func (c *Collector) RecordStarved(kind components.Kind) {
	if kind.IsCarnivore() {
		c.starvedCarnivores++
	} else {
		c.starvedVegans++
	}
}

// RecordContacts records the outcome of one collision pass.
func (c *Collector) RecordContacts(contacts, matings, predations, meals int) {
	c.contacts += contacts
	c.matings += matings
	c.predations += predations
	c.meals += meals
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(tick int64, simTime float64, generation int, pop Population) WindowStats {
	hMean, hP10, hP50, hP90 := ComputeStats(pop.Hungers)
	lMean, _, lP50, lP90 := ComputeStats(pop.Lives)
	rMean, _, _, _ := ComputeStats(pop.Radii)

	stats := WindowStats{
		WindowEndTick: tick,
		SimTimeSec:    simTime,
		Generation:    generation,

		Vegans:     pop.Vegans,
		Carnivores: pop.Carnivores,
		Foods:      pop.Foods,

		VeganBirths:       c.veganBirths,
		CarnivoreBirths:   c.carnivoreBirths,
		StarvedVegans:     c.starvedVegans,
		StarvedCarnivores: c.starvedCarnivores,
		Predations:        c.predations,
		Meals:             c.meals,
		Matings:           c.matings,
		Contacts:          c.contacts,

		HungerMean: hMean,
		HungerP10:  hP10,
		HungerP50:  hP50,
		HungerP90:  hP90,

		LifeMean: lMean,
		LifeP50:  lP50,
		LifeP90:  lP90,

		RadiusMean: rMean,
	}

	*c = Collector{windowSec: c.windowSec}
	return stats
}
