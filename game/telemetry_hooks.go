package game

import (
	"log/slog"

	"github.com/pthm-cable/critters/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (sim *Simulation) flushTelemetry() {
	if !sim.collector.ShouldFlush() {
		return
	}

	stats := sim.collector.Flush(sim.tick, sim.simTime, sim.generation, sim.samplePopulation())
	perfStats := sim.perfCollector.Stats()

	if sim.statsCallback != nil {
		sim.statsCallback(stats)
	}

	if sim.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if sim.outputManager != nil {
		if err := sim.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := sim.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range sim.bookmarks.Check(stats) {
		if sim.logStats {
			bm.LogBookmark()
		}
		if sim.outputManager != nil {
			if err := sim.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
	}
}

// samplePopulation collects the distributions summarized in a stats window.
func (sim *Simulation) samplePopulation() telemetry.Population {
	pop := telemetry.Population{
		Foods:   len(sim.foods),
		Hungers: make([]float64, 0, len(sim.creatures)),
		Lives:   make([]float64, 0, len(sim.creatures)),
		Radii:   make([]float64, 0, len(sim.creatures)),
	}
	for _, e := range sim.creatures {
		c := sim.creatureCol.Get(e)
		if c.Kind.IsCarnivore() {
			pop.Carnivores++
		} else {
			pop.Vegans++
		}
		pop.Hungers = append(pop.Hungers, c.Hunger)
		pop.Lives = append(pop.Lives, c.Life)
		pop.Radii = append(pop.Radii, sim.bodies.Get(e).Radius)
	}
	return pop
}
