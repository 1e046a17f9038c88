package game

import (
	"log/slog"
	"sort"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/neural"
	"github.com/pthm-cable/critters/telemetry"
)

// Survivor is a creature exported from one run and seeded into another.
// Only the kind and the network are reused on seeding; clocks restart.
type Survivor struct {
	Creature components.Creature
	Weights  neural.Weights
}

// TopByLife returns up to k creatures with the longest lives, longest first.
// Ties keep creation order.
func (sim *Simulation) TopByLife(k int) []Survivor {
	if k <= 0 {
		return nil
	}
	ranked := make([]components.Creature, 0, len(sim.creatures))
	idx := make([]int, len(sim.creatures))
	for i, e := range sim.creatures {
		ranked = append(ranked, sim.creatureCol.Get(e))
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return ranked[idx[i]].Life > ranked[idx[j]].Life
	})

	k = min(k, len(idx))
	top := make([]Survivor, 0, k)
	for _, i := range idx[:k] {
		nn := sim.networks.Get(sim.creatures[i]).Network
		top = append(top, Survivor{
			Creature: ranked[i],
			Weights:  nn.MarshalWeights(),
		})
	}
	return top
}

// advanceGeneration runs the generation clock. When the generation has lasted
// its configured duration the world is cleared and reseeded, and true is
// returned; the rest of the tick is skipped.
func (sim *Simulation) advanceGeneration(dt float64) bool {
	duration := sim.cfg.Generation.Duration
	sim.genTime += dt
	if duration <= 0 || sim.genTime <= duration {
		return false
	}
	sim.NextGeneration()
	return true
}

// NextGeneration ends the current generation and seeds a new one, carrying
// the top survivors over when configured to.
func (sim *Simulation) NextGeneration() {
	var survivors []Survivor
	if sim.cfg.Generation.CarryTop {
		survivors = sim.TopByLife(sim.cfg.Population.TopCount)
	}
	sim.recordGeneration()

	for _, e := range sim.creatures {
		sim.s.MarkDeleted(e)
	}
	for _, e := range sim.foods {
		sim.s.MarkDeleted(e)
	}
	sim.commit()

	sim.generation++
	sim.genTime = 0
	sim.foodTimer = 0
	sim.totals = CollisionTotals{}
	sim.bookmarks.Reset()

	if err := sim.seed(survivors); err != nil {
		slog.Error("failed to carry survivors, seeding fresh", "error", err)
		sim.seedFresh()
	}

	slog.Info("generation started",
		"generation", sim.generation,
		"tick", sim.tick,
		"carried", len(survivors),
		"creatures", len(sim.creatures),
		"foods", len(sim.foods),
	)
}

// seedFresh clears any partial seeding and seeds without survivors.
func (sim *Simulation) seedFresh() {
	for _, e := range sim.Bodies() {
		sim.s.MarkDeleted(e)
	}
	sim.commit()
	if err := sim.seed(nil); err != nil {
		panic("game: seeding without survivors failed: " + err.Error())
	}
}

// recordGeneration writes the summary of the generation that is ending.
func (sim *Simulation) recordGeneration() {
	if sim.outputManager == nil {
		return
	}
	vegans, carnivores := sim.Counts()
	var lives []float64
	for _, e := range sim.creatures {
		lives = append(lives, sim.creatureCol.Get(e).Life)
	}
	mean, _, _, _ := telemetry.ComputeStats(lives)
	var top float64
	for _, l := range lives {
		top = max(top, l)
	}
	rec := telemetry.GenerationRecord{
		Generation: sim.generation,
		EndTick:    sim.tick,
		Vegans:     vegans,
		Carnivores: carnivores,
		TopLife:    top,
		MeanLife:   mean,
	}
	if err := sim.outputManager.WriteGeneration(rec); err != nil {
		slog.Error("failed to write generation", "error", err)
	}
}
