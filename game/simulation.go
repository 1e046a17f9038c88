// Package game drives the simulation: it owns the store, the systems and the
// entity lists, and runs them in a fixed order every tick.
package game

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/store"
	"github.com/pthm-cable/critters/systems"
	"github.com/pthm-cable/critters/telemetry"
)

// Simulation holds the complete simulation state.
type Simulation struct {
	cfg *config.Config
	rng *rand.Rand
	s   *store.Store

	// Component columns
	creatureCol *store.Column[components.Creature]
	foodCol     *store.Column[components.Food]
	positions   *store.Column[components.Position]
	velocities  *store.Column[components.Velocity]
	directions  *store.Column[components.Direction]
	bodies      *store.Column[components.Body]
	appearances *store.Column[components.Appearance]
	inputs      *store.Column[components.Inputs]
	outputs     *store.Column[components.Outputs]
	desired     *store.Column[components.Desired]
	networks    *store.Column[components.Network]

	// Systems
	aging     *systems.AgingSystem
	physics   *systems.PhysicsSystem
	collision *systems.CollisionSystem
	sensors   *systems.SensorSystem
	behavior  *systems.BehaviorSystem

	// Entity lists, in creation order
	creatures []store.Entity
	foods     []store.Entity

	// State
	tick       int64
	simTime    float64
	genTime    float64
	foodTimer  float64
	generation int
	totals     CollisionTotals

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	bookmarks     *telemetry.BookmarkDetector
	outputManager *telemetry.OutputManager
	statsCallback func(telemetry.WindowStats)
	logStats      bool
}

// CollisionTotals accumulates collision outcomes over a generation.
type CollisionTotals = systems.CollisionStats

// New creates a simulation seeded with the given survivors plus fresh
// random creatures up to the configured population.
func New(cfg *config.Config, rng *rand.Rand, survivors []Survivor) (*Simulation, error) {
	s := store.New()
	sim := &Simulation{
		cfg:         cfg,
		rng:         rng,
		s:           s,
		creatureCol: store.NewColumn[components.Creature](s),
		foodCol:     store.NewColumn[components.Food](s),
		positions:   store.NewColumn[components.Position](s),
		velocities:  store.NewColumn[components.Velocity](s),
		directions:  store.NewColumn[components.Direction](s),
		bodies:      store.NewColumn[components.Body](s),
		appearances: store.NewColumn[components.Appearance](s),
		inputs:      store.NewColumn[components.Inputs](s),
		outputs:     store.NewColumn[components.Outputs](s),
		desired:     store.NewColumn[components.Desired](s),
		networks:    store.NewColumn[components.Network](s),

		aging:    systems.NewAgingSystem(s, cfg),
		physics:  systems.NewPhysicsSystem(s, cfg),
		sensors:  systems.NewSensorSystem(s, cfg),
		behavior: systems.NewBehaviorSystem(s, cfg, rng),

		generation: 1,

		collector:     telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		perfCollector: telemetry.NewPerfCollector(120),
		bookmarks:     telemetry.NewBookmarkDetector(10),
	}
	sim.collision = systems.NewCollisionSystem(s, cfg, sim.physics, systems.NewBreedingSystem(s, cfg, rng))

	if err := sim.seed(survivors); err != nil {
		return nil, err
	}
	return sim, nil
}

// SetOutput enables CSV output through om.
func (sim *Simulation) SetOutput(om *telemetry.OutputManager) {
	sim.outputManager = om
}

// SetLogStats enables logging of window stats and bookmarks.
func (sim *Simulation) SetLogStats(enabled bool) {
	sim.logStats = enabled
}

// OnStats registers a callback invoked with every flushed stats window.
func (sim *Simulation) OnStats(fn func(telemetry.WindowStats)) {
	sim.statsCallback = fn
}

// Step advances the simulation by dt seconds.
//
// Phases run strictly in sequence and structural changes are only applied at
// the two commit points, never while a pass iterates.
func (sim *Simulation) Step(dt float64) {
	if maxDT := sim.cfg.Physics.MaxDT; maxDT > 0 {
		dt = min(dt, maxDT)
	}

	sim.perfCollector.StartTick()

	// Generation clock and food respawn
	sim.perfCollector.StartPhase(telemetry.PhaseWorld)
	if sim.advanceGeneration(dt) {
		sim.perfCollector.EndTick()
		sim.tick++
		return
	}
	sim.respawnFood(dt)

	// Aging and starvation
	sim.perfCollector.StartPhase(telemetry.PhaseAging)
	sim.aging.Update(dt, sim.creatures)
	for _, e := range sim.creatures {
		if sim.s.IsDeleted(e) {
			sim.collector.RecordStarved(sim.creatureCol.Get(e).Kind)
		}
	}

	sim.perfCollector.StartPhase(telemetry.PhaseCommit)
	sim.commit()

	// Collisions, then motion with the resolved velocities
	sim.perfCollector.StartPhase(telemetry.PhasePhysics)
	stats := sim.collision.Update(sim.Bodies())
	sim.physics.Integrate(dt)
	sim.totals.Add(stats)
	sim.collector.RecordContacts(stats.Contacts, stats.Matings, stats.Predations, stats.Meals)

	sim.perfCollector.StartPhase(telemetry.PhaseCommit)
	for _, e := range sim.commit() {
		sim.collector.RecordBirth(sim.creatureCol.Get(e).Kind)
	}

	sim.perfCollector.StartPhase(telemetry.PhaseSensors)
	sim.sensors.Update(sim.creatures, sim.Bodies())

	sim.perfCollector.StartPhase(telemetry.PhaseThink)
	sim.behavior.Think(sim.creatures)

	sim.perfCollector.StartPhase(telemetry.PhaseMove)
	sim.behavior.Move(sim.creatures)

	sim.perfCollector.EndTick()

	sim.tick++
	sim.simTime += dt
	sim.collector.Advance(dt)
	sim.flushTelemetry()
}

// commit applies the deferred buffer and keeps the entity lists in sync.
// Created entities are always creatures. Returns the created entities.
func (sim *Simulation) commit() []store.Entity {
	created, removed := sim.s.Commit()
	if len(removed) > 0 {
		gone := make(map[store.Entity]struct{}, len(removed))
		for _, e := range removed {
			gone[e] = struct{}{}
		}
		sim.creatures = without(sim.creatures, gone)
		sim.foods = without(sim.foods, gone)
	}
	sim.creatures = append(sim.creatures, created...)
	return created
}

// without filters list in place, keeping order.
func without(list []store.Entity, gone map[store.Entity]struct{}) []store.Entity {
	out := list[:0]
	for _, e := range list {
		if _, ok := gone[e]; !ok {
			out = append(out, e)
		}
	}
	return out
}

// Bodies returns creatures followed by foods.
func (sim *Simulation) Bodies() []store.Entity {
	all := make([]store.Entity, 0, len(sim.creatures)+len(sim.foods))
	all = append(all, sim.creatures...)
	return append(all, sim.foods...)
}

// Creatures returns the live creature list. The slice must not be modified.
func (sim *Simulation) Creatures() []store.Entity { return sim.creatures }

// Foods returns the live food list. The slice must not be modified.
func (sim *Simulation) Foods() []store.Entity { return sim.foods }

// Tick returns the number of steps taken.
func (sim *Simulation) Tick() int64 { return sim.tick }

// SimTime returns the simulated seconds elapsed since start.
func (sim *Simulation) SimTime() float64 { return sim.simTime }

// Generation returns the current generation number, starting at 1.
func (sim *Simulation) Generation() int { return sim.generation }

// GenerationTime returns seconds elapsed in the current generation.
func (sim *Simulation) GenerationTime() float64 { return sim.genTime }

// Totals returns collision outcomes accumulated in the current generation.
func (sim *Simulation) Totals() CollisionTotals { return sim.totals }

// Store exposes the entity store for read-only inspection.
func (sim *Simulation) Store() *store.Store { return sim.s }

// Config returns the simulation configuration.
func (sim *Simulation) Config() *config.Config { return sim.cfg }

// Perf returns current performance statistics.
func (sim *Simulation) Perf() telemetry.PerfStats { return sim.perfCollector.Stats() }

// Counts returns the number of living vegans and carnivores.
func (sim *Simulation) Counts() (vegans, carnivores int) {
	for _, e := range sim.creatures {
		if sim.creatureCol.Get(e).Kind.IsCarnivore() {
			carnivores++
		} else {
			vegans++
		}
	}
	return vegans, carnivores
}

// Describe returns a short human-readable status line.
func (sim *Simulation) Describe() string {
	vegans, carnivores := sim.Counts()
	return fmt.Sprintf("gen %d  t=%.1fs  vegans %d  carnivores %d  food %d",
		sim.generation, sim.genTime, vegans, carnivores, len(sim.foods))
}
