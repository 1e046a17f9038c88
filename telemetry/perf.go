package telemetry

import (
	"fmt"
	"log/slog"
	"time"
)

// Phase names for the simulation step, in tick order.
const (
	PhaseWorld   = "world"
	PhaseAging   = "aging"
	PhaseCommit  = "commit"
	PhasePhysics = "physics"
	PhaseSensors = "sensors"
	PhaseThink   = "think"
	PhaseMove    = "move"
)

// Phases lists every phase in tick order.
var Phases = []string{
	PhaseWorld, PhaseAging, PhaseCommit, PhasePhysics,
	PhaseSensors, PhaseThink, PhaseMove,
}

var phaseIndex = func() map[string]int {
	m := make(map[string]int, len(Phases))
	for i, p := range Phases {
		m[p] = i
	}
	return m
}()

// PerfCollector times each tick and its phases over a rolling window of ticks.
// A phase may be entered more than once per tick; its times add up.
type PerfCollector struct {
	ticks  []time.Duration   // ring buffer of tick durations
	phases [][]time.Duration // per tick, indexed like Phases
	next   int
	count  int

	tickStart  time.Time
	phaseStart time.Time
	current    int // running phase, -1 between phases
}

// NewPerfCollector creates a collector averaging over window ticks.
// A window below 1 falls back to 60.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	p := &PerfCollector{
		ticks:   make([]time.Duration, window),
		phases:  make([][]time.Duration, window),
		current: -1,
	}
	for i := range p.phases {
		p.phases[i] = make([]time.Duration, len(Phases))
	}
	return p
}

// StartTick begins timing a new tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.current = -1
	clear(p.phases[p.next])
}

// StartPhase ends the running phase, if any, and starts timing phase.
// It panics on a name missing from Phases.
func (p *PerfCollector) StartPhase(phase string) {
	i, ok := phaseIndex[phase]
	if !ok {
		panic(fmt.Sprintf("telemetry: unknown phase %q", phase))
	}
	now := time.Now()
	p.stopPhase(now)
	p.phaseStart = now
	p.current = i
}

func (p *PerfCollector) stopPhase(now time.Time) {
	if p.current >= 0 {
		p.phases[p.next][p.current] += now.Sub(p.phaseStart)
	}
	p.current = -1
}

// EndTick closes the running phase and records the tick.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.stopPhase(now)
	p.ticks[p.next] = now.Sub(p.tickStart)
	p.next = (p.next + 1) % len(p.ticks)
	p.count = min(p.count+1, len(p.ticks))
}

// PerfStats summarizes the window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	TicksPerSecond  float64

	PhaseAvg map[string]time.Duration // mean time per tick
	PhasePct map[string]float64       // share of the mean tick, in percent
}

// Stats aggregates the recorded ticks. The maps are never nil.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{
		PhaseAvg: make(map[string]time.Duration, len(Phases)),
		PhasePct: make(map[string]float64, len(Phases)),
	}
	if p.count == 0 {
		return stats
	}

	// Unfilled slots are zero, so summing the first count slots is enough.
	var total time.Duration
	sums := make([]time.Duration, len(Phases))
	for i := 0; i < p.count; i++ {
		d := p.ticks[i]
		total += d
		if i == 0 || d < stats.MinTickDuration {
			stats.MinTickDuration = d
		}
		stats.MaxTickDuration = max(stats.MaxTickDuration, d)
		for j, pd := range p.phases[i] {
			sums[j] += pd
		}
	}

	n := time.Duration(p.count)
	stats.AvgTickDuration = total / n
	if stats.AvgTickDuration > 0 {
		stats.TicksPerSecond = float64(time.Second) / float64(stats.AvgTickDuration)
	}
	for j, name := range Phases {
		if sums[j] == 0 {
			continue
		}
		avg := sums[j] / n
		stats.PhaseAvg[name] = avg
		if stats.AvgTickDuration > 0 {
			stats.PhasePct[name] = float64(avg) / float64(stats.AvgTickDuration) * 100
		}
	}
	return stats
}

// LogStats logs tick timing and every phase above 0.1% of the tick.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"min_tick_us", s.MinTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	for _, phase := range Phases {
		if pct := s.PhasePct[phase]; pct > 0.1 {
			attrs = append(attrs, phase+"_pct", float64(int(pct*10))/10)
		}
	}
	slog.Info("perf", attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd   int64   `csv:"window_end"`
	AvgTickUS   int64   `csv:"avg_tick_us"`
	MinTickUS   int64   `csv:"min_tick_us"`
	MaxTickUS   int64   `csv:"max_tick_us"`
	TicksPerSec float64 `csv:"ticks_per_sec"`
	WorldPct    float64 `csv:"world_pct"`
	AgingPct    float64 `csv:"aging_pct"`
	CommitPct   float64 `csv:"commit_pct"`
	PhysicsPct  float64 `csv:"physics_pct"`
	SensorsPct  float64 `csv:"sensors_pct"`
	ThinkPct    float64 `csv:"think_pct"`
	MovePct     float64 `csv:"move_pct"`
}

// ToCSV flattens s into a row ending at tick windowEnd.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:   windowEnd,
		AvgTickUS:   s.AvgTickDuration.Microseconds(),
		MinTickUS:   s.MinTickDuration.Microseconds(),
		MaxTickUS:   s.MaxTickDuration.Microseconds(),
		TicksPerSec: s.TicksPerSecond,
		WorldPct:    s.PhasePct[PhaseWorld],
		AgingPct:    s.PhasePct[PhaseAging],
		CommitPct:   s.PhasePct[PhaseCommit],
		PhysicsPct:  s.PhasePct[PhasePhysics],
		SensorsPct:  s.PhasePct[PhaseSensors],
		ThinkPct:    s.PhasePct[PhaseThink],
		MovePct:     s.PhasePct[PhaseMove],
	}
}
