package telemetry

import (
	"log/slog"
	"sort"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowEndTick int64   `csv:"window_end"`
	SimTimeSec    float64 `csv:"sim_time"`
	Generation    int     `csv:"generation"`

	// Population counts at window end
	Vegans     int `csv:"vegans"`
	Carnivores int `csv:"carnivores"`
	Foods      int `csv:"foods"`

	// Events during window
	VeganBirths       int `csv:"vegan_births"`
	CarnivoreBirths   int `csv:"carnivore_births"`
	StarvedVegans     int `csv:"starved_vegans"`
	StarvedCarnivores int `csv:"starved_carnivores"`
	Predations        int `csv:"predations"`
	Meals             int `csv:"meals"`
	Matings           int `csv:"matings"`
	Contacts          int `csv:"contacts"`

	// Hunger distribution (sampled at window end)
	HungerMean float64 `csv:"hunger_mean"`
	HungerP10  float64 `csv:"hunger_p10"`
	HungerP50  float64 `csv:"hunger_p50"`
	HungerP90  float64 `csv:"hunger_p90"`

	// Life distribution (sampled at window end)
	LifeMean float64 `csv:"life_mean"`
	LifeP50  float64 `csv:"life_p50"`
	LifeP90  float64 `csv:"life_p90"`

	// Mean body radius, tracks trait drift
	RadiusMean float64 `csv:"radius_mean"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeStats calculates mean and percentiles of values.
func ComputeStats(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("generation", s.Generation),
		slog.Int("vegans", s.Vegans),
		slog.Int("carnivores", s.Carnivores),
		slog.Int("foods", s.Foods),
		slog.Int("vegan_births", s.VeganBirths),
		slog.Int("carnivore_births", s.CarnivoreBirths),
		slog.Int("starved_vegans", s.StarvedVegans),
		slog.Int("starved_carnivores", s.StarvedCarnivores),
		slog.Int("predations", s.Predations),
		slog.Int("meals", s.Meals),
		slog.Int("matings", s.Matings),
		slog.Float64("hunger_mean", s.HungerMean),
		slog.Float64("life_mean", s.LifeMean),
		slog.Float64("life_p90", s.LifeP90),
		slog.Float64("radius_mean", s.RadiusMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"generation", s.Generation,
		"vegans", s.Vegans,
		"carnivores", s.Carnivores,
		"foods", s.Foods,
		"vegan_births", s.VeganBirths,
		"carnivore_births", s.CarnivoreBirths,
		"starved_vegans", s.StarvedVegans,
		"starved_carnivores", s.StarvedCarnivores,
		"predations", s.Predations,
		"meals", s.Meals,
		"matings", s.Matings,
		"hunger_p50", s.HungerP50,
		"life_p90", s.LifeP90,
		"radius_mean", s.RadiusMean,
	)
}
