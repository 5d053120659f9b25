package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of generations.
type WindowStats struct {
	WindowStartGen uint64 `csv:"-"`
	WindowEndGen   uint64 `csv:"window_end"`
	Rule           string `csv:"rule"`

	// Population at window end
	Population int `csv:"population"`

	// Events during window
	Births              int     `csv:"births"`
	Deaths              int     `csv:"deaths"`
	Mutations           int     `csv:"mutations"`
	Extinctions         int     `csv:"extinctions"`
	MaxSeverity         float64 `csv:"max_severity"`
	Stagnations         int     `csv:"stagnations"`
	PortalActivations   int     `csv:"portal_activations"`
	PortalDeactivations int     `csv:"portal_deactivations"`
	PortalReseeds       int     `csv:"portal_reseeds"`

	// Population distribution across the window
	PopMean float64 `csv:"pop_mean"`
	PopStd  float64 `csv:"pop_std"`
	PopP10  float64 `csv:"pop_p10"`
	PopP50  float64 `csv:"pop_p50"`
	PopP90  float64 `csv:"pop_p90"`

	// State sampled at window end
	MeanHeat      float64 `csv:"mean_heat"`
	Shimmer       float64 `csv:"shimmer"`
	ActivePortals int     `csv:"active_portals"`
	TotalPortals  int     `csv:"total_portals"`
	OldestAge     uint64  `csv:"oldest_age"`
}

// Percentile returns the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputePopulationStats calculates mean, std, and percentiles from
// per-generation population samples.
func ComputePopulationStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}
	if n == 1 {
		return values[0], 0, values[0], values[0], values[0]
	}

	mean, std = stat.MeanStdDev(values, nil)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// CoefficientOfVariation returns std/mean, or 0 when the mean is 0.
func CoefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStartGen),
		slog.Uint64("window_end", s.WindowEndGen),
		slog.String("rule", s.Rule),
		slog.Int("population", s.Population),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Int("mutations", s.Mutations),
		slog.Int("extinctions", s.Extinctions),
		slog.Float64("max_severity", s.MaxSeverity),
		slog.Int("stagnations", s.Stagnations),
		slog.Int("portal_activations", s.PortalActivations),
		slog.Int("portal_deactivations", s.PortalDeactivations),
		slog.Int("portal_reseeds", s.PortalReseeds),
		slog.Float64("pop_mean", s.PopMean),
		slog.Float64("pop_std", s.PopStd),
		slog.Float64("pop_p10", s.PopP10),
		slog.Float64("pop_p50", s.PopP50),
		slog.Float64("pop_p90", s.PopP90),
		slog.Float64("mean_heat", s.MeanHeat),
		slog.Float64("shimmer", s.Shimmer),
		slog.Int("active_portals", s.ActivePortals),
		slog.Uint64("oldest_age", s.OldestAge),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndGen,
		"rule", s.Rule,
		"population", s.Population,
		"births", s.Births,
		"deaths", s.Deaths,
		"mutations", s.Mutations,
		"extinctions", s.Extinctions,
		"max_severity", s.MaxSeverity,
		"stagnations", s.Stagnations,
		"portal_activations", s.PortalActivations,
		"portal_deactivations", s.PortalDeactivations,
		"portal_reseeds", s.PortalReseeds,
		"pop_mean", s.PopMean,
		"pop_std", s.PopStd,
		"pop_p50", s.PopP50,
		"mean_heat", s.MeanHeat,
		"shimmer", s.Shimmer,
		"active_portals", s.ActivePortals,
		"oldest_age", s.OldestAge,
	)
}
