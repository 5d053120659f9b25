package telemetry

import (
	"log/slog"
	"slices"
	"time"

	"github.com/dremok/oubli-forever-sub007/systems"
)

// perfSample holds timing for one tick. phases is indexed by registry position.
type perfSample struct {
	tick   time.Duration
	phases []time.Duration
}

// PerfCollector times tick phases over a rolling window of ticks.
type PerfCollector struct {
	registry    *systems.SystemRegistry
	samples     []perfSample
	writeIndex  int
	sampleCount int

	current    []time.Duration
	tickStart  time.Time
	phaseStart time.Time
	lastPhase  int // -1 when no phase is open
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		registry:  systems.NewSystemRegistry(),
		samples:   make([]perfSample, windowSize),
		lastPhase: -1,
	}
}

// StartTick begins timing a new tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.current = p.current[:0]
	p.lastPhase = -1
}

// StartPhase closes the open phase, if any, and starts timing phase.
// Phases unknown to the registry are added to it.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	p.closePhase(now)

	i, ok := p.registry.Index(phase)
	if !ok {
		i = p.registry.Register(systems.SystemInfo{ID: phase, Name: phase, Category: "internal"})
	}
	p.phaseStart = now
	p.lastPhase = i
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.lastPhase < 0 {
		return
	}
	for len(p.current) <= p.lastPhase {
		p.current = append(p.current, 0)
	}
	p.current[p.lastPhase] += now.Sub(p.phaseStart)
}

// EndTick finishes the tick and records its sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)

	s := &p.samples[p.writeIndex]
	s.tick = now.Sub(p.tickStart)
	s.phases = append(s.phases[:0], p.current...)

	p.writeIndex = (p.writeIndex + 1) % len(p.samples)
	if p.sampleCount < len(p.samples) {
		p.sampleCount++
	}
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	P95TickDuration time.Duration

	// Average duration and share of tick time per phase ID
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64

	phaseOrder []string
}

// Stats aggregates the current window.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{
		PhaseAvg:   make(map[string]time.Duration),
		PhasePct:   make(map[string]float64),
		phaseOrder: p.registry.IDs(),
	}
	if p.sampleCount == 0 {
		return stats
	}

	ticks := make([]float64, p.sampleCount)
	phaseSum := make([]time.Duration, p.registry.Len())
	var total time.Duration
	for i, s := range p.samples[:p.sampleCount] {
		ticks[i] = float64(s.tick)
		total += s.tick
		for j, d := range s.phases {
			phaseSum[j] += d
		}
	}
	slices.Sort(ticks)

	n := time.Duration(p.sampleCount)
	stats.AvgTickDuration = total / n
	stats.MinTickDuration = time.Duration(ticks[0])
	stats.MaxTickDuration = time.Duration(ticks[len(ticks)-1])
	stats.P95TickDuration = time.Duration(Percentile(ticks, 0.95))

	for j, sum := range phaseSum {
		if sum == 0 {
			continue
		}
		id := stats.phaseOrder[j]
		avg := sum / n
		stats.PhaseAvg[id] = avg
		if stats.AvgTickDuration > 0 {
			stats.PhasePct[id] = float64(avg) / float64(stats.AvgTickDuration) * 100
		}
	}
	if stats.AvgTickDuration > 0 {
		stats.TicksPerSecond = float64(time.Second) / float64(stats.AvgTickDuration)
	}
	return stats
}

// LogStats logs performance statistics, phases in execution order.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"p95_tick_us", s.P95TickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	for _, phase := range s.phaseOrder {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", float64(int(pct*10))/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("p95_tick_us", s.P95TickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	for _, phase := range s.phaseOrder {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is the flat perf.csv row.
type PerfStatsCSV struct {
	WindowEnd    uint64  `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	P95TickUS    int64   `csv:"p95_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	MutationPct  float64 `csv:"mutation_pct"`
	StepPct      float64 `csv:"step_pct"`
	HeatPct      float64 `csv:"heat_pct"`
	AnalyticsPct float64 `csv:"analytics_pct"`
	PortalsPct   float64 `csv:"portals_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd uint64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		P95TickUS:    s.P95TickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		MutationPct:  s.PhasePct[systems.PhaseMutation],
		StepPct:      s.PhasePct[systems.PhaseStep],
		HeatPct:      s.PhasePct[systems.PhaseHeat],
		AnalyticsPct: s.PhasePct[systems.PhaseAnalytics],
		PortalsPct:   s.PhasePct[systems.PhasePortals],
		TelemetryPct: s.PhasePct[systems.PhaseTelemetry],
	}
}
