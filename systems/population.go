package systems

import (
	"math"

	"github.com/dremok/oubli-forever-sub007/components"
)

// PopulationParams controls population analytics.
type PopulationParams struct {
	HistoryCapacity         int
	ExtinctionFraction      float64 // extinction when new < fraction*prev
	ExtinctionMinPopulation uint32  // prev must exceed this to count
	MarkerCapacity          int
	StagnationBand          float64 // relative band around the previous value
	StagnationThreshold     uint32  // stagnant steps before shimmer ramps
	ShimmerRamp             float64 // added per stagnant step past the threshold
	ShimmerDecay            float64 // multiplier applied on excursion
}

// DefaultPopulationParams returns the standard analytics constants.
func DefaultPopulationParams() PopulationParams {
	return PopulationParams{
		HistoryCapacity:         512,
		ExtinctionFraction:      0.6,
		ExtinctionMinPopulation: 50,
		MarkerCapacity:          16,
		StagnationBand:          0.05,
		StagnationThreshold:     60,
		ShimmerRamp:             0.02,
		ShimmerDecay:            0.92,
	}
}

// PopulationAnalytics tracks population history, extinction events and
// stagnation. Its behavior is determined entirely by the populations it has
// observed.
type PopulationAnalytics struct {
	params PopulationParams

	// Ring buffer of populations
	history []uint32
	head    int
	count   int

	last    uint32
	hasLast bool

	markers    []components.ExtinctionMarker
	stagnation components.StagnationState

	oldestAge uint64
	oldestPos components.Coord
}

// NewPopulationAnalytics creates an empty tracker.
func NewPopulationAnalytics(p PopulationParams) *PopulationAnalytics {
	if p.HistoryCapacity <= 0 {
		p.HistoryCapacity = 1
	}
	return &PopulationAnalytics{
		params:  p,
		history: make([]uint32, p.HistoryCapacity),
	}
}

// Observe records one generation's population and returns any extinction or
// stagnation events it triggers.
func (a *PopulationAnalytics) Observe(pop uint32, gen uint64) []components.Event {
	var events []components.Event
	p := a.params

	a.history[a.head] = pop
	a.head = (a.head + 1) % len(a.history)
	if a.count < len(a.history) {
		a.count++
	}

	if a.hasLast {
		prev := a.last

		if prev > p.ExtinctionMinPopulation && float64(pop) < p.ExtinctionFraction*float64(prev) {
			severity := clamp01(1 - float64(pop)/float64(prev))
			events = append(events, components.NewExtinctionEvent(gen, severity))
			a.addMarker(components.ExtinctionMarker{Generation: gen, Severity: severity})
		}

		if math.Abs(float64(pop)-float64(prev)) <= p.StagnationBand*float64(prev) {
			a.stagnation.Counter++
			if a.stagnation.Counter > p.StagnationThreshold {
				a.stagnation.Shimmer = clamp01(a.stagnation.Shimmer + p.ShimmerRamp)
				// Fire at onset, then once per threshold-length run.
				if p.StagnationThreshold == 0 || (a.stagnation.Counter-p.StagnationThreshold-1)%p.StagnationThreshold == 0 {
					events = append(events, components.NewStagnationEvent(gen, a.stagnation.Shimmer))
				}
			}
		} else {
			a.stagnation.Counter = 0
			a.stagnation.Shimmer *= p.ShimmerDecay
		}
	}

	a.last = pop
	a.hasLast = true
	return events
}

// TrackOldest scans the grid for the oldest living cell.
func (a *PopulationAnalytics) TrackOldest(g *Grid) {
	pos, age, ok := g.Oldest()
	if !ok {
		a.oldestAge = 0
		return
	}
	a.oldestAge = age
	a.oldestPos = pos
}

// OldestAge returns the age of the oldest living cell at the last scan.
func (a *PopulationAnalytics) OldestAge() uint64 { return a.oldestAge }

// OldestPos returns the position of the oldest living cell at the last scan.
func (a *PopulationAnalytics) OldestPos() components.Coord { return a.oldestPos }

// History returns the retained populations, oldest first.
func (a *PopulationAnalytics) History() []uint32 {
	out := make([]uint32, a.count)
	start := (a.head - a.count + len(a.history)) % len(a.history)
	for i := 0; i < a.count; i++ {
		out[i] = a.history[(start+i)%len(a.history)]
	}
	return out
}

// Markers returns the retained extinction markers, oldest first.
func (a *PopulationAnalytics) Markers() []components.ExtinctionMarker { return a.markers }

// Stagnation returns the current stagnation state.
func (a *PopulationAnalytics) Stagnation() components.StagnationState { return a.stagnation }

func (a *PopulationAnalytics) addMarker(m components.ExtinctionMarker) {
	if a.params.MarkerCapacity <= 0 {
		return
	}
	if len(a.markers) >= a.params.MarkerCapacity {
		copy(a.markers, a.markers[1:])
		a.markers = a.markers[:len(a.markers)-1]
	}
	a.markers = append(a.markers, m)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
