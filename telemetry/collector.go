package telemetry

import "github.com/dremok/oubli-forever-sub007/components"

// Collector accumulates per-generation counts and events within windows and
// produces WindowStats.
type Collector struct {
	windowGens uint64

	// Current window tracking
	windowStartGen uint64

	// Counters for current window
	births              int
	deaths              int
	mutations           int
	extinctions         int
	maxSeverity         float64
	stagnations         int
	portalActivations   int
	portalDeactivations int
	portalReseeds       int

	popSamples []float64
}

// NewCollector creates a new stats collector.
// windowGens: how many generations each stats window spans.
func NewCollector(windowGens int) *Collector {
	if windowGens < 1 {
		windowGens = 1
	}
	return &Collector{
		windowGens: uint64(windowGens),
		popSamples: make([]float64, 0, windowGens),
	}
}

// RecordStep records one generation's births, deaths and population.
func (c *Collector) RecordStep(births, deaths, population int) {
	c.births += births
	c.deaths += deaths
	c.popSamples = append(c.popSamples, float64(population))
}

// RecordEvent counts a simulation event.
func (c *Collector) RecordEvent(ev components.Event) {
	switch ev.Type {
	case components.EventExtinction:
		c.extinctions++
		if ev.Severity > c.maxSeverity {
			c.maxSeverity = ev.Severity
		}
	case components.EventStagnation:
		c.stagnations++
	case components.EventPortalActivated:
		c.portalActivations++
	case components.EventPortalDeactivated:
		c.portalDeactivations++
	case components.EventCosmicMutation:
		c.mutations++
	}
}

// RecordReseed records a portal reseed.
func (c *Collector) RecordReseed() {
	c.portalReseeds++
}

// ShouldFlush returns true if enough generations have passed to flush the window.
func (c *Collector) ShouldFlush(gen uint64) bool {
	return gen-c.windowStartGen >= c.windowGens
}

// WindowState is the simulation state sampled at the end of a window.
type WindowState struct {
	Rule          string
	Population    int
	MeanHeat      float64
	Shimmer       float64
	ActivePortals int
	TotalPortals  int
	OldestAge     uint64
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(gen uint64, state WindowState) WindowStats {
	mean, std, p10, p50, p90 := ComputePopulationStats(c.popSamples)

	stats := WindowStats{
		WindowStartGen: c.windowStartGen,
		WindowEndGen:   gen,
		Rule:           state.Rule,

		Population: state.Population,

		Births:              c.births,
		Deaths:              c.deaths,
		Mutations:           c.mutations,
		Extinctions:         c.extinctions,
		MaxSeverity:         c.maxSeverity,
		Stagnations:         c.stagnations,
		PortalActivations:   c.portalActivations,
		PortalDeactivations: c.portalDeactivations,
		PortalReseeds:       c.portalReseeds,

		PopMean: mean,
		PopStd:  std,
		PopP10:  p10,
		PopP50:  p50,
		PopP90:  p90,

		MeanHeat:      state.MeanHeat,
		Shimmer:       state.Shimmer,
		ActivePortals: state.ActivePortals,
		TotalPortals:  state.TotalPortals,
		OldestAge:     state.OldestAge,
	}

	// Reset for next window
	c.windowStartGen = gen
	c.births = 0
	c.deaths = 0
	c.mutations = 0
	c.extinctions = 0
	c.maxSeverity = 0
	c.stagnations = 0
	c.portalActivations = 0
	c.portalDeactivations = 0
	c.portalReseeds = 0
	c.popSamples = c.popSamples[:0]

	return stats
}

// WindowGenerations returns the number of generations per window.
func (c *Collector) WindowGenerations() uint64 {
	return c.windowGens
}
