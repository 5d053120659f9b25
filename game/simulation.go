package game

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/dremok/oubli-forever-sub007/components"
	"github.com/dremok/oubli-forever-sub007/systems"
	"github.com/dremok/oubli-forever-sub007/telemetry"
)

// PhaseTimer receives phase boundaries for profiling. *telemetry.PerfCollector
// satisfies it.
type PhaseTimer interface {
	StartPhase(phase string)
}

// Options configures a Simulation.
type Options struct {
	Seed   int64
	Params Params
	Timer  PhaseTimer // optional
}

// TickReport summarizes one call to Tick.
type TickReport struct {
	Generation uint64
	Population uint32
	Births     uint32
	Deaths     uint32
	Events     []components.Event
}

// Simulation owns the grid and every analytic buffer derived from it.
// Subsystems run in a fixed order inside Tick; nothing runs concurrently.
type Simulation struct {
	params Params
	seed   int64
	rng    *rand.Rand
	timer  PhaseTimer

	rules     *systems.RuleRegistry
	grid      *systems.Grid
	heat      *systems.HeatMap
	analytics *systems.PopulationAnalytics
	mutation  *systems.MutationInjector
	zones     []components.PortalZone

	lastReseeds int
}

// New creates a simulation and performs the initial Reset using the
// dimensions and density in opts.Params.
func New(opts Options) *Simulation {
	s := &Simulation{
		params: opts.Params,
		seed:   opts.Seed,
		timer:  opts.Timer,
		rules:  systems.NewRuleRegistry(opts.Params.InitialRule),
	}
	s.Reset(opts.Params.Rows, opts.Params.Cols, opts.Params.Seed.Density)
	return s
}

// Reset reinitializes every component for a rows x cols grid seeded at the
// given density. The RNG is reseeded from the simulation seed, so equal
// seeds give identical runs. Zero dimensions or a density outside [0,1]
// panic.
func (s *Simulation) Reset(rows, cols int, density float64) {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("game: reset with non-positive dimensions %dx%d", rows, cols))
	}
	if density < 0 || density > 1 || math.IsNaN(density) {
		panic(fmt.Sprintf("game: seed density %g outside [0,1]", density))
	}

	p := s.params
	p.Rows, p.Cols = rows, cols
	p.Seed.Density = density
	s.params = p

	s.rng = rand.New(rand.NewPCG(uint64(s.seed), 0))
	s.grid = systems.NewGrid(rows, cols)
	systems.Seed(s.grid, p.Seed, s.rng, s.seed)
	s.heat = systems.NewHeatMap(rows, cols, p.Heat)
	s.analytics = systems.NewPopulationAnalytics(p.Population)
	s.mutation = systems.NewMutationInjector(p.Mutation, s.rng)
	s.zones = systems.NewPortalZones(rows, cols, p.Portal)
	for i := range s.zones {
		systems.ReseedPortal(&s.zones[i], s.grid, p.Portal, s.rng)
	}
	s.lastReseeds = 0
}

// SetSeed changes the seed used by the next Reset.
func (s *Simulation) SetSeed(seed int64) { s.seed = seed }

// Seed returns the RNG seed of the current run.
func (s *Simulation) Seed() int64 { return s.seed }

func (s *Simulation) startPhase(phase string) {
	if s.timer != nil {
		s.timer.StartPhase(phase)
	}
}

// Tick advances the simulation by exactly one generation.
func (s *Simulation) Tick() TickReport {
	var events []components.Event
	p := s.params

	s.startPhase(systems.PhaseMutation)
	if pos, alive, ok := s.mutation.MaybeMutate(s.grid, s.rng); ok {
		events = append(events, components.NewCosmicMutationEvent(s.grid.Generation()+1, pos.Row, pos.Col, alive))
	}

	s.startPhase(systems.PhaseStep)
	rep := s.grid.Step(s.rules.Active())

	s.startPhase(systems.PhaseHeat)
	s.heat.Update(s.grid)

	s.startPhase(systems.PhaseAnalytics)
	events = append(events, s.analytics.Observe(uint32(rep.Population), rep.Generation)...)
	s.analytics.TrackOldest(s.grid)

	s.startPhase(systems.PhasePortals)
	s.lastReseeds = 0
	if p.Portal.CheckInterval > 0 && rep.Generation%p.Portal.CheckInterval == 0 {
		for i := range s.zones {
			if ev, ok := systems.CheckPortal(&s.zones[i], s.grid, p.Portal); ok {
				events = append(events, ev)
			}
		}
	}
	if p.Portal.ProtectInterval > 0 && rep.Generation%p.Portal.ProtectInterval == 0 {
		for i := range s.zones {
			if systems.ProtectPortal(&s.zones[i], s.grid, p.Portal, s.rng) {
				s.lastReseeds++
			}
		}
	}

	return TickReport{
		Generation: rep.Generation,
		Population: uint32(s.grid.Population()),
		Births:     uint32(rep.Births),
		Deaths:     uint32(rep.Deaths),
		Events:     events,
	}
}

// SetCell forces a cell alive or dead. Coordinates wrap.
func (s *Simulation) SetCell(row, col int, alive bool) {
	s.grid.SetCell(row, col, alive)
}

// ToggleRegion flips cells in a disc around center, each with probability
// density. Returns the number of cells flipped.
func (s *Simulation) ToggleRegion(center components.Coord, radius int, density float64) int {
	return s.grid.ToggleRegion(center, radius, density, s.rng)
}

// SelectRule switches the active rule from the next step on. An
// out-of-range index panics.
func (s *Simulation) SelectRule(index int) *systems.RuleSet {
	return s.rules.Select(index)
}

// Rules returns the rule registry.
func (s *Simulation) Rules() *systems.RuleRegistry { return s.rules }

// Grid exposes the grid for read-only inspection.
func (s *Simulation) Grid() *systems.Grid { return s.grid }

// Generation returns the number of completed steps since Reset.
func (s *Simulation) Generation() uint64 { return s.grid.Generation() }

// Population returns the current live cell count.
func (s *Simulation) Population() int { return s.grid.Population() }

// CellAge returns generations survived by the cell at (row, col); 0 if dead.
func (s *Simulation) CellAge(row, col int) uint64 {
	return s.grid.At(row, col).Age(s.grid.Generation())
}

// CellDeathCount returns how often the cell at (row, col) has died.
func (s *Simulation) CellDeathCount(row, col int) uint32 {
	return s.grid.At(row, col).DeathCount
}

// HeatAt returns the heat trail value at (row, col).
func (s *Simulation) HeatAt(row, col int) float32 {
	return s.heat.At(s.grid.Index(row, col))
}

// MeanHeat returns the average heat over the grid.
func (s *Simulation) MeanHeat() float64 { return s.heat.Mean() }

// PopulationHistory returns retained per-generation populations, oldest first.
func (s *Simulation) PopulationHistory() []uint32 { return s.analytics.History() }

// ExtinctionMarkers returns retained extinction markers, oldest first.
func (s *Simulation) ExtinctionMarkers() []components.ExtinctionMarker {
	return s.analytics.Markers()
}

// Stagnation returns the current stagnation state.
func (s *Simulation) Stagnation() components.StagnationState { return s.analytics.Stagnation() }

// PortalZones returns the portal zones. Callers must not modify them.
func (s *Simulation) PortalZones() []components.PortalZone { return s.zones }

// ActivePortals counts active portal zones.
func (s *Simulation) ActivePortals() int {
	n := 0
	for i := range s.zones {
		if s.zones[i].Active {
			n++
		}
	}
	return n
}

// LastReseeds returns how many portal zones the last Tick reseeded.
func (s *Simulation) LastReseeds() int { return s.lastReseeds }

// OldestCellAge returns the age of the oldest living cell as of the last
// Tick, saturating at MaxUint32.
func (s *Simulation) OldestCellAge() uint32 {
	age := s.analytics.OldestAge()
	if age > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(age)
}

// Snapshot captures the grid for replay.
func (s *Simulation) Snapshot(runID string, bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snap := &telemetry.Snapshot{
		Version:    telemetry.SnapshotVersion,
		RunID:      runID,
		RNGSeed:    s.seed,
		Rows:       s.grid.Rows(),
		Cols:       s.grid.Cols(),
		Rule:       s.rules.Notation(),
		Generation: s.grid.Generation(),
		Bookmark:   bookmark,
	}
	cols := s.grid.Cols()
	for i, c := range s.grid.Cells() {
		if !c.Alive() && c.DeathCount == 0 {
			continue
		}
		state := telemetry.CellState{Row: i / cols, Col: i % cols, BirthGen: c.BirthGen, DeathCount: c.DeathCount}
		if c.Alive() {
			snap.Live = append(snap.Live, state)
		} else {
			snap.Scars = append(snap.Scars, state)
		}
	}
	return snap
}

// Restore resets the simulation to the snapshot's dimensions, seed and rule,
// then reinstates its cells and generation. History, heat and portal
// stability start fresh.
func (s *Simulation) Restore(snap *telemetry.Snapshot) error {
	rule, ok := s.rules.Lookup(snap.Rule)
	if !ok {
		return fmt.Errorf("restoring snapshot: unknown rule %q", snap.Rule)
	}
	if snap.Rows <= 0 || snap.Cols <= 0 {
		return fmt.Errorf("restoring snapshot: invalid dimensions %dx%d", snap.Rows, snap.Cols)
	}

	cells := make([]components.Cell, snap.Rows*snap.Cols)
	for _, group := range [][]telemetry.CellState{snap.Live, snap.Scars} {
		for _, cs := range group {
			if cs.Row < 0 || cs.Row >= snap.Rows || cs.Col < 0 || cs.Col >= snap.Cols {
				return fmt.Errorf("restoring snapshot: cell (%d,%d) outside %dx%d", cs.Row, cs.Col, snap.Rows, snap.Cols)
			}
			if cs.BirthGen > snap.Generation+1 {
				return fmt.Errorf("restoring snapshot: cell (%d,%d) born after generation %d", cs.Row, cs.Col, snap.Generation)
			}
			cells[cs.Row*snap.Cols+cs.Col] = components.Cell{BirthGen: cs.BirthGen, DeathCount: cs.DeathCount}
		}
	}

	s.seed = snap.RNGSeed
	s.Reset(snap.Rows, snap.Cols, 0)
	s.grid.Load(cells, snap.Generation)
	s.rules.Select(rule)
	return nil
}
