package game

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dremok/oubli-forever-sub007/config"
	"github.com/dremok/oubli-forever-sub007/systems"
	"github.com/dremok/oubli-forever-sub007/telemetry"
)

// SessionOptions configures a headless run.
type SessionOptions struct {
	Seed          int64
	Params        Params
	LogStats      bool                            // log window stats and bookmarks
	StatsWindow   int                             // generations per stats window; 0 uses config
	SnapshotDir   string                          // directory for bookmark snapshots (empty = disabled)
	OutputDir     string                          // directory for CSV output (empty = disabled)
	StatsCallback func(stats telemetry.WindowStats) // called on each window flush
}

// Session drives a Simulation and feeds its telemetry pipeline.
type Session struct {
	runID string
	sim   *Simulation
	log   *slog.Logger

	collector        *telemetry.Collector
	bookmarkDetector *telemetry.BookmarkDetector
	perfCollector    *telemetry.PerfCollector
	outputManager    *telemetry.OutputManager

	logStats      bool
	snapshotDir   string
	statsCallback func(stats telemetry.WindowStats)
}

// NewSession creates a simulation plus its collectors and output files.
func NewSession(opts SessionOptions) (*Session, error) {
	cfg := config.Cfg()

	statsWindow := opts.StatsWindow
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, err
	}

	runID := uuid.NewString()
	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)

	s := &Session{
		runID:            runID,
		log:              slog.With("run_id", runID),
		collector:        telemetry.NewCollector(statsWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize),
		perfCollector:    perf,
		outputManager:    om,
		logStats:         opts.LogStats,
		snapshotDir:      opts.SnapshotDir,
		statsCallback:    opts.StatsCallback,
	}
	s.sim = New(Options{Seed: opts.Seed, Params: opts.Params, Timer: perf})

	s.log.Info("session started",
		"seed", opts.Seed,
		"rows", opts.Params.Rows,
		"cols", opts.Params.Cols,
		"rule", s.sim.Rules().Notation(),
		"population", s.sim.Population(),
	)
	return s, nil
}

// RunID returns the unique identifier of this run.
func (s *Session) RunID() string { return s.runID }

// Simulation returns the driven simulation.
func (s *Session) Simulation() *Simulation { return s.sim }

// Step advances one generation and records its telemetry.
func (s *Session) Step() TickReport {
	s.perfCollector.StartTick()
	rep := s.sim.Tick()

	s.perfCollector.StartPhase(systems.PhaseTelemetry)
	s.collector.RecordStep(int(rep.Births), int(rep.Deaths), int(rep.Population))
	for _, ev := range rep.Events {
		s.collector.RecordEvent(ev)
		if s.logStats {
			s.log.Info("event", "event", ev)
		}
	}
	for range s.sim.LastReseeds() {
		s.collector.RecordReseed()
	}
	if err := s.outputManager.WriteEvents(rep.Events); err != nil {
		s.log.Error("failed to write events", "error", err)
	}

	s.flushTelemetry()
	s.perfCollector.EndTick()
	return rep
}

// SelectRule switches the active rule. An out-of-range index panics.
func (s *Session) SelectRule(index int) {
	rule := s.sim.SelectRule(index)
	s.log.Info("rule selected", "rule", rule.Notation(), "name", rule.Name, "generation", s.sim.Generation())
}

// Close writes the population chart and closes output files.
func (s *Session) Close() error {
	history := s.sim.PopulationHistory()
	var firstGen uint64
	if n := uint64(len(history)); n > 0 && s.sim.Generation() >= n {
		firstGen = s.sim.Generation() - n + 1
	}
	chartErr := s.outputManager.WritePopulationChart(history, firstGen, s.sim.ExtinctionMarkers())
	return errors.Join(chartErr, s.outputManager.Close())
}
