package game

import (
	"github.com/dremok/oubli-forever-sub007/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (s *Session) flushTelemetry() {
	gen := s.sim.Generation()
	if !s.collector.ShouldFlush(gen) {
		return
	}

	stats := s.collector.Flush(gen, telemetry.WindowState{
		Rule:          s.sim.Rules().Notation(),
		Population:    s.sim.Population(),
		MeanHeat:      s.sim.MeanHeat(),
		Shimmer:       s.sim.Stagnation().Shimmer,
		ActivePortals: s.sim.ActivePortals(),
		TotalPortals:  len(s.sim.PortalZones()),
		OldestAge:     uint64(s.sim.OldestCellAge()),
	})
	perfStats := s.perfCollector.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := s.outputManager.WriteTelemetry(stats); err != nil {
		s.log.Error("failed to write telemetry", "error", err)
	}
	if err := s.outputManager.WritePerf(perfStats, stats.WindowEndGen); err != nil {
		s.log.Error("failed to write perf", "error", err)
	}

	for _, bm := range s.bookmarkDetector.Check(stats) {
		if s.logStats {
			bm.LogBookmark()
		}
		if err := s.outputManager.WriteBookmark(bm); err != nil {
			s.log.Error("failed to write bookmark", "error", err)
		}
		if s.snapshotDir != "" {
			s.saveSnapshot(&bm)
		}
	}
}

// saveSnapshot writes the grid state alongside the bookmark that triggered it.
func (s *Session) saveSnapshot(bm *telemetry.Bookmark) {
	path, err := telemetry.SaveSnapshot(s.sim.Snapshot(s.runID, bm), s.snapshotDir)
	if err != nil {
		s.log.Error("failed to save snapshot", "error", err)
		return
	}
	s.log.Info("snapshot saved", "path", path, "generation", s.sim.Generation())
}
