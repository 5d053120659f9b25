package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dremok/oubli-forever-sub007/telemetry"
)

func TestSession_WritesOutputs(t *testing.T) {
	dir := t.TempDir()
	p := DefaultParams()
	p.Rows, p.Cols = 40, 40

	var windows []telemetry.WindowStats
	s, err := NewSession(SessionOptions{
		Seed:          21,
		Params:        p,
		StatsWindow:   10,
		OutputDir:     dir,
		StatsCallback: func(stats telemetry.WindowStats) { windows = append(windows, stats) },
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if s.RunID() == "" {
		t.Error("expected a run ID")
	}

	for i := 0; i < 50; i++ {
		s.Step()
	}
	s.SelectRule(1)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if len(windows) != 5 {
		t.Fatalf("expected 5 stats windows, got %d", len(windows))
	}
	last := windows[len(windows)-1]
	if last.WindowEndGen != 50 || last.TotalPortals != len(p.Portal.Anchors) {
		t.Errorf("unexpected final window %+v", last)
	}

	for _, name := range []string{"telemetry.csv", "perf.csv", "bookmarks.csv", "events.csv", "config.yaml", "population.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestSession_WithoutOutput(t *testing.T) {
	p := quietParams()
	s, err := NewSession(SessionOptions{Seed: 1, Params: p, StatsWindow: 5})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	for i := 0; i < 12; i++ {
		s.Step()
	}
	if s.Simulation().Generation() != 12 {
		t.Errorf("expected generation 12, got %d", s.Simulation().Generation())
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestSession_SaveSnapshot(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSession(SessionOptions{Seed: 4, Params: quietParams(), SnapshotDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	for i := 0; i < 6; i++ {
		s.Step()
	}
	s.saveSnapshot(&telemetry.Bookmark{Type: telemetry.BookmarkStablePlateau, Generation: 6})

	path := filepath.Join(dir, "snapshot_6_stable_plateau.json")
	snap, err := telemetry.LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if snap.RunID != s.RunID() || snap.Generation != 6 || len(snap.Live) != s.Simulation().Population() {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}
