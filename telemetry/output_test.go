package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dremok/oubli-forever-sub007/components"
	"github.com/dremok/oubli-forever-sub007/config"
)

func TestOutputManager_Disabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("expected nil manager, got %v, %v", om, err)
	}
	// All methods are nil-safe.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteEvents([]components.Event{components.NewStagnationEvent(1, 0.1)}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManager_WritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for i := 1; i <= 3; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEndGen: uint64(i * 100), Population: i}); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkPopulationCrash, Generation: 300, Description: "crash"}); err != nil {
		t.Fatal(err)
	}
	events := []components.Event{
		components.NewExtinctionEvent(5, 0.7),
		components.NewPortalActivatedEvent(6, 1),
	}
	if err := om.WriteEvents(events); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteEvents(events[:1]); err != nil {
		t.Fatal(err)
	}
	if err := om.WritePerf(PerfStats{PhasePct: map[string]float64{}}, 300); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(config.Cfg()); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		file      string
		wantLines int
		header    string
	}{
		{"telemetry.csv", 4, "window_end,rule,population"},
		{"bookmarks.csv", 2, "type,generation,description"},
		{"events.csv", 4, "generation,type,severity"},
		{"perf.csv", 2, "window_end,avg_tick_us"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join(dir, tt.file))
			if err != nil {
				t.Fatal(err)
			}
			lines := strings.Split(strings.TrimSpace(string(data)), "\n")
			if len(lines) != tt.wantLines {
				t.Errorf("expected %d lines, got %d:\n%s", tt.wantLines, len(lines), data)
			}
			if !strings.HasPrefix(lines[0], tt.header) {
				t.Errorf("unexpected header %q", lines[0])
			}
		})
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not written: %v", err)
	}
}

func TestOutputManager_PopulationChart(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer om.Close()

	history := make([]uint32, 200)
	for i := range history {
		history[i] = uint32(500 + (i%20)*10)
	}
	history[150] = 100
	markers := []components.ExtinctionMarker{
		{Generation: 1150, Severity: 0.8},
		{Generation: 10, Severity: 0.5}, // before the plotted range
	}

	if err := om.WritePopulationChart(history, 1000, markers); err != nil {
		t.Fatalf("WritePopulationChart: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, "population.png"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("population.png is empty")
	}

	// Too little history is skipped rather than failing.
	if err := om.WritePopulationChart([]uint32{1}, 0, nil); err != nil {
		t.Errorf("expected no error for short history, got %v", err)
	}
}
