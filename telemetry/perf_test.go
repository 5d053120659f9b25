package telemetry

import (
	"testing"
	"time"

	"github.com/dremok/oubli-forever-sub007/systems"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(systems.PhaseStep)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(systems.PhaseHeat)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}
	if _, ok := stats.PhaseAvg[systems.PhaseStep]; !ok {
		t.Error("expected step phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[systems.PhaseHeat]; !ok {
		t.Error("expected heat phase to be tracked")
	}

	row := stats.ToCSV(500)
	if row.WindowEnd != 500 || row.StepPct <= 0 || row.HeatPct <= 0 {
		t.Errorf("unexpected CSV row %+v", row)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(systems.PhaseStep)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration after window filled")
	}
	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
	if pc.sampleCount != 5 {
		t.Errorf("expected sample count capped at 5, got %d", pc.sampleCount)
	}
}

func TestPerfCollector_Empty(t *testing.T) {
	stats := NewPerfCollector(0).Stats()
	if stats.AvgTickDuration != 0 || stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Errorf("unexpected empty stats %+v", stats)
	}
}

func TestPerfCollector_UnknownPhase(t *testing.T) {
	pc := NewPerfCollector(4)
	for i := 0; i < 4; i++ {
		pc.StartTick()
		pc.StartPhase(systems.PhaseStep)
		pc.StartPhase("render")
		time.Sleep(50 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if _, ok := stats.PhaseAvg["render"]; !ok {
		t.Error("expected ad-hoc phase to be tracked")
	}
	if stats.P95TickDuration < stats.MinTickDuration || stats.P95TickDuration > stats.MaxTickDuration {
		t.Errorf("p95 %v outside [%v, %v]", stats.P95TickDuration, stats.MinTickDuration, stats.MaxTickDuration)
	}
}
