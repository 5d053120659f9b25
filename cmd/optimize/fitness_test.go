package main

import (
	"math"
	"testing"

	"github.com/dremok/oubli-forever-sub007/config"
	"github.com/dremok/oubli-forever-sub007/telemetry"
)

func init() {
	config.MustInit("")
}

func TestParamVector_RoundTrip(t *testing.T) {
	pv := NewParamVector()
	def := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(def[i]-back[i]) > 1e-9 {
			t.Errorf("%s: %g != %g", pv.Specs[i].Name, def[i], back[i])
		}
	}
}

func TestParamVector_ApplyToConfig(t *testing.T) {
	pv := NewParamVector()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}

	// Out-of-range values are clamped before being applied.
	pv.ApplyToConfig(cfg, []float64{2, 1, -1, 50, 25, 0.5})

	if cfg.Grid.SeedDensity != 0.6 {
		t.Errorf("density not clamped: %g", cfg.Grid.SeedDensity)
	}
	if cfg.Grid.SeedNoiseWeight != 0 {
		t.Errorf("noise weight not clamped: %g", cfg.Grid.SeedNoiseWeight)
	}
	if cfg.Mutation.MinInterval != 50 || cfg.Mutation.MaxInterval != 75 {
		t.Errorf("intervals %d..%d", cfg.Mutation.MinInterval, cfg.Mutation.MaxInterval)
	}
	if cfg.Heat.Decay != 0.8 {
		t.Errorf("decay not clamped: %g", cfg.Heat.Decay)
	}

	got := pv.ExtractFromConfig(cfg)
	if got[3] != 50 || got[4] != 25 {
		t.Errorf("extract mismatch: %v", got)
	}
}

func TestComputeQuality(t *testing.T) {
	const cells = 1000

	window := func(popMean float64, stagnations, active int) telemetry.WindowStats {
		return telemetry.WindowStats{PopMean: popMean, Stagnations: stagnations, ActivePortals: active, TotalPortals: 3}
	}

	tests := []struct {
		name    string
		windows []telemetry.WindowStats
		wantMin float64
		wantMax float64
	}{
		{"too few windows", []telemetry.WindowStats{window(120, 0, 3)}, 0, 0},
		{
			name: "lively",
			windows: []telemetry.WindowStats{
				window(0, 0, 0), window(0, 0, 0),
				window(110, 0, 3), window(125, 0, 3), window(135, 0, 3), window(120, 0, 3),
			},
			wantMin: 0.75, wantMax: 1,
		},
		{
			name: "dead and stuck",
			windows: []telemetry.WindowStats{
				window(0, 0, 0), window(0, 0, 0),
				window(1, 1, 0), window(1, 1, 0), window(1, 1, 0),
			},
			wantMin: 0, wantMax: 0.15,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := computeQuality(tt.windows, cells)
			if q < tt.wantMin || q > tt.wantMax {
				t.Errorf("quality %g outside [%g, %g]", q, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestEvaluate_Runs(t *testing.T) {
	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, 200, []int64{1, 2}, config.Cfg(), 32, 32)

	f := fe.Evaluate(pv.DefaultVector())
	if math.IsInf(f, 0) || f > 0 {
		t.Errorf("unexpected fitness %g", f)
	}
	if q := fe.LastQuality(); q < 0 || q > 1 {
		t.Errorf("quality %g outside [0,1]", q)
	}
}
