package main

import (
	"math"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dremok/oubli-forever-sub007/config"
	"github.com/dremok/oubli-forever-sub007/game"
	"github.com/dremok/oubli-forever-sub007/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxGens     uint64
	seeds       []int64
	baseConfig  *config.Config
	statsWindow int
	rows, cols  int

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxGens uint64, seeds []int64, baseCfg *config.Config, rows, cols int) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxGens:     maxGens,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 100,
		rows:        rows,
		cols:        cols,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalGens uint64                  // generations before the grid died out (or maxGens)
	cells        int                     // grid area, for density scores
	windowStats  []telemetry.WindowStats // collected via StatsCallback each window
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Seeds run in parallel; a failed run scores +Inf.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	params, err := game.ParamsFromConfig(cfg)
	if err != nil {
		return math.Inf(1)
	}
	params.Rows, params.Cols = fe.rows, fe.cols

	results := make([]seedResult, len(fe.seeds))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, seed := range fe.seeds {
		g.Go(func() error {
			r, err := fe.runSimulation(params, seed)
			if err != nil {
				return err
			}
			results[i] = seedResult{
				fitness: computeFitness(r),
				quality: computeQuality(r.windowStats, r.cells),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return math.Inf(1)
	}

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}
	n := float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless run until the grid dies out or
// maxGens is reached.
func (fe *FitnessEvaluator) runSimulation(params game.Params, seed int64) (*runResult, error) {
	result := &runResult{cells: params.Rows * params.Cols}

	s, err := game.NewSession(game.SessionOptions{
		Seed:        seed,
		Params:      params,
		StatsWindow: fe.statsWindow,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		return nil, err
	}
	defer s.Close()

	for s.Simulation().Generation() < fe.maxGens {
		if rep := s.Step(); rep.Population == 0 {
			result.survivalGens = rep.Generation
			return result, nil
		}
	}
	result.survivalGens = fe.maxGens
	return result, nil
}

// copyConfig creates a copy of the base config with fresh slices.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Portal.Anchors = append([]config.PortalAnchorConfig(nil), fe.baseConfig.Portal.Anchors...)
	return &cfg
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survivalGens × (1.0 + 0.2 × quality))
func computeFitness(r *runResult) float64 {
	survival := float64(r.survivalGens)
	quality := computeQuality(r.windowStats, r.cells)
	return -(survival * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightDensity = 0.35
	qualityWeightMotion  = 0.25
	qualityWeightPortals = 0.25
	qualityWeightSpread  = 0.15

	qualityWarmupWindows = 2    // skip first N windows (warmup)
	targetDensity        = 0.12 // live fraction that reads as busy but not noisy
)

// computeQuality scores a run in [0, 1] from its window stats.
func computeQuality(windows []telemetry.WindowStats, cells int) float64 {
	if len(windows) <= qualityWarmupWindows || cells <= 0 {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	var densitySum, motionSum, portalSum float64
	means := make([]float64, 0, len(valid))
	for _, w := range valid {
		d := w.PopMean / float64(cells)
		densitySum += math.Exp(-math.Pow((d-targetDensity)/0.08, 2))

		if w.Stagnations == 0 {
			motionSum++
		}
		if w.TotalPortals > 0 {
			portalSum += float64(w.ActivePortals) / float64(w.TotalPortals)
		}
		means = append(means, w.PopMean)
	}
	n := float64(len(valid))

	// Some drift between windows is wanted, wild swings are not.
	cv := telemetry.CoefficientOfVariation(means)
	spreadScore := math.Exp(-math.Pow((cv-0.1)/0.1, 2))

	quality := qualityWeightDensity*densitySum/n +
		qualityWeightMotion*motionSum/n +
		qualityWeightPortals*portalSum/n +
		qualityWeightSpread*spreadScore

	return clamp01(quality)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
