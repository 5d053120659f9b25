package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/dremok/oubli-forever-sub007/config"
)

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxGens := flag.Int("max-gens", 5000, "Maximum generations per run (cap)")
	rows := flag.Int("rows", 64, "Grid rows for evaluation runs")
	cols := flag.Int("cols", 64, "Grid columns for evaluation runs")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	// Every evaluation opens a session; keep only warnings.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	params := NewParamVector()
	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, uint64(*maxGens), evalSeeds, baseCfg, *rows, *cols)

	prog, err := newProgress(filepath.Join(*outputDir, "optimize_log.csv"), params, evaluator, *maxEvals)
	if err != nil {
		log.Fatal(err)
	}
	defer prog.close()

	problem := optimize.Problem{
		Func: prog.wrap(func(x []float64) float64 {
			return evaluator.Evaluate(params.Denormalize(x))
		}),
	}

	dim := params.Dim()
	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // seeds already run in parallel
	}

	fmt.Printf("Starting CMA-ES over %d parameters, population=%d, max_evals=%d\n", dim, popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, generations per run: %d, grid: %dx%d\n", *seeds, *maxGens, *rows, *cols)

	initX := params.Normalize(params.ExtractFromConfig(baseCfg))
	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	best := prog.bestParams
	if best == nil && result != nil {
		best = params.Clamp(params.Denormalize(result.X))
	}
	if best == nil {
		log.Fatal("no evaluations completed")
	}

	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", prog.evals, formatDuration(time.Since(prog.start)))
	fmt.Printf("Best fitness: %.0f\n\nBest parameters:\n", prog.bestFitness)
	for i, spec := range params.Specs {
		fmt.Printf("  %-24s %-22s %.6f\n", spec.Name, spec.Path, best[i])
	}

	bestCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to reload config: %v", err)
	}
	params.ApplyToConfig(bestCfg, best)

	out := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(out); err != nil {
		log.Printf("failed to write best config: %v", err)
		return
	}
	fmt.Printf("\nBest config saved to: %s\n", out)
}
