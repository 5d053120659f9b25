package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/dremok/oubli-forever-sub007/config"
	"github.com/dremok/oubli-forever-sub007/game"
	"github.com/dremok/oubli-forever-sub007/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Int("stats-window", 0, "Stats window size in generations (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, chart and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N generations (0 = until interrupted)")
	rows := flag.Int("rows", 0, "Grid rows (0 = use config)")
	cols := flag.Int("cols", 0, "Grid columns (0 = use config)")
	density := flag.Float64("density", -1, "Initial seed density in [0,1] (negative = use config)")
	rule := flag.String("rule", "", "Initial rule by name or notation, e.g. HighLife or B36/S23")
	restore := flag.String("restore", "", "Resume from a snapshot file")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *rule != "" {
		cfg.Rules.Initial = *rule
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	params, err := game.ParamsFromConfig(cfg)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *rows > 0 {
		params.Rows = *rows
	}
	if *cols > 0 {
		params.Cols = *cols
	}
	if *density >= 0 {
		if *density > 1 {
			slog.Error("density must be in [0,1]", "density", *density)
			os.Exit(1)
		}
		params.Seed.Density = *density
	}

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	session, err := game.NewSession(game.SessionOptions{
		Seed:        rngSeed,
		Params:      params,
		LogStats:    *logStats,
		StatsWindow: *statsWindow,
		SnapshotDir: *snapshotDir,
		OutputDir:   *outputDir,
	})
	if err != nil {
		slog.Error("failed to start session", "error", err)
		os.Exit(1)
	}

	if *restore != "" {
		snap, err := telemetry.LoadSnapshot(*restore)
		if err == nil {
			err = session.Simulation().Restore(snap)
		}
		if err != nil {
			slog.Error("failed to restore snapshot", "path", *restore, "error", err)
			session.Close()
			os.Exit(1)
		}
		slog.Info("snapshot restored", "path", *restore, "generation", snap.Generation)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("starting simulation",
		"run_id", session.RunID(),
		"seed", rngSeed,
		"stats_window", *statsWindow,
		"max_ticks", *maxTicks,
	)

	sim := session.Simulation()
	for ctx.Err() == nil {
		session.Step()
		if *maxTicks > 0 && int(sim.Generation()) >= *maxTicks {
			slog.Info("max ticks reached", "generation", sim.Generation())
			break
		}
	}

	if err := session.Close(); err != nil {
		slog.Error("failed to close outputs", "error", err)
		os.Exit(1)
	}
}
