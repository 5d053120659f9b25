package game

import (
	"fmt"

	"github.com/dremok/oubli-forever-sub007/config"
	"github.com/dremok/oubli-forever-sub007/systems"
)

// Default grid dimensions
const (
	DefaultRows = 120
	DefaultCols = 160
)

// Params holds every engine constant for one simulation.
type Params struct {
	Rows        int
	Cols        int
	InitialRule int

	Seed       systems.SeedParams
	Portal     systems.PortalParams
	Heat       systems.HeatParams
	Population systems.PopulationParams
	Mutation   systems.MutationParams
}

// DefaultParams returns the built-in engine constants.
func DefaultParams() Params {
	return Params{
		Rows:        DefaultRows,
		Cols:        DefaultCols,
		InitialRule: int(systems.RuleConway),
		Seed:        systems.DefaultSeedParams(),
		Portal:      systems.DefaultPortalParams(),
		Heat:        systems.DefaultHeatParams(),
		Population:  systems.DefaultPopulationParams(),
		Mutation:    systems.DefaultMutationParams(),
	}
}

// ParamsFromConfig maps the loaded configuration onto engine parameters.
func ParamsFromConfig(cfg *config.Config) (Params, error) {
	p := DefaultParams()

	p.Rows = cfg.Grid.Rows
	p.Cols = cfg.Grid.Cols

	if cfg.Rules.Initial != "" {
		idx, ok := systems.NewRuleRegistry(0).Lookup(cfg.Rules.Initial)
		if !ok {
			return p, fmt.Errorf("unknown rule %q", cfg.Rules.Initial)
		}
		p.InitialRule = idx
	}

	p.Seed.Density = cfg.Grid.SeedDensity
	p.Seed.NoiseScale = cfg.Grid.SeedNoiseScale
	p.Seed.NoiseWeight = cfg.Grid.SeedNoiseWeight
	p.Seed.Octaves = cfg.Grid.SeedOctaves

	if len(cfg.Portal.Anchors) > 0 {
		p.Portal.Anchors = make([]systems.PortalAnchor, len(cfg.Portal.Anchors))
		for i, a := range cfg.Portal.Anchors {
			p.Portal.Anchors[i] = systems.PortalAnchor{Row: a.Row, Col: a.Col}
		}
	}
	p.Portal.WindowRadius = cfg.Portal.WindowRadius
	p.Portal.StabilityThreshold = uint32(max(cfg.Portal.StabilityThreshold, 0))
	p.Portal.CheckInterval = uint64(cfg.Portal.CheckInterval)
	p.Portal.ProtectInterval = uint64(cfg.Portal.ProtectInterval)
	p.Portal.MaxCells = cfg.Portal.MaxCells

	p.Heat = systems.HeatParams{
		Accumulate: float32(cfg.Heat.Accumulate),
		Decay:      float32(cfg.Heat.Decay),
		Epsilon:    float32(cfg.Heat.Epsilon),
	}

	p.Population = systems.PopulationParams{
		HistoryCapacity:         cfg.Population.HistoryCapacity,
		ExtinctionFraction:      cfg.Population.ExtinctionFraction,
		ExtinctionMinPopulation: uint32(max(cfg.Population.ExtinctionMinPopulation, 0)),
		MarkerCapacity:          cfg.Population.MarkerCapacity,
		StagnationBand:          cfg.Population.StagnationBand,
		StagnationThreshold:     uint32(max(cfg.Population.StagnationThreshold, 0)),
		ShimmerRamp:             cfg.Population.ShimmerRamp,
		ShimmerDecay:            cfg.Population.ShimmerDecay,
	}

	p.Mutation = systems.MutationParams{
		Enabled:     cfg.Mutation.Enabled,
		MinInterval: cfg.Mutation.MinInterval,
		MaxInterval: cfg.Mutation.MaxInterval,
	}

	return p, nil
}
