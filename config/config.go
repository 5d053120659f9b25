// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Grid       GridConfig       `yaml:"grid"`
	Rules      RulesConfig      `yaml:"rules"`
	Portal     PortalConfig     `yaml:"portal"`
	Heat       HeatConfig       `yaml:"heat"`
	Population PopulationConfig `yaml:"population"`
	Mutation   MutationConfig   `yaml:"mutation"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Bookmarks  BookmarksConfig  `yaml:"bookmarks"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// GridConfig holds grid dimensions and initial seeding parameters.
type GridConfig struct {
	Rows            int     `yaml:"rows"`
	Cols            int     `yaml:"cols"`
	SeedDensity     float64 `yaml:"seed_density"`      // Probability a cell starts alive
	SeedNoiseScale  float64 `yaml:"seed_noise_scale"`  // Clustering feature size
	SeedNoiseWeight float64 `yaml:"seed_noise_weight"` // 0 = uniform, 1 = fully clustered
	SeedOctaves     int     `yaml:"seed_octaves"`
}

// RulesConfig selects the rule active at reset.
type RulesConfig struct {
	Initial string `yaml:"initial"` // Rule name or B/S notation
}

// PortalAnchorConfig positions a portal zone as fractions of the grid.
type PortalAnchorConfig struct {
	Row float64 `yaml:"row"`
	Col float64 `yaml:"col"`
}

// PortalConfig holds portal stability detector parameters.
type PortalConfig struct {
	Anchors            []PortalAnchorConfig `yaml:"anchors"`
	WindowRadius       int                  `yaml:"window_radius"`
	StabilityThreshold int                  `yaml:"stability_threshold"` // Repeated snapshots before active
	CheckInterval      int                  `yaml:"check_interval"`      // Generations between checks
	ProtectInterval    int                  `yaml:"protect_interval"`    // Generations between protect sweeps
	MaxCells           int                  `yaml:"max_cells"`           // Live cells above this = overrun
}

// HeatConfig holds heat trail parameters.
type HeatConfig struct {
	Accumulate float64 `yaml:"accumulate"`
	Decay      float64 `yaml:"decay"`
	Epsilon    float64 `yaml:"epsilon"`
}

// PopulationConfig holds population analytics parameters.
type PopulationConfig struct {
	HistoryCapacity         int     `yaml:"history_capacity"`
	ExtinctionFraction      float64 `yaml:"extinction_fraction"`
	ExtinctionMinPopulation int     `yaml:"extinction_min_population"`
	MarkerCapacity          int     `yaml:"marker_capacity"`
	StagnationBand          float64 `yaml:"stagnation_band"`
	StagnationThreshold     int     `yaml:"stagnation_threshold"`
	ShimmerRamp             float64 `yaml:"shimmer_ramp"`
	ShimmerDecay            float64 `yaml:"shimmer_decay"`
}

// MutationConfig holds cosmic mutation cadence.
type MutationConfig struct {
	Enabled     bool `yaml:"enabled"`
	MinInterval int  `yaml:"min_interval"`
	MaxInterval int  `yaml:"max_interval"`
}

// TelemetryConfig holds telemetry window settings.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // Generations per stats window
	BookmarkHistorySize int `yaml:"bookmark_history_size"`
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// BookmarksConfig holds bookmark detection thresholds.
type BookmarksConfig struct {
	PopulationBoom  PopulationBoomConfig  `yaml:"population_boom"`
	PopulationCrash PopulationCrashConfig `yaml:"population_crash"`
	StablePlateau   StablePlateauConfig   `yaml:"stable_plateau"`
}

// PopulationBoomConfig holds boom detection parameters.
type PopulationBoomConfig struct {
	Multiplier float64 `yaml:"multiplier"`
	MinBirths  int     `yaml:"min_births"`
}

// PopulationCrashConfig holds crash detection parameters.
type PopulationCrashConfig struct {
	DropPercent float64 `yaml:"drop_percent"`
	MinDrop     int     `yaml:"min_drop"`
}

// StablePlateauConfig holds plateau detection parameters.
type StablePlateauConfig struct {
	MinPopulation int     `yaml:"min_population"`
	CVThreshold   float64 `yaml:"cv_threshold"`
	StableWindows int     `yaml:"stable_windows"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Cells         int     // Grid.Rows * Grid.Cols
	SeedDensity32 float32 // Grid.SeedDensity as float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived validates ranges and calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	if c.Grid.Rows <= 0 || c.Grid.Cols <= 0 {
		return fmt.Errorf("grid dimensions must be positive, got %dx%d", c.Grid.Rows, c.Grid.Cols)
	}
	c.Grid.SeedDensity = clamp01(c.Grid.SeedDensity)
	c.Grid.SeedNoiseWeight = clamp01(c.Grid.SeedNoiseWeight)
	if c.Grid.SeedOctaves < 1 {
		c.Grid.SeedOctaves = 1
	}

	if c.Portal.WindowRadius < 1 {
		c.Portal.WindowRadius = 1
	}
	if c.Portal.CheckInterval < 1 {
		c.Portal.CheckInterval = 1
	}
	if c.Portal.ProtectInterval < 1 {
		c.Portal.ProtectInterval = 1
	}
	for i := range c.Portal.Anchors {
		a := &c.Portal.Anchors[i]
		a.Row = clamp01(a.Row)
		a.Col = clamp01(a.Col)
	}

	if c.Heat.Decay <= 0 || c.Heat.Decay >= 1 {
		return fmt.Errorf("heat.decay must be in (0,1), got %g", c.Heat.Decay)
	}

	if c.Population.HistoryCapacity < 1 {
		c.Population.HistoryCapacity = 1
	}

	if c.Mutation.MinInterval < 1 {
		c.Mutation.MinInterval = 1
	}
	if c.Mutation.MaxInterval < c.Mutation.MinInterval {
		c.Mutation.MaxInterval = c.Mutation.MinInterval
	}

	if c.Telemetry.StatsWindow < 1 {
		c.Telemetry.StatsWindow = 1
	}

	c.Derived.Cells = c.Grid.Rows * c.Grid.Cols
	c.Derived.SeedDensity32 = float32(c.Grid.SeedDensity)
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
