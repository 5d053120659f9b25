// Package main provides CMA-ES optimization for automaton seeding and
// mutation parameters.
package main

import (
	"math"

	"github.com/dremok/oubli-forever-sub007/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Seeding
			{Name: "seed_density", Path: "grid.seed_density", Min: 0.05, Max: 0.6, Default: 0.3},
			{Name: "seed_noise_scale", Path: "grid.seed_noise_scale", Min: 0.5, Max: 4.0, Default: 1.5},
			{Name: "seed_noise_weight", Path: "grid.seed_noise_weight", Min: 0.0, Max: 1.0, Default: 0.5},
			// Mutation; the max interval is min + span so the range stays ordered
			{Name: "mutation_min_interval", Path: "mutation.min_interval", Min: 10, Max: 300, Default: 90},
			{Name: "mutation_interval_span", Path: "mutation.max_interval", Min: 0, Max: 400, Default: 150},
			// Heat trail
			{Name: "heat_decay", Path: "heat.decay", Min: 0.8, Max: 0.995, Default: 0.97},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	cfg.Grid.SeedDensity = clamped[0]
	cfg.Grid.SeedNoiseScale = clamped[1]
	cfg.Grid.SeedNoiseWeight = clamped[2]

	minInterval := int(math.Round(clamped[3]))
	cfg.Mutation.MinInterval = minInterval
	cfg.Mutation.MaxInterval = minInterval + int(math.Round(clamped[4]))

	cfg.Heat.Decay = clamped[5]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Grid.SeedDensity,
		cfg.Grid.SeedNoiseScale,
		cfg.Grid.SeedNoiseWeight,
		float64(cfg.Mutation.MinInterval),
		float64(cfg.Mutation.MaxInterval - cfg.Mutation.MinInterval),
		cfg.Heat.Decay,
	}
}
