package systems

import (
	"math"
	"math/rand/v2"

	"github.com/ojrac/opensimplex-go"
)

// SeedParams controls initial population seeding.
type SeedParams struct {
	Density     float64 // mean probability a cell starts alive, in [0,1]
	NoiseScale  float64 // feature size of the clustering field; larger = bigger clumps
	NoiseWeight float64 // 0 = uniform noise, 1 = fully noise-modulated
	Octaves     int
	Lacunarity  float64
	Gain        float64
}

// DefaultSeedParams returns the standard seeding parameters.
func DefaultSeedParams() SeedParams {
	return SeedParams{
		Density:     0.3,
		NoiseScale:  1.5,
		NoiseWeight: 0.5,
		Octaves:     3,
		Lacunarity:  2.0,
		Gain:        0.5,
	}
}

// SeedField is a tileable clustering field over the torus.
type SeedField struct {
	noise opensimplex.Noise
	p     SeedParams
}

// NewSeedField creates a field from a deterministic seed.
func NewSeedField(seed int64, p SeedParams) *SeedField {
	return &SeedField{noise: opensimplex.NewNormalized(seed), p: p}
}

// At samples the field at (u, v) in [0,1)^2. Both axes wrap, so the field is
// seamless across the grid edges.
func (f *SeedField) At(u, v float64) float64 {
	sum := 0.0
	norm := 0.0
	amp := 0.5
	freq := f.p.NoiseScale
	for o := 0; o < max(f.p.Octaves, 1); o++ {
		// Map each axis onto a circle so opposite edges meet.
		su, cu := math.Sincos(2 * math.Pi * u)
		sv, cv := math.Sincos(2 * math.Pi * v)
		sum += amp * f.noise.Eval4(cu*freq, su*freq, cv*freq, sv*freq)
		norm += amp
		freq *= f.p.Lacunarity
		amp *= f.p.Gain
	}
	return sum / norm
}

// Seed populates an empty grid. Each cell is born with probability density,
// modulated by the clustering field by NoiseWeight. Returns the population.
func Seed(g *Grid, p SeedParams, rng *rand.Rand, seed int64) int {
	var field *SeedField
	if p.NoiseWeight > 0 {
		field = NewSeedField(seed, p)
	}

	rows, cols := g.Rows(), g.Cols()
	pop := 0
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			prob := p.Density
			if field != nil {
				// Field is centered on 0.5, so 2*n keeps the mean density.
				n := field.At(float64(r)/float64(rows), float64(c)/float64(cols))
				prob = p.Density * ((1 - p.NoiseWeight) + p.NoiseWeight*2*n)
			}
			if rng.Float64() < prob {
				g.SetCell(r, c, true)
				pop++
			}
		}
	}
	return pop
}
