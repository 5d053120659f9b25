package systems

import (
	"math/rand/v2"

	"github.com/dremok/oubli-forever-sub007/components"
)

// MutationParams controls the cosmic mutation injector.
type MutationParams struct {
	Enabled     bool
	MinInterval int // generations, inclusive
	MaxInterval int // generations, inclusive
}

// DefaultMutationParams returns the standard injector cadence.
func DefaultMutationParams() MutationParams {
	return MutationParams{Enabled: true, MinInterval: 90, MaxInterval: 240}
}

// MutationInjector flips a single random cell on a jittered countdown.
type MutationInjector struct {
	params    MutationParams
	countdown int
}

// NewMutationInjector creates an injector with its first countdown drawn from rng.
func NewMutationInjector(p MutationParams, rng *rand.Rand) *MutationInjector {
	if p.MinInterval < 1 {
		p.MinInterval = 1
	}
	if p.MaxInterval < p.MinInterval {
		p.MaxInterval = p.MinInterval
	}
	m := &MutationInjector{params: p}
	m.rearm(rng)
	return m
}

// Countdown returns the steps remaining until the next flip.
func (m *MutationInjector) Countdown() int { return m.countdown }

// MaybeMutate advances the countdown and, when it expires, flips one
// uniformly random cell. ok is false when nothing was flipped.
func (m *MutationInjector) MaybeMutate(g *Grid, rng *rand.Rand) (pos components.Coord, becameAlive, ok bool) {
	if !m.params.Enabled {
		return pos, false, false
	}
	m.countdown--
	if m.countdown > 0 {
		return pos, false, false
	}
	pos = components.Coord{Row: rng.IntN(g.Rows()), Col: rng.IntN(g.Cols())}
	becameAlive = g.Flip(pos.Row, pos.Col)
	m.rearm(rng)
	return pos, becameAlive, true
}

func (m *MutationInjector) rearm(rng *rand.Rand) {
	m.countdown = m.params.MinInterval + rng.IntN(m.params.MaxInterval-m.params.MinInterval+1)
}
