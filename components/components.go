// Package components defines the plain data types shared by the simulation systems.
package components

// Cell is one grid position's life record.
// BirthGen is 0 while the cell is dead; otherwise it holds the generation at
// which the cell was last born. DeathCount only grows within a run.
type Cell struct {
	BirthGen   uint64
	DeathCount uint32
}

// Alive reports whether the cell is currently alive.
func (c Cell) Alive() bool { return c.BirthGen != 0 }

// Age returns generations survived as of gen. Cells painted in between steps
// carry a birth generation one ahead of the current one, so the age is
// clamped at zero.
func (c Cell) Age(gen uint64) uint64 {
	if c.BirthGen == 0 || c.BirthGen > gen {
		return 0
	}
	return gen - c.BirthGen
}

// Coord addresses a grid position.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ExtinctionMarker records a sudden population collapse.
type ExtinctionMarker struct {
	Generation uint64  `json:"generation" csv:"generation"`
	Severity   float64 `json:"severity" csv:"severity"` // 1 - new/prev, in [0,1]
}

// StagnationState tracks how long the population has been flat.
type StagnationState struct {
	Counter uint32
	Shimmer float64 // ramps toward 1 while stagnant, in [0,1]
}
