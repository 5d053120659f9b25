package systems

import (
	"fmt"
	"math/rand/v2"

	"github.com/dremok/oubli-forever-sub007/components"
)

// Grid is a double-buffered toroidal field of cells.
// Step computes entirely into the back buffer before swapping, so every
// neighbor count in one generation reads the same prior state.
type Grid struct {
	rows, cols int
	cur        []components.Cell
	nxt        []components.Cell
	gen        uint64
}

// StepReport summarizes one generation.
type StepReport struct {
	Generation uint64
	Births     int
	Deaths     int
	Population int
}

// NewGrid allocates an all-dead grid. Non-positive dimensions are a caller
// bug and panic.
func NewGrid(rows, cols int) *Grid {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("systems: grid dimensions must be positive, got %dx%d", rows, cols))
	}
	n := rows * cols
	return &Grid{
		rows: rows,
		cols: cols,
		cur:  make([]components.Cell, n),
		nxt:  make([]components.Cell, n),
	}
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Generation returns the number of completed steps.
func (g *Grid) Generation() uint64 { return g.gen }

// Cells exposes the live buffer in row-major order. Callers must treat it as
// read-only.
func (g *Grid) Cells() []components.Cell { return g.cur }

// Wrap applies toroidal wrapping to the provided coordinates.
func (g *Grid) Wrap(row, col int) (int, int) {
	row = (row%g.rows + g.rows) % g.rows
	col = (col%g.cols + g.cols) % g.cols
	return row, col
}

// Index returns the linear index for (row, col) after wrapping.
func (g *Grid) Index(row, col int) int {
	row, col = g.Wrap(row, col)
	return row*g.cols + col
}

// At returns the cell at (row, col) after wrapping.
func (g *Grid) At(row, col int) components.Cell {
	return g.cur[g.Index(row, col)]
}

// Alive reports whether the cell at (row, col) is alive.
func (g *Grid) Alive(row, col int) bool {
	return g.cur[g.Index(row, col)].Alive()
}

// Population counts live cells.
func (g *Grid) Population() int {
	n := 0
	for i := range g.cur {
		if g.cur[i].BirthGen != 0 {
			n++
		}
	}
	return n
}

// Step advances the grid by one generation under rule.
func (g *Grid) Step(rule *RuleSet) StepReport {
	rows, cols := g.rows, g.cols
	next := g.gen + 1
	var births, deaths, pop int

	for r := 0; r < rows; r++ {
		up := ((r-1+rows)%rows) * cols
		mid := r * cols
		down := ((r + 1) % rows) * cols
		for c := 0; c < cols; c++ {
			left := (c - 1 + cols) % cols
			right := (c + 1) % cols

			n := 0
			for _, idx := range [8]int{
				up + left, up + c, up + right,
				mid + left, mid + right,
				down + left, down + c, down + right,
			} {
				if g.cur[idx].BirthGen != 0 {
					n++
				}
			}

			idx := mid + c
			cell := g.cur[idx]
			switch {
			case cell.BirthGen != 0 && rule.Survive.Has(n):
				pop++
			case cell.BirthGen != 0:
				cell.BirthGen = 0
				cell.DeathCount++
				deaths++
			case rule.Birth.Has(n):
				cell.BirthGen = next
				births++
				pop++
			}
			g.nxt[idx] = cell
		}
	}

	g.cur, g.nxt = g.nxt, g.cur
	g.gen = next
	return StepReport{Generation: next, Births: births, Deaths: deaths, Population: pop}
}

// SetCell forces the cell at (row, col) alive or dead. Coordinates wrap.
// Returns true if the state changed.
func (g *Grid) SetCell(row, col int, alive bool) bool {
	idx := g.Index(row, col)
	if g.cur[idx].Alive() == alive {
		return false
	}
	if alive {
		g.birth(idx)
	} else {
		g.kill(idx)
	}
	return true
}

// Flip inverts the cell at (row, col) and reports whether it became alive.
func (g *Grid) Flip(row, col int) bool {
	idx := g.Index(row, col)
	if g.cur[idx].Alive() {
		g.kill(idx)
		return false
	}
	g.birth(idx)
	return true
}

// ToggleRegion flips each cell inside the disc of the given radius around
// center with probability density. Returns the number of cells flipped.
func (g *Grid) ToggleRegion(center components.Coord, radius int, density float64, rng *rand.Rand) int {
	if radius < 0 || density <= 0 {
		return 0
	}
	flipped := 0
	r2 := radius * radius
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			if dr*dr+dc*dc > r2 {
				continue
			}
			if density < 1 && rng.Float64() >= density {
				continue
			}
			g.Flip(center.Row+dr, center.Col+dc)
			flipped++
		}
	}
	return flipped
}

// ClearWindow kills every cell in the square window of the given radius
// around center.
func (g *Grid) ClearWindow(center components.Coord, radius int) {
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			g.SetCell(center.Row+dr, center.Col+dc, false)
		}
	}
}

// LiveInWindow counts live cells in the square window around center.
func (g *Grid) LiveInWindow(center components.Coord, radius int) int {
	n := 0
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			if g.Alive(center.Row+dr, center.Col+dc) {
				n++
			}
		}
	}
	return n
}

// Oldest scans for the live cell with the greatest age.
// ok is false when the grid is empty.
func (g *Grid) Oldest() (pos components.Coord, age uint64, ok bool) {
	for i := range g.cur {
		c := g.cur[i]
		if c.BirthGen == 0 {
			continue
		}
		a := c.Age(g.gen)
		if !ok || a > age {
			pos = components.Coord{Row: i / g.cols, Col: i % g.cols}
			age = a
			ok = true
		}
	}
	return pos, age, ok
}

// Load replaces the live buffer with cells and sets the generation counter.
// len(cells) must equal rows*cols.
func (g *Grid) Load(cells []components.Cell, gen uint64) {
	if len(cells) != len(g.cur) {
		panic(fmt.Sprintf("systems: load of %d cells into %dx%d grid", len(cells), g.rows, g.cols))
	}
	copy(g.cur, cells)
	g.gen = gen
}

// birth marks a cell alive as if born in the coming generation.
func (g *Grid) birth(idx int) {
	g.cur[idx].BirthGen = g.gen + 1
}

func (g *Grid) kill(idx int) {
	g.cur[idx].BirthGen = 0
	g.cur[idx].DeathCount++
}
