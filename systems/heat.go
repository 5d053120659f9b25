package systems

// HeatParams controls the heat trail.
type HeatParams struct {
	Accumulate float32 // added per step to each live cell
	Decay      float32 // multiplicative decay applied to every cell, <1
	Epsilon    float32 // floor for nonzero heat
}

// DefaultHeatParams returns the standard heat trail constants.
func DefaultHeatParams() HeatParams {
	return HeatParams{Accumulate: 0.15, Decay: 0.97, Epsilon: 1e-4}
}

// HeatMap is a per-cell decaying memory of occupancy in [0,1].
// It is independent of the current live/dead state.
type HeatMap struct {
	rows, cols int
	Values     []float32
	params     HeatParams
}

// NewHeatMap creates a cold heat map matching the grid dimensions.
func NewHeatMap(rows, cols int, params HeatParams) *HeatMap {
	return &HeatMap{
		rows:   rows,
		cols:   cols,
		Values: make([]float32, rows*cols),
		params: params,
	}
}

// At returns heat at a linear index.
func (h *HeatMap) At(idx int) float32 { return h.Values[idx] }

// Update warms live cells and decays every cell.
func (h *HeatMap) Update(g *Grid) {
	cells := g.Cells()
	p := h.params
	for i := range h.Values {
		v := h.Values[i]
		if cells[i].BirthGen != 0 {
			v += p.Accumulate
			if v > 1 {
				v = 1
			}
		}
		v *= p.Decay
		if v > 0 && v < p.Epsilon {
			v = p.Epsilon
		}
		h.Values[i] = v
	}
}

// Decay applies one decay-only pass, ignoring the grid.
func (h *HeatMap) Decay() {
	p := h.params
	for i, v := range h.Values {
		if v == 0 {
			continue
		}
		v *= p.Decay
		if v < p.Epsilon {
			v = p.Epsilon
		}
		h.Values[i] = v
	}
}

// Mean returns the average heat across the map.
func (h *HeatMap) Mean() float64 {
	if len(h.Values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range h.Values {
		sum += float64(v)
	}
	return sum / float64(len(h.Values))
}
