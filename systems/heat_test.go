package systems

import (
	"math"
	"testing"
)

func TestHeatMap_AccumulatesAndSaturates(t *testing.T) {
	g := NewGrid(3, 3)
	g.SetCell(1, 1, true)
	h := NewHeatMap(3, 3, DefaultHeatParams())

	h.Update(g)
	want := float32(0.15 * 0.97)
	idx := g.Index(1, 1)
	if math.Abs(float64(h.At(idx)-want)) > 1e-6 {
		t.Fatalf("expected %.6f after one update, got %.6f", want, h.At(idx))
	}
	if h.At(0) != 0 {
		t.Errorf("dead cell should stay cold, got %f", h.At(0))
	}

	for i := 0; i < 200; i++ {
		h.Update(g)
		if h.At(idx) > 1 {
			t.Fatalf("heat exceeded 1: %f", h.At(idx))
		}
	}
	if h.At(idx) < 0.9 {
		t.Errorf("expected live cell to run hot, got %f", h.At(idx))
	}
}

func TestHeatMap_DecayAsymptote(t *testing.T) {
	g := NewGrid(3, 3)
	g.SetCell(1, 1, true)
	h := NewHeatMap(3, 3, DefaultHeatParams())
	idx := g.Index(1, 1)

	h.Update(g)
	g.SetCell(1, 1, false)

	prev := h.At(idx)
	for i := 0; i < 2000; i++ {
		h.Update(g)
		cur := h.At(idx)
		if cur <= 0 {
			t.Fatalf("update %d: heat reached zero", i)
		}
		if cur > prev {
			t.Fatalf("update %d: heat increased from %g to %g", i, prev, cur)
		}
		if prev > h.params.Epsilon/h.params.Decay && cur >= prev {
			t.Fatalf("update %d: heat stopped decreasing at %g", i, cur)
		}
		prev = cur
	}
}

func TestHeatMap_DecayOnly(t *testing.T) {
	h := NewHeatMap(1, 2, DefaultHeatParams())
	h.Values[0] = 0.5
	h.Decay()
	if math.Abs(float64(h.Values[0])-0.485) > 1e-6 {
		t.Errorf("expected 0.485, got %f", h.Values[0])
	}
	if h.Values[1] != 0 {
		t.Errorf("cold cell should stay exactly zero, got %f", h.Values[1])
	}
}
