package systems

import (
	"math/rand/v2"
	"testing"
)

func TestMutation_FlipsOncePerCountdown(t *testing.T) {
	p := MutationParams{Enabled: true, MinInterval: 5, MaxInterval: 10}
	rng := rand.New(rand.NewPCG(42, 0))
	m := NewMutationInjector(p, rng)
	g := NewGrid(16, 16)

	flips := 0
	gap := 0
	for i := 0; i < 500; i++ {
		gap++
		pos, alive, ok := m.MaybeMutate(g, rng)
		if !ok {
			continue
		}
		flips++
		if gap < p.MinInterval || gap > p.MaxInterval {
			t.Fatalf("mutation gap %d outside [%d,%d]", gap, p.MinInterval, p.MaxInterval)
		}
		gap = 0
		if g.Alive(pos.Row, pos.Col) != alive {
			t.Fatalf("reported became_alive=%v but cell state is %v", alive, g.Alive(pos.Row, pos.Col))
		}
		if m.Countdown() < p.MinInterval || m.Countdown() > p.MaxInterval {
			t.Fatalf("countdown %d outside range", m.Countdown())
		}
	}
	if flips < 500/p.MaxInterval {
		t.Errorf("expected at least %d flips, got %d", 500/p.MaxInterval, flips)
	}
}

func TestMutation_AliveToDeadCountsDeath(t *testing.T) {
	p := MutationParams{Enabled: true, MinInterval: 1, MaxInterval: 1}
	rng := rand.New(rand.NewPCG(1, 0))
	m := NewMutationInjector(p, rng)
	g := NewGrid(1, 1)
	g.SetCell(0, 0, true)

	_, alive, ok := m.MaybeMutate(g, rng)
	if !ok || alive {
		t.Fatalf("expected kill, got alive=%v ok=%v", alive, ok)
	}
	if g.At(0, 0).DeathCount != 1 {
		t.Errorf("expected death count 1, got %d", g.At(0, 0).DeathCount)
	}

	_, alive, _ = m.MaybeMutate(g, rng)
	if !alive || g.At(0, 0).BirthGen != g.Generation()+1 {
		t.Errorf("expected birth at generation+1, got %+v", g.At(0, 0))
	}
}

func TestMutation_Disabled(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 0))
	m := NewMutationInjector(MutationParams{Enabled: false, MinInterval: 1, MaxInterval: 1}, rng)
	g := NewGrid(4, 4)
	for i := 0; i < 100; i++ {
		if _, _, ok := m.MaybeMutate(g, rng); ok {
			t.Fatal("disabled injector mutated the grid")
		}
	}
}

func TestSeed_DensityAndDeterminism(t *testing.T) {
	tests := []struct {
		name   string
		params SeedParams
	}{
		{"uniform", SeedParams{Density: 0.3}},
		{"clustered", DefaultSeedParams()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewGrid(64, 64)
			b := NewGrid(64, 64)
			popA := Seed(a, tt.params, rand.New(rand.NewPCG(99, 0)), 99)
			popB := Seed(b, tt.params, rand.New(rand.NewPCG(99, 0)), 99)
			if popA != popB || popA != a.Population() {
				t.Fatalf("seeding not deterministic: %d vs %d", popA, popB)
			}
			frac := float64(popA) / float64(64*64)
			if frac < 0.15 || frac > 0.45 {
				t.Errorf("density %.3f far from 0.3", frac)
			}
		})
	}
}

func TestSeedField_Tileable(t *testing.T) {
	f := NewSeedField(4, DefaultSeedParams())
	for _, v := range []float64{0, 0.3, 0.77} {
		a, b := f.At(0, v), f.At(1, v)
		if d := a - b; d > 1e-9 || d < -1e-9 {
			t.Errorf("field does not wrap at v=%.2f: %f vs %f", v, a, b)
		}
		if a < 0 || a > 1 {
			t.Errorf("field value %f outside [0,1]", a)
		}
	}
}
