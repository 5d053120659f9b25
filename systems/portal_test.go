package systems

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/dremok/oubli-forever-sub007/components"
)

func singleZoneParams() PortalParams {
	p := DefaultPortalParams()
	p.Anchors = []PortalAnchor{{Row: 0.5, Col: 0.5}}
	return p
}

// runChecks steps under Conway and checks the zone every CheckInterval
// generations, returning the events seen.
func runChecks(g *Grid, zone *components.PortalZone, p PortalParams, steps int) []components.Event {
	var events []components.Event
	for i := 0; i < steps; i++ {
		g.Step(conway())
		if g.Generation()%p.CheckInterval == 0 {
			if ev, ok := CheckPortal(zone, g, p); ok {
				events = append(events, ev)
			}
		}
	}
	return events
}

func TestNewPortalZones_ScaleWithGrid(t *testing.T) {
	p := DefaultPortalParams()
	zones := NewPortalZones(40, 80, p)
	if len(zones) != len(p.Anchors) {
		t.Fatalf("expected %d zones, got %d", len(p.Anchors), len(zones))
	}
	want := components.Coord{Row: 10, Col: 60}
	if zones[1].Anchor != want {
		t.Errorf("expected anchor %v, got %v", want, zones[1].Anchor)
	}
	for i, z := range zones {
		if z.ID != i {
			t.Errorf("zone %d has id %d", i, z.ID)
		}
	}
}

func TestPortal_ActivatesOnOscillator(t *testing.T) {
	p := singleZoneParams()
	g := NewGrid(24, 24)
	zones := NewPortalZones(24, 24, p)
	zone := &zones[0]
	rng := rand.New(rand.NewPCG(3, 0))

	if !ProtectPortal(zone, g, p, rng) {
		t.Fatal("empty zone should be reseeded")
	}
	if zone.Pattern == "" || zone.Reseeds != 1 {
		t.Fatalf("reseed not recorded: %+v", zone)
	}

	events := runChecks(g, zone, p, 2*int(p.StabilityThreshold+3))
	if !zone.Active {
		t.Fatalf("zone not active after oscillating, snapshot age %d", zone.SnapshotAge)
	}
	if len(events) != 1 || events[0].Type != components.EventPortalActivated {
		t.Fatalf("expected one activation event, got %v", events)
	}
	if len(zone.Cells) == 0 {
		t.Error("active zone should track its live cells")
	}
}

func TestPortal_SelfHeals(t *testing.T) {
	p := singleZoneParams()
	g := NewGrid(24, 24)
	zones := NewPortalZones(24, 24, p)
	zone := &zones[0]
	rng := rand.New(rand.NewPCG(11, 0))

	ReseedPortal(zone, g, p, rng)
	runChecks(g, zone, p, 12)
	if !zone.Active {
		t.Fatal("zone did not stabilize")
	}

	g.ClearWindow(zone.Anchor, p.WindowRadius)
	if g.LiveInWindow(zone.Anchor, p.WindowRadius) != 0 {
		t.Fatal("window not cleared")
	}
	if !ProtectPortal(zone, g, p, rng) {
		t.Fatal("destroyed zone was not reseeded")
	}
	if g.LiveInWindow(zone.Anchor, p.WindowRadius) == 0 {
		t.Fatal("reseed left the window empty")
	}

	// The replanted pattern must oscillate with period 2.
	start := PortalSnapshot(g, zone.Anchor, p.WindowRadius)
	g.Step(conway())
	if slices.Equal(start, PortalSnapshot(g, zone.Anchor, p.WindowRadius)) {
		t.Error("reseeded pattern is static")
	}
	g.Step(conway())
	if !slices.Equal(start, PortalSnapshot(g, zone.Anchor, p.WindowRadius)) {
		t.Error("reseeded pattern is not period 2")
	}
}

func TestPortal_DeactivatesOnChange(t *testing.T) {
	p := singleZoneParams()
	g := NewGrid(24, 24)
	zones := NewPortalZones(24, 24, p)
	zone := &zones[0]
	rng := rand.New(rand.NewPCG(5, 0))

	ReseedPortal(zone, g, p, rng)
	runChecks(g, zone, p, 12)
	if !zone.Active {
		t.Fatal("zone did not stabilize")
	}

	g.SetCell(zone.Anchor.Row-3, zone.Anchor.Col-3, true)
	ev, ok := CheckPortal(zone, g, p)
	if !ok || ev.Type != components.EventPortalDeactivated || ev.ZoneID != zone.ID {
		t.Fatalf("expected deactivation event, got %v ok=%v", ev, ok)
	}
	if zone.Active || zone.SnapshotAge != 0 {
		t.Errorf("zone should reset, active=%v age=%d", zone.Active, zone.SnapshotAge)
	}
}

func TestPortal_ProtectOverrun(t *testing.T) {
	p := singleZoneParams()
	g := NewGrid(24, 24)
	zones := NewPortalZones(24, 24, p)
	zone := &zones[0]
	rng := rand.New(rand.NewPCG(9, 0))

	g.ToggleRegion(zone.Anchor, 3, 1.0, rng)
	if n := g.LiveInWindow(zone.Anchor, p.WindowRadius); n <= p.MaxCells {
		t.Fatalf("setup: expected overrun, got %d cells", n)
	}
	if !ProtectPortal(zone, g, p, rng) {
		t.Fatal("overrun zone was not reseeded")
	}
	if n := g.LiveInWindow(zone.Anchor, p.WindowRadius); n == 0 || n > p.MaxCells {
		t.Errorf("expected a small oscillator after reseed, got %d cells", n)
	}

	if ProtectPortal(zone, g, p, rng) {
		t.Error("healthy zone should not be reseeded")
	}
}

func TestSnapshotPopulation(t *testing.T) {
	g := NewGrid(10, 10)
	g.SetCell(5, 5, true)
	g.SetCell(4, 6, true)
	g.SetCell(0, 0, true) // outside the window
	snap := PortalSnapshot(g, components.Coord{Row: 5, Col: 5}, 2)
	if len(snap) != 1 {
		t.Fatalf("5x5 window should fit in one word, got %d", len(snap))
	}
	if n := SnapshotPopulation(snap); n != 2 {
		t.Errorf("expected 2 live bits, got %d", n)
	}
}
