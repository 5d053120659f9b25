package systems

import (
	"math/bits"
	"math/rand/v2"
	"slices"

	"github.com/dremok/oubli-forever-sub007/components"
)

// PortalAnchor positions a zone as fractions of the grid dimensions.
type PortalAnchor struct {
	Row float64
	Col float64
}

// PortalParams controls the portal stability detector.
type PortalParams struct {
	Anchors            []PortalAnchor
	WindowRadius       int    // window is (2r+1)x(2r+1) around the anchor
	StabilityThreshold uint32 // active once SnapshotAge exceeds this
	CheckInterval      uint64 // generations between stability checks
	ProtectInterval    uint64 // generations between protect sweeps
	MaxCells           int    // live cells above this count as overrun
}

// DefaultPortalParams returns the standard detector constants.
func DefaultPortalParams() PortalParams {
	return PortalParams{
		Anchors: []PortalAnchor{
			{Row: 0.25, Col: 0.25},
			{Row: 0.25, Col: 0.75},
			{Row: 0.75, Col: 0.5},
		},
		WindowRadius:       3,
		StabilityThreshold: 3,
		CheckInterval:      2,
		ProtectInterval:    200,
		MaxCells:           12,
	}
}

// oscillator is a period-2 seed pattern, as offsets from the anchor.
type oscillator struct {
	name  string
	cells []components.Coord
}

var oscillators = [...]oscillator{
	{
		name:  "blinker",
		cells: []components.Coord{{Row: 0, Col: -1}, {Row: 0, Col: 0}, {Row: 0, Col: 1}},
	},
	{
		name: "toad",
		cells: []components.Coord{
			{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2},
			{Row: 1, Col: -1}, {Row: 1, Col: 0}, {Row: 1, Col: 1},
		},
	},
}

// NewPortalZones lays out one zone per anchor, scaled to the grid.
func NewPortalZones(rows, cols int, p PortalParams) []components.PortalZone {
	zones := make([]components.PortalZone, len(p.Anchors))
	for i, a := range p.Anchors {
		zones[i] = components.PortalZone{
			ID: i,
			Anchor: components.Coord{
				Row: int(a.Row * float64(rows)),
				Col: int(a.Col * float64(cols)),
			},
		}
	}
	return zones
}

// PortalSnapshot packs the alive/dead state of the window around anchor into
// a bitstring, row-major.
func PortalSnapshot(g *Grid, anchor components.Coord, radius int) []uint64 {
	side := 2*radius + 1
	snap := make([]uint64, (side*side+63)/64)
	bit := 0
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			if g.Alive(anchor.Row+dr, anchor.Col+dc) {
				snap[bit/64] |= 1 << (bit % 64)
			}
			bit++
		}
	}
	return snap
}

// SnapshotPopulation counts set bits in a snapshot.
func SnapshotPopulation(snap []uint64) int {
	n := 0
	for _, w := range snap {
		n += bits.OnesCount64(w)
	}
	return n
}

// CheckPortal compares the zone's window against its previous snapshot and
// updates its stability state. It returns an activation or deactivation
// event when the zone changes state.
func CheckPortal(zone *components.PortalZone, g *Grid, p PortalParams) (components.Event, bool) {
	snap := PortalSnapshot(g, zone.Anchor, p.WindowRadius)
	gen := g.Generation()

	if zone.LastSnapshot != nil && slices.Equal(snap, zone.LastSnapshot) {
		zone.SnapshotAge++
	} else {
		zone.SnapshotAge = 0
	}
	zone.LastSnapshot = snap

	if zone.SnapshotAge > p.StabilityThreshold {
		zone.Cells = liveInWindow(g, zone.Anchor, p.WindowRadius, zone.Cells[:0])
		zone.StableTicks++
		if !zone.Active {
			zone.Active = true
			return components.NewPortalActivatedEvent(gen, zone.ID), true
		}
		return components.Event{}, false
	}

	zone.StableTicks = 0
	if zone.Active {
		zone.Active = false
		return components.NewPortalDeactivatedEvent(gen, zone.ID), true
	}
	return components.Event{}, false
}

// ProtectPortal reseeds the zone when its window is empty or overrun.
// Returns true if the zone was reseeded.
func ProtectPortal(zone *components.PortalZone, g *Grid, p PortalParams, rng *rand.Rand) bool {
	n := g.LiveInWindow(zone.Anchor, p.WindowRadius)
	if n > 0 && n <= p.MaxCells {
		return false
	}
	ReseedPortal(zone, g, p, rng)
	return true
}

// ReseedPortal clears the zone's window and plants a randomly chosen
// period-2 oscillator at its anchor.
func ReseedPortal(zone *components.PortalZone, g *Grid, p PortalParams, rng *rand.Rand) {
	g.ClearWindow(zone.Anchor, p.WindowRadius)
	osc := oscillators[rng.IntN(len(oscillators))]
	for _, c := range osc.cells {
		g.SetCell(zone.Anchor.Row+c.Row, zone.Anchor.Col+c.Col, true)
	}
	zone.Pattern = osc.name
	zone.Reseeds++
	zone.SnapshotAge = 0
}

func liveInWindow(g *Grid, anchor components.Coord, radius int, dst []components.Coord) []components.Coord {
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			r, c := g.Wrap(anchor.Row+dr, anchor.Col+dc)
			if g.Alive(r, c) {
				dst = append(dst, components.Coord{Row: r, Col: c})
			}
		}
	}
	return dst
}
