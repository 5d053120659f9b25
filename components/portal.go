package components

// PortalZone is a grid-anchored window that becomes active once the pattern
// inside it settles into a repeating snapshot.
type PortalZone struct {
	ID     int
	Anchor Coord

	// Cells holds the live cells captured the last time the zone went stable.
	Cells []Coord

	Active       bool
	StableTicks  uint32   // consecutive checks spent active
	LastSnapshot []uint64 // packed alive/dead bits over the window
	SnapshotAge  uint32   // consecutive checks the snapshot has repeated

	// Reseeds counts how often the zone had to be restored.
	Reseeds uint32
	// Pattern names the oscillator last planted in the zone.
	Pattern string
}
