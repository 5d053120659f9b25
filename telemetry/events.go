// Package telemetry provides windowed population tracking, bookmarking, and snapshots.
package telemetry

import "github.com/dremok/oubli-forever-sub007/components"

// EventRecord is the flat CSV form of a simulation event.
// Fields that don't apply to the event type are left zero.
type EventRecord struct {
	Generation  uint64  `csv:"generation"`
	Type        string  `csv:"type"`
	Severity    float64 `csv:"severity"`
	Shimmer     float64 `csv:"shimmer"`
	Zone        int     `csv:"zone"`
	Row         int     `csv:"row"`
	Col         int     `csv:"col"`
	BecameAlive bool    `csv:"became_alive"`
}

// NewEventRecord flattens an event for CSV output.
func NewEventRecord(ev components.Event) EventRecord {
	rec := EventRecord{
		Generation: ev.Generation,
		Type:       ev.Type.String(),
		Zone:       -1,
	}
	switch ev.Type {
	case components.EventExtinction:
		rec.Severity = ev.Severity
	case components.EventStagnation:
		rec.Shimmer = ev.Shimmer
	case components.EventPortalActivated, components.EventPortalDeactivated:
		rec.Zone = ev.ZoneID
	case components.EventCosmicMutation:
		rec.Row = ev.Row
		rec.Col = ev.Col
		rec.BecameAlive = ev.BecameAlive
	}
	return rec
}
