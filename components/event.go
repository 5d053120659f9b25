package components

import (
	"fmt"
	"log/slog"
)

// EventType identifies simulation events.
type EventType uint8

const (
	EventExtinction EventType = iota
	EventStagnation
	EventPortalActivated
	EventPortalDeactivated
	EventCosmicMutation
)

var eventNames = [...]string{
	EventExtinction:        "extinction",
	EventStagnation:        "stagnation",
	EventPortalActivated:   "portal_activated",
	EventPortalDeactivated: "portal_deactivated",
	EventCosmicMutation:    "cosmic_mutation",
}

// String returns the snake_case event name.
func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return fmt.Sprintf("event(%d)", uint8(t))
}

// Event is a single structured simulation event.
// Only the fields relevant to Type are populated.
type Event struct {
	Type       EventType
	Generation uint64

	Severity float64 // extinction
	Shimmer  float64 // stagnation

	ZoneID int // portal events

	// cosmic mutation
	Row         int
	Col         int
	BecameAlive bool
}

// NewExtinctionEvent creates an extinction event.
func NewExtinctionEvent(gen uint64, severity float64) Event {
	return Event{Type: EventExtinction, Generation: gen, Severity: severity}
}

// NewStagnationEvent creates a stagnation event.
func NewStagnationEvent(gen uint64, shimmer float64) Event {
	return Event{Type: EventStagnation, Generation: gen, Shimmer: shimmer}
}

// NewPortalActivatedEvent creates a portal activation event.
func NewPortalActivatedEvent(gen uint64, zoneID int) Event {
	return Event{Type: EventPortalActivated, Generation: gen, ZoneID: zoneID}
}

// NewPortalDeactivatedEvent creates a portal deactivation event.
func NewPortalDeactivatedEvent(gen uint64, zoneID int) Event {
	return Event{Type: EventPortalDeactivated, Generation: gen, ZoneID: zoneID}
}

// NewCosmicMutationEvent creates a mutation event for a single flipped cell.
func NewCosmicMutationEvent(gen uint64, row, col int, becameAlive bool) Event {
	return Event{Type: EventCosmicMutation, Generation: gen, Row: row, Col: col, BecameAlive: becameAlive}
}

// LogValue implements slog.LogValuer for structured logging.
func (e Event) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("type", e.Type.String()),
		slog.Uint64("generation", e.Generation),
	}
	switch e.Type {
	case EventExtinction:
		attrs = append(attrs, slog.Float64("severity", e.Severity))
	case EventStagnation:
		attrs = append(attrs, slog.Float64("shimmer", e.Shimmer))
	case EventPortalActivated, EventPortalDeactivated:
		attrs = append(attrs, slog.Int("zone", e.ZoneID))
	case EventCosmicMutation:
		attrs = append(attrs,
			slog.Int("row", e.Row),
			slog.Int("col", e.Col),
			slog.Bool("became_alive", e.BecameAlive),
		)
	}
	return slog.GroupValue(attrs...)
}
