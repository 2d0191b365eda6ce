package events

import "time"

// Event types.
const (
	TypeConnectionsLoaded = "ConceptMap.ConnectionsLoaded"
	TypeNotesRefreshed    = "ConceptMap.NotesRefreshed"
)

// Event is a domain event that can be published.
type Event interface {
	EventType() string
}

// ConnectionsLoaded is emitted when a connection sweep finishes and its
// results were accepted.
type ConnectionsLoaded struct {
	SweepID      string    `json:"sweep_id"`
	Generation   uint64    `json:"generation"`
	Groups       int       `json:"groups"`
	FailedGroups []string  `json:"failed_groups,omitempty"`
	Connections  int       `json:"connections"`
	Duration     string    `json:"duration"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// EventType implements Event.
func (ConnectionsLoaded) EventType() string { return TypeConnectionsLoaded }

// NotesRefreshed is emitted when the note set behind the map changes.
type NotesRefreshed struct {
	Notes      int       `json:"notes"`
	Groups     int       `json:"groups"`
	Version    uint64    `json:"version"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventType implements Event.
func (NotesRefreshed) EventType() string { return TypeNotesRefreshed }
