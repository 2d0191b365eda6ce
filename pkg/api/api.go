// Package api defines the contracts for API requests and responses.
// It decouples the API structure from the internal domain models.
package api

// Event types accepted by POST /api/v1/conceptmap/events.
const (
	EventPointerDown = "pointer_down"
	EventPointerMove = "pointer_move"
	EventPointerUp   = "pointer_up"
	EventWheel       = "wheel"
	EventZoomIn      = "zoom_in"
	EventZoomOut     = "zoom_out"
	EventResetView   = "reset_view"
	EventSelect      = "select"
	EventClearSelect = "clear_selection"
	EventHover       = "hover"
	EventUnhover     = "unhover"
	EventExpand      = "expand"
	EventBack        = "back"
)

// EventRequest is the body of a user interaction event.
type EventRequest struct {
	Type   string  `json:"type" validate:"required,oneof=pointer_down pointer_move pointer_up wheel zoom_in zoom_out reset_view select clear_selection hover unhover expand back"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	DeltaY float64 `json:"delta_y"`
	NoteID string  `json:"note_id" validate:"required_if=Type select,required_if=Type hover,required_if=Type expand,max=256"`
	Label  string  `json:"label" validate:"required_if=Type select,required_if=Type hover,max=256"`
}

// NoteRequest is the API representation of a note pushed by a client.
type NoteRequest struct {
	ID       string   `json:"id" validate:"notblank,max=256"`
	Title    string   `json:"title" validate:"max=512"`
	Content  string   `json:"content"`
	Concepts []string `json:"concepts" validate:"dive,required,max=256"`
}

// ReplaceNotesRequest is the body of PUT /api/v1/conceptmap/notes.
type ReplaceNotesRequest struct {
	Notes []NoteRequest `json:"notes" validate:"dive"`
}

// RefreshResponse reports the connection sweep started by a refresh.
type RefreshResponse struct {
	Generation uint64 `json:"generation"`
	Loading    bool   `json:"loading"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// ErrorResponse is the envelope of every non-2xx response.
type ErrorResponse struct {
	Error     ErrorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// ErrorDetail describes what went wrong. Type is the error category
// (VALIDATION, NOT_FOUND, ...) and Code an optional machine readable reason.
type ErrorDetail struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}
