package conceptmap

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	domain "brain2-conceptmap/internal/domain/conceptmap"
	apperrors "brain2-conceptmap/internal/errors"
)

// EventType names a user interaction.
type EventType string

const (
	EventPointerDown    EventType = "pointer_down"
	EventPointerMove    EventType = "pointer_move"
	EventPointerUp      EventType = "pointer_up"
	EventWheel          EventType = "wheel"
	EventZoomIn         EventType = "zoom_in"
	EventZoomOut        EventType = "zoom_out"
	EventResetView      EventType = "reset_view"
	EventSelect         EventType = "select"
	EventClearSelection EventType = "clear_selection"
	EventHover          EventType = "hover"
	EventUnhover        EventType = "unhover"
	EventExpand         EventType = "expand"
	EventBack           EventType = "back"
)

// Event is one user interaction. Only the fields its type needs are read.
type Event struct {
	Type   EventType
	X      float64
	Y      float64
	DeltaY float64
	NoteID string
	Label  string
}

func (e Event) key() domain.NodeKey {
	return domain.NodeKey{NoteID: e.NoteID, Label: e.Label}
}

// Dispatch applies one event and returns the resulting frame. Mode changes
// relayout before the frame is built.
func (s *Session) Dispatch(ctx context.Context, event Event) (Frame, error) {
	_, span := s.tracer.Start(ctx, "conceptmap.Dispatch", trace.WithAttributes(
		attribute.String("event.type", string(event.Type)),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.applyLocked(event); err != nil {
		span.RecordError(err)
		return Frame{}, err
	}
	return s.frameLocked(), nil
}

func (s *Session) applyLocked(event Event) error {
	c := s.controller

	switch event.Type {
	case EventPointerDown:
		c.PointerDown(event.X, event.Y)
	case EventPointerMove:
		c.PointerMove(event.X, event.Y)
	case EventPointerUp:
		c.PointerUp()
	case EventWheel:
		c.Wheel(event.DeltaY)
	case EventZoomIn:
		c.ZoomIn()
	case EventZoomOut:
		c.ZoomOut()
	case EventResetView:
		c.ResetView()
	case EventSelect:
		if err := s.requireNodeLocked(event.key()); err != nil {
			return err
		}
		c.ToggleSelect(event.key())
	case EventClearSelection:
		c.ClearSelection()
	case EventHover:
		if err := s.requireNodeLocked(event.key()); err != nil {
			return err
		}
		c.Hover(event.key())
	case EventUnhover:
		c.Unhover()
	case EventExpand:
		if c.State().Mode != domain.ModeOverview {
			return apperrors.NewConflict("a group is already expanded")
		}
		g, ok := domain.FindGroup(s.groups, event.NoteID)
		if !ok {
			return apperrors.NewNotFound(fmt.Sprintf("no group for note %q", event.NoteID))
		}
		c.ExpandGroup(g.NoteID)
		s.logger.Debug("Expanded group", zap.String("note_id", g.NoteID))
	case EventBack:
		if c.Back() {
			s.logger.Debug("Returned to overview")
		}
	default:
		return apperrors.NewValidation(fmt.Sprintf("unknown event type %q", event.Type)).
			WithCode(apperrors.CodeInvalidEvent)
	}
	return nil
}

// requireNodeLocked rejects keys that are not in the visible layout.
func (s *Session) requireNodeLocked(key domain.NodeKey) error {
	if _, ok := s.snapshotLocked().Node(key); !ok {
		return apperrors.NewNotFound(fmt.Sprintf("concept %q is not displayed", key.String()))
	}
	return nil
}
