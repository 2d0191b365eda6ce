package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	domain "brain2-conceptmap/internal/domain/conceptmap"
	apperrors "brain2-conceptmap/internal/errors"
	"brain2-conceptmap/internal/interfaces/http/validation"
	"brain2-conceptmap/internal/service/conceptmap"
	"brain2-conceptmap/pkg/api"
)

const maxBodyBytes = 1 << 20

// ConceptMapService is the session surface the handlers drive.
type ConceptMapService interface {
	Frame() conceptmap.Frame
	Dispatch(ctx context.Context, event conceptmap.Event) (conceptmap.Frame, error)
	Refresh(ctx context.Context) (conceptmap.SweepStatus, error)
	Connections() ([]domain.Connection, conceptmap.SweepStatus)
	ReplaceNotes(ctx context.Context, notes []domain.Note) (conceptmap.SweepStatus, error)
}

// ConnectionsResponse is returned by GET /api/v1/conceptmap/connections.
type ConnectionsResponse struct {
	Connections []domain.Connection    `json:"connections"`
	Sweep       conceptmap.SweepStatus `json:"sweep"`
}

// ConceptMapHandler serves the concept map endpoints.
type ConceptMapHandler struct {
	service   ConceptMapService
	validator *validation.Validator
	logger    *zap.Logger
}

// NewConceptMapHandler creates a handler.
func NewConceptMapHandler(service ConceptMapService, logger *zap.Logger) *ConceptMapHandler {
	return &ConceptMapHandler{
		service:   service,
		validator: validation.GetValidator(),
		logger:    logger.Named("http"),
	}
}

// GetFrame handles GET /api/v1/conceptmap/frame.
func (h *ConceptMapHandler) GetFrame(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.service.Frame())
}

// PostEvent handles POST /api/v1/conceptmap/events.
func (h *ConceptMapHandler) PostEvent(w http.ResponseWriter, r *http.Request) {
	var req api.EventRequest
	if !h.decode(w, r, &req) {
		return
	}

	frame, err := h.service.Dispatch(r.Context(), conceptmap.Event{
		Type:   conceptmap.EventType(req.Type),
		X:      req.X,
		Y:      req.Y,
		DeltaY: req.DeltaY,
		NoteID: req.NoteID,
		Label:  req.Label,
	})
	if err != nil {
		apperrors.WriteHTTPError(w, r, err, h.logger)
		return
	}
	api.Success(w, http.StatusOK, frame)
}

// PostRefresh handles POST /api/v1/conceptmap/refresh.
func (h *ConceptMapHandler) PostRefresh(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Refresh(r.Context())
	if err != nil {
		apperrors.WriteHTTPError(w, r, err, h.logger)
		return
	}
	api.Success(w, http.StatusAccepted, api.RefreshResponse{Generation: status.Generation, Loading: status.Loading})
}

// GetConnections handles GET /api/v1/conceptmap/connections.
func (h *ConceptMapHandler) GetConnections(w http.ResponseWriter, r *http.Request) {
	conns, status := h.service.Connections()
	api.Success(w, http.StatusOK, ConnectionsResponse{Connections: conns, Sweep: status})
}

// PutNotes handles PUT /api/v1/conceptmap/notes.
func (h *ConceptMapHandler) PutNotes(w http.ResponseWriter, r *http.Request) {
	var req api.ReplaceNotesRequest
	if !h.decode(w, r, &req) {
		return
	}

	notes := make([]domain.Note, 0, len(req.Notes))
	for _, n := range req.Notes {
		notes = append(notes, domain.Note{ID: n.ID, Title: n.Title, Content: n.Content, Concepts: n.Concepts})
	}

	status, err := h.service.ReplaceNotes(r.Context(), notes)
	if err != nil {
		apperrors.WriteHTTPError(w, r, err, h.logger)
		return
	}
	api.Success(w, http.StatusAccepted, api.RefreshResponse{Generation: status.Generation, Loading: status.Loading})
}

// decode reads a JSON body into dst and validates it. It writes the error
// response itself and reports whether the handler should continue.
func (h *ConceptMapHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		msg := "invalid JSON body"
		if errors.Is(err, io.EOF) {
			msg = "request body is empty"
		} else {
			msg = fmt.Sprintf("%s: %v", msg, err)
		}
		apperrors.WriteHTTPError(w, r, apperrors.NewValidation(msg), h.logger)
		return false
	}
	if err := h.validator.Validate(dst); err != nil {
		apperrors.WriteHTTPError(w, r, apperrors.NewValidation(err.Error()), h.logger)
		return false
	}
	return true
}
