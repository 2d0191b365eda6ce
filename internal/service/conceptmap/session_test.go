package conceptmap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "brain2-conceptmap/internal/domain/conceptmap"
	"brain2-conceptmap/internal/domain/interaction"
	apperrors "brain2-conceptmap/internal/errors"
	"brain2-conceptmap/internal/infrastructure/events"
	"brain2-conceptmap/internal/infrastructure/observability"
	"brain2-conceptmap/internal/repository/memory"
	"brain2-conceptmap/internal/repository/mocks"
	"brain2-conceptmap/internal/service/connections"
)

var photosynthesis = domain.Note{
	ID:       "plants",
	Title:    "Plants",
	Concepts: []string{"Photosynthesis", "Chlorophyll", "Sunlight"},
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evs ...events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evs...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

// gatedSweeper blocks its first sweep until release is closed, ignoring
// cancellation, and links the first two concepts of every group.
type gatedSweeper struct {
	release chan struct{}

	mu    sync.Mutex
	calls int
}

func (g *gatedSweeper) Sweep(_ context.Context, groups []domain.Group) connections.Result {
	g.mu.Lock()
	g.calls++
	call := g.calls
	g.mu.Unlock()

	if call == 1 {
		<-g.release
	}
	result := connections.Result{SweepID: fmt.Sprintf("sweep-%d", call), Queried: len(groups)}
	for _, grp := range groups {
		if len(grp.Concepts) < 2 {
			continue
		}
		result.Connections = append(result.Connections, domain.Connection{
			From:   grp.Concepts[0],
			To:     grp.Concepts[1],
			NoteID: grp.NoteID,
		})
	}
	return result
}

func newTestSession(t *testing.T, source *mocks.MockNoteSource, sweeper Sweeper, publisher events.Publisher, metrics *observability.Collector) *Session {
	t.Helper()
	s := NewSession(source, sweeper, publisher, metrics,
		domain.DefaultLayoutConfig(), interaction.DefaultSettings(), zap.NewNop())
	t.Cleanup(s.Close)
	return s
}

func waitSweep(t *testing.T, s *Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
}

func suggestOnly(from, to string) connections.Suggester {
	return connections.SuggesterFunc(func(context.Context, []string) ([]connections.Suggestion, error) {
		return []connections.Suggestion{{From: from, To: to, Explanation: "absorbs light"}}, nil
	})
}

func TestSession_PhotosynthesisScenario(t *testing.T) {
	source := mocks.NewMockNoteSource(photosynthesis)
	loader := connections.NewLoader(suggestOnly("Chlorophyll", "Photosynthesis"), zap.NewNop(), nil)
	s := newTestSession(t, source, loader, nil, nil)

	_, err := s.Refresh(context.Background())
	require.NoError(t, err)
	waitSweep(t, s)

	frame := s.Frame()
	assert.Equal(t, domain.ModeOverview, frame.Mode)
	assert.False(t, frame.Empty)
	require.Len(t, frame.Clusters, 1)
	assert.Equal(t, "plants", frame.Clusters[0].NoteID)
	require.Len(t, frame.Nodes, 3)
	require.Len(t, frame.Connections, 1)
	assert.Equal(t, "plants", frame.Connections[0].NoteID)
	assert.False(t, frame.Sweep.Loading)

	frame, err = s.Dispatch(context.Background(), Event{Type: EventSelect, NoteID: "plants", Label: "Chlorophyll"})
	require.NoError(t, err)

	dimmed := map[string]bool{}
	for _, n := range frame.Nodes {
		dimmed[n.Label] = n.Dimmed
		assert.Equal(t, n.Label == "Chlorophyll", n.Selected)
	}
	assert.Equal(t, map[string]bool{"Photosynthesis": false, "Chlorophyll": false, "Sunlight": true}, dimmed)
	assert.True(t, frame.Connections[0].Highlighted)

	require.NotNil(t, frame.Selection)
	assert.Equal(t, "Plants", frame.Selection.GroupName)
	require.Len(t, frame.Selection.Related, 1)
	assert.Equal(t, RelatedConcept{Label: "Photosynthesis", Explanation: "absorbs light", Outgoing: true}, frame.Selection.Related[0])

	frame, err = s.Dispatch(context.Background(), Event{Type: EventSelect, NoteID: "plants", Label: "Chlorophyll"})
	require.NoError(t, err)
	assert.Nil(t, frame.Selection, "selecting again toggles off")
}

func TestSession_EmptyNotes(t *testing.T) {
	source := mocks.NewMockNoteSource(domain.Note{ID: "blank", Title: "Nothing yet"})
	s := newTestSession(t, source, connections.NewLoader(suggestOnly("a", "b"), zap.NewNop(), nil), nil, nil)

	status, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), status.Generation)
	waitSweep(t, s)

	frame := s.Frame()
	assert.True(t, frame.Empty)
	assert.Empty(t, frame.Clusters)
	assert.Empty(t, frame.Nodes)
	assert.Empty(t, frame.Connections)

	conns, _ := s.Connections()
	assert.Empty(t, conns)
}

func TestSession_PartialSuggestionFailure(t *testing.T) {
	source := mocks.NewMockNoteSource(
		domain.Note{ID: "cells", Concepts: []string{"Mitosis", "Chromosome"}},
		photosynthesis,
	)
	suggester := connections.SuggesterFunc(func(_ context.Context, labels []string) ([]connections.Suggestion, error) {
		if labels[0] == "Mitosis" {
			return nil, errors.New("rate limited")
		}
		return []connections.Suggestion{{From: "Sunlight", To: "Photosynthesis", Explanation: "drives"}}, nil
	})
	s := newTestSession(t, source, connections.NewLoader(suggester, zap.NewNop(), nil), nil, nil)

	_, err := s.Refresh(context.Background())
	require.NoError(t, err)
	waitSweep(t, s)

	conns, status := s.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, "plants", conns[0].NoteID)
	assert.Equal(t, []string{"cells"}, status.FailedGroups)
	assert.Len(t, s.Frame().Connections, 1)
}

func TestSession_StaleSweepIsDiscarded(t *testing.T) {
	metrics := observability.NewCollector("test")
	sweeper := &gatedSweeper{release: make(chan struct{})}
	s := newTestSession(t, mocks.NewMockNoteSource(), sweeper, nil, metrics)

	require.True(t, s.SetNotes([]domain.Note{{ID: "old", Concepts: []string{"A", "B"}}}))
	require.True(t, s.SetNotes([]domain.Note{photosynthesis}))
	waitSweep(t, s)

	close(sweeper.release)
	s.Close()

	conns, status := s.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, "plants", conns[0].NoteID)
	assert.Equal(t, uint64(2), status.Generation)
	assert.Equal(t, "sweep-2", status.LastSweepID)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Sweeps.WithLabelValues(observability.SweepStale)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Sweeps.WithLabelValues(observability.SweepCompleted)))
}

func TestSession_SetNotesUnchangedIsNoop(t *testing.T) {
	sweeper := &gatedSweeper{release: make(chan struct{})}
	close(sweeper.release)
	s := newTestSession(t, mocks.NewMockNoteSource(), sweeper, nil, nil)

	require.True(t, s.SetNotes([]domain.Note{photosynthesis}))
	waitSweep(t, s)
	version := s.Frame().Version

	assert.False(t, s.SetNotes([]domain.Note{photosynthesis}))
	_, status := s.Connections()
	assert.Equal(t, uint64(1), status.Generation)
	assert.Equal(t, version, s.Frame().Version)
}

func TestSession_RefreshAlwaysStartsSweep(t *testing.T) {
	source := mocks.NewMockNoteSource(photosynthesis)
	sweeper := &gatedSweeper{release: make(chan struct{})}
	close(sweeper.release)
	s := newTestSession(t, source, sweeper, nil, nil)

	for i := 1; i <= 3; i++ {
		status, err := s.Refresh(context.Background())
		require.NoError(t, err)
		assert.Equal(t, uint64(i), status.Generation)
		waitSweep(t, s)
	}
	assert.Equal(t, 3, source.Calls("ListNotes"))
}

func TestSession_RefreshSourceError(t *testing.T) {
	source := mocks.NewMockNoteSource(photosynthesis)
	source.SetError("ListNotes", apperrors.NewUnavailable("table throttled", nil))
	s := newTestSession(t, source, &gatedSweeper{release: make(chan struct{})}, nil, nil)

	_, err := s.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err))
	assert.True(t, s.Frame().Empty)
}

func TestSession_DispatchViewEvents(t *testing.T) {
	sweeper := &gatedSweeper{release: make(chan struct{})}
	close(sweeper.release)
	s := newTestSession(t, mocks.NewMockNoteSource(), sweeper, nil, nil)
	s.SetNotes([]domain.Note{photosynthesis, {ID: "cells", Concepts: []string{"Mitosis"}}})
	ctx := context.Background()

	frame, err := s.Dispatch(ctx, Event{Type: EventWheel, DeltaY: -120})
	require.NoError(t, err)
	assert.InDelta(t, 1.1, frame.Transform.Zoom, 1e-9)

	_, err = s.Dispatch(ctx, Event{Type: EventPointerDown, X: 10, Y: 10})
	require.NoError(t, err)
	frame, err = s.Dispatch(ctx, Event{Type: EventPointerMove, X: 30, Y: 5})
	require.NoError(t, err)
	assert.True(t, frame.Transform.Dragging)
	assert.Equal(t, 20.0, frame.Transform.PanX)
	assert.Equal(t, -5.0, frame.Transform.PanY)
	_, err = s.Dispatch(ctx, Event{Type: EventPointerUp})
	require.NoError(t, err)

	frame, err = s.Dispatch(ctx, Event{Type: EventExpand, NoteID: "plants"})
	require.NoError(t, err)
	assert.Equal(t, domain.ModeExpanded, frame.Mode)
	require.NotNil(t, frame.ExpandedGroup)
	assert.Equal(t, "plants", frame.ExpandedGroup.NoteID)
	assert.Empty(t, frame.Clusters)
	assert.Len(t, frame.Nodes, 3)
	assert.Equal(t, 1.0, frame.Transform.Zoom, "expanding resets the view")

	frame, err = s.Dispatch(ctx, Event{Type: EventHover, NoteID: "plants", Label: "Sunlight"})
	require.NoError(t, err)
	for _, n := range frame.Nodes {
		assert.Equal(t, n.Label == "Sunlight", n.Hovered)
	}

	frame, err = s.Dispatch(ctx, Event{Type: EventBack})
	require.NoError(t, err)
	assert.Equal(t, domain.ModeOverview, frame.Mode)
	assert.Len(t, frame.Clusters, 2)
	assert.Len(t, frame.Nodes, 4)
}

func TestSession_DispatchErrors(t *testing.T) {
	sweeper := &gatedSweeper{release: make(chan struct{})}
	close(sweeper.release)
	s := newTestSession(t, mocks.NewMockNoteSource(), sweeper, nil, nil)
	s.SetNotes([]domain.Note{photosynthesis})
	ctx := context.Background()

	_, err := s.Dispatch(ctx, Event{Type: EventSelect, NoteID: "plants", Label: "Gravity"})
	assert.True(t, apperrors.IsNotFound(err))

	_, err = s.Dispatch(ctx, Event{Type: EventExpand, NoteID: "missing"})
	assert.True(t, apperrors.IsNotFound(err))

	_, err = s.Dispatch(ctx, Event{Type: "teleport"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = s.Dispatch(ctx, Event{Type: EventExpand, NoteID: "plants"})
	require.NoError(t, err)
	_, err = s.Dispatch(ctx, Event{Type: EventExpand, NoteID: "plants"})
	assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.TypeOf(err))

	frame, err := s.Dispatch(ctx, Event{Type: EventBack})
	require.NoError(t, err)
	frame2, err := s.Dispatch(ctx, Event{Type: EventBack})
	require.NoError(t, err, "back in the overview is a no-op")
	assert.Equal(t, frame.Mode, frame2.Mode)
}

func TestSession_ExpandedNoteRemovedFallsBackToOverview(t *testing.T) {
	sweeper := &gatedSweeper{release: make(chan struct{})}
	close(sweeper.release)
	s := newTestSession(t, mocks.NewMockNoteSource(), sweeper, nil, nil)
	cells := domain.Note{ID: "cells", Concepts: []string{"Mitosis", "Chromosome"}}
	s.SetNotes([]domain.Note{photosynthesis, cells})

	_, err := s.Dispatch(context.Background(), Event{Type: EventExpand, NoteID: "plants"})
	require.NoError(t, err)
	_, err = s.Dispatch(context.Background(), Event{Type: EventSelect, NoteID: "plants", Label: "Sunlight"})
	require.NoError(t, err)

	s.SetNotes([]domain.Note{cells})

	state := s.ViewState()
	assert.Equal(t, domain.ModeOverview, state.Mode)
	assert.Nil(t, state.Selected)
	frame := s.Frame()
	assert.Len(t, frame.Nodes, 2)
	for _, c := range frame.Connections {
		assert.Equal(t, "cells", c.NoteID, "connections of the old note set are dropped")
	}
}

func TestSession_ReconfigureRelayouts(t *testing.T) {
	sweeper := &gatedSweeper{release: make(chan struct{})}
	close(sweeper.release)
	s := newTestSession(t, mocks.NewMockNoteSource(), sweeper, nil, nil)
	s.SetNotes([]domain.Note{photosynthesis})

	cfg := domain.DefaultLayoutConfig()
	cfg.Width, cfg.Height = 400, 300
	s.Reconfigure(cfg, interaction.Settings{MinZoom: 0.5, MaxZoom: 1.5, WheelStep: 0.1, ButtonStep: 0.1})

	frame := s.Frame()
	assert.Equal(t, Canvas{Width: 400, Height: 300}, frame.Canvas)
	assert.Len(t, frame.Nodes, 3)
	for i := 0; i < 20; i++ {
		frame, _ = s.Dispatch(context.Background(), Event{Type: EventZoomIn})
	}
	assert.Equal(t, 1.5, frame.Transform.Zoom)
}

func TestSession_ReplaceNotes(t *testing.T) {
	sweeper := &gatedSweeper{release: make(chan struct{})}
	close(sweeper.release)
	store := memory.NewStore()
	s := NewSession(store, sweeper, nil, nil, domain.DefaultLayoutConfig(), interaction.DefaultSettings(), zap.NewNop())
	t.Cleanup(s.Close)

	status, err := s.ReplaceNotes(context.Background(), []domain.Note{photosynthesis})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), status.Generation)

	stored, err := store.ListNotes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Note{photosynthesis}, stored)
	assert.Len(t, s.Frame().Nodes, 3)

	_, err = s.ReplaceNotes(context.Background(), []domain.Note{{ID: ""}})
	assert.True(t, apperrors.IsValidation(err))
}

type readOnlySource struct{}

func (readOnlySource) Name() string { return "readonly" }

func (readOnlySource) ListNotes(context.Context) ([]domain.Note, error) { return nil, nil }

func TestSession_ReplaceNotesReadOnlySource(t *testing.T) {
	s := NewSession(readOnlySource{}, &gatedSweeper{}, nil, nil, domain.DefaultLayoutConfig(), interaction.DefaultSettings(), zap.NewNop())
	t.Cleanup(s.Close)

	_, err := s.ReplaceNotes(context.Background(), []domain.Note{photosynthesis})
	assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.TypeOf(err))
}

func TestSession_PublishesEvents(t *testing.T) {
	publisher := &recordingPublisher{}
	sweeper := &gatedSweeper{release: make(chan struct{})}
	close(sweeper.release)
	s := newTestSession(t, mocks.NewMockNoteSource(), sweeper, publisher, nil)

	s.SetNotes([]domain.Note{photosynthesis})
	waitSweep(t, s)
	s.Close()

	assert.ElementsMatch(t, []string{events.TypeNotesRefreshed, events.TypeConnectionsLoaded}, publisher.types())
}

func TestSession_CloseCancelsRunningSweep(t *testing.T) {
	block := connections.SuggesterFunc(func(ctx context.Context, _ []string) ([]connections.Suggestion, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	metrics := observability.NewCollector("test")
	s := newTestSession(t, mocks.NewMockNoteSource(), connections.NewLoader(block, zap.NewNop(), nil), nil, metrics)
	s.SetNotes([]domain.Note{photosynthesis})

	s.Close()
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Sweeps.WithLabelValues(observability.SweepCancelled)))

	_, status := s.Connections()
	assert.False(t, status.Loading)
}
