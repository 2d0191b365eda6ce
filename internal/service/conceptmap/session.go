// Package conceptmap composes the layout engine, the interaction controller
// and the connection loader into a session that serves render frames.
//
// All state changes are serialized by the session mutex. A relayout runs
// synchronously inside the change that caused it, so no frame ever shows a
// partial layout. Connection sweeps run in their own goroutine and are
// applied only while their generation is still current.
package conceptmap

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	domain "brain2-conceptmap/internal/domain/conceptmap"
	"brain2-conceptmap/internal/domain/interaction"
	apperrors "brain2-conceptmap/internal/errors"
	"brain2-conceptmap/internal/infrastructure/events"
	"brain2-conceptmap/internal/infrastructure/observability"
	"brain2-conceptmap/internal/repository"
	"brain2-conceptmap/internal/service/connections"
)

const publishTimeout = 5 * time.Second

// Sweeper runs one connection sweep. *connections.Loader implements it.
type Sweeper interface {
	Sweep(ctx context.Context, groups []domain.Group) connections.Result
}

type snapshotKey struct {
	version        uint64
	mode           domain.ViewMode
	expandedNoteID string
	cfg            domain.LayoutConfig
}

// Session holds one user's concept map.
type Session struct {
	mu sync.Mutex

	source    repository.NoteSource
	sweeper   Sweeper
	publisher events.Publisher
	metrics   *observability.Collector
	logger    *zap.Logger
	tracer    trace.Tracer

	cfg        domain.LayoutConfig
	controller *interaction.Controller

	notes   []domain.Note
	groups  []domain.Group
	version uint64

	snapshot    domain.Snapshot
	snapshotKey snapshotKey
	haveSnap    bool

	connections []domain.Connection
	generation  uint64
	loading     bool
	cancelSweep context.CancelFunc
	sweepDone   chan struct{}
	lastSweep   connections.Result

	baseCtx    context.Context
	cancelBase context.CancelFunc
	wg         sync.WaitGroup
}

// NewSession creates an empty session. Call Refresh to load notes.
// publisher and metrics may be nil.
func NewSession(
	source repository.NoteSource,
	sweeper Sweeper,
	publisher events.Publisher,
	metrics *observability.Collector,
	cfg domain.LayoutConfig,
	settings interaction.Settings,
	logger *zap.Logger,
) *Session {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	baseCtx, cancel := context.WithCancel(context.Background())
	return &Session{
		source:      source,
		sweeper:     sweeper,
		publisher:   publisher,
		metrics:     metrics,
		logger:      logger.Named("session"),
		tracer:      otel.Tracer("brain2-conceptmap/session"),
		cfg:         cfg,
		controller:  interaction.NewController(settings),
		notes:       []domain.Note{},
		connections: []domain.Connection{},
		baseCtx:     baseCtx,
		cancelBase:  cancel,
	}
}

// Refresh re-reads the note source, relayouts if the notes changed and
// always starts a new connection sweep.
func (s *Session) Refresh(ctx context.Context) (SweepStatus, error) {
	ctx, span := s.tracer.Start(ctx, "conceptmap.Refresh")
	defer span.End()

	notes, err := s.source.ListNotes(ctx)
	if err != nil {
		return SweepStatus{}, apperrors.Wrap(err, "refresh notes")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.setNotesLocked(notes) {
		s.startSweepLocked()
	}
	return s.sweepStatusLocked(), nil
}

// ReplaceNotes writes notes to the source, when it accepts writes, and
// applies them to the session.
func (s *Session) ReplaceNotes(ctx context.Context, notes []domain.Note) (SweepStatus, error) {
	store, ok := s.source.(repository.NoteStore)
	if !ok {
		return SweepStatus{}, apperrors.NewConflict(fmt.Sprintf("note source %q is read-only", s.source.Name()))
	}
	notes, err := repository.NormalizeNotes(notes)
	if err != nil {
		return SweepStatus{}, err
	}
	if err := store.ReplaceNotes(ctx, notes); err != nil {
		return SweepStatus{}, apperrors.Wrap(err, "replace notes")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setNotesLocked(notes)
	return s.sweepStatusLocked(), nil
}

// SetNotes replaces the note snapshot. It reports whether anything changed;
// an unchanged note list neither relayouts nor starts a sweep.
func (s *Session) SetNotes(notes []domain.Note) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setNotesLocked(notes)
}

func (s *Session) setNotesLocked(notes []domain.Note) bool {
	notes = cloneNotes(notes)
	if reflect.DeepEqual(notes, s.notes) {
		return false
	}

	s.notes = notes
	s.groups = domain.DeriveGroups(s.notes)
	s.version++
	s.haveSnap = false

	// Edges of the previous note set must not outlive it.
	s.connections = []domain.Connection{}

	state := s.controller.State()
	if state.Mode == domain.ModeExpanded {
		if _, ok := domain.FindGroup(s.groups, state.ExpandedNoteID); !ok {
			s.controller.Back()
		}
	}
	s.controller.Prune(s.snapshotLocked())

	s.logger.Info("Notes updated",
		zap.Int("notes", len(s.notes)),
		zap.Int("groups", len(s.groups)),
		zap.Uint64("version", s.version),
	)
	s.publishAsync(events.NotesRefreshed{
		Notes:      len(s.notes),
		Groups:     len(s.groups),
		Version:    s.version,
		OccurredAt: time.Now().UTC(),
	})

	s.startSweepLocked()
	return true
}

// Reconfigure swaps the layout tunables and zoom settings. The next frame is
// laid out with the new configuration.
func (s *Session) Reconfigure(cfg domain.LayoutConfig, settings interaction.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.haveSnap = false
	s.controller.SetSettings(settings)
	s.controller.Prune(s.snapshotLocked())
	s.logger.Info("Layout reconfigured",
		zap.Float64("width", cfg.Width),
		zap.Float64("height", cfg.Height),
		zap.Int("overview_iterations", cfg.OverviewIterations),
		zap.Int("expanded_iterations", cfg.ExpandedIterations),
	)
}

// Frame returns the current render frame.
func (s *Session) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameLocked()
}

// Snapshot returns the current layout snapshot.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// ViewState returns the current view state.
func (s *Session) ViewState() interaction.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.State()
}

// Connections returns the accumulated connections and the sweep status.
func (s *Session) Connections() ([]domain.Connection, SweepStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Connection, len(s.connections))
	copy(out, s.connections)
	return out, s.sweepStatusLocked()
}

// Wait blocks until no sweep is running or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		if !s.loading {
			s.mu.Unlock()
			return nil
		}
		done := s.sweepDone
		s.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close cancels any running sweep and waits for it to exit.
func (s *Session) Close() {
	s.cancelBase()
	s.wg.Wait()
}

func (s *Session) frameLocked() Frame {
	frame := buildFrame(s.snapshotLocked(), s.controller, s.connections, s.cfg)
	frame.Version = s.version
	frame.Sweep = s.sweepStatusLocked()
	return frame
}

// snapshotLocked returns the memoized layout, recomputing it when the notes,
// the mode, the expanded note or the configuration changed.
func (s *Session) snapshotLocked() domain.Snapshot {
	state := s.controller.State()
	key := snapshotKey{
		version:        s.version,
		mode:           state.Mode,
		expandedNoteID: state.ExpandedNoteID,
		cfg:            s.cfg,
	}
	if s.haveSnap && key == s.snapshotKey {
		return s.snapshot
	}

	_, span := s.tracer.Start(s.baseCtx, "conceptmap.Relayout", trace.WithAttributes(
		attribute.String("mode", string(key.mode)),
		attribute.Int("groups", len(s.groups)),
	))
	start := time.Now()
	snap := domain.Compute(s.notes, key.mode, key.expandedNoteID, s.cfg)
	elapsed := time.Since(start)
	span.SetAttributes(attribute.Int("nodes", len(snap.Nodes)))
	span.End()

	s.metrics.RecordLayout(string(key.mode), len(snap.Nodes), elapsed)
	s.logger.Debug("Relayout",
		zap.String("mode", string(key.mode)),
		zap.Int("nodes", len(snap.Nodes)),
		zap.Duration("duration", elapsed),
	)

	s.snapshot = snap
	s.snapshotKey = key
	s.haveSnap = true
	return snap
}

func (s *Session) sweepStatusLocked() SweepStatus {
	return SweepStatus{
		Loading:      s.loading,
		Generation:   s.generation,
		LastSweepID:  s.lastSweep.SweepID,
		FailedGroups: append([]string(nil), s.lastSweep.FailedGroups...),
	}
}

// startSweepLocked cancels the running sweep, if any, and starts a new one
// over the current groups.
func (s *Session) startSweepLocked() {
	if s.cancelSweep != nil {
		s.cancelSweep()
	}
	if s.baseCtx.Err() != nil {
		return
	}

	s.generation++
	gen := s.generation
	groups := s.groups
	ctx, cancel := context.WithCancel(s.baseCtx)
	done := make(chan struct{})

	s.cancelSweep = cancel
	s.sweepDone = done
	s.loading = true

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(done)
		defer cancel()
		result := s.sweeper.Sweep(ctx, groups)
		s.applySweep(gen, result)
	}()
}

func (s *Session) applySweep(gen uint64, result connections.Result) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.metrics.RecordSweep(observability.SweepStale, 0)
		s.logger.Debug("Discarding stale sweep",
			zap.String("sweep_id", result.SweepID),
			zap.Uint64("generation", gen),
		)
		return
	}

	s.loading = false
	s.cancelSweep = nil
	if result.Cancelled {
		s.mu.Unlock()
		s.metrics.RecordSweep(observability.SweepCancelled, 0)
		return
	}

	s.connections = result.Connections
	s.lastSweep = result
	s.mu.Unlock()

	s.metrics.RecordSweep(observability.SweepCompleted, len(result.Connections))
	s.publishAsync(events.ConnectionsLoaded{
		SweepID:      result.SweepID,
		Generation:   gen,
		Groups:       result.Queried,
		FailedGroups: result.FailedGroups,
		Connections:  len(result.Connections),
		Duration:     result.Duration.String(),
		OccurredAt:   time.Now().UTC(),
	})
}

// publishAsync publishes outside the session lock; failures are logged only.
func (s *Session) publishAsync(event events.Event) {
	if _, noop := s.publisher.(events.NoopPublisher); noop {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := s.publisher.Publish(ctx, event); err != nil {
			apperrors.LogError(s.logger, err, "Failed to publish event", zap.String("event_type", event.EventType()))
		}
	}()
}

// cloneNotes deep-copies notes so nil and empty concept lists compare equal.
func cloneNotes(notes []domain.Note) []domain.Note {
	out := make([]domain.Note, len(notes))
	for i, n := range notes {
		n.Concepts = append([]string(nil), n.Concepts...)
		out[i] = n
	}
	return out
}
