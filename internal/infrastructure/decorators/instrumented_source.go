// Package decorators adds cross-cutting concerns to repository interfaces
// without touching the implementations they wrap.
package decorators

import (
	"context"
	"time"

	"go.uber.org/zap"

	"brain2-conceptmap/internal/domain/conceptmap"
	"brain2-conceptmap/internal/infrastructure/observability"
	"brain2-conceptmap/internal/repository"
)

// DefaultSlowThreshold is the read duration above which a warning is logged.
const DefaultSlowThreshold = time.Second

// InstrumentedNoteSource logs and counts every read of the wrapped source.
type InstrumentedNoteSource struct {
	inner         repository.NoteSource
	logger        *zap.Logger
	metrics       *observability.Collector
	slowThreshold time.Duration
}

var _ repository.NoteSource = (*InstrumentedNoteSource)(nil)

// NewInstrumentedNoteSource wraps inner. metrics may be nil.
func NewInstrumentedNoteSource(inner repository.NoteSource, logger *zap.Logger, metrics *observability.Collector) *InstrumentedNoteSource {
	return &InstrumentedNoteSource{
		inner:         inner,
		logger:        logger.Named("note_source"),
		metrics:       metrics,
		slowThreshold: DefaultSlowThreshold,
	}
}

// Name implements repository.NoteSource.
func (s *InstrumentedNoteSource) Name() string {
	return s.inner.Name()
}

// ListNotes implements repository.NoteSource.
func (s *InstrumentedNoteSource) ListNotes(ctx context.Context) ([]conceptmap.Note, error) {
	start := time.Now()
	notes, err := s.inner.ListNotes(ctx)
	duration := time.Since(start)

	s.metrics.RecordNoteRead(s.inner.Name(), err)

	fields := []zap.Field{
		zap.String("source", s.inner.Name()),
		zap.Duration("duration", duration),
	}
	switch {
	case err != nil:
		s.logger.Error("Listing notes failed", append(fields, zap.Error(err))...)
	case duration > s.slowThreshold:
		s.logger.Warn("Slow note read", append(fields, zap.Int("notes", len(notes)))...)
	default:
		s.logger.Debug("Listed notes", append(fields, zap.Int("notes", len(notes)))...)
	}
	return notes, err
}

// InstrumentedNoteStore is InstrumentedNoteSource for stores that accept
// writes. Writes are logged and passed through.
type InstrumentedNoteStore struct {
	*InstrumentedNoteSource
	store repository.NoteStore
}

var _ repository.NoteStore = (*InstrumentedNoteStore)(nil)

// Instrument wraps inner, keeping its write surface when it has one.
func Instrument(inner repository.NoteSource, logger *zap.Logger, metrics *observability.Collector) repository.NoteSource {
	source := NewInstrumentedNoteSource(inner, logger, metrics)
	if store, ok := inner.(repository.NoteStore); ok {
		return &InstrumentedNoteStore{InstrumentedNoteSource: source, store: store}
	}
	return source
}

// ReplaceNotes implements repository.NoteStore.
func (s *InstrumentedNoteStore) ReplaceNotes(ctx context.Context, notes []conceptmap.Note) error {
	return s.write("replace", func() error { return s.store.ReplaceNotes(ctx, notes) }, zap.Int("notes", len(notes)))
}

// PutNote implements repository.NoteStore.
func (s *InstrumentedNoteStore) PutNote(ctx context.Context, note conceptmap.Note) error {
	return s.write("put", func() error { return s.store.PutNote(ctx, note) }, zap.String("note_id", note.ID))
}

// DeleteNote implements repository.NoteStore.
func (s *InstrumentedNoteStore) DeleteNote(ctx context.Context, id string) error {
	return s.write("delete", func() error { return s.store.DeleteNote(ctx, id) }, zap.String("note_id", id))
}

func (s *InstrumentedNoteStore) write(op string, fn func() error, fields ...zap.Field) error {
	start := time.Now()
	err := fn()
	fields = append(fields,
		zap.String("source", s.inner.Name()),
		zap.String("operation", op),
		zap.Duration("duration", time.Since(start)),
	)
	if err != nil {
		s.logger.Error("Note write failed", append(fields, zap.Error(err))...)
		return err
	}
	s.logger.Info("Note write", fields...)
	return nil
}
