// Package memory provides an in-process note store.
package memory

import (
	"context"
	"sync"

	"brain2-conceptmap/internal/domain/conceptmap"
	apperrors "brain2-conceptmap/internal/errors"
	"brain2-conceptmap/internal/repository"
)

// Store keeps notes in memory in insertion order.
type Store struct {
	mu    sync.RWMutex
	notes []conceptmap.Note
}

// NewStore creates a store seeded with notes.
func NewStore(notes ...conceptmap.Note) *Store {
	return &Store{notes: cloneNotes(notes)}
}

// Name implements repository.NoteSource.
func (s *Store) Name() string { return "memory" }

// ListNotes implements repository.NoteSource.
func (s *Store) ListNotes(ctx context.Context) ([]conceptmap.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneNotes(s.notes), nil
}

// ReplaceNotes implements repository.NoteStore.
func (s *Store) ReplaceNotes(_ context.Context, notes []conceptmap.Note) error {
	normalized, err := repository.NormalizeNotes(notes)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = normalized
	return nil
}

// PutNote implements repository.NoteStore.
func (s *Store) PutNote(_ context.Context, note conceptmap.Note) error {
	note, err := repository.NormalizeNote(note)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notes {
		if s.notes[i].ID == note.ID {
			s.notes[i] = note
			return nil
		}
	}
	s.notes = append(s.notes, note)
	return nil
}

// DeleteNote implements repository.NoteStore.
func (s *Store) DeleteNote(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notes {
		if s.notes[i].ID == id {
			s.notes = append(s.notes[:i:i], s.notes[i+1:]...)
			return nil
		}
	}
	return apperrors.NewNotFound("note " + id + " not found")
}

func cloneNotes(notes []conceptmap.Note) []conceptmap.Note {
	out := make([]conceptmap.Note, len(notes))
	for i, n := range notes {
		n.Concepts = append([]string(nil), n.Concepts...)
		out[i] = n
	}
	return out
}
