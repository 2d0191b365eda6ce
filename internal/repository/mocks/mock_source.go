// Package mocks provides mock implementations of repository interfaces for testing.
package mocks

import (
	"context"
	"sync"

	"brain2-conceptmap/internal/domain/conceptmap"
	"brain2-conceptmap/internal/repository/memory"
)

// MockNoteSource is an in-memory note store whose methods can be made to fail.
type MockNoteSource struct {
	mu           sync.Mutex
	store        *memory.Store
	shouldFailOn map[string]error
	calls        map[string]int
}

// NewMockNoteSource creates a mock seeded with notes.
func NewMockNoteSource(notes ...conceptmap.Note) *MockNoteSource {
	return &MockNoteSource{
		store:        memory.NewStore(notes...),
		shouldFailOn: make(map[string]error),
		calls:        make(map[string]int),
	}
}

// SetError configures the mock to return an error for a specific method.
func (m *MockNoteSource) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn[method] = err
}

// ClearErrors removes all configured errors.
func (m *MockNoteSource) ClearErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn = make(map[string]error)
}

// Calls returns how often method was invoked.
func (m *MockNoteSource) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockNoteSource) record(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[method]++
	return m.shouldFailOn[method]
}

// Name implements repository.NoteSource.
func (m *MockNoteSource) Name() string { return "mock" }

// ListNotes implements repository.NoteSource.
func (m *MockNoteSource) ListNotes(ctx context.Context) ([]conceptmap.Note, error) {
	if err := m.record("ListNotes"); err != nil {
		return nil, err
	}
	return m.store.ListNotes(ctx)
}

// ReplaceNotes implements repository.NoteStore.
func (m *MockNoteSource) ReplaceNotes(ctx context.Context, notes []conceptmap.Note) error {
	if err := m.record("ReplaceNotes"); err != nil {
		return err
	}
	return m.store.ReplaceNotes(ctx, notes)
}

// PutNote implements repository.NoteStore.
func (m *MockNoteSource) PutNote(ctx context.Context, note conceptmap.Note) error {
	if err := m.record("PutNote"); err != nil {
		return err
	}
	return m.store.PutNote(ctx, note)
}

// DeleteNote implements repository.NoteStore.
func (m *MockNoteSource) DeleteNote(ctx context.Context, id string) error {
	if err := m.record("DeleteNote"); err != nil {
		return err
	}
	return m.store.DeleteNote(ctx, id)
}
