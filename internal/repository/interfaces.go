// Package repository defines where concept map notes come from. Notes are
// owned by the capture side of the product; the map only reads them, except
// for the memory and DynamoDB stores which also accept writes from the API.
package repository

import (
	"context"

	"brain2-conceptmap/internal/domain/conceptmap"
)

// NoteSource reads the ordered note list.
type NoteSource interface {
	// Name identifies the source in logs and metrics.
	Name() string
	// ListNotes returns all notes in their display order.
	ListNotes(ctx context.Context) ([]conceptmap.Note, error)
}

// NoteStore is a NoteSource that also accepts writes.
type NoteStore interface {
	NoteSource
	// ReplaceNotes swaps the whole note list, preserving the given order.
	ReplaceNotes(ctx context.Context, notes []conceptmap.Note) error
	// PutNote inserts a note at the end or updates it in place.
	PutNote(ctx context.Context, note conceptmap.Note) error
	// DeleteNote removes a note. Deleting an unknown id is a NotFound error.
	DeleteNote(ctx context.Context, id string) error
}

// Watchable sources call onChange whenever their contents may have changed,
// until ctx is done.
type Watchable interface {
	Watch(ctx context.Context, onChange func()) error
}
