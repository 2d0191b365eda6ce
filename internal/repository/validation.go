package repository

import (
	"strings"

	"brain2-conceptmap/internal/domain/conceptmap"
	apperrors "brain2-conceptmap/internal/errors"
)

// NormalizeNote trims whitespace and drops blank concepts.
func NormalizeNote(n conceptmap.Note) (conceptmap.Note, error) {
	n.ID = strings.TrimSpace(n.ID)
	if n.ID == "" {
		return conceptmap.Note{}, apperrors.NewValidation("note id is required")
	}
	n.Title = strings.TrimSpace(n.Title)

	concepts := make([]string, 0, len(n.Concepts))
	for _, c := range n.Concepts {
		if c = strings.TrimSpace(c); c != "" {
			concepts = append(concepts, c)
		}
	}
	n.Concepts = concepts
	return n, nil
}

// NormalizeNotes normalizes every note and rejects duplicate ids.
func NormalizeNotes(notes []conceptmap.Note) ([]conceptmap.Note, error) {
	out := make([]conceptmap.Note, 0, len(notes))
	seen := make(map[string]struct{}, len(notes))
	for _, n := range notes {
		normalized, err := NormalizeNote(n)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[normalized.ID]; dup {
			return nil, apperrors.NewValidation("duplicate note id " + normalized.ID)
		}
		seen[normalized.ID] = struct{}{}
		out = append(out, normalized)
	}
	return out, nil
}
