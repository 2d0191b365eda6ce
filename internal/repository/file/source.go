// Package file reads notes from a YAML document on disk.
//
// The expected layout is:
//
//	notes:
//	  - id: photosynthesis
//	    title: Photosynthesis
//	    concepts: [Chlorophyll, Sunlight, Glucose]
package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"brain2-conceptmap/internal/domain/conceptmap"
	apperrors "brain2-conceptmap/internal/errors"
	"brain2-conceptmap/internal/repository"
)

const watchDebounce = 200 * time.Millisecond

type document struct {
	Notes []conceptmap.Note `yaml:"notes"`
}

// Source reads notes from a YAML file each time they are listed.
type Source struct {
	path   string
	logger *zap.Logger
}

// NewSource creates a source for path.
func NewSource(path string, logger *zap.Logger) *Source {
	return &Source{path: filepath.Clean(path), logger: logger.Named("note_file")}
}

// Name implements repository.NoteSource.
func (s *Source) Name() string { return "file" }

// ListNotes implements repository.NoteSource.
func (s *Source) ListNotes(ctx context.Context) ([]conceptmap.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadNotes(s.path)
}

// ReadNotes parses a notes file.
func ReadNotes(path string) ([]conceptmap.Note, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewNotFound("notes file " + path + " not found")
		}
		return nil, apperrors.NewInternal("read notes file "+path, err).WithCode(apperrors.CodeNoteSourceFailed)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.NewValidation("parse notes file " + path + ": " + err.Error()).
			WithCode(apperrors.CodeNotesFileInvalid)
	}

	notes, err := repository.NormalizeNotes(doc.Notes)
	if err != nil {
		return nil, apperrors.Wrap(err, path)
	}
	return notes, nil
}

// Watch implements repository.Watchable. It blocks until ctx is done.
func (s *Source) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return apperrors.NewInternal("create notes watcher", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return apperrors.NewInternal("watch notes directory", err)
	}
	s.logger.Info("Watching notes file", zap.String("path", s.path))

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, onChange)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("Notes watcher error", zap.Error(err))
		}
	}
}
