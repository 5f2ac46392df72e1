// Package memstore provides the process-local storage backend used for
// single-node runs and tests.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/c360/cogstream/errors"
	"github.com/c360/cogstream/types"
)

// Store keeps persisted notes in an in-process map. Safe for concurrent
// use.
type Store struct {
	mu     sync.RWMutex
	notes  map[string]types.Note
	closed bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{notes: make(map[string]types.Note)}
}

// Persist records the note, overwriting any previous record with the
// same ID.
func (s *Store) Persist(_ context.Context, note types.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.WrapFatal(errors.ErrStorageUnavailable, "memstore", "Persist", "store closed")
	}
	s.notes[note.ID] = note
	return nil
}

// Fetch retrieves a persisted note by ID.
func (s *Store) Fetch(_ context.Context, id string) (types.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	note, ok := s.notes[id]
	if !ok {
		return types.Note{}, errors.Wrap(errors.ErrNoteNotFound, "memstore", "Fetch", "note "+id)
	}
	return note, nil
}

// List returns the IDs of notes persisted in a zone, sorted.
func (s *Store) List(_ context.Context, zone types.Zone) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for id, note := range s.notes {
		if note.Zone == zone {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Len returns the number of persisted notes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

// Close marks the store closed. Further persists fail fatally.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
