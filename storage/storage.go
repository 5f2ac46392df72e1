// Package storage provides pluggable backends for durable note
// persistence.
//
// The engine treats storage as an external collaborator: the orchestrator
// persists each note after classification, and only a fatal persistence
// failure aborts the request. Transient failures degrade; the in-memory
// zone collections remain the source of the live metrics either way.
//
// Implementations:
//   - memstore.Store: process-local map, the default for single-node runs
//   - natsstore.Store: NATS JetStream KeyValue bucket
package storage

import (
	"context"

	"github.com/c360/cogstream/types"
)

// Store is the pluggable note persistence backend.
//
// All implementations must be safe for concurrent use from multiple
// goroutines.
type Store interface {
	// Persist writes a note record. Implementations classify their
	// failures: transient errors mean the note may be retried by an
	// outer layer, fatal errors mean the backend cannot record notes
	// at all.
	Persist(ctx context.Context, note types.Note) error

	// Fetch retrieves a persisted note by ID.
	Fetch(ctx context.Context, id string) (types.Note, error)

	// List returns the IDs of persisted notes in a zone, in
	// lexicographic order.
	List(ctx context.Context, zone types.Zone) ([]string, error)

	// Close releases backend resources.
	Close() error
}
