// Package store persists payroll batches through interchangeable backends.
//
// A [Router] writes each batch to a primary store and, on any failure,
// replays the whole batch against a secondary store. Backends live in
// subpackages and register a [Factory] under a name so binaries can pick
// them from configuration:
//
//	import _ "github.com/JonMunkholm/payroll-import/internal/store/localstore"
//
//	st, err := store.Open(ctx, "local", cfg)
package store

import (
	"context"

	"github.com/JonMunkholm/payroll-import/internal/core"
)

// Adapter is the write capability every store provides.
//
// Initialize reports readiness and may create schema; it must not block
// past ctx. WriteBatch stores the batch document under its period key.
// WriteRecord stores one record under its id. Both upsert.
type Adapter interface {
	Name() string
	Initialize(ctx context.Context) bool
	WriteBatch(ctx context.Context, periodKey string, batch *core.Batch) error
	WriteRecord(ctx context.Context, rec core.Record) error
}

// Reader loads a stored batch by period key.
// It returns ErrNotFound when the period has never been written.
type Reader interface {
	ReadBatch(ctx context.Context, periodKey string) (*core.Batch, error)
}

// RecordReader loads a single stored record by id.
type RecordReader interface {
	ReadRecord(ctx context.Context, id string) (core.Record, error)
}

// Flusher is implemented by adapters that buffer writes. The router calls
// Flush once after all of a batch's records are written; the batch counts
// as persisted only when Flush succeeds.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Store is a full backend as returned by registered factories.
type Store interface {
	Adapter
	Reader
	RecordReader
	Close() error
}
