package store

import (
	"context"
	"errors"

	"github.com/vovakirdan/msgboard/internal/core"
)

// ErrUnavailable is returned when the datastore cannot be reached within the retry window.
var ErrUnavailable = errors.New("datastore unavailable")

// RecordStore persists ingested records.
type RecordStore interface {
	// InsertRecord writes one record; the store owns it afterwards.
	InsertRecord(ctx context.Context, rec core.Record) error
}

// RecordLister reads stored records back, newest first. A non-positive
// limit returns everything.
type RecordLister interface {
	ListRecords(ctx context.Context, limit int) ([]core.Record, error)
}

// Store is a datastore handle held for the lifetime of the ingest service.
type Store interface {
	RecordStore

	// Ping performs a lightweight liveness check.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
