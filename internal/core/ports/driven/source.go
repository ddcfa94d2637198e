package driven

import (
	"context"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
)

// Query selects the rows a SourceReader yields.
type Query struct {
	// Kind is the source to read.
	Kind domain.SourceKind

	// ParentID filters sub-queries, e.g. the contact id for SourceContactPhones.
	ParentID string
}

// SourceReader opens record streams over a device or account data store.
// Each backend (sqlite dumps, Google APIs) implements this interface.
type SourceReader interface {
	// Name returns the backend identifier for logs.
	Name() string

	// Open starts reading the rows selected by q.
	// Returns an error wrapping domain.ErrUnauthorized when the capability
	// to read the source is missing; any other error is an I/O failure.
	Open(ctx context.Context, q Query) (RecordStream, error)

	// Close releases resources.
	Close() error
}

// RecordStream is a forward-only iterator over raw rows, shaped like sql.Rows.
//
//	for stream.Next() {
//		rec := stream.Record()
//	}
//	if err := stream.Err(); err != nil { ... }
type RecordStream interface {
	// Next advances to the next row. It returns false at the end of the
	// stream or on failure; Err distinguishes the two.
	Next() bool

	// Record returns the current row.
	Record() domain.RawRecord

	// Err returns the error that stopped iteration, if any.
	Err() error

	// Close releases the stream. It is safe to call more than once.
	Close() error
}
