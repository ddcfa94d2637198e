package domain

import "errors"

// Domain errors represent extraction and retrieval failures.
// Adapters wrap them with %w so callers can classify with errors.Is.
var (
	// ErrNotFound indicates a requested artifact or record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown source kind or backend.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrUnauthorized indicates the capability to read a source was not granted.
	// No artifact is written for a source that fails this way.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrReadOnly is returned by every mutation attempted through retrieval.
	ErrReadOnly = errors.New("read-only")

	// ErrDecode indicates a single row could not be mapped to its normalised shape.
	// The row is dropped and counted; the extraction continues.
	ErrDecode = errors.New("decode failed")

	// ErrEncode indicates the accumulated records could not be serialised.
	ErrEncode = errors.New("encode failed")

	// ErrWrite indicates an artifact could not be persisted.
	ErrWrite = errors.New("write failed")

	// ErrStagingUnavailable indicates the staging location cannot be prepared.
	// A run is not attempted at all in this case.
	ErrStagingUnavailable = errors.New("staging unavailable")

	// ErrRunNotFound indicates an unknown extraction run id.
	ErrRunNotFound = errors.New("run not found")
)
