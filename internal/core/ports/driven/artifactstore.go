package driven

import (
	"context"
	"io"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
)

// ArtifactReader is the read side of the staging area.
// Retrieval is built on this interface alone, so it cannot mutate artifacts.
type ArtifactReader interface {
	// List returns every staged artifact, sorted by name.
	List(ctx context.Context) ([]domain.ArtifactInfo, error)

	// Open returns the artifact content.
	// Returns domain.ErrNotFound if the artifact is not staged.
	Open(ctx context.Context, name string) (io.ReadCloser, domain.ArtifactInfo, error)

	// Location describes where artifacts live.
	Location() string
}

// ArtifactWriter is the write side of the staging area.
type ArtifactWriter interface {
	// Write replaces the named artifact with data atomically:
	// readers observe either the old or the new content, never a mix.
	Write(ctx context.Context, name string, data []byte) error
}

// ArtifactStore owns the staging area.
type ArtifactStore interface {
	ArtifactReader
	ArtifactWriter

	// Prepare creates the staging location if needed.
	// Returns an error wrapping domain.ErrStagingUnavailable on failure.
	Prepare() error
}

// ArtifactWatcher emits change events for staged artifacts.
type ArtifactWatcher interface {
	// Watch streams events until ctx is cancelled.
	Watch(ctx context.Context) (<-chan domain.ArtifactEvent, <-chan error, error)
}
