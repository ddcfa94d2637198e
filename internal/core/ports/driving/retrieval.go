package driving

import (
	"context"
	"io"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
)

// RetrievalService exposes staged artifacts read-only.
type RetrievalService interface {
	// List returns every artifact plus the synthetic listing entry.
	List(ctx context.Context) ([]domain.ArtifactInfo, error)

	// Describe returns the content type of an artifact name.
	Describe(name string) string

	// Open streams an artifact, or the listing when name is domain.ListingName.
	// Returns domain.ErrNotFound if absent.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Live reads a source directly and returns its normalised rows without staging.
	// Contacts are flattened to one row per phone.
	Live(ctx context.Context, kind domain.SourceKind) (any, error)

	// Insert, Update and Delete always return domain.ErrReadOnly.
	Insert(ctx context.Context, name string, data []byte) error
	Update(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
}
