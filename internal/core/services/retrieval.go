package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driven"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driving"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService serves staged artifacts read-only.
// It only holds the read side of the staging area.
type RetrievalService struct {
	artifacts  driven.ArtifactReader
	readers    map[domain.SourceKind]driven.SourceReader
	extractors map[domain.SourceKind]Extractor
}

// NewRetrievalService creates a retrieval service. readers may be nil, in
// which case live queries report every kind as unsupported.
func NewRetrievalService(
	artifacts driven.ArtifactReader,
	readers map[domain.SourceKind]driven.SourceReader,
) *RetrievalService {
	return &RetrievalService{
		artifacts:  artifacts,
		readers:    readers,
		extractors: DefaultExtractors(),
	}
}

// List returns the synthetic listing entry followed by every staged artifact.
func (s *RetrievalService) List(ctx context.Context) ([]domain.ArtifactInfo, error) {
	entries, _, err := s.listing(ctx)
	return entries, err
}

// listing builds the listing rows and the document served for
// domain.ListingName. The document contains its own row, and that row's size
// is the document length: the size is iterated until it is stable. Growth only
// comes from extra digits in the size, so this settles after a few rounds.
func (s *RetrievalService) listing(ctx context.Context) ([]domain.ArtifactInfo, []byte, error) {
	infos, err := s.artifacts.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list artifacts: %w", err)
	}
	entries := make([]domain.ArtifactInfo, 1, len(infos)+1)
	for _, info := range infos {
		if info.Name != domain.ListingName {
			entries = append(entries, info)
		}
	}
	entries[0] = domain.ArtifactInfo{
		Name:     domain.ListingName,
		Modified: newest(entries[1:]),
	}

	for {
		data, err := encodeListing(entries)
		if err != nil {
			return nil, nil, err
		}
		if size := int64(len(data)); size != entries[0].Size {
			entries[0].Size = size
			continue
		}
		return entries, data, nil
	}
}

// Describe returns the content type for an artifact name.
func (s *RetrievalService) Describe(name string) string {
	return domain.ContentTypeFor(name)
}

// Open streams an artifact, or the listing for domain.ListingName.
func (s *RetrievalService) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if name == domain.ListingName {
		_, data, err := s.listing(ctx)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	if !domain.ValidArtifactName(name) {
		return nil, fmt.Errorf("%w: %q", domain.ErrNotFound, name)
	}
	rc, _, err := s.artifacts.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return rc, nil
}

// Live reads a source directly and returns its normalised rows.
func (s *RetrievalService) Live(ctx context.Context, kind domain.SourceKind) (any, error) {
	extractor, ok := s.extractors[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, kind)
	}
	reader, ok := s.readers[kind]
	if !ok || reader == nil {
		return nil, fmt.Errorf("%w: no reader for %s", domain.ErrUnsupportedType, kind)
	}
	return extractor.Query(ctx, reader)
}

// Insert is not supported.
func (s *RetrievalService) Insert(_ context.Context, name string, _ []byte) error {
	return fmt.Errorf("insert %s: %w", name, domain.ErrReadOnly)
}

// Update is not supported.
func (s *RetrievalService) Update(_ context.Context, name string, _ []byte) error {
	return fmt.Errorf("update %s: %w", name, domain.ErrReadOnly)
}

// Delete is not supported.
func (s *RetrievalService) Delete(_ context.Context, name string) error {
	return fmt.Errorf("delete %s: %w", name, domain.ErrReadOnly)
}

func newest(infos []domain.ArtifactInfo) time.Time {
	var t time.Time
	for _, info := range infos {
		if info.Modified.After(t) {
			t = info.Modified
		}
	}
	return t
}
