package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driven"
)

// Ensure ArtifactStore implements the interface.
var _ driven.ArtifactStore = (*ArtifactStore)(nil)

type artifact struct {
	data     []byte
	modified time.Time
}

// ArtifactStore is an in-memory implementation of driven.ArtifactStore.
// Writes replace whole values under a lock, which makes them atomic.
type ArtifactStore struct {
	mu         sync.RWMutex
	artifacts  map[string]artifact
	writeErrs  map[string]error
	prepareErr error
	writes     int
}

// NewArtifactStore creates a new in-memory artifact store.
func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{
		artifacts: make(map[string]artifact),
		writeErrs: make(map[string]error),
	}
}

// FailWrite makes writes to name fail with err.
func (s *ArtifactStore) FailWrite(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErrs[name] = err
}

// FailPrepare makes Prepare fail with err.
func (s *ArtifactStore) FailPrepare(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prepareErr = err
}

// Bytes returns a copy of the stored artifact.
func (s *ArtifactStore) Bytes(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.artifacts[name]
	if !ok {
		return nil, false
	}
	return bytes.Clone(a.data), true
}

// Writes returns the number of successful writes.
func (s *ArtifactStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// Prepare reports the injected failure, if any.
func (s *ArtifactStore) Prepare() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.prepareErr != nil {
		return fmt.Errorf("%w: %w", domain.ErrStagingUnavailable, s.prepareErr)
	}
	return nil
}

// Write replaces the artifact.
func (s *ArtifactStore) Write(_ context.Context, name string, data []byte) error {
	if !domain.ValidArtifactName(name) {
		return fmt.Errorf("%w: artifact name %q", domain.ErrInvalidInput, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.writeErrs[name]; ok {
		return fmt.Errorf("%w: %s: %w", domain.ErrWrite, name, err)
	}
	s.artifacts[name] = artifact{data: bytes.Clone(data), modified: time.Now()}
	s.writes++
	return nil
}

// List returns every artifact sorted by name.
func (s *ArtifactStore) List(_ context.Context) ([]domain.ArtifactInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]domain.ArtifactInfo, 0, len(s.artifacts))
	for name, a := range s.artifacts {
		infos = append(infos, domain.ArtifactInfo{Name: name, Size: int64(len(a.data)), Modified: a.modified})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Open returns the artifact content.
func (s *ArtifactStore) Open(_ context.Context, name string) (io.ReadCloser, domain.ArtifactInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.artifacts[name]
	if !ok {
		return nil, domain.ArtifactInfo{}, fmt.Errorf("%w: %s", domain.ErrNotFound, name)
	}
	info := domain.ArtifactInfo{Name: name, Size: int64(len(a.data)), Modified: a.modified}
	return io.NopCloser(bytes.NewReader(bytes.Clone(a.data))), info, nil
}

// Location returns a marker for the in-memory store.
func (s *ArtifactStore) Location() string {
	return ":memory:"
}
