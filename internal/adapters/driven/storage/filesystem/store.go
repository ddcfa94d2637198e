package filesystem

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.ArtifactStore   = (*Store)(nil)
	_ driven.ArtifactWatcher = (*Store)(nil)
)

const (
	dirPerm  os.FileMode = 0o700
	filePerm os.FileMode = 0o600

	artifactExt = ".json"
	bufSize              = 64 * 1024

	tempPattern = ".tmp-*"
)

// Store is a directory-backed artifact store.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory is created by Prepare.
func NewStore(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("%w: staging directory is empty", domain.ErrInvalidInput)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve staging directory: %w", err)
	}
	return &Store{dir: abs}, nil
}

// Location returns the staging directory.
func (s *Store) Location() string {
	return s.dir
}

// Prepare creates the staging directory with owner-only permissions.
func (s *Store) Prepare() error {
	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStagingUnavailable, err)
	}
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStagingUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrStagingUnavailable, s.dir)
	}
	return nil
}

// Write atomically replaces the named artifact.
func (s *Store) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrWrite, name, err)
	}
	dest, err := s.path(name)
	if err != nil {
		return err
	}
	if err := s.writeAtomic(dest, data); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrWrite, name, err)
	}
	return nil
}

func (s *Store) writeAtomic(dest string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, tempPattern)
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, filePerm)

	bw := bufio.NewWriterSize(tmp, bufSize)
	if _, err := bw.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	// Best effort: persist the rename itself.
	_ = syncDir(s.dir)
	return nil
}

// List returns the visible regular .json files, sorted by name.
// A missing staging directory lists as empty.
func (s *Store) List(ctx context.Context) ([]domain.ArtifactInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []domain.ArtifactInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read staging directory: %w", err)
	}

	infos := make([]domain.ArtifactInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !domain.ValidArtifactName(entry.Name()) ||
			filepath.Ext(entry.Name()) != artifactExt {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			// Replaced or removed between ReadDir and Info.
			continue
		}
		infos = append(infos, domain.ArtifactInfo{
			Name:     entry.Name(),
			Size:     fi.Size(),
			Modified: fi.ModTime(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Open returns a read-only handle on the artifact.
func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, domain.ArtifactInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.ArtifactInfo{}, err
	}
	p, err := s.path(name)
	if err != nil {
		return nil, domain.ArtifactInfo{}, fmt.Errorf("%w: %s", domain.ErrNotFound, name)
	}
	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ArtifactInfo{}, fmt.Errorf("%w: %s", domain.ErrNotFound, name)
	}
	if err != nil {
		return nil, domain.ArtifactInfo{}, fmt.Errorf("open %s: %w", name, err)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, domain.ArtifactInfo{}, fmt.Errorf("stat %s: %w", name, err)
	}
	if !fi.Mode().IsRegular() {
		_ = f.Close()
		return nil, domain.ArtifactInfo{}, fmt.Errorf("%w: %s", domain.ErrNotFound, name)
	}
	return f, domain.ArtifactInfo{Name: name, Size: fi.Size(), Modified: fi.ModTime()}, nil
}

// path maps an artifact name into the staging directory.
func (s *Store) path(name string) (string, error) {
	if !domain.ValidArtifactName(name) || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: artifact name %q", domain.ErrInvalidInput, name)
	}
	return filepath.Join(s.dir, name), nil
}
