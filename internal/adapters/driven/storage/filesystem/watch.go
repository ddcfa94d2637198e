package filesystem

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
)

// Watch streams artifact changes until ctx is cancelled.
// An atomic replace surfaces as a single written event for the final name;
// temporary files are filtered out.
func (s *Store) Watch(ctx context.Context) (<-chan domain.ArtifactEvent, <-chan error, error) {
	if err := s.Prepare(); err != nil {
		return nil, nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		_ = watcher.Close()
		return nil, nil, fmt.Errorf("watch %s: %w", s.dir, err)
	}

	events := make(chan domain.ArtifactEvent, 16)
	errs := make(chan error, 1)

	go func() {
		defer close(events)
		defer close(errs)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				change := s.handleFsEvent(ev)
				if change == nil {
					continue
				}
				select {
				case events <- *change:
				case <-ctx.Done():
					return
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				select {
				case errs <- err:
				default:
				}
			}
		}
	}()

	return events, errs, nil
}

// handleFsEvent converts a filesystem event into an artifact event.
// Returns nil for events that do not concern a visible artifact.
func (s *Store) handleFsEvent(ev fsnotify.Event) *domain.ArtifactEvent {
	name := filepath.Base(ev.Name)
	if filepath.Dir(ev.Name) != s.dir || !domain.ValidArtifactName(name) {
		return nil
	}

	var op domain.ArtifactEventOp
	switch {
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		op = domain.ArtifactWritten
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		op = domain.ArtifactRemoved
	default:
		return nil
	}
	return &domain.ArtifactEvent{Name: name, Op: op, At: time.Now()}
}
