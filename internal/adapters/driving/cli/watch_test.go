package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
)

// fakeWatcher replays a fixed set of events then closes.
type fakeWatcher struct {
	events []domain.ArtifactEvent
	err    error
}

func (f *fakeWatcher) Watch(_ context.Context) (<-chan domain.ArtifactEvent, <-chan error, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	events := make(chan domain.ArtifactEvent, len(f.events))
	for _, ev := range f.events {
		events <- ev
	}
	close(events)
	return events, make(chan error), nil
}

func TestWatchCmd(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local)
	Configure(&Dependencies{Watcher: &fakeWatcher{events: []domain.ArtifactEvent{
		{Name: "sms.json", Op: domain.ArtifactWritten, At: at},
		{Name: "contacts.json", Op: domain.ArtifactRemoved, At: at},
	}}})
	t.Cleanup(func() { configured = false })

	out, err := execute(t, "watch")
	require.NoError(t, err)

	assert.Contains(t, out, "10:00:00 written  sms.json")
	assert.Contains(t, out, "removed  contacts.json")
}

func TestWatchCmd_Error(t *testing.T) {
	Configure(&Dependencies{Watcher: &fakeWatcher{err: errors.New("no inotify")}})
	t.Cleanup(func() { configured = false })

	_, err := execute(t, "watch")
	assert.ErrorContains(t, err, "no inotify")
}
