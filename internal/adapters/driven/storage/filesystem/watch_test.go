package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
)

func TestHandleFsEvent(t *testing.T) {
	s := newTestStore(t)
	dir := s.Location()

	tests := []struct {
		name   string
		path   string
		op     fsnotify.Op
		wantOp domain.ArtifactEventOp
		want   bool
	}{
		{"create artifact", filepath.Join(dir, "sms.json"), fsnotify.Create, domain.ArtifactWritten, true},
		{"write artifact", filepath.Join(dir, "sms.json"), fsnotify.Write, domain.ArtifactWritten, true},
		{"remove artifact", filepath.Join(dir, "sms.json"), fsnotify.Remove, domain.ArtifactRemoved, true},
		{"rename artifact", filepath.Join(dir, "sms.json"), fsnotify.Rename, domain.ArtifactRemoved, true},
		{"chmod ignored", filepath.Join(dir, "sms.json"), fsnotify.Chmod, "", false},
		{"temp file ignored", filepath.Join(dir, ".tmp-42"), fsnotify.Create, "", false},
		{"other dir ignored", filepath.Join(dir, "sub", "sms.json"), fsnotify.Create, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := s.handleFsEvent(fsnotify.Event{Name: tt.path, Op: tt.op})
			if !tt.want {
				assert.Nil(t, ev)
				return
			}
			require.NotNil(t, ev)
			assert.Equal(t, "sms.json", ev.Name)
			assert.Equal(t, tt.wantOp, ev.Op)
		})
	}
}

func TestStore_WatchReportsWrites(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, _, err := s.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "calendar.json", []byte("[]")))

	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "events closed before artifact event")
			if ev.Name == "calendar.json" && ev.Op == domain.ArtifactWritten {
				return
			}
		case <-ctx.Done():
			t.Fatal("timed out waiting for artifact event")
		}
	}
}

func TestStore_WatchStopsOnCancel(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	events, _, err := s.Watch(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-events:
		for ok {
			_, ok = <-events
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
	require.NoError(t, os.WriteFile(filepath.Join(s.Location(), "late.json"), []byte("[]"), 0o600))
}
