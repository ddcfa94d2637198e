package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sources "github.com/DIVT313/forensic-agent/internal/adapters/driven/sources/memory"
	"github.com/DIVT313/forensic-agent/internal/adapters/driven/storage/memory"
	"github.com/DIVT313/forensic-agent/internal/core/domain"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driven"
	"github.com/DIVT313/forensic-agent/internal/core/services"
)

func newRunServer(t *testing.T) (*Server, *services.Orchestrator, *memory.ArtifactStore) {
	t.Helper()
	store := memory.NewArtifactStore()
	reader := sources.NewReader().
		Add(domain.SourceMessages, domain.RawRecord{
			domain.FieldAddress: "+1", domain.FieldBody: "hi", domain.FieldDate: int64(1), domain.FieldType: int64(1),
		}).
		FailOpen(domain.SourceContacts, domain.ErrUnauthorized)
	readers := map[domain.SourceKind]driven.SourceReader{}
	for _, kind := range domain.AllSourceKinds() {
		readers[kind] = reader
	}
	orch := services.NewOrchestrator(store, readers)
	srv := NewServer(services.NewRetrievalService(store, readers), WithExtraction(orch))
	return srv, orch, store
}

func TestStartRun(t *testing.T) {
	s, orch, store := newRunServer(t)

	w := do(s, http.MethodPost, "/runs", `{"sources":["sms","contacts"]}`)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var view RunView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.NotEmpty(t, view.ID)
	assert.Equal(t, "/runs/"+view.ID, w.Header().Get("Location"))

	// The run outlives the request
	require.Eventually(t, func() bool {
		st, err := orch.Status(view.ID)
		return err == nil && st.FinishedAt.After(time.Time{})
	}, 2*time.Second, 10*time.Millisecond)

	w = do(s, http.MethodGet, "/runs/"+view.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "completed", view.State)
	require.Len(t, view.Outcomes, 2)
	assert.NotNil(t, view.FinishedAt)

	statuses := map[string]string{}
	for _, o := range view.Outcomes {
		statuses[o.Source] = o.Status
	}
	assert.Equal(t, map[string]string{"messages": "success", "contacts": "unauthorized"}, statuses)

	_, ok := store.Bytes(domain.ArtifactMessages)
	assert.True(t, ok)
	_, ok = store.Bytes(domain.ArtifactContacts)
	assert.False(t, ok)
}

func TestStartRun_EmptyBodyRunsDefaults(t *testing.T) {
	s, orch, _ := newRunServer(t)

	w := do(s, http.MethodPost, "/runs", "")
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var view RunView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	handleDone := func() bool {
		st, err := orch.Status(view.ID)
		return err == nil && len(st.Pending) == 0
	}
	require.Eventually(t, handleDone, 2*time.Second, 10*time.Millisecond)

	st, err := orch.Status(view.ID)
	require.NoError(t, err)
	assert.Len(t, st.Completed, len(domain.AllSourceKinds()))
}

func TestStartRun_BadInput(t *testing.T) {
	s, _, _ := newRunServer(t)

	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodPost, "/runs", `{"sources":["photos"]}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodPost, "/runs", `{not json`).Code)
}

func TestRunStatus_NotFound(t *testing.T) {
	s, _, _ := newRunServer(t)

	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/runs/unknown", "").Code)
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/runs/latest", "").Code)
}

func TestLatestRun(t *testing.T) {
	s, orch, _ := newRunServer(t)
	_, err := orch.RunAll(context.Background(), []domain.SourceKind{domain.SourceMessages})
	require.NoError(t, err)

	w := do(s, http.MethodGet, "/runs/latest", "")

	require.Equal(t, http.StatusOK, w.Code)
	var view RunView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "completed", view.State)
}

func TestRunsDisabledWithoutExtraction(t *testing.T) {
	s, _ := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, do(s, http.MethodPost, "/runs", "").Code)
}
