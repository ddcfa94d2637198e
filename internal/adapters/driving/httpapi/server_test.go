package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sources "github.com/DIVT313/forensic-agent/internal/adapters/driven/sources/memory"
	"github.com/DIVT313/forensic-agent/internal/adapters/driven/storage/memory"
	"github.com/DIVT313/forensic-agent/internal/core/domain"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driven"
	"github.com/DIVT313/forensic-agent/internal/core/services"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, *memory.ArtifactStore) {
	t.Helper()
	ctx := context.Background()

	store := memory.NewArtifactStore()
	require.NoError(t, store.Write(ctx, domain.ArtifactMessages, []byte(`[
  {
    "address": "+15550001",
    "body": "hi",
    "date": 1700000000000,
    "type": 1
  }
]`)))

	reader := sources.NewReader().
		Add(domain.SourceContacts,
			domain.RawRecord{domain.FieldID: "1", domain.FieldDisplayName: "Ada"},
			domain.RawRecord{domain.FieldID: "2", domain.FieldDisplayName: nil},
		).
		AddPhones("1", "+441", "+442").
		FailOpen(domain.SourceCallEvents, domain.ErrUnauthorized)
	readers := map[domain.SourceKind]driven.SourceReader{
		domain.SourceContacts:   reader,
		domain.SourceCallEvents: reader,
	}

	return NewServer(services.NewRetrievalService(store, readers), opts...), store
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestList(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodGet, "/list", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var listing struct {
		Columns []string `json:"columns"`
		Rows    [][]any  `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Equal(t, []string{"name", "size", "modified"}, listing.Columns)
	require.Len(t, listing.Rows, 2)
	assert.Equal(t, "list", listing.Rows[0][0])
	assert.EqualValues(t, w.Body.Len(), listing.Rows[0][1])
	assert.Equal(t, "sms.json", listing.Rows[1][0])
}

func TestGetArtifact(t *testing.T) {
	s, store := newTestServer(t)

	w := do(s, http.MethodGet, "/artifacts/sms.json", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	want, _ := store.Bytes(domain.ArtifactMessages)
	assert.Equal(t, string(want), w.Body.String())
}

func TestGetArtifact_NotFound(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{"/artifacts/calendar.json", "/artifacts/..", "/artifacts/.hidden"} {
		w := do(s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestWritesAreRejected(t *testing.T) {
	s, store := newTestServer(t)
	before := store.Writes()

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		w := do(s, method, "/artifacts/sms.json", `[]`)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
		assert.Equal(t, "GET, HEAD", w.Header().Get("Allow"), method)
		assert.Contains(t, w.Body.String(), "read-only", method)
	}
	assert.Equal(t, before, store.Writes())
}

func TestLive_ContactsFlattened(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodGet, "/live/contacts", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[
		{"id":"1","name":"Ada","phone":"+441"},
		{"id":"1","name":"Ada","phone":"+442"},
		{"id":"2","name":null,"phone":null}
	]`, w.Body.String())
}

func TestLive_Errors(t *testing.T) {
	s, _ := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, do(s, http.MethodGet, "/live/calls", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodGet, "/live/photos", "").Code)
	// No reader configured for messages
	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodGet, "/live/sms", "").Code)
}

func TestOptionalMounts(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("metrics"))
	})
	s, _ := newTestServer(t, WithMetrics(metrics))

	w := do(s, http.MethodGet, "/metrics", "")
	assert.Equal(t, "metrics", w.Body.String())

	bare, _ := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, do(bare, http.MethodGet, "/metrics", "").Code)
	assert.Equal(t, http.StatusNotFound, do(bare, http.MethodPost, "/mcp", "").Code)
}
