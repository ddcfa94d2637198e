package contacts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"

	"github.com/DIVT313/forensic-agent/internal/connectors/google"
	"github.com/DIVT313/forensic-agent/internal/core/domain"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driven"
)

func newTestReader(t *testing.T, handler http.HandlerFunc, auth driven.TokenProvider) *Reader {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := people.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)
	limiter := google.NewRateLimiterWithConfig(google.RateLimitConfig{})
	return NewReader(svc, auth, limiter)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func drain(t *testing.T, s driven.RecordStream) []domain.RawRecord {
	t.Helper()
	defer s.Close()
	var out []domain.RawRecord
	for s.Next() {
		out = append(out, s.Record())
	}
	require.NoError(t, s.Err())
	return out
}

func TestReader_ContactsPaged(t *testing.T) {
	r := newTestReader(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/v1/people/me/connections", req.URL.Path)
		if req.URL.Query().Get("pageToken") == "" {
			writeJSON(t, w, map[string]any{
				"connections": []map[string]any{
					{"resourceName": "people/c1", "names": []map[string]any{
						{"displayName": "Alias"},
						{"displayName": "Grace Hopper", "metadata": map[string]any{"primary": true}},
					}},
				},
				"nextPageToken": "page2",
			})
			return
		}
		writeJSON(t, w, map[string]any{
			"connections": []map[string]any{{"resourceName": "people/c2"}},
		})
	}, nil)

	s, err := r.Open(context.Background(), driven.Query{Kind: domain.SourceContacts})
	require.NoError(t, err)
	rows := drain(t, s)

	require.Len(t, rows, 2)
	assert.Equal(t, "people/c1", rows[0][domain.FieldID])
	assert.Equal(t, "Grace Hopper", rows[0][domain.FieldDisplayName])
	assert.Nil(t, rows[1][domain.FieldDisplayName])
}

func TestReader_Phones(t *testing.T) {
	r := newTestReader(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/v1/people/c1", req.URL.Path)
		writeJSON(t, w, map[string]any{
			"resourceName": "people/c1",
			"phoneNumbers": []map[string]any{{"value": "+1 555 0100"}, {"value": ""}, {"value": "+1 555 0101"}},
		})
	}, nil)

	s, err := r.Open(context.Background(), driven.Query{Kind: domain.SourceContactPhones, ParentID: "people/c1"})
	require.NoError(t, err)
	rows := drain(t, s)

	require.Len(t, rows, 2)
	assert.Equal(t, "+1 555 0100", rows[0][domain.FieldNumber])
}

func TestReader_ForbiddenIsUnauthorized(t *testing.T) {
	r := newTestReader(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"insufficient scope"}}`))
	}, nil)

	_, err := r.Open(context.Background(), driven.Query{Kind: domain.SourceContacts})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestReader_NoTokenIsUnauthorized(t *testing.T) {
	r := newTestReader(t, func(http.ResponseWriter, *http.Request) {
		t.Fatal("no request expected without a token")
	}, google.NewStaticTokenProvider(""))

	_, err := r.Open(context.Background(), driven.Query{Kind: domain.SourceContacts})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestReader_UnsupportedKind(t *testing.T) {
	r := newTestReader(t, func(http.ResponseWriter, *http.Request) {}, nil)

	_, err := r.Open(context.Background(), driven.Query{Kind: domain.SourceMessages})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	assert.Equal(t, "google", r.Name())
}
