package google

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
)

func pages(data map[string][]domain.RawRecord, order []string) FetchPage {
	return func(_ context.Context, token string) ([]domain.RawRecord, string, error) {
		for i, t := range order {
			if t == token {
				next := ""
				if i+1 < len(order) {
					next = order[i+1]
				}
				return data[token], next, nil
			}
		}
		return nil, "", errors.New("unknown page")
	}
}

func TestPageStream_WalksAllPages(t *testing.T) {
	fetch := pages(map[string][]domain.RawRecord{
		"":   {{"n": 1}, {"n": 2}},
		"p2": {},
		"p3": {{"n": 3}},
	}, []string{"", "p2", "p3"})

	s, err := OpenPages(context.Background(), nil, fetch)
	require.NoError(t, err)
	defer s.Close()

	var got []any
	for s.Next() {
		got = append(got, s.Record()["n"])
	}
	require.NoError(t, s.Err())
	assert.Equal(t, []any{1, 2, 3}, got)
}

func TestOpenPages_FirstPageUnauthorized(t *testing.T) {
	fetch := func(context.Context, string) ([]domain.RawRecord, string, error) {
		return nil, "", &googleapi.Error{Code: http.StatusForbidden}
	}

	_, err := OpenPages(context.Background(), nil, fetch)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestPageStream_MidStreamFailure(t *testing.T) {
	calls := 0
	fetch := func(context.Context, string) ([]domain.RawRecord, string, error) {
		calls++
		if calls == 1 {
			return []domain.RawRecord{{"n": 1}}, "next", nil
		}
		return nil, "", &googleapi.Error{Code: http.StatusInternalServerError}
	}

	s, err := OpenPages(context.Background(), nil, fetch)
	require.NoError(t, err)

	assert.True(t, s.Next())
	assert.False(t, s.Next())
	assert.Error(t, s.Err())
}

func TestPageStream_RateLimitSetsBackoff(t *testing.T) {
	limiter := NewRateLimiterWithConfig(RateLimitConfig{RequestsPerSecond: 100, BurstSize: 5})
	fetch := func(context.Context, string) ([]domain.RawRecord, string, error) {
		return nil, "", &googleapi.Error{Code: http.StatusTooManyRequests}
	}

	_, err := OpenPages(context.Background(), limiter, fetch)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.False(t, limiter.Allow())
}

func TestRecordsStream(t *testing.T) {
	s := RecordsStream([]domain.RawRecord{{"a": "x"}})
	assert.True(t, s.Next())
	assert.Equal(t, "x", s.Record()["a"])
	assert.False(t, s.Next())
	assert.NoError(t, s.Close())
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil))
	assert.ErrorIs(t, WrapError(&googleapi.Error{Code: http.StatusUnauthorized}), domain.ErrUnauthorized)
	assert.ErrorIs(t, WrapError(&googleapi.Error{Code: http.StatusNotFound}), ErrNotFound)

	plain := errors.New("boom")
	assert.Equal(t, plain, WrapError(plain))
}

func TestStaticTokenProvider(t *testing.T) {
	empty := NewStaticTokenProvider("")
	assert.False(t, empty.IsAuthenticated())
	_, err := empty.GetToken(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	p := NewStaticTokenProvider("ya29.token")
	ts := NewTokenSource(context.Background(), p)
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "ya29.token", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)
}

func TestRateLimiter_WaitHonoursContext(t *testing.T) {
	limiter := NewRateLimiter(ServiceCalendar)
	limiter.RecordRateLimitError(30)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, limiter.Wait(ctx), context.Canceled)
}
