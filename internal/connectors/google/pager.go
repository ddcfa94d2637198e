package google

import (
	"context"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driven"
)

// Ensure PageStream implements the interface.
var _ driven.RecordStream = (*PageStream)(nil)

// FetchPage returns one page of records and the token of the next page.
// An empty next token ends the stream.
type FetchPage func(ctx context.Context, pageToken string) (records []domain.RawRecord, next string, err error)

// PageStream pulls records from a paged list endpoint, fetching the next
// page only once the current one is consumed.
type PageStream struct {
	ctx     context.Context
	limiter *RateLimiter
	fetch   FetchPage

	buf    []domain.RawRecord
	pos    int
	next   string
	done   bool
	cur    domain.RawRecord
	err    error
	closed bool
}

// OpenPages fetches the first page and returns a stream over all pages.
// Errors on the first page are returned directly so that callers can tell
// an open failure from a mid-stream one.
func OpenPages(ctx context.Context, limiter *RateLimiter, fetch FetchPage) (*PageStream, error) {
	s := &PageStream{ctx: ctx, limiter: limiter, fetch: fetch}
	if err := s.load(""); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PageStream) load(token string) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(s.ctx); err != nil {
			return err
		}
	}
	records, next, err := s.fetch(s.ctx, token)
	if err != nil {
		if IsRateLimited(err) && s.limiter != nil {
			s.limiter.RecordRateLimitError(0)
		}
		return WrapError(err)
	}
	s.buf, s.pos, s.next = records, 0, next
	s.done = next == ""
	return nil
}

// Next advances to the next record.
func (s *PageStream) Next() bool {
	if s.err != nil || s.closed {
		return false
	}
	for s.pos >= len(s.buf) {
		if s.done {
			return false
		}
		if err := s.load(s.next); err != nil {
			s.err = err
			return false
		}
	}
	s.cur = s.buf[s.pos]
	s.pos++
	return true
}

// Record returns the current record.
func (s *PageStream) Record() domain.RawRecord {
	return s.cur
}

// Err returns the error that stopped iteration, if any.
func (s *PageStream) Err() error {
	return s.err
}

// Close releases the stream.
func (s *PageStream) Close() error {
	s.closed = true
	s.buf = nil
	return nil
}

// RecordsStream serves a fixed set of records.
func RecordsStream(records []domain.RawRecord) *PageStream {
	return &PageStream{buf: records, done: true}
}
