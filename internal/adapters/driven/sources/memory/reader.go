// Package memory provides an in-memory SourceReader with fault injection.
// It backs tests and demo runs.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.SourceReader = (*Reader)(nil)

// ErrClosed is returned by Open after Close.
var ErrClosed = errors.New("reader closed")

type failure struct {
	after int
	err   error
}

// Reader serves fixture rows per source kind.
type Reader struct {
	mu        sync.RWMutex
	rows      map[domain.SourceKind][]domain.RawRecord
	phones    map[string][]domain.RawRecord
	openErrs  map[domain.SourceKind]error
	phoneErrs map[string]failure
	failures  map[domain.SourceKind]failure
	opens     map[domain.SourceKind]int
	closed    bool
}

// NewReader creates an empty reader.
func NewReader() *Reader {
	return &Reader{
		rows:      make(map[domain.SourceKind][]domain.RawRecord),
		phones:    make(map[string][]domain.RawRecord),
		openErrs:  make(map[domain.SourceKind]error),
		phoneErrs: make(map[string]failure),
		failures:  make(map[domain.SourceKind]failure),
		opens:     make(map[domain.SourceKind]int),
	}
}

// Add appends rows for a kind.
func (r *Reader) Add(kind domain.SourceKind, rows ...domain.RawRecord) *Reader {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[kind] = append(r.rows[kind], rows...)
	return r
}

// AddPhones appends phone numbers for a contact id.
func (r *Reader) AddPhones(contactID string, numbers ...string) *Reader {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range numbers {
		r.phones[contactID] = append(r.phones[contactID], domain.RawRecord{domain.FieldNumber: n})
	}
	return r
}

// AddPhoneRows appends raw phone rows for a contact id, for rows that
// AddPhones cannot express.
func (r *Reader) AddPhoneRows(contactID string, rows ...domain.RawRecord) *Reader {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phones[contactID] = append(r.phones[contactID], rows...)
	return r
}

// FailOpen makes Open fail for a kind.
func (r *Reader) FailOpen(kind domain.SourceKind, err error) *Reader {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openErrs[kind] = err
	return r
}

// FailAfter makes the stream for a kind stop with err after n rows.
func (r *Reader) FailAfter(kind domain.SourceKind, n int, err error) *Reader {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[kind] = failure{after: n, err: err}
	return r
}

// FailPhones makes the phone sub-query for a contact fail after n rows.
// A negative n fails the open itself.
func (r *Reader) FailPhones(contactID string, n int, err error) *Reader {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phoneErrs[contactID] = failure{after: n, err: err}
	return r
}

// Opens returns how many times a kind was opened.
func (r *Reader) Opens(kind domain.SourceKind) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.opens[kind]
}

// Name returns the backend identifier.
func (r *Reader) Name() string {
	return "memory"
}

// Open starts a stream over the fixture rows for q.
func (r *Reader) Open(ctx context.Context, q driven.Query) (driven.RecordStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	r.opens[q.Kind]++

	if q.Kind == domain.SourceContactPhones {
		f, failing := r.phoneErrs[q.ParentID]
		if failing && f.after < 0 {
			return nil, f.err
		}
		s := newStream(r.phones[q.ParentID])
		if failing {
			s.failAfter, s.failErr = f.after, f.err
		}
		return s, nil
	}

	if err, ok := r.openErrs[q.Kind]; ok {
		return nil, err
	}
	s := newStream(r.rows[q.Kind])
	if f, ok := r.failures[q.Kind]; ok {
		s.failAfter, s.failErr = f.after, f.err
	}
	return s, nil
}

// Close marks the reader closed.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// stream iterates over a snapshot of rows.
type stream struct {
	rows      []domain.RawRecord
	pos       int
	cur       domain.RawRecord
	failAfter int
	failErr   error
	err       error
	closed    bool
}

func newStream(rows []domain.RawRecord) *stream {
	snapshot := make([]domain.RawRecord, len(rows))
	copy(snapshot, rows)
	return &stream{rows: snapshot, failAfter: -1}
}

func (s *stream) Next() bool {
	if s.closed || s.err != nil {
		return false
	}
	if s.failErr != nil && s.pos == s.failAfter {
		s.err = s.failErr
		return false
	}
	if s.pos >= len(s.rows) {
		return false
	}
	s.cur = s.rows[s.pos]
	s.pos++
	return true
}

func (s *stream) Record() domain.RawRecord {
	return s.cur
}

func (s *stream) Err() error {
	return s.err
}

func (s *stream) Close() error {
	s.closed = true
	return nil
}
