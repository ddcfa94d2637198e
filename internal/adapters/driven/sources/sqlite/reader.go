// Package sqlite reads Android provider database dumps.
//
// A device acquisition directory holds one database per provider
// (contacts2.db, mmssms.db, calllog.db, calendar.db). Each database is
// opened read-only on first use and queried with the provider's own
// column names, which become the raw record keys.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/DIVT313/forensic-agent/internal/core/domain"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.SourceReader = (*Reader)(nil)

// Provider database filenames.
const (
	ContactsDB = "contacts2.db"
	MessagesDB = "mmssms.db"
	CallLogDB  = "calllog.db"
	CalendarDB = "calendar.db"
)

const phoneMimeType = "vnd.android.cursor.item/phone_v2"

type sourceQuery struct {
	file  string
	query string
}

var queries = map[domain.SourceKind]sourceQuery{
	domain.SourceContacts: {
		file: ContactsDB,
		query: `SELECT c._id AS _id, rc.display_name AS display_name
			FROM contacts c
			LEFT JOIN raw_contacts rc ON rc._id = c.name_raw_contact_id
			ORDER BY c._id`,
	},
	domain.SourceContactPhones: {
		file: ContactsDB,
		query: `SELECT d.data1 AS number
			FROM data d
			JOIN raw_contacts rc ON rc._id = d.raw_contact_id
			JOIN mimetypes m ON m._id = d.mimetype_id
			WHERE rc.contact_id = ? AND m.mimetype = '` + phoneMimeType + `'
			ORDER BY d._id`,
	},
	domain.SourceMessages: {
		file:  MessagesDB,
		query: `SELECT address, body, date, type FROM sms ORDER BY _id`,
	},
	domain.SourceCallEvents: {
		file:  CallLogDB,
		query: `SELECT number, date, duration, type FROM calls ORDER BY _id`,
	},
	domain.SourceCalendarEvents: {
		file:  CalendarDB,
		query: `SELECT _id, title, dtstart, dtend FROM Events WHERE deleted = 0 ORDER BY _id`,
	},
}

// Reader serves record streams from the databases in one directory.
type Reader struct {
	dir string

	mu     sync.Mutex
	dbs    map[string]*sql.DB
	closed bool
}

// NewReader creates a reader over the acquisition directory dir.
func NewReader(dir string) *Reader {
	return &Reader{
		dir: dir,
		dbs: make(map[string]*sql.DB),
	}
}

// Name returns the backend identifier.
func (r *Reader) Name() string {
	return domain.BackendSQLite.String()
}

// Dir returns the acquisition directory.
func (r *Reader) Dir() string {
	return r.dir
}

// Open runs the provider query for q.
// A missing or unreadable database file is reported as unauthorized:
// the source was never made available to the agent.
func (r *Reader) Open(ctx context.Context, q driven.Query) (driven.RecordStream, error) {
	sq, ok := queries[q.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: sqlite cannot read %s", domain.ErrUnsupportedType, q.Kind)
	}
	db, err := r.database(sq.file)
	if err != nil {
		return nil, err
	}

	var args []any
	if q.Kind == domain.SourceContactPhones {
		args = append(args, q.ParentID)
	}
	rows, err := db.QueryContext(ctx, sq.query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", sq.file, err)
	}
	cols, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("columns %s: %w", sq.file, err)
	}
	return &rowStream{rows: rows, cols: cols}, nil
}

// Close closes every opened database.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	var errs []error
	for name, db := range r.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
		delete(r.dbs, name)
	}
	return errors.Join(errs...)
}

func (r *Reader) database(file string) (*sql.DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, fmt.Errorf("sqlite reader closed")
	}
	if db, ok := r.dbs[file]; ok {
		return db, nil
	}

	path := filepath.Join(r.dir, file)
	f, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("%w: %s not acquired", domain.ErrUnauthorized, file)
	case errors.Is(err, os.ErrPermission):
		return nil, fmt.Errorf("%w: %s not readable", domain.ErrUnauthorized, file)
	case err != nil:
		return nil, fmt.Errorf("open %s: %w", file, err)
	}
	_ = f.Close()

	// Read-only so an acquisition is never modified by extraction.
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path)+"?mode=ro&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", file, err)
	}
	db.SetMaxOpenConns(4)
	r.dbs[file] = db
	return db, nil
}

// rowStream adapts sql.Rows to driven.RecordStream.
type rowStream struct {
	rows *sql.Rows
	cols []string
	cur  domain.RawRecord
	err  error
}

func (s *rowStream) Next() bool {
	if s.err != nil {
		return false
	}
	if !s.rows.Next() {
		s.err = s.rows.Err()
		return false
	}
	vals := make([]any, len(s.cols))
	ptrs := make([]any, len(s.cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := s.rows.Scan(ptrs...); err != nil {
		s.err = fmt.Errorf("scan: %w", err)
		return false
	}
	rec := make(domain.RawRecord, len(s.cols))
	for i, col := range s.cols {
		rec[col] = vals[i]
	}
	s.cur = rec
	return true
}

func (s *rowStream) Record() domain.RawRecord {
	return s.cur
}

func (s *rowStream) Err() error {
	return s.err
}

func (s *rowStream) Close() error {
	return s.rows.Close()
}
