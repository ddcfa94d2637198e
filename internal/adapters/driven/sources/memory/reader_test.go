package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driven"
)

func drain(t *testing.T, s driven.RecordStream) []domain.RawRecord {
	t.Helper()
	var rows []domain.RawRecord
	for s.Next() {
		rows = append(rows, s.Record())
	}
	return rows
}

func TestReader_OpenYieldsRows(t *testing.T) {
	r := NewReader().Add(domain.SourceMessages,
		domain.RawRecord{"body": "a"},
		domain.RawRecord{"body": "b"},
	)

	s, err := r.Open(context.Background(), driven.Query{Kind: domain.SourceMessages})
	require.NoError(t, err)
	defer s.Close()

	rows := drain(t, s)
	assert.Len(t, rows, 2)
	assert.NoError(t, s.Err())
	assert.Equal(t, 1, r.Opens(domain.SourceMessages))
}

func TestReader_FailOpen(t *testing.T) {
	r := NewReader().FailOpen(domain.SourceContacts, domain.ErrUnauthorized)

	_, err := r.Open(context.Background(), driven.Query{Kind: domain.SourceContacts})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestReader_FailAfter(t *testing.T) {
	boom := errors.New("disk gone")
	r := NewReader().
		Add(domain.SourceCallEvents, domain.RawRecord{}, domain.RawRecord{}, domain.RawRecord{}).
		FailAfter(domain.SourceCallEvents, 2, boom)

	s, err := r.Open(context.Background(), driven.Query{Kind: domain.SourceCallEvents})
	require.NoError(t, err)

	assert.Len(t, drain(t, s), 2)
	assert.ErrorIs(t, s.Err(), boom)
}

func TestReader_Phones(t *testing.T) {
	r := NewReader().AddPhones("7", "111", "222")

	s, err := r.Open(context.Background(), driven.Query{Kind: domain.SourceContactPhones, ParentID: "7"})
	require.NoError(t, err)
	assert.Len(t, drain(t, s), 2)

	s, err = r.Open(context.Background(), driven.Query{Kind: domain.SourceContactPhones, ParentID: "8"})
	require.NoError(t, err)
	assert.Empty(t, drain(t, s))
}

func TestReader_PhoneRows(t *testing.T) {
	r := NewReader().
		AddPhones("7", "111").
		AddPhoneRows("7", domain.RawRecord{domain.FieldNumber: true})

	s, err := r.Open(context.Background(), driven.Query{Kind: domain.SourceContactPhones, ParentID: "7"})
	require.NoError(t, err)
	rows := drain(t, s)
	require.Len(t, rows, 2)
	assert.Equal(t, true, rows[1][domain.FieldNumber])
}

func TestReader_FailPhonesOnOpen(t *testing.T) {
	boom := errors.New("locked")
	r := NewReader().AddPhones("7", "111").FailPhones("7", -1, boom)

	_, err := r.Open(context.Background(), driven.Query{Kind: domain.SourceContactPhones, ParentID: "7"})
	assert.ErrorIs(t, err, boom)
}

func TestReader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewReader().Open(ctx, driven.Query{Kind: domain.SourceMessages})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReader_Closed(t *testing.T) {
	r := NewReader()
	require.NoError(t, r.Close())

	_, err := r.Open(context.Background(), driven.Query{Kind: domain.SourceMessages})
	assert.ErrorIs(t, err, ErrClosed)
}
