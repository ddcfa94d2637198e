package mcp

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driving"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	artifacts map[string]string
	err       error
}

func (m *mockRetrievalService) List(_ context.Context) ([]domain.ArtifactInfo, error) {
	infos := make([]domain.ArtifactInfo, 0, len(m.artifacts))
	for name, body := range m.artifacts {
		infos = append(infos, domain.ArtifactInfo{Name: name, Size: int64(len(body))})
	}
	return infos, m.err
}

func (m *mockRetrievalService) Describe(name string) string {
	return domain.ContentTypeFor(name)
}

func (m *mockRetrievalService) Open(_ context.Context, name string) (io.ReadCloser, error) {
	if m.err != nil {
		return nil, m.err
	}
	body, ok := m.artifacts[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewBufferString(body)), nil
}

func (m *mockRetrievalService) Live(_ context.Context, _ domain.SourceKind) (any, error) {
	return nil, m.err
}

func (m *mockRetrievalService) Insert(_ context.Context, _ string, _ []byte) error {
	return domain.ErrReadOnly
}

func (m *mockRetrievalService) Update(_ context.Context, _ string, _ []byte) error {
	return domain.ErrReadOnly
}

func (m *mockRetrievalService) Delete(_ context.Context, _ string) error {
	return domain.ErrReadOnly
}

// mockExtractionService is a mock implementation of driving.ExtractionService.
type mockExtractionService struct {
	started  [][]domain.SourceKind
	statuses map[string]*driving.RunStatus
	latest   *driving.RunStatus
	err      error
}

func (m *mockExtractionService) RunAll(_ context.Context, _ []domain.SourceKind) (*domain.RunResult, error) {
	return nil, m.err
}

func (m *mockExtractionService) Start(_ context.Context, kinds []domain.SourceKind) (driving.RunHandle, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.started = append(m.started, kinds)
	return mockHandle{id: "run-1"}, nil
}

func (m *mockExtractionService) Status(id string) (*driving.RunStatus, error) {
	st, ok := m.statuses[id]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return st, nil
}

func (m *mockExtractionService) Latest() (*driving.RunStatus, bool) {
	return m.latest, m.latest != nil
}

type mockHandle struct {
	id string
}

func (h mockHandle) ID() string { return h.id }

func (h mockHandle) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func (h mockHandle) Wait(_ context.Context) (*domain.RunResult, error) {
	return &domain.RunResult{ID: h.id}, nil
}

func (h mockHandle) Result() (*domain.RunResult, bool) {
	return &domain.RunResult{ID: h.id}, true
}

func completedStatus() *driving.RunStatus {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &driving.RunStatus{
		ID:    "run-1",
		State: driving.RunCompleted,
		Completed: []domain.Outcome{
			{
				Source: domain.SourceMessages, Status: domain.OutcomeSuccess,
				Artifact: domain.ArtifactMessages, Count: 3,
				StartedAt: start, FinishedAt: start.Add(1500 * time.Millisecond),
			},
			{
				Source: domain.SourceContacts, Status: domain.OutcomeUnauthorized,
				Err: domain.ErrUnauthorized,
			},
		},
	}
}
