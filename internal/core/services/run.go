package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driving"
)

// Ensure Run implements the interface.
var _ driving.RunHandle = (*Run)(nil)

// Run tracks one orchestrated extraction.
type Run struct {
	id        string
	startedAt time.Time
	kinds     []domain.SourceKind
	done      chan struct{}

	mu         sync.RWMutex
	outcomes   []*domain.Outcome
	completed  []domain.Outcome
	finishedAt time.Time
	result     *domain.RunResult
}

func newRun(kinds []domain.SourceKind) *Run {
	return &Run{
		id:        uuid.New().String(),
		startedAt: time.Now(),
		kinds:     kinds,
		done:      make(chan struct{}),
		outcomes:  make([]*domain.Outcome, len(kinds)),
	}
}

// ID returns the run identifier.
func (r *Run) ID() string {
	return r.id
}

// Done is closed when every source reached a terminal outcome.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run finishes or ctx is cancelled.
func (r *Run) Wait(ctx context.Context) (*domain.RunResult, error) {
	select {
	case <-r.done:
		res, _ := r.Result()
		return res, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result returns the result once the run finished.
func (r *Run) Result() (*domain.RunResult, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.result == nil {
		return nil, false
	}
	return r.result, true
}

// Status returns a snapshot of the run's progress.
func (r *Run) Status() *driving.RunStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status := &driving.RunStatus{
		ID:         r.id,
		State:      driving.RunRunning,
		StartedAt:  r.startedAt,
		FinishedAt: r.finishedAt,
		Completed:  append([]domain.Outcome(nil), r.completed...),
	}
	if r.result != nil {
		status.State = driving.RunCompleted
	}
	for i, o := range r.outcomes {
		if o == nil {
			status.Pending = append(status.Pending, r.kinds[i])
		}
	}
	return status
}

// record stores the terminal outcome of job i.
func (r *Run) record(i int, outcome domain.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[i] = &outcome
	r.completed = append(r.completed, outcome)
}

// finish freezes the result and releases waiters.
func (r *Run) finish() *domain.RunResult {
	r.mu.Lock()
	r.finishedAt = time.Now()
	result := &domain.RunResult{
		ID:         r.id,
		StartedAt:  r.startedAt,
		FinishedAt: r.finishedAt,
		Outcomes:   make([]domain.Outcome, 0, len(r.outcomes)),
	}
	for _, o := range r.outcomes {
		if o != nil {
			result.Outcomes = append(result.Outcomes, *o)
		}
	}
	r.result = result
	r.mu.Unlock()

	close(r.done)
	return result
}
