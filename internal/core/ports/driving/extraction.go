package driving

import (
	"context"
	"time"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
)

// ExtractionService runs source extractions into the staging area.
type ExtractionService interface {
	// RunAll extracts the given kinds (all configured kinds when empty) and
	// blocks until every source reached a terminal outcome.
	// The error is non-nil only when the run could not be attempted at all.
	RunAll(ctx context.Context, kinds []domain.SourceKind) (*domain.RunResult, error)

	// Start launches a run in the background and returns immediately.
	Start(ctx context.Context, kinds []domain.SourceKind) (RunHandle, error)

	// Status returns the progress of a run.
	// Returns domain.ErrRunNotFound for unknown ids.
	Status(id string) (*RunStatus, error)

	// Latest returns the most recently started run, if any.
	Latest() (*RunStatus, bool)
}

// RunHandle tracks a background run.
type RunHandle interface {
	// ID returns the run identifier.
	ID() string

	// Done is closed when every source reached a terminal outcome.
	Done() <-chan struct{}

	// Wait blocks until the run finishes or ctx is cancelled.
	Wait(ctx context.Context) (*domain.RunResult, error)

	// Result returns the result once Done is closed, or false before.
	Result() (*domain.RunResult, bool)
}

// RunState is the lifecycle state of a run.
type RunState string

const (
	RunRunning   RunState = "running"
	RunCompleted RunState = "completed"
)

// RunStatus is a snapshot of a run's progress.
type RunStatus struct {
	ID         string
	State      RunState
	StartedAt  time.Time
	FinishedAt time.Time

	// Completed holds outcomes reached so far, in completion order.
	Completed []domain.Outcome

	// Pending lists kinds without a terminal outcome yet.
	Pending []domain.SourceKind
}
