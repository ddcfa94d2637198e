package domain

import "time"

// OutcomeStatus is the terminal state of one source extraction.
type OutcomeStatus string

const (
	// OutcomeSuccess means the source was read to the end and its artifact written.
	OutcomeSuccess OutcomeStatus = "success"

	// OutcomeFailed means the source, the encoder or the write failed.
	// Rows captured before a mid-stream failure are still staged.
	OutcomeFailed OutcomeStatus = "failed"

	// OutcomeUnauthorized means the source could not be opened for lack of capability.
	// Nothing is written.
	OutcomeUnauthorized OutcomeStatus = "unauthorized"

	// OutcomeSkipped means the run was cancelled before the source started.
	OutcomeSkipped OutcomeStatus = "skipped"
)

// String returns the status name.
func (s OutcomeStatus) String() string {
	return string(s)
}

// Outcome reports how a single source extraction ended.
type Outcome struct {
	// Source is the extracted kind.
	Source SourceKind

	// Artifact is the staged filename, set only when a write succeeded.
	Artifact string

	// Status is the terminal state.
	Status OutcomeStatus

	// Count is the number of records serialised.
	Count int

	// Dropped is the number of rows rejected by the mapper.
	Dropped int

	// Err is the cause for failed and unauthorized outcomes.
	Err error

	// Notes records non-fatal incidents such as a failed phone sub-query.
	Notes []string

	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns how long the extraction took.
func (o Outcome) Duration() time.Duration {
	if o.FinishedAt.IsZero() || o.StartedAt.IsZero() {
		return 0
	}
	return o.FinishedAt.Sub(o.StartedAt)
}

// ErrMessage returns the error text, or an empty string.
func (o Outcome) ErrMessage() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// RunResult collects every outcome of one orchestrated run.
type RunResult struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time

	// Outcomes are in job order.
	Outcomes []Outcome
}

// Outcome returns the outcome for a source kind.
func (r *RunResult) Outcome(kind SourceKind) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Source == kind {
			return o, true
		}
	}
	return Outcome{}, false
}

// CountByStatus tallies outcomes per status.
func (r *RunResult) CountByStatus() map[OutcomeStatus]int {
	counts := make(map[OutcomeStatus]int)
	for _, o := range r.Outcomes {
		counts[o.Status]++
	}
	return counts
}

// AllSucceeded reports whether every source ended in success.
func (r *RunResult) AllSucceeded() bool {
	for _, o := range r.Outcomes {
		if o.Status != OutcomeSuccess {
			return false
		}
	}
	return len(r.Outcomes) > 0
}
