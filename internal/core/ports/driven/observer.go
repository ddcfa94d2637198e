package driven

import "github.com/DIVT313/forensic-agent/internal/core/domain"

// RunObserver receives extraction telemetry.
type RunObserver interface {
	// ObserveOutcome is called once per terminal source outcome.
	ObserveOutcome(outcome domain.Outcome)

	// ObserveRun is called when a run completes.
	ObserveRun(result *domain.RunResult)
}
