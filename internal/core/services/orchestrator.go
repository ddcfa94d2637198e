package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driven"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driving"
	"github.com/DIVT313/forensic-agent/internal/logger"
)

// Ensure Orchestrator implements the interface.
var _ driving.ExtractionService = (*Orchestrator)(nil)

// maxTrackedRuns bounds the run history kept for Status lookups.
const maxTrackedRuns = 32

// Job pairs a reader with the extractor that consumes it.
type Job struct {
	Reader    driven.SourceReader
	Extractor Extractor
}

// Kind returns the job's source kind.
func (j Job) Kind() domain.SourceKind {
	return j.Extractor.Kind()
}

// Orchestrator runs source extractions with per-source failure isolation.
// One job's failure never affects another, and nothing is retried.
type Orchestrator struct {
	store      driven.ArtifactStore
	readers    map[domain.SourceKind]driven.SourceReader
	extractors map[domain.SourceKind]Extractor
	observer   driven.RunObserver
	parallel   bool
	kinds      []domain.SourceKind

	// Run tracking
	mu    sync.RWMutex
	runs  map[string]*Run
	order []string
}

// OrchestratorOption customises an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithParallel runs jobs concurrently instead of in order.
func WithParallel(parallel bool) OrchestratorOption {
	return func(o *Orchestrator) { o.parallel = parallel }
}

// WithObserver reports outcomes to an observer such as a metrics exporter.
func WithObserver(observer driven.RunObserver) OrchestratorOption {
	return func(o *Orchestrator) { o.observer = observer }
}

// WithDefaultKinds sets the kinds extracted when a run names none.
func WithDefaultKinds(kinds []domain.SourceKind) OrchestratorOption {
	return func(o *Orchestrator) {
		if len(kinds) > 0 {
			o.kinds = kinds
		}
	}
}

// WithExtractors replaces the extractor set.
func WithExtractors(extractors map[domain.SourceKind]Extractor) OrchestratorOption {
	return func(o *Orchestrator) { o.extractors = extractors }
}

// NewOrchestrator creates an orchestrator writing to store.
// readers maps each kind to the SourceReader serving it.
func NewOrchestrator(
	store driven.ArtifactStore,
	readers map[domain.SourceKind]driven.SourceReader,
	opts ...OrchestratorOption,
) *Orchestrator {
	o := &Orchestrator{
		store:      store,
		readers:    readers,
		extractors: DefaultExtractors(),
		kinds:      domain.AllSourceKinds(),
		runs:       make(map[string]*Run),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunAll extracts the given kinds and blocks until every source is terminal.
func (o *Orchestrator) RunAll(ctx context.Context, kinds []domain.SourceKind) (*domain.RunResult, error) {
	jobs, err := o.jobsFor(kinds)
	if err != nil {
		return nil, err
	}
	return o.RunJobs(ctx, jobs)
}

// RunJobs runs an explicit job list and blocks until every job is terminal.
func (o *Orchestrator) RunJobs(ctx context.Context, jobs []Job) (*domain.RunResult, error) {
	run, err := o.StartJobs(ctx, jobs)
	if err != nil {
		return nil, err
	}
	// Cancellation is handled inside the run; waiting on Done keeps the
	// guarantee that every job has an outcome when this returns.
	<-run.Done()
	result, _ := run.Result()
	return result, nil
}

// Start launches a run in the background. Cancelling ctx cancels the run:
// sources not yet started are skipped.
func (o *Orchestrator) Start(ctx context.Context, kinds []domain.SourceKind) (driving.RunHandle, error) {
	jobs, err := o.jobsFor(kinds)
	if err != nil {
		return nil, err
	}
	return o.StartJobs(ctx, jobs)
}

// StartJobs launches an explicit job list in the background.
func (o *Orchestrator) StartJobs(ctx context.Context, jobs []Job) (*Run, error) {
	if err := validateJobs(jobs); err != nil {
		return nil, err
	}
	if err := o.store.Prepare(); err != nil {
		if !errors.Is(err, domain.ErrStagingUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrStagingUnavailable, err)
		}
		logger.Error("cannot prepare staging at %s: %v", o.store.Location(), err)
		return nil, err
	}

	kinds := make([]domain.SourceKind, len(jobs))
	for i, job := range jobs {
		kinds[i] = job.Kind()
	}
	run := newRun(kinds)
	o.track(run)

	go o.execute(ctx, run, jobs)
	return run, nil
}

// Status returns the progress of a tracked run.
func (o *Orchestrator) Status(id string) (*driving.RunStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	run, ok := o.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrRunNotFound, id)
	}
	return run.Status(), nil
}

// Latest returns the most recently started run.
func (o *Orchestrator) Latest() (*driving.RunStatus, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if len(o.order) == 0 {
		return nil, false
	}
	return o.runs[o.order[len(o.order)-1]].Status(), true
}

func (o *Orchestrator) jobsFor(kinds []domain.SourceKind) ([]Job, error) {
	if len(kinds) == 0 {
		kinds = o.kinds
	}
	jobs := make([]Job, 0, len(kinds))
	for _, kind := range kinds {
		extractor, ok := o.extractors[kind]
		if !ok {
			return nil, fmt.Errorf("%w: no extractor for %s", domain.ErrInvalidInput, kind)
		}
		reader, ok := o.readers[kind]
		if !ok || reader == nil {
			return nil, fmt.Errorf("%w: no reader configured for %s", domain.ErrInvalidInput, kind)
		}
		jobs = append(jobs, Job{Reader: reader, Extractor: extractor})
	}
	return jobs, nil
}

// validateJobs rejects job lists where two jobs would write the same artifact.
func validateJobs(jobs []Job) error {
	seen := make(map[string]bool, len(jobs))
	for i, job := range jobs {
		if job.Reader == nil || job.Extractor == nil {
			return fmt.Errorf("%w: job %d is incomplete", domain.ErrInvalidInput, i)
		}
		name := job.Kind().ArtifactName()
		if name == "" {
			return fmt.Errorf("%w: %s has no artifact", domain.ErrInvalidInput, job.Kind())
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate artifact %s", domain.ErrInvalidInput, name)
		}
		seen[name] = true
	}
	return nil
}

func (o *Orchestrator) track(run *Run) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.runs[run.id] = run
	o.order = append(o.order, run.id)
	for len(o.order) > maxTrackedRuns {
		oldest := o.runs[o.order[0]]
		if _, done := oldest.Result(); !done {
			break
		}
		delete(o.runs, o.order[0])
		o.order = o.order[1:]
	}
}

func (o *Orchestrator) execute(ctx context.Context, run *Run, jobs []Job) {
	logger.Section("Extraction " + run.id)
	logger.Info("Starting extraction of %d sources into %s", len(jobs), o.store.Location())

	if o.parallel {
		var wg sync.WaitGroup
		for i, job := range jobs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				run.record(i, o.runJob(ctx, job))
			}()
		}
		wg.Wait()
	} else {
		for i, job := range jobs {
			run.record(i, o.runJob(ctx, job))
		}
	}

	result := run.finish()
	if o.observer != nil {
		o.observer.ObserveRun(result)
	}
	counts := result.CountByStatus()
	logger.Info("Extraction complete: %d succeeded, %d failed, %d unauthorized, %d skipped",
		counts[domain.OutcomeSuccess], counts[domain.OutcomeFailed],
		counts[domain.OutcomeUnauthorized], counts[domain.OutcomeSkipped])
}

func (o *Orchestrator) runJob(ctx context.Context, job Job) domain.Outcome {
	var outcome domain.Outcome
	if err := ctx.Err(); err != nil {
		now := time.Now()
		outcome = domain.Outcome{
			Source:     job.Kind(),
			Status:     domain.OutcomeSkipped,
			Err:        err,
			StartedAt:  now,
			FinishedAt: now,
		}
	} else {
		outcome = o.safeExtract(ctx, job)
	}

	if o.observer != nil {
		o.observer.ObserveOutcome(outcome)
	}
	log := logger.WithSource(outcome.Source.String())
	switch outcome.Status {
	case domain.OutcomeSuccess:
		log.Infow("extracted", "count", outcome.Count, "dropped", outcome.Dropped, "artifact", outcome.Artifact)
	default:
		log.Warnw("extraction "+outcome.Status.String(), "count", outcome.Count, "error", outcome.ErrMessage())
	}
	return outcome
}

// safeExtract converts an extractor panic into a failed outcome.
func (o *Orchestrator) safeExtract(ctx context.Context, job Job) (outcome domain.Outcome) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			outcome = domain.Outcome{
				Source:     job.Kind(),
				Status:     domain.OutcomeFailed,
				Err:        fmt.Errorf("extractor panic: %v", r),
				StartedAt:  started,
				FinishedAt: time.Now(),
			}
		}
	}()
	return job.Extractor.Extract(ctx, job.Reader, o.store)
}
