package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driven"
	"github.com/DIVT313/forensic-agent/internal/logger"
)

// Extractor turns one source into one staged artifact.
type Extractor interface {
	// Kind returns the source this extractor reads.
	Kind() domain.SourceKind

	// Extract reads every row, normalises it and writes the artifact.
	// It never returns an error: every failure ends up in the outcome.
	Extract(ctx context.Context, reader driven.SourceReader, sink driven.ArtifactWriter) domain.Outcome

	// Query reads and normalises rows without staging them.
	Query(ctx context.Context, reader driven.SourceReader) (any, error)
}

// mapFunc converts one raw row. Errors wrapping domain.ErrDecode drop the row;
// any other error is treated the same way but logged as unexpected.
type mapFunc[T any] func(ctx context.Context, x *extraction, raw domain.RawRecord) (T, error)

// extraction carries per-call state shared with mapFuncs.
type extraction struct {
	kind   domain.SourceKind
	reader driven.SourceReader
	log    *zap.SugaredLogger
	notes  []string
}

func (x *extraction) note(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	x.notes = append(x.notes, msg)
	x.log.Debug(msg)
}

// openError marks a failure to open the primary stream, as opposed to a
// failure part way through it.
type openError struct {
	err error
}

func (e *openError) Error() string { return e.err.Error() }
func (e *openError) Unwrap() error { return e.err }

// extractor is the single generic Extractor, parameterised by record type.
type extractor[T any] struct {
	kind      domain.SourceKind
	mapRecord mapFunc[T]

	// present reshapes rows for live queries; nil returns them as is.
	present func([]T) any
}

func newExtractor[T any](
	kind domain.SourceKind,
	fn func(ctx context.Context, x *extraction, raw domain.RawRecord) (T, error),
) *extractor[T] {
	return &extractor[T]{kind: kind, mapRecord: fn}
}

// Kind returns the source this extractor reads.
func (e *extractor[T]) Kind() domain.SourceKind {
	return e.kind
}

// Extract reads, normalises and stages the source.
func (e *extractor[T]) Extract(
	ctx context.Context,
	reader driven.SourceReader,
	sink driven.ArtifactWriter,
) domain.Outcome {
	outcome := domain.Outcome{Source: e.kind, StartedAt: time.Now()}
	x := e.newExtraction(reader)

	records, dropped, readErr := e.collect(ctx, x)
	outcome.Dropped = dropped
	outcome.Notes = x.notes

	var oe *openError
	if errors.As(readErr, &oe) {
		outcome.Status = domain.OutcomeFailed
		if errors.Is(readErr, domain.ErrUnauthorized) {
			outcome.Status = domain.OutcomeUnauthorized
		}
		outcome.Err = oe.err
		outcome.FinishedAt = time.Now()
		return outcome
	}

	data, err := encodeArtifact(records)
	if err != nil {
		outcome.Status = domain.OutcomeFailed
		outcome.Err = err
		outcome.FinishedAt = time.Now()
		return outcome
	}

	// Flush even when the run was cancelled mid-read.
	name := e.kind.ArtifactName()
	if err := sink.Write(context.WithoutCancel(ctx), name, data); err != nil {
		outcome.Status = domain.OutcomeFailed
		outcome.Err = err
		outcome.FinishedAt = time.Now()
		return outcome
	}

	outcome.Artifact = name
	outcome.Count = len(records)
	outcome.Status = domain.OutcomeSuccess
	if readErr != nil {
		outcome.Status = domain.OutcomeFailed
		outcome.Err = readErr
	}
	outcome.FinishedAt = time.Now()
	return outcome
}

// Query reads and normalises rows without staging them.
// Unlike Extract, any read failure is returned as an error.
func (e *extractor[T]) Query(ctx context.Context, reader driven.SourceReader) (any, error) {
	records, _, err := e.collect(ctx, e.newExtraction(reader))
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []T{}
	}
	if e.present != nil {
		return e.present(records), nil
	}
	return records, nil
}

func (e *extractor[T]) newExtraction(reader driven.SourceReader) *extraction {
	return &extraction{
		kind:   e.kind,
		reader: reader,
		log:    logger.WithSource(e.kind.String()),
	}
}

// collect drains the source stream. It returns the records accumulated so far
// together with the error that stopped it; open failures are wrapped in openError.
func (e *extractor[T]) collect(ctx context.Context, x *extraction) ([]T, int, error) {
	stream, err := x.reader.Open(ctx, driven.Query{Kind: e.kind})
	if err != nil {
		return nil, 0, &openError{err: fmt.Errorf("open %s: %w", e.kind, err)}
	}
	defer stream.Close()

	var (
		records []T
		dropped int
		row     int
	)
	for {
		if err := ctx.Err(); err != nil {
			return records, dropped, fmt.Errorf("read %s: %w", e.kind, err)
		}
		if !stream.Next() {
			break
		}
		row++
		rec, err := e.mapRecord(ctx, x, stream.Record())
		if err != nil {
			dropped++
			if errors.Is(err, domain.ErrDecode) {
				x.log.Debugw("dropped row", "row", row, "error", err)
			} else {
				x.log.Warnw("unexpected mapping error", "row", row, "error", err)
			}
			continue
		}
		records = append(records, rec)
	}
	if err := stream.Err(); err != nil {
		return records, dropped, fmt.Errorf("read %s: %w", e.kind, err)
	}
	return records, dropped, nil
}
