package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driving"
)

// ExtractInput is the input schema for the extract tool.
type ExtractInput struct {
	Sources []string `json:"sources,omitempty" jsonschema:"source kinds to extract (contacts, messages, call_events, calendar_events); all when empty"`
}

// RunStatusInput is the input schema for the extraction_status tool.
type RunStatusInput struct {
	RunID string `json:"run_id,omitempty" jsonschema:"run identifier; the latest run when empty"`
}

// RunOutput describes a run's progress.
type RunOutput struct {
	RunID    string          `json:"run_id"`
	State    string          `json:"state"`
	Outcomes []OutcomeOutput `json:"outcomes"`
	Pending  []string        `json:"pending,omitempty"`
}

// OutcomeOutput represents a single source outcome.
type OutcomeOutput struct {
	Source     string   `json:"source"`
	Status     string   `json:"status"`
	Artifact   string   `json:"artifact,omitempty"`
	Count      int      `json:"count"`
	Dropped    int      `json:"dropped,omitempty"`
	Error      string   `json:"error,omitempty"`
	Notes      []string `json:"notes,omitempty"`
	DurationMs int64    `json:"duration_ms"`
}

// registerTools registers the extraction tools when an extraction port is wired.
func (s *Server) registerTools() {
	if s.ports.Extraction == nil {
		return
	}
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract",
		Description: "Start an extraction run into the staging area and return its id",
	}, s.handleExtract)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extraction_status",
		Description: "Report per-source outcomes of an extraction run",
	}, s.handleRunStatus)
}

// handleExtract starts a background run.
// The run outlives the tool call, so it is detached from the request context.
func (s *Server) handleExtract(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractInput,
) (*mcp.CallToolResult, RunOutput, error) {
	kinds, err := domain.ParseSourceKinds(input.Sources)
	if err != nil {
		return nil, RunOutput{}, err
	}
	if len(input.Sources) == 0 {
		kinds = nil
	}

	handle, err := s.ports.Extraction.Start(context.WithoutCancel(ctx), kinds)
	if err != nil {
		return nil, RunOutput{}, err
	}
	status, err := s.ports.Extraction.Status(handle.ID())
	if err != nil {
		return nil, RunOutput{}, err
	}
	return nil, runOutput(status), nil
}

// handleRunStatus reports a run's progress.
func (s *Server) handleRunStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input RunStatusInput,
) (*mcp.CallToolResult, RunOutput, error) {
	if input.RunID == "" {
		status, ok := s.ports.Extraction.Latest()
		if !ok {
			return nil, RunOutput{}, domain.ErrRunNotFound
		}
		return nil, runOutput(status), nil
	}

	status, err := s.ports.Extraction.Status(input.RunID)
	if err != nil {
		return nil, RunOutput{}, err
	}
	return nil, runOutput(status), nil
}

func runOutput(status *driving.RunStatus) RunOutput {
	out := RunOutput{
		RunID:    status.ID,
		State:    string(status.State),
		Outcomes: make([]OutcomeOutput, len(status.Completed)),
	}
	for i, o := range status.Completed {
		out.Outcomes[i] = OutcomeOutput{
			Source:     o.Source.String(),
			Status:     o.Status.String(),
			Artifact:   o.Artifact,
			Count:      o.Count,
			Dropped:    o.Dropped,
			Error:      o.ErrMessage(),
			Notes:      o.Notes,
			DurationMs: o.Duration().Round(time.Millisecond).Milliseconds(),
		}
	}
	for _, k := range status.Pending {
		out.Pending = append(out.Pending, k.String())
	}
	return out
}
