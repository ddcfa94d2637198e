package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driving"
)

// RunRequest is the body of POST /runs.
type RunRequest struct {
	Sources []string `json:"sources"`
}

// RunView is the JSON form of a run's progress.
type RunView struct {
	ID         string        `json:"id"`
	State      string        `json:"state"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
	Outcomes   []OutcomeView `json:"outcomes"`
	Pending    []string      `json:"pending,omitempty"`
}

// OutcomeView is the JSON form of one source outcome.
type OutcomeView struct {
	Source     string   `json:"source"`
	Status     string   `json:"status"`
	Artifact   string   `json:"artifact,omitempty"`
	Count      int      `json:"count"`
	Dropped    int      `json:"dropped,omitempty"`
	Error      string   `json:"error,omitempty"`
	Notes      []string `json:"notes,omitempty"`
	DurationMs int64    `json:"duration_ms"`
}

// NewRunView converts a run status for the wire.
func NewRunView(status *driving.RunStatus) RunView {
	v := RunView{
		ID:        status.ID,
		State:     string(status.State),
		StartedAt: status.StartedAt,
		Outcomes:  make([]OutcomeView, len(status.Completed)),
	}
	if !status.FinishedAt.IsZero() {
		finished := status.FinishedAt
		v.FinishedAt = &finished
	}
	for i, o := range status.Completed {
		v.Outcomes[i] = OutcomeView{
			Source:     o.Source.String(),
			Status:     o.Status.String(),
			Artifact:   o.Artifact,
			Count:      o.Count,
			Dropped:    o.Dropped,
			Error:      o.ErrMessage(),
			Notes:      o.Notes,
			DurationMs: o.Duration().Milliseconds(),
		}
	}
	for _, k := range status.Pending {
		v.Pending = append(v.Pending, k.String())
	}
	return v
}

// handleStartRun launches a background run. The run is detached from the
// request so that it survives the response.
func (s *Server) handleStartRun(c *gin.Context) {
	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		handleError(c, NewAppError(http.StatusBadRequest, "Invalid request body", err))
		return
	}

	var kinds []domain.SourceKind
	if len(req.Sources) > 0 {
		parsed, err := domain.ParseSourceKinds(req.Sources)
		if err != nil {
			handleError(c, err)
			return
		}
		kinds = parsed
	}

	handle, err := s.extraction.Start(context.WithoutCancel(c.Request.Context()), kinds)
	if err != nil {
		handleError(c, err)
		return
	}
	status, err := s.extraction.Status(handle.ID())
	if err != nil {
		handleError(c, err)
		return
	}
	c.Header("Location", "/runs/"+handle.ID())
	c.JSON(http.StatusAccepted, NewRunView(status))
}

func (s *Server) handleLatestRun(c *gin.Context) {
	status, ok := s.extraction.Latest()
	if !ok {
		handleError(c, domain.ErrRunNotFound)
		return
	}
	c.JSON(http.StatusOK, NewRunView(status))
}

func (s *Server) handleRunStatus(c *gin.Context) {
	status, err := s.extraction.Status(c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewRunView(status))
}
