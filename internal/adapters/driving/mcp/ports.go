package mcp

import (
	"github.com/DIVT313/forensic-agent/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces used by the MCP server.
type Ports struct {
	// Retrieval serves staged artifacts.
	Retrieval driving.RetrievalService

	// Extraction starts runs. Optional; the extraction tools are only
	// registered when set.
	Extraction driving.ExtractionService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
