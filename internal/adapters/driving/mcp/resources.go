package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for artifact resources.
	uriScheme = "forensic://"

	artifactsPrefix = uriScheme + "artifacts/"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         artifactsPrefix + domain.ListingName,
		Name:        "artifact-listing",
		Description: "Name, size and modification time of every staged artifact",
		MIMEType:    domain.DefaultContentType,
	}, s.handleArtifactResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: artifactsPrefix + "{name}",
		Name:        "artifact",
		Description: "A staged extraction artifact such as contacts.json or sms.json",
		MIMEType:    domain.DefaultContentType,
	}, s.handleArtifactResource)
}

// handleArtifactResource streams one artifact, or the listing, as text.
func (s *Server) handleArtifactResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractArtifactName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	rc, err := s.ports.Retrieval.Open(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: s.ports.Retrieval.Describe(name),
			Text:     string(data),
		}},
	}, nil
}

// extractArtifactName extracts the name from a URI like forensic://artifacts/{name}.
func extractArtifactName(uri string) string {
	if !strings.HasPrefix(uri, artifactsPrefix) {
		return ""
	}
	name := strings.TrimPrefix(uri, artifactsPrefix)
	if strings.Contains(name, "/") {
		return ""
	}
	return name
}
