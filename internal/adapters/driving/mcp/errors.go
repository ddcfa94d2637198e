// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It exposes staged artifacts as read-only resources so that an assistant
// on the examiner's workstation can browse an acquisition.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
