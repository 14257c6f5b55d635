// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets AI assistants segment, ingest and query section collections.
package mcp

import "errors"

var (
	// ErrMissingRetrievalService is returned when the retrieval service is not provided.
	ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

	// ErrToolNotConfigured is returned by a tool whose backing service was not provided.
	ErrToolNotConfigured = errors.New("mcp: tool is not configured")
)
