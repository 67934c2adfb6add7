// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets AI assistants retrieve evidence, validate text and draft
// Letters of Medical Necessity against the local corpus.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
