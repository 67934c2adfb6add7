package mcp

import (
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driven"
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval provides ranked evidence retrieval.
	Retrieval driving.RetrievalService

	// Letter drafts letters with their transparency reports.
	Letter driving.LetterService

	// Validation scans text for policy-violation language.
	Validation driving.ValidationService

	// Evidence exposes the evidence corpus as resources.
	Evidence driven.EvidenceStore
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	// Letter, Validation and Evidence are optional; their tools and
	// resources degrade when unset.
	return nil
}
