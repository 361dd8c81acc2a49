package mcp

import (
	"github.com/minerva-edu/tutor-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Knowledge provides search and content access.
	Knowledge driving.KnowledgeService

	// Ask generates grounded answers. Optional; when nil the ask tool is
	// not registered.
	Ask driving.AskService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Knowledge == nil {
		return ErrMissingKnowledgeService
	}
	return nil
}
