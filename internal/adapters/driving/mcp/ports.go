package mcp

import (
	"github.com/custodia-labs/seek/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces used by the MCP server.
type Ports struct {
	// Search runs search sessions.
	Search driving.SearchService

	// History exposes recorded searches. Optional.
	History driving.HistoryService

	// Settings supplies default extensions and granularity. Optional.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
