// Package tui provides an interactive terminal user interface for seek.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/seek/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI uses.
// Only Search is required; History and Settings views degrade without theirs.
type Ports struct {
	// Search starts search sessions.
	Search driving.SearchService

	// History lists recorded searches.
	History driving.HistoryService

	// Settings manages application settings.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	search driving.SearchService,
	history driving.HistoryService,
	settings driving.SettingsService,
) *Ports {
	return &Ports{
		Search:   search,
		History:  history,
		Settings: settings,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
