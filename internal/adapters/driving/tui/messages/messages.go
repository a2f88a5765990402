// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/seek/internal/core/domain"
	"github.com/custodia-labs/seek/internal/core/ports/driving"
)

// SearchStarted carries a session that has just started.
type SearchStarted struct {
	Session driving.Session
	Err     error
}

// SearchEvent carries one match or error event of a session.
type SearchEvent struct {
	SessionID string
	Event     domain.Event
}

// SearchFinished carries the summary of a session. It is the last
// message sent for a session.
type SearchFinished struct {
	SessionID string
	Summary   domain.SessionSummary
}

// RerunRequested asks the search view to run a recorded configuration.
type RerunRequested struct {
	Config domain.SearchConfig
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewSearch is the search form and results view.
	ViewSearch
	// ViewHistory lists recorded searches.
	ViewHistory
	// ViewSettings is the settings view.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewHistory:
		return "history"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// HistoryLoaded carries recorded searches.
type HistoryLoaded struct {
	Records []domain.SearchRecord
	Err     error
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals a setting was saved.
type SettingsSaved struct {
	Key string
	Err error
}
