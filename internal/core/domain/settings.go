package domain

import "fmt"

const unknownDescription = "Unknown"

// SearchSettings holds the defaults applied to new searches.
type SearchSettings struct {
	// Extensions is the default extension filter.
	Extensions ExtensionSet `json:"extensions"`

	// Granularity is the default match granularity.
	Granularity Granularity `json:"granularity"`

	// EventBuffer is the capacity of a session's event channel.
	EventBuffer int `json:"event_buffer"`
}

// HistorySettings controls the search history.
type HistorySettings struct {
	// Enabled records finished searches when true.
	Enabled bool `json:"enabled"`

	// Retention is the number of records kept. Zero keeps everything.
	Retention int `json:"retention"`
}

// WatchSettings controls watch mode.
type WatchSettings struct {
	// MinIntervalMs is the minimum delay between two re-runs in milliseconds.
	MinIntervalMs int `json:"min_interval_ms"`
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Search holds search defaults.
	Search SearchSettings `json:"search"`

	// History holds search history settings.
	History HistorySettings `json:"history"`

	// Watch holds watch mode settings.
	Watch WatchSettings `json:"watch"`
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Search: SearchSettings{
			Extensions:  ExtensionSet{".md", ".txt"},
			Granularity: GranularityLine,
			EventBuffer: 256,
		},
		History: HistorySettings{
			Enabled:   true,
			Retention: 100,
		},
		Watch: WatchSettings{
			MinIntervalMs: 500,
		},
	}
}

// Validate checks the settings for values the services cannot use.
func (s AppSettings) Validate() error {
	if !s.Search.Granularity.IsValid() {
		return fmt.Errorf("search granularity %q: %w", s.Search.Granularity, ErrInvalidInput)
	}
	if s.Search.EventBuffer < 0 {
		return fmt.Errorf("event buffer %d: %w", s.Search.EventBuffer, ErrInvalidInput)
	}
	if s.History.Retention < 0 {
		return fmt.Errorf("history retention %d: %w", s.History.Retention, ErrInvalidInput)
	}
	if s.Watch.MinIntervalMs < 0 {
		return fmt.Errorf("watch interval %d: %w", s.Watch.MinIntervalMs, ErrInvalidInput)
	}
	return nil
}

// AllGranularities returns all available granularities.
func AllGranularities() []Granularity {
	return []Granularity{
		GranularityLine,
		GranularityWholeFile,
	}
}

// CommonExtensions returns the file types offered as presets by the interactive searcher.
func CommonExtensions() []string {
	return []string{".md", ".txt", ".html", ".py"}
}
