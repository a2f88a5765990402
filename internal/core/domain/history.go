package domain

import "time"

// SearchRecord is a finished search kept in the history.
// It stores the configuration and the summary, never file contents.
type SearchRecord struct {
	ID           string       `json:"id"`
	SessionID    string       `json:"session_id"`
	Config       SearchConfig `json:"config"`
	StartedAt    time.Time    `json:"started_at"`
	EndedAt      time.Time    `json:"ended_at"`
	MatchCount   int          `json:"match_count"`
	ErrorCount   int          `json:"error_count"`
	FilesScanned int          `json:"files_scanned"`
	Completed    bool         `json:"completed"`
}

// Duration returns how long the search ran.
func (r SearchRecord) Duration() time.Duration {
	if r.EndedAt.IsZero() || r.EndedAt.Before(r.StartedAt) {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// Status returns "completed" or "cancelled".
func (r SearchRecord) Status() SessionState {
	if r.Completed {
		return SessionCompleted
	}
	return SessionCancelled
}

// NewSearchRecord builds a record from a configuration and its summary.
func NewSearchRecord(id string, cfg SearchConfig, summary SessionSummary, started, ended time.Time) SearchRecord {
	return SearchRecord{
		ID:           id,
		SessionID:    summary.SessionID,
		Config:       cfg,
		StartedAt:    started,
		EndedAt:      ended,
		MatchCount:   summary.MatchCount,
		ErrorCount:   summary.ErrorCount,
		FilesScanned: summary.FilesScanned,
		Completed:    summary.Completed,
	}
}
