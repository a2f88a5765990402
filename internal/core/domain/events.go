package domain

// EventKind names an event for serialisation.
type EventKind string

const (
	// EventMatch is a MatchEvent.
	EventMatch EventKind = "match"
	// EventError is an ErrorEvent.
	EventError EventKind = "error"
	// EventSummary is the terminal SessionSummary.
	EventSummary EventKind = "summary"
)

// Event is a value delivered on a session's event stream.
// The set of implementations is closed: MatchEvent, ErrorEvent and SessionSummary.
type Event interface {
	Kind() EventKind
	isEvent()
}

// MatchEvent reports a match in one file.
// Line is 1-based in line granularity and 0 when absent (whole-file granularity).
type MatchEvent struct {
	Path    string `json:"path"`
	Line    int    `json:"line,omitempty"`
	Excerpt string `json:"excerpt"`
}

// Kind returns EventMatch.
func (MatchEvent) Kind() EventKind { return EventMatch }

func (MatchEvent) isEvent() {}

// HasLine reports whether the match carries a line number.
func (e MatchEvent) HasLine() bool {
	return e.Line > 0
}

// ErrorEvent reports a file that could not be read. The session continues.
type ErrorEvent struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Kind returns EventError.
func (ErrorEvent) Kind() EventKind { return EventError }

func (ErrorEvent) isEvent() {}

// SessionSummary is the final event of every session.
// Completed is false whenever cancellation was requested before the summary was produced.
type SessionSummary struct {
	SessionID    string `json:"session_id"`
	MatchCount   int    `json:"match_count"`
	ErrorCount   int    `json:"error_count"`
	FilesScanned int    `json:"files_scanned"`
	Completed    bool   `json:"completed"`
}

// Kind returns EventSummary.
func (SessionSummary) Kind() EventKind { return EventSummary }

func (SessionSummary) isEvent() {}
