package domain

// SessionState is the lifecycle state of a search session.
// Idle moves to Running once; Running ends in Completed or Cancelled.
type SessionState string

const (
	// SessionIdle is a created session that has not been started.
	SessionIdle SessionState = "idle"
	// SessionRunning is a session whose worker is producing events.
	SessionRunning SessionState = "running"
	// SessionCompleted is a session that visited every candidate.
	SessionCompleted SessionState = "completed"
	// SessionCancelled is a session that stopped on request.
	SessionCancelled SessionState = "cancelled"
)

// IsTerminal reports whether no further transition is possible.
func (s SessionState) IsTerminal() bool {
	return s == SessionCompleted || s == SessionCancelled
}

// String returns the string representation.
func (s SessionState) String() string {
	return string(s)
}
