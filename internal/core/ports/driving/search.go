package driving

import (
	"context"

	"github.com/custodia-labs/seek/internal/core/domain"
)

// SearchService starts search sessions.
type SearchService interface {
	// Start validates cfg, resolves its root once and starts a running session.
	// Configuration errors wrap domain.ErrInvalidInput and are returned here,
	// never on the event stream.
	// The session ends on its own or when ctx is done.
	Start(ctx context.Context, cfg domain.SearchConfig) (Session, error)
}

// Session is one running search.
type Session interface {
	// ID returns the session identifier.
	ID() string

	// Config returns the configuration the session runs with.
	Config() domain.SearchConfig

	// State returns the current lifecycle state.
	State() domain.SessionState

	// Events returns the event stream. The final event is always a
	// domain.SessionSummary, after which the channel is closed.
	Events() <-chan domain.Event

	// Cancel requests the session to stop. It never blocks and may be
	// called any number of times, from any goroutine.
	Cancel()

	// Done is closed when the session has reached a terminal state.
	Done() <-chan struct{}

	// Summary returns the summary once Done is closed.
	// Before that it returns the zero value and false.
	Summary() (domain.SessionSummary, bool)

	// Wait discards undelivered events, blocks until the session has
	// finished and returns its summary.
	Wait() domain.SessionSummary
}
