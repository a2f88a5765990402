package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	// Start returns it for a missing root path or an empty extension filter.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidState indicates an operation is not allowed in the current
	// lifecycle state, such as starting a session twice.
	ErrInvalidState = errors.New("invalid state")

	// ErrUnsupportedGranularity indicates an unknown match granularity.
	ErrUnsupportedGranularity = errors.New("unsupported granularity")

	// ErrHistoryUnavailable indicates the search history store is not configured.
	ErrHistoryUnavailable = errors.New("search history unavailable")

	// ErrWatchUnavailable indicates no tree watcher is configured.
	ErrWatchUnavailable = errors.New("watch unavailable")
)
