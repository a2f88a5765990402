package driving

import (
	"context"

	"github.com/custodia-labs/seek/internal/core/domain"
)

// WatchService re-runs a search whenever the tree under its root changes.
type WatchService interface {
	// Watch runs cfg once and again after every change until ctx is done.
	// onEvent receives each event with the 1-based run it belongs to.
	// A run interrupted by a change ends with a summary whose Completed is false.
	// Watch returns nil when ctx is done.
	Watch(ctx context.Context, cfg domain.SearchConfig, onEvent func(run int, ev domain.Event)) error
}
