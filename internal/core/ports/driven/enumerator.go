package driven

import (
	"context"
	"iter"

	"github.com/custodia-labs/seek/internal/core/domain"
)

// PathEnumerator yields candidate files for a search.
type PathEnumerator interface {
	// Resolve turns root into an absolute path and checks that it exists.
	// Returns an error wrapping domain.ErrNotFound when it does not.
	Resolve(root string) (string, error)

	// Enumerate lazily yields the regular files under root that pass filter.
	// A regular-file root yields itself when it passes the filter.
	// Directories are visited depth-first in lexical order. Symbolic links
	// are not followed and unreadable directories are skipped.
	// Iteration stops when the consumer stops or ctx is done.
	Enumerate(ctx context.Context, root string, filter domain.ExtensionSet) iter.Seq[string]
}
