package driven

import "context"

// TreeWatcher reports changes below a directory tree.
type TreeWatcher interface {
	// Watch starts watching root recursively and returns a channel of changed paths.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context, root string) (<-chan string, error)
}
