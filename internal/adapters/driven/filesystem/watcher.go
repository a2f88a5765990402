package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/seek/internal/core/ports/driven"
	"github.com/custodia-labs/seek/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.TreeWatcher = (*Watcher)(nil)

// Watcher reports file changes below a root using fsnotify.
// Directories created while watching are added as they appear.
type Watcher struct {
	buffer int
}

// NewWatcher creates a tree watcher.
func NewWatcher() *Watcher {
	return &Watcher{buffer: 64}
}

// Watch starts watching root and returns a channel of changed paths.
// For a regular-file root only that file is reported.
func (w *Watcher) Watch(ctx context.Context, root string) (<-chan string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	only := ""
	if info.IsDir() {
		if err := addTree(fw, root); err != nil {
			_ = fw.Close()
			return nil, err
		}
	} else {
		only = root
		if err := fw.Add(filepath.Dir(root)); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watch %s: %w", root, err)
		}
	}

	changes := make(chan string, w.buffer)
	go func() {
		defer close(changes)
		defer fw.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				path, changed := handleFsEvent(fw, event)
				if !changed || (only != "" && path != only) {
					continue
				}
				select {
				case changes <- path:
				case <-ctx.Done():
					return
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				logger.Warn("watch %s: %v", root, err)
			}
		}
	}()

	return changes, nil
}

// handleFsEvent reports whether event changes file content.
// New directories are added to the watch.
func handleFsEvent(fw *fsnotify.Watcher, event fsnotify.Event) (string, bool) {
	switch {
	case event.Has(fsnotify.Create):
		if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
			if err := addTree(fw, event.Name); err != nil {
				logger.Debug("watch new dir %s: %v", event.Name, err)
			}
		}
		return event.Name, true
	case event.Has(fsnotify.Write), event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return event.Name, true
	default:
		return "", false
	}
}

// addTree watches dir and every directory below it. Symbolic links are not followed.
func addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Debug("watch skip %s: %v", path, err)
			if d != nil && d.IsDir() && path != dir {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
