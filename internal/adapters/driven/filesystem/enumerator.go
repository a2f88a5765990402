package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/custodia-labs/seek/internal/core/domain"
	"github.com/custodia-labs/seek/internal/core/ports/driven"
	"github.com/custodia-labs/seek/internal/logger"
)

// Ensure Enumerator implements the interface.
var _ driven.PathEnumerator = (*Enumerator)(nil)

// errStop ends a walk early without being reported.
var errStop = errors.New("stop walk")

// Enumerator walks the local filesystem.
type Enumerator struct{}

// NewEnumerator creates a filesystem enumerator.
func NewEnumerator() *Enumerator {
	return &Enumerator{}
}

// Resolve returns the absolute, cleaned form of root after checking it exists.
func (e *Enumerator) Resolve(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("root %s: %w", abs, domain.ErrNotFound)
		}
		return "", fmt.Errorf("root %s: %w", abs, err)
	}
	if !info.IsDir() && !info.Mode().IsRegular() {
		return "", fmt.Errorf("root %s is neither a directory nor a regular file", abs)
	}
	return abs, nil
}

// Enumerate yields regular files under root whose names pass filter.
func (e *Enumerator) Enumerate(ctx context.Context, root string, filter domain.ExtensionSet) iter.Seq[string] {
	return func(yield func(string) bool) {
		info, err := os.Stat(root)
		if err != nil {
			logger.Debug("enumerate %s: %v", root, err)
			return
		}
		if info.Mode().IsRegular() {
			if ctx.Err() == nil && filter.Matches(filepath.Base(root)) {
				yield(root)
			}
			return
		}
		if !info.IsDir() {
			return
		}

		// Links below the root are never followed, but a linked root is.
		walkRoot := root
		if linfo, err := os.Lstat(root); err == nil && linfo.Mode()&fs.ModeSymlink != 0 {
			if target, err := filepath.EvalSymlinks(root); err == nil {
				walkRoot = target
			}
		}

		err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, walkErr error) error {
			if err := ctx.Err(); err != nil {
				return errStop
			}
			if walkErr != nil {
				// Unreadable directories are skipped silently.
				logger.Debug("skip %s: %v", path, walkErr)
				if d != nil && d.IsDir() && path != walkRoot {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			if !filter.Matches(d.Name()) {
				return nil
			}
			if !yield(path) {
				return errStop
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			logger.Debug("walk %s: %v", root, err)
		}
	}
}
