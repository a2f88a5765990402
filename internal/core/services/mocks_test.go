package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/seek/internal/core/domain"
	"github.com/custodia-labs/seek/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEnumerator implements driven.PathEnumerator over a fixed list of paths.
type mockEnumerator struct {
	paths      []string
	resolveErr error

	mu      sync.Mutex
	yielded int
}

var _ driven.PathEnumerator = (*mockEnumerator)(nil)

func (m *mockEnumerator) Resolve(root string) (string, error) {
	if m.resolveErr != nil {
		return "", m.resolveErr
	}
	return root, nil
}

func (m *mockEnumerator) Enumerate(ctx context.Context, _ string, filter domain.ExtensionSet) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, p := range m.paths {
			if ctx.Err() != nil {
				return
			}
			if !filter.Matches(filepath.Base(p)) {
				continue
			}
			m.mu.Lock()
			m.yielded++
			m.mu.Unlock()
			if !yield(p) {
				return
			}
		}
	}
}

// mockReader implements driven.ContentReader from an in-memory map.
// A path listed in gates blocks until its channel is closed.
type mockReader struct {
	files map[string]string
	errs  map[string]error
	gates map[string]chan struct{}

	mu     sync.Mutex
	opened []string
	// reading receives a path as soon as its read begins.
	reading chan string
}

var _ driven.ContentReader = (*mockReader)(nil)

func newMockReader(files map[string]string) *mockReader {
	return &mockReader{
		files: files,
		errs:  make(map[string]error),
		gates: make(map[string]chan struct{}),
	}
}

func (m *mockReader) open(path string) (string, error) {
	m.mu.Lock()
	m.opened = append(m.opened, path)
	gate := m.gates[path]
	m.mu.Unlock()

	if m.reading != nil {
		m.reading <- path
	}
	if gate != nil {
		<-gate
	}
	if err, ok := m.errs[path]; ok {
		return "", err
	}
	content, ok := m.files[path]
	if !ok {
		return "", fmt.Errorf("open %s: %w", path, errors.New("no such file or directory"))
	}
	return content, nil
}

func (m *mockReader) ReadFile(path string) (string, error) {
	return m.open(path)
}

func (m *mockReader) ScanLines(path string, fn func(int, string) bool) error {
	content, err := m.open(path)
	if err != nil {
		return err
	}
	if content == "" {
		return nil
	}
	for i, line := range strings.Split(strings.TrimSuffix(content, "\n"), "\n") {
		if !fn(i+1, strings.TrimSuffix(line, "\r")) {
			return nil
		}
	}
	return nil
}

func (m *mockReader) openedPaths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.opened...)
}

// mockWatcher implements driven.TreeWatcher with a channel the test drives.
type mockWatcher struct {
	changes chan string
	err     error
	root    string
}

var _ driven.TreeWatcher = (*mockWatcher)(nil)

func (m *mockWatcher) Watch(ctx context.Context, root string) (<-chan string, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.root = root
	out := make(chan string)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case p := <-m.changes:
				select {
				case out <- p:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// failingHistoryStore implements driven.HistoryStore and fails every call.
type failingHistoryStore struct{}

var _ driven.HistoryStore = failingHistoryStore{}

func (failingHistoryStore) Save(context.Context, *domain.SearchRecord) error { return errors.New("disk full") }

func (failingHistoryStore) Get(context.Context, string) (*domain.SearchRecord, error) {
	return nil, errors.New("disk full")
}

func (failingHistoryStore) List(context.Context, int) ([]domain.SearchRecord, error) {
	return nil, errors.New("disk full")
}

func (failingHistoryStore) Prune(context.Context, int) error { return errors.New("disk full") }

func (failingHistoryStore) Clear(context.Context) error { return errors.New("disk full") }

// --- Helpers ---

// collectEvents reads a session's stream until it is closed.
func collectEvents(events <-chan domain.Event) []domain.Event {
	var out []domain.Event
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

func matchesOf(events []domain.Event) []domain.MatchEvent {
	var out []domain.MatchEvent
	for _, ev := range events {
		if m, ok := ev.(domain.MatchEvent); ok {
			out = append(out, m)
		}
	}
	return out
}

func errorsOf(events []domain.Event) []domain.ErrorEvent {
	var out []domain.ErrorEvent
	for _, ev := range events {
		if e, ok := ev.(domain.ErrorEvent); ok {
			out = append(out, e)
		}
	}
	return out
}
