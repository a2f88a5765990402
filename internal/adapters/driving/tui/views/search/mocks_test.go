package search

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/seek/internal/core/domain"
	"github.com/custodia-labs/seek/internal/core/ports/driving"
)

// mockSearchService hands out queued sessions and records configurations.
type mockSearchService struct {
	mu       sync.Mutex
	sessions []*mockSession
	err      error
	configs  []domain.SearchConfig
}

func (m *mockSearchService) Start(_ context.Context, cfg domain.SearchConfig) (driving.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.configs = append(m.configs, cfg)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.sessions) == 0 {
		return newMockSession("empty", true), nil
	}
	s := m.sessions[0]
	m.sessions = m.sessions[1:]
	return s, nil
}

// mockSession replays a fixed stream. The stream is buffered and closed,
// so reads never block.
type mockSession struct {
	id        string
	events    chan domain.Event
	done      chan struct{}
	summary   domain.SessionSummary
	cancelled atomic.Bool
	waited    atomic.Bool
}

// newMockSession builds a session whose stream holds evs and, when
// withSummary is set, a trailing summary.
func newMockSession(id string, withSummary bool, evs ...domain.Event) *mockSession {
	var matches, errs int
	for _, ev := range evs {
		switch ev.(type) {
		case domain.MatchEvent:
			matches++
		case domain.ErrorEvent:
			errs++
		}
	}
	summary := domain.SessionSummary{SessionID: id, MatchCount: matches, ErrorCount: errs, Completed: true}

	ch := make(chan domain.Event, len(evs)+1)
	for _, ev := range evs {
		ch <- ev
	}
	if withSummary {
		ch <- summary
	}
	close(ch)

	done := make(chan struct{})
	close(done)

	return &mockSession{id: id, events: ch, done: done, summary: summary}
}

func (s *mockSession) ID() string { return s.id }

func (s *mockSession) Config() domain.SearchConfig { return domain.SearchConfig{} }

func (s *mockSession) State() domain.SessionState { return domain.SessionCompleted }

func (s *mockSession) Events() <-chan domain.Event { return s.events }

func (s *mockSession) Cancel() { s.cancelled.Store(true) }

func (s *mockSession) Done() <-chan struct{} { return s.done }

func (s *mockSession) Summary() (domain.SessionSummary, bool) { return s.summary, true }

func (s *mockSession) Wait() domain.SessionSummary {
	s.waited.Store(true)
	for range s.events {
	}
	return s.summary
}
