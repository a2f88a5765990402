package mcp

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/custodia-labs/seek/internal/core/domain"
	"github.com/custodia-labs/seek/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	events []domain.Event
	// sendSummary controls whether the summary is put on the stream.
	sendSummary bool
	summary     domain.SessionSummary
	err         error

	lastConfig domain.SearchConfig
	session    *mockSession
}

func (m *mockSearchService) Start(_ context.Context, cfg domain.SearchConfig) (driving.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastConfig = cfg

	events := make(chan domain.Event, len(m.events)+1)
	for _, ev := range m.events {
		events <- ev
	}
	if m.sendSummary {
		events <- m.summary
	}
	close(events)

	done := make(chan struct{})
	close(done)
	m.session = &mockSession{cfg: cfg, events: events, done: done, summary: m.summary}
	return m.session, nil
}

// mockSession replays a fixed event stream.
type mockSession struct {
	cfg       domain.SearchConfig
	events    chan domain.Event
	done      chan struct{}
	summary   domain.SessionSummary
	cancelled atomic.Bool
}

func (m *mockSession) ID() string { return m.summary.SessionID }
func (m *mockSession) Config() domain.SearchConfig { return m.cfg }
func (m *mockSession) State() domain.SessionState { return domain.SessionCompleted }
func (m *mockSession) Events() <-chan domain.Event { return m.events }
func (m *mockSession) Cancel() { m.cancelled.Store(true) }
func (m *mockSession) Done() <-chan struct{} { return m.done }
func (m *mockSession) Wait() domain.SessionSummary { return m.summary }
func (m *mockSession) Summary() (domain.SessionSummary, bool) { return m.summary, true }

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	records []domain.SearchRecord
	err     error
}

func (m *mockHistoryService) List(_ context.Context, limit int) ([]domain.SearchRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && len(m.records) > limit {
		return m.records[:limit], nil
	}
	return m.records, nil
}

func (m *mockHistoryService) Get(_ context.Context, id string) (*domain.SearchRecord, error) {
	for i := range m.records {
		if strings.HasPrefix(m.records[i].ID, id) {
			return &m.records[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockHistoryService) Clear(_ context.Context) error {
	m.records = nil
	return m.err
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings domain.AppSettings
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) Set(_, _ string) error { return nil }

func (m *mockSettingsService) Keys() []string { return nil }

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}
