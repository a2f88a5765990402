package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/seek/internal/core/domain"
	"github.com/custodia-labs/seek/internal/core/ports/driven"
	"github.com/custodia-labs/seek/internal/core/ports/driving"
	"github.com/custodia-labs/seek/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService validates configurations and starts search sessions.
type SearchService struct {
	enumerator   driven.PathEnumerator
	reader       driven.ContentReader
	historyStore driven.HistoryStore
	retention    int
	eventBuffer  int
	now          func() time.Time
}

// NewSearchService creates a new search service.
func NewSearchService(enumerator driven.PathEnumerator, reader driven.ContentReader) *SearchService {
	return &SearchService{
		enumerator:  enumerator,
		reader:      reader,
		eventBuffer: DefaultEventBuffer,
		now:         time.Now,
	}
}

// SetHistoryStore records every finished session in store, keeping the
// most recent retention records. A retention of zero keeps everything.
func (s *SearchService) SetHistoryStore(store driven.HistoryStore, retention int) {
	s.historyStore = store
	s.retention = retention
}

// SetEventBuffer sets the event channel capacity of new sessions.
func (s *SearchService) SetEventBuffer(n int) {
	if n > 0 {
		s.eventBuffer = n
	}
}

// Start validates cfg, resolves its root and starts a session.
func (s *SearchService) Start(ctx context.Context, cfg domain.SearchConfig) (driving.Session, error) {
	logger.Section("Search")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("start search: %w", err)
	}

	root, err := s.enumerator.Resolve(cfg.RootPath)
	if err != nil {
		return nil, fmt.Errorf("start search: %w: %w", domain.ErrInvalidInput, err)
	}

	resolved := cfg.WithRoot(root)
	resolved.Extensions = cfg.Extensions.Effective()
	resolved.Granularity = cfg.EffectiveGranularity()
	logger.Debug("Root: %s", root)
	logger.Debug("Extensions: %s", resolved.Extensions)
	logger.Debug("Include: %q Exclude: %q", resolved.Includes(), resolved.Excludes())

	session := NewSearchSession(resolved, s.enumerator, s.reader, s.eventBuffer)
	if s.historyStore != nil {
		started := s.now()
		session.onFinish = func(summary domain.SessionSummary) {
			s.record(context.WithoutCancel(ctx), resolved, summary, started)
		}
	}

	if err := session.Start(ctx); err != nil {
		return nil, err
	}
	return session, nil
}

// record saves a finished session. History failures never affect the search.
func (s *SearchService) record(
	ctx context.Context, cfg domain.SearchConfig, summary domain.SessionSummary, started time.Time,
) {
	rec := domain.NewSearchRecord(uuid.NewString(), cfg, summary, started, s.now())
	if err := s.historyStore.Save(ctx, &rec); err != nil {
		logger.Warn("save search history: %v", err)
		return
	}
	if s.retention > 0 {
		if err := s.historyStore.Prune(ctx, s.retention); err != nil {
			logger.Warn("prune search history: %v", err)
		}
	}
}
