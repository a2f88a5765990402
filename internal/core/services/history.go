package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/seek/internal/core/domain"
	"github.com/custodia-labs/seek/internal/core/ports/driven"
	"github.com/custodia-labs/seek/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService reads and clears the search history.
type HistoryService struct {
	store driven.HistoryStore
}

// NewHistoryService creates a history service. A nil store makes every
// operation return domain.ErrHistoryUnavailable.
func NewHistoryService(store driven.HistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// List returns recent searches, most recent first.
func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.SearchRecord, error) {
	if s.store == nil {
		return nil, domain.ErrHistoryUnavailable
	}
	records, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return records, nil
}

// Get returns the record with the given ID or unique ID prefix.
func (s *HistoryService) Get(ctx context.Context, id string) (*domain.SearchRecord, error) {
	if s.store == nil {
		return nil, domain.ErrHistoryUnavailable
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("history id is required: %w", domain.ErrInvalidInput)
	}

	rec, err := s.store.Get(ctx, id)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get history %s: %w", id, err)
	}

	all, err := s.store.List(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("get history %s: %w", id, err)
	}
	var found *domain.SearchRecord
	for i := range all {
		if !strings.HasPrefix(all[i].ID, id) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("history id %q is ambiguous: %w", id, domain.ErrInvalidInput)
		}
		found = &all[i]
	}
	if found == nil {
		return nil, fmt.Errorf("history %s: %w", id, domain.ErrNotFound)
	}
	return found, nil
}

// Clear removes every record.
func (s *HistoryService) Clear(ctx context.Context) error {
	if s.store == nil {
		return domain.ErrHistoryUnavailable
	}
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
