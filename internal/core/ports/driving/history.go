package driving

import (
	"context"

	"github.com/custodia-labs/seek/internal/core/domain"
)

// HistoryService exposes the search history.
type HistoryService interface {
	// List returns recent searches, most recent first. A limit of zero returns all.
	List(ctx context.Context, limit int) ([]domain.SearchRecord, error)

	// Get returns a single record by ID or by an unambiguous ID prefix.
	Get(ctx context.Context, id string) (*domain.SearchRecord, error)

	// Clear removes every record.
	Clear(ctx context.Context) error
}
