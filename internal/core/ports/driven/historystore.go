package driven

import (
	"context"

	"github.com/custodia-labs/seek/internal/core/domain"
)

// HistoryStore persists finished searches.
type HistoryStore interface {
	// Save stores a record. Creates or replaces it based on ID.
	Save(ctx context.Context, record *domain.SearchRecord) error

	// Get retrieves a record by ID.
	// Returns domain.ErrNotFound if the record does not exist.
	Get(ctx context.Context, id string) (*domain.SearchRecord, error)

	// List returns the most recent records first. A limit of zero returns all.
	List(ctx context.Context, limit int) ([]domain.SearchRecord, error)

	// Prune keeps the most recent 'keep' records and removes the rest.
	Prune(ctx context.Context, keep int) error

	// Clear removes every record.
	Clear(ctx context.Context) error
}
