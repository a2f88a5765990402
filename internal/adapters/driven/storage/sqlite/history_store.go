package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/seek/internal/core/domain"
	"github.com/custodia-labs/seek/internal/core/ports/driven"
)

// historyStore implements driven.HistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

const historyColumns = `id, session_id, root_path, extensions, rules, granularity,
	started_at, ended_at, match_count, error_count, files_scanned, completed`

// Save stores a record. Creates or replaces it based on ID.
func (s *historyStore) Save(ctx context.Context, record *domain.SearchRecord) error {
	if record == nil || record.ID == "" {
		return domain.ErrInvalidInput
	}

	exts, err := json.Marshal(record.Config.Extensions)
	if err != nil {
		return fmt.Errorf("encoding extensions: %w", err)
	}
	rules, err := json.Marshal(record.Config.Rules)
	if err != nil {
		return fmt.Errorf("encoding rules: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO search_history (`+historyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			session_id = excluded.session_id,
			root_path = excluded.root_path,
			extensions = excluded.extensions,
			rules = excluded.rules,
			granularity = excluded.granularity,
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			match_count = excluded.match_count,
			error_count = excluded.error_count,
			files_scanned = excluded.files_scanned,
			completed = excluded.completed
	`,
		record.ID,
		record.SessionID,
		record.Config.RootPath,
		string(exts),
		string(rules),
		record.Config.Granularity.String(),
		formatTime(record.StartedAt),
		formatNullableTime(record.EndedAt),
		record.MatchCount,
		record.ErrorCount,
		record.FilesScanned,
		boolToInt(record.Completed),
	)
	if err != nil {
		return fmt.Errorf("saving search record: %w", err)
	}
	return nil
}

// Get retrieves a record by ID.
func (s *historyStore) Get(ctx context.Context, id string) (*domain.SearchRecord, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+historyColumns+` FROM search_history WHERE id = ?`, id)
	return scanRecord(row)
}

// List returns the most recent records first.
func (s *historyStore) List(ctx context.Context, limit int) ([]domain.SearchRecord, error) {
	query := `SELECT ` + historyColumns + ` FROM search_history ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying search history: %w", err)
	}
	defer rows.Close()

	var records []domain.SearchRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search history: %w", err)
	}
	return records, nil
}

// Prune keeps the most recent 'keep' records.
func (s *historyStore) Prune(ctx context.Context, keep int) error {
	if keep < 0 {
		keep = 0
	}
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM search_history WHERE id IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (ORDER BY started_at DESC, id DESC) AS rn
				FROM search_history
			) WHERE rn > ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning search history: %w", err)
	}
	return nil
}

// Clear removes every record.
func (s *historyStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, `DELETE FROM search_history`); err != nil {
		return fmt.Errorf("clearing search history: %w", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.SearchRecord, error) {
	var (
		rec         domain.SearchRecord
		exts, rules string
		granularity string
		startedAt   string
		endedAt     sql.NullString
		completed   int
	)

	err := row.Scan(
		&rec.ID,
		&rec.SessionID,
		&rec.Config.RootPath,
		&exts,
		&rules,
		&granularity,
		&startedAt,
		&endedAt,
		&rec.MatchCount,
		&rec.ErrorCount,
		&rec.FilesScanned,
		&completed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning search record: %w", err)
	}

	if err := json.Unmarshal([]byte(exts), &rec.Config.Extensions); err != nil {
		return nil, fmt.Errorf("decoding extensions of %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(rules), &rec.Config.Rules); err != nil {
		return nil, fmt.Errorf("decoding rules of %s: %w", rec.ID, err)
	}
	rec.Config.Granularity = domain.Granularity(granularity)
	rec.StartedAt = parseNullableTime(sql.NullString{String: startedAt, Valid: true})
	rec.EndedAt = parseNullableTime(endedAt)
	rec.Completed = completed != 0

	return &rec, nil
}

// formatTime renders t in UTC with a fixed width so text order is time order.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}

// formatNullableTime formats a time for storage, returning nil for zero time.
func formatNullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

// parseNullableTime parses a stored time. Returns zero time if empty or invalid.
func parseNullableTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

// boolToInt converts a bool to 1 (true) or 0 (false).
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
