package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sitescribe/internal/common"
	"github.com/dmitrijs2005/sitescribe/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Enqueue(ctx context.Context, kind Kind, entityID string, now time.Time) error {
	query := `INSERT INTO outbox (kind, entity_id, status, attempts, last_error, created_at, updated_at)
			VALUES (?, ?, ?, 0, '', ?, ?)`
	_, err := r.db.ExecContext(ctx, query, string(kind), entityID, StatusPending, now, now)
	if err != nil {
		return fmt.Errorf("failed to enqueue outbox item: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListPending(ctx context.Context, limit int) ([]Item, error) {
	query := `SELECT id, kind, entity_id, status, attempts, last_error, created_at, updated_at
			FROM outbox WHERE status = ? ORDER BY id LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select outbox items: %w", err)
	}
	defer rows.Close()

	var result []Item
	for rows.Next() {
		var item Item
		var kind string
		if err := rows.Scan(&item.ID, &kind, &item.EntityID, &item.Status,
			&item.Attempts, &item.LastError, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		item.Kind = Kind(kind)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) MarkDone(ctx context.Context, id int64, now time.Time) error {
	return r.update(ctx, id, `UPDATE outbox SET status = ?, updated_at = ? WHERE id = ?`, StatusDone, now, id)
}

func (r *SQLiteRepository) MarkFailed(ctx context.Context, id int64, cause string, final bool, now time.Time) error {
	status := StatusPending
	if final {
		status = StatusFailed
	}
	return r.update(ctx, id,
		`UPDATE outbox SET status = ?, attempts = attempts + 1, last_error = ?, updated_at = ? WHERE id = ?`,
		status, cause, now, id)
}

func (r *SQLiteRepository) update(ctx context.Context, id int64, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update outbox item: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return fmt.Errorf("outbox item %d: %w", id, common.ErrNotFound)
	}
	return nil
}
