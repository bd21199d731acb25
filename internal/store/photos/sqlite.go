package photos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sitescribe/internal/common"
	"github.com/dmitrijs2005/sitescribe/internal/dbx"
	"github.com/dmitrijs2005/sitescribe/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Add(ctx context.Context, p *models.Photo) error {
	query := `INSERT INTO photos
			(id, inspection_id, photo_uri, remote_url, timestamp, audio_timestamp, caption, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.InspectionID, p.PhotoURI, p.RemoteURL, p.Timestamp, p.AudioTimestampMs, p.Caption, p.CreatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return fmt.Errorf("photo %s references inspection %s: %w", p.ID, p.InspectionID, common.ErrUnknownInspection)
		}
		return fmt.Errorf("failed to insert photo: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	query := `SELECT id, inspection_id, photo_uri, remote_url, timestamp, audio_timestamp, caption, created_at
			FROM photos WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	p := &models.Photo{}
	err := row.Scan(&p.ID, &p.InspectionID, &p.PhotoURI, &p.RemoteURL,
		&p.Timestamp, &p.AudioTimestampMs, &p.Caption, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("photo %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select photo: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) ListByInspection(ctx context.Context, inspectionID string) ([]models.Photo, error) {
	query := `SELECT id, inspection_id, photo_uri, remote_url, timestamp, audio_timestamp, caption, created_at
			FROM photos WHERE inspection_id = ? ORDER BY audio_timestamp`
	return r.selectPhotos(ctx, query, inspectionID)
}

func (r *SQLiteRepository) ListUnsynced(ctx context.Context) ([]models.Photo, error) {
	query := `SELECT id, inspection_id, photo_uri, remote_url, timestamp, audio_timestamp, caption, created_at
			FROM photos WHERE photo_uri != '' AND remote_url = '' ORDER BY created_at`
	return r.selectPhotos(ctx, query)
}

func (r *SQLiteRepository) selectPhotos(ctx context.Context, query string, args ...any) ([]models.Photo, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select photos: %w", err)
	}
	defer rows.Close()

	var result []models.Photo
	for rows.Next() {
		var p models.Photo
		if err := rows.Scan(&p.ID, &p.InspectionID, &p.PhotoURI, &p.RemoteURL,
			&p.Timestamp, &p.AudioTimestampMs, &p.Caption, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) UpdateRemoteURL(ctx context.Context, id, url string) error {
	return r.update(ctx, id, `UPDATE photos SET remote_url = ? WHERE id = ?`, url, id)
}

func (r *SQLiteRepository) UpdateCaption(ctx context.Context, id, caption string) error {
	return r.update(ctx, id, `UPDATE photos SET caption = ? WHERE id = ?`, caption, id)
}

func (r *SQLiteRepository) update(ctx context.Context, id, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update photo: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return fmt.Errorf("photo %s: %w", id, common.ErrNotFound)
	}
	return nil
}
