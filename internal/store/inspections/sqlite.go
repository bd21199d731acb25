package inspections

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

func (r *SQLiteRepository) Create(ctx context.Context, insp *models.Inspection) error {
	query := `INSERT INTO inspections
			(id, client, address, claim_number, inspection_date, audio_uri,
			 remote_audio_url, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		insp.ID, insp.Client, insp.Address, insp.ClaimNumber, insp.InspectionDate,
		insp.AudioURI, insp.RemoteAudioURL, string(insp.Status), insp.CreatedAt, insp.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("inspection %s: %w", insp.ID, common.ErrDuplicateID)
		}
		return fmt.Errorf("failed to insert inspection: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Inspection, error) {
	query := `SELECT id, client, address, claim_number, inspection_date, audio_uri,
			remote_audio_url, status, created_at, updated_at
			FROM inspections WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	insp, err := scanInspection(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("inspection %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select inspection: %w", err)
	}
	return insp, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Inspection, error) {
	query := `SELECT id, client, address, claim_number, inspection_date, audio_uri,
			remote_audio_url, status, created_at, updated_at
			FROM inspections ORDER BY created_at DESC`
	return r.selectInspections(ctx, query)
}

// ListUnsyncedAudio finds inspections whose recording finished locally but
// was never linked remotely, so the sync worker can re-enqueue the upload.
func (r *SQLiteRepository) ListUnsyncedAudio(ctx context.Context) ([]models.Inspection, error) {
	query := `SELECT id, client, address, claim_number, inspection_date, audio_uri,
			remote_audio_url, status, created_at, updated_at
			FROM inspections WHERE audio_uri != '' AND remote_audio_url = ''
			ORDER BY created_at`
	return r.selectInspections(ctx, query)
}

func (r *SQLiteRepository) selectInspections(ctx context.Context, query string, args ...any) ([]models.Inspection, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select inspections: %w", err)
	}
	defer rows.Close()

	var result []models.Inspection
	for rows.Next() {
		insp, err := scanInspection(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *insp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) UpdateAudioURI(ctx context.Context, id, audioURI string, now time.Time) error {
	return r.update(ctx, id, `UPDATE inspections SET audio_uri = ?, updated_at = ? WHERE id = ?`, audioURI, now, id)
}

func (r *SQLiteRepository) UpdateRemoteAudioURL(ctx context.Context, id, url string, now time.Time) error {
	return r.update(ctx, id, `UPDATE inspections SET remote_audio_url = ?, updated_at = ? WHERE id = ?`, url, now, id)
}

func (r *SQLiteRepository) UpdateStatus(ctx context.Context, id string, status models.InspectionStatus, now time.Time) error {
	return r.update(ctx, id, `UPDATE inspections SET status = ?, updated_at = ? WHERE id = ?`, string(status), now, id)
}

func (r *SQLiteRepository) update(ctx context.Context, id, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update inspection: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return fmt.Errorf("inspection %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM inspections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete inspection: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return fmt.Errorf("inspection %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func scanInspection(scan func(dest ...any) error) (*models.Inspection, error) {
	insp := &models.Inspection{}
	var status string
	err := scan(&insp.ID, &insp.Client, &insp.Address, &insp.ClaimNumber,
		&insp.InspectionDate, &insp.AudioURI, &insp.RemoteAudioURL, &status,
		&insp.CreatedAt, &insp.UpdatedAt)
	if err != nil {
		return nil, err
	}
	insp.Status = models.InspectionStatus(status)
	return insp, nil
}
