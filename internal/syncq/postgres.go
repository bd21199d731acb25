package syncq

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/sitescribe/internal/models"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresDocumentStore implements DocumentStore on a PostgreSQL mirror of
// the local schema. Every write is an upsert by identifier.
type PostgresDocumentStore struct {
	db *sql.DB
}

func NewPostgresDocumentStore(db *sql.DB) *PostgresDocumentStore {
	return &PostgresDocumentStore{db: db}
}

// OpenPostgresDocumentStore connects to the remote mirror using the pgx
// stdlib driver.
func OpenPostgresDocumentStore(dsn string) (*PostgresDocumentStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote store: %w", err)
	}
	return NewPostgresDocumentStore(db), nil
}

func (s *PostgresDocumentStore) UpsertInspection(ctx context.Context, insp *models.Inspection) error {
	query := `INSERT INTO inspections
		(id, client, address, claim_number, inspection_date, audio_uri, remote_audio_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			client = EXCLUDED.client,
			address = EXCLUDED.address,
			claim_number = EXCLUDED.claim_number,
			inspection_date = EXCLUDED.inspection_date,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at`
	_, err := s.db.ExecContext(ctx, query,
		insp.ID, insp.Client, insp.Address, insp.ClaimNumber, insp.InspectionDate,
		insp.AudioURI, insp.RemoteAudioURL, string(insp.Status), insp.CreatedAt, insp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert inspection: %w", err)
	}
	return nil
}

func (s *PostgresDocumentStore) UpsertPhoto(ctx context.Context, p *models.Photo) error {
	query := `INSERT INTO photos
		(id, inspection_id, photo_uri, remote_url, timestamp, audio_timestamp, caption, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			remote_url = EXCLUDED.remote_url,
			caption = EXCLUDED.caption`
	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.InspectionID, p.PhotoURI, p.RemoteURL, p.Timestamp, p.AudioTimestampMs, p.Caption, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert photo: %w", err)
	}
	return nil
}

func (s *PostgresDocumentStore) SetRemoteAudioURL(ctx context.Context, inspectionID, url string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE inspections SET remote_audio_url = $1 WHERE id = $2`, url, inspectionID)
	if err != nil {
		return fmt.Errorf("failed to set remote audio url: %w", err)
	}
	return nil
}

func (s *PostgresDocumentStore) SetPhotoRemoteURL(ctx context.Context, photoID, url string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE photos SET remote_url = $1 WHERE id = $2`, url, photoID)
	if err != nil {
		return fmt.Errorf("failed to set photo remote url: %w", err)
	}
	return nil
}
