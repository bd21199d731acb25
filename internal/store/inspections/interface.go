package inspections

import (
	"context"
	"time"

	"github.com/dmitrijs2005/sitescribe/internal/models"
)

// Repository describes storage operations for Inspection records.
// Implementations are backed by the local SQLite evidence database; every
// write is durable before the call returns.
type Repository interface {
	// Create inserts a new inspection with a caller-supplied identifier.
	// Returns common.ErrDuplicateID when the identifier already exists.
	Create(ctx context.Context, insp *models.Inspection) error

	// GetByID returns an inspection or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Inspection, error)

	// List returns all inspections ordered by creation time, most recent first.
	List(ctx context.Context) ([]models.Inspection, error)

	// UpdateAudioURI links a finished local recording to the inspection.
	UpdateAudioURI(ctx context.Context, id, audioURI string, now time.Time) error

	// UpdateRemoteAudioURL records the remote copy of the audio.
	UpdateRemoteAudioURL(ctx context.Context, id, url string, now time.Time) error

	// UpdateStatus moves the inspection through its analysis lifecycle.
	UpdateStatus(ctx context.Context, id string, status models.InspectionStatus, now time.Time) error

	// Delete removes an inspection and, via cascade, all of its photos.
	Delete(ctx context.Context, id string) error

	// ListUnsyncedAudio returns inspections that have a local recording but
	// no remote reference yet, for the reconciliation sweep.
	ListUnsyncedAudio(ctx context.Context) ([]models.Inspection, error)
}
