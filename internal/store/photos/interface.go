package photos

import (
	"context"

	"github.com/dmitrijs2005/sitescribe/internal/models"
)

// Repository describes storage operations for Photo records.
type Repository interface {
	// Add inserts a new photo. Returns common.ErrUnknownInspection when the
	// referenced inspection does not exist.
	Add(ctx context.Context, photo *models.Photo) error

	// GetByID returns a photo or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Photo, error)

	// ListByInspection returns the inspection's photos ordered by
	// recording-relative audio timestamp ascending. Insertion order is
	// irrelevant: the audio timestamp is the correlation key.
	ListByInspection(ctx context.Context, inspectionID string) ([]models.Photo, error)

	// UpdateRemoteURL records the remote copy of the photo binary.
	UpdateRemoteURL(ctx context.Context, id, url string) error

	// UpdateCaption writes a generated caption onto the photo.
	UpdateCaption(ctx context.Context, id, caption string) error

	// ListUnsynced returns photos that have a local binary but no remote
	// reference yet, for the reconciliation sweep.
	ListUnsynced(ctx context.Context) ([]models.Photo, error)
}
