// Package syncq mirrors local evidence-store writes to a remote document
// store and object storage. It drains the durable outbox in the
// background with retry, so capture never waits on the network and a
// failed remote write never invalidates a local record.
package syncq

import (
	"context"

	"github.com/dmitrijs2005/sitescribe/internal/models"
)

// DocumentStore is the remote metadata collection. All writes are upserts
// keyed by the same identifiers used locally, so at-least-once delivery
// from the outbox is safe: retrying an operation never creates a
// duplicate remote record.
type DocumentStore interface {
	UpsertInspection(ctx context.Context, insp *models.Inspection) error
	UpsertPhoto(ctx context.Context, photo *models.Photo) error
	SetRemoteAudioURL(ctx context.Context, inspectionID, url string) error
	SetPhotoRemoteURL(ctx context.Context, photoID, url string) error
}

// BlobUploader stores binary payloads (audio, photos) remotely and
// returns a durable retrievable reference.
type BlobUploader interface {
	// Upload reads the file at localPath and stores it under key.
	// Returns common.ErrFileNotFound when the file no longer exists, a
	// common.AuthError for credential rejections and a
	// common.TransportError for anything transient.
	Upload(ctx context.Context, localPath, key string) (string, error)
}
