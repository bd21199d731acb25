// Package outbox persists pending remote-sync operations. A local write
// appends an item here in the same transaction-scope as the write itself;
// a background worker drains the table. This keeps local writes decoupled
// from remote availability without hiding the sync obligation.
package outbox

import (
	"context"
	"time"
)

// Kind identifies what a pending item mirrors to the remote side.
type Kind string

const (
	KindUpsertInspection Kind = "upsert_inspection"
	KindUploadAudio      Kind = "upload_audio"
	KindUpsertPhoto      Kind = "upsert_photo"
	KindUploadPhoto      Kind = "upload_photo"
)

// Item statuses.
const (
	StatusPending = "pending"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Item is one durable pending sync operation.
type Item struct {
	ID        int64
	Kind      Kind
	EntityID  string
	Status    string
	Attempts  int
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository describes storage operations for outbox items.
type Repository interface {
	// Enqueue appends a pending item. Enqueueing the same (kind, entity)
	// twice is harmless: remote writes are idempotent upserts.
	Enqueue(ctx context.Context, kind Kind, entityID string, now time.Time) error

	// ListPending returns up to limit pending items, oldest first.
	ListPending(ctx context.Context, limit int) ([]Item, error)

	// MarkDone marks an item delivered.
	MarkDone(ctx context.Context, id int64, now time.Time) error

	// MarkFailed records a delivery failure, bumping the attempt counter.
	// The item stays pending unless final is true.
	MarkFailed(ctx context.Context, id int64, cause string, final bool, now time.Time) error
}
