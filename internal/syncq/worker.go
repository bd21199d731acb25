package syncq

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/sitescribe/internal/clock"
	"github.com/dmitrijs2005/sitescribe/internal/common"
	"github.com/dmitrijs2005/sitescribe/internal/logging"
	"github.com/dmitrijs2005/sitescribe/internal/store"
	"github.com/dmitrijs2005/sitescribe/internal/store/outbox"
	"github.com/sethvargo/go-retry"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultBatchSize    = 20
	defaultMaxRetries   = 3
	defaultBackoffBase  = 500 * time.Millisecond

	// maxItemAttempts is the outbox-level cap across drain cycles; after
	// this many failed deliveries an item is parked as failed and left
	// for the reconciliation sweep or an operator.
	maxItemAttempts = 10
)

// Worker drains the outbox, mirroring local writes to the remote document
// store and blob storage. Local state stays authoritative: a delivery
// failure re-marks the item pending and never touches local records.
type Worker struct {
	st    *store.Store
	docs  DocumentStore
	blobs BlobUploader
	clk   clock.Clock
	log   logging.Logger

	pollInterval time.Duration
	batchSize    int
	maxRetries   uint64
	backoffBase  time.Duration
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

func WithPollInterval(d time.Duration) WorkerOption {
	return func(w *Worker) { w.pollInterval = d }
}

func WithBatchSize(n int) WorkerOption {
	return func(w *Worker) { w.batchSize = n }
}

func WithBackoff(base time.Duration, maxRetries uint64) WorkerOption {
	return func(w *Worker) {
		w.backoffBase = base
		w.maxRetries = maxRetries
	}
}

func NewWorker(st *store.Store, docs DocumentStore, blobs BlobUploader,
	clk clock.Clock, log logging.Logger, opts ...WorkerOption) *Worker {
	w := &Worker{
		st:           st,
		docs:         docs,
		blobs:        blobs,
		clk:          clk,
		log:          log,
		pollInterval: defaultPollInterval,
		batchSize:    defaultBatchSize,
		maxRetries:   defaultMaxRetries,
		backoffBase:  defaultBackoffBase,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run drains the outbox until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.log.Info(ctx, "sync worker started", "poll_interval", w.pollInterval.String())
	for {
		if err := w.ProcessOnce(ctx); err != nil {
			w.log.Error(ctx, "outbox drain failed", "error", err)
		}
		if err := w.clk.Sleep(ctx, w.pollInterval); err != nil {
			w.log.Info(ctx, "sync worker stopped")
			return
		}
	}
}

// ProcessOnce delivers one batch of pending items.
func (w *Worker) ProcessOnce(ctx context.Context) error {
	items, err := w.st.Outbox.ListPending(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("failed to list pending items: %w", err)
	}

	for _, item := range items {
		w.deliver(ctx, item)
	}
	return nil
}

func (w *Worker) deliver(ctx context.Context, item outbox.Item) {
	backoff := retry.WithMaxRetries(w.maxRetries, retry.NewFibonacci(w.backoffBase))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := w.process(ctx, item); err != nil {
			if isPermanent(err) {
				return err
			}
			return retry.RetryableError(err)
		}
		return nil
	})

	now := w.clk.Now().UTC()
	if err == nil {
		if markErr := w.st.Outbox.MarkDone(ctx, item.ID, now); markErr != nil {
			w.log.Error(ctx, "failed to mark outbox item done", "item_id", item.ID, "error", markErr)
		}
		return
	}

	final := isPermanent(err) || item.Attempts+1 >= maxItemAttempts
	w.log.Warn(ctx, "outbox delivery failed",
		"item_id", item.ID, "kind", string(item.Kind), "final", final, "error", err)
	if markErr := w.st.Outbox.MarkFailed(ctx, item.ID, err.Error(), final, now); markErr != nil {
		w.log.Error(ctx, "failed to mark outbox item failed", "item_id", item.ID, "error", markErr)
	}
}

// isPermanent reports whether retrying the same item can ever succeed.
func isPermanent(err error) bool {
	var authErr *common.AuthError
	return errors.Is(err, common.ErrFileNotFound) ||
		errors.Is(err, common.ErrNotFound) ||
		errors.As(err, &authErr)
}

func (w *Worker) process(ctx context.Context, item outbox.Item) error {
	switch item.Kind {
	case outbox.KindUpsertInspection:
		insp, err := w.st.Inspections.GetByID(ctx, item.EntityID)
		if err != nil {
			return err
		}
		return w.docs.UpsertInspection(ctx, insp)

	case outbox.KindUpsertPhoto:
		photo, err := w.st.Photos.GetByID(ctx, item.EntityID)
		if err != nil {
			return err
		}
		return w.docs.UpsertPhoto(ctx, photo)

	case outbox.KindUploadAudio:
		return w.uploadAudio(ctx, item.EntityID)

	case outbox.KindUploadPhoto:
		return w.uploadPhoto(ctx, item.EntityID)

	default:
		return fmt.Errorf("unknown outbox kind %q: %w", item.Kind, common.ErrNotFound)
	}
}

func (w *Worker) uploadAudio(ctx context.Context, inspectionID string) error {
	insp, err := w.st.Inspections.GetByID(ctx, inspectionID)
	if err != nil {
		return err
	}
	if insp.AudioURI == "" {
		return fmt.Errorf("inspection %s has no local audio: %w", inspectionID, common.ErrFileNotFound)
	}

	key := fmt.Sprintf("inspections/%s/audio/%s", insp.ID, filepath.Base(insp.AudioURI))
	url, err := w.blobs.Upload(ctx, insp.AudioURI, key)
	if err != nil {
		return err
	}

	now := w.clk.Now().UTC()
	if err := w.st.Inspections.UpdateRemoteAudioURL(ctx, insp.ID, url, now); err != nil {
		return err
	}
	return w.docs.SetRemoteAudioURL(ctx, insp.ID, url)
}

func (w *Worker) uploadPhoto(ctx context.Context, photoID string) error {
	photo, err := w.st.Photos.GetByID(ctx, photoID)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("inspections/%s/photos/%s%s", photo.InspectionID, photo.ID, filepath.Ext(photo.PhotoURI))
	url, err := w.blobs.Upload(ctx, photo.PhotoURI, key)
	if err != nil {
		return err
	}

	if err := w.st.Photos.UpdateRemoteURL(ctx, photo.ID, url); err != nil {
		return err
	}
	return w.docs.SetPhotoRemoteURL(ctx, photo.ID, url)
}

// Reconcile re-enqueues uploads for evidence that finished locally but was
// never linked remotely, closing the gap left when the app dies between a
// local stop and the remote link update. Duplicate enqueues are harmless:
// every remote write is an idempotent upsert.
func (w *Worker) Reconcile(ctx context.Context) (int, error) {
	now := w.clk.Now().UTC()
	count := 0

	insps, err := w.st.Inspections.ListUnsyncedAudio(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list unsynced audio: %w", err)
	}
	for _, insp := range insps {
		if err := w.st.Outbox.Enqueue(ctx, outbox.KindUploadAudio, insp.ID, now); err != nil {
			return count, err
		}
		count++
	}

	photos, err := w.st.Photos.ListUnsynced(ctx)
	if err != nil {
		return count, fmt.Errorf("failed to list unsynced photos: %w", err)
	}
	for _, photo := range photos {
		if err := w.st.Outbox.Enqueue(ctx, outbox.KindUploadPhoto, photo.ID, now); err != nil {
			return count, err
		}
		count++
	}

	if count > 0 {
		w.log.Info(ctx, "reconcile re-enqueued uploads", "count", count)
	}
	return count, nil
}
