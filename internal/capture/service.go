// Package capture implements the capture-side workflow: creating
// inspections, recording audio and photographing evidence. Every
// operation lands in the local evidence store first and enqueues its
// remote mirror in the outbox; a remote outage never blocks or
// invalidates capture.
package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sitescribe/internal/clock"
	"github.com/dmitrijs2005/sitescribe/internal/common"
	"github.com/dmitrijs2005/sitescribe/internal/dbx"
	"github.com/dmitrijs2005/sitescribe/internal/logging"
	"github.com/dmitrijs2005/sitescribe/internal/models"
	"github.com/dmitrijs2005/sitescribe/internal/recorder"
	"github.com/dmitrijs2005/sitescribe/internal/store"
	"github.com/dmitrijs2005/sitescribe/internal/store/inspections"
	"github.com/dmitrijs2005/sitescribe/internal/store/outbox"
	"github.com/dmitrijs2005/sitescribe/internal/store/photos"
	"github.com/google/uuid"
)

// Service coordinates the recording session, the capture device and the
// local evidence store for one in-progress inspection at a time.
type Service struct {
	st      *store.Store
	session *recorder.Session
	device  recorder.CaptureDevice
	mover   recorder.FileMover
	clk     clock.Clock
	log     logging.Logger
}

func NewService(st *store.Store, session *recorder.Session, device recorder.CaptureDevice,
	mover recorder.FileMover, clk clock.Clock, log logging.Logger) *Service {
	return &Service{st: st, session: session, device: device, mover: mover, clk: clk, log: log}
}

// CreateInspection persists a new DRAFT inspection and enqueues its remote
// mirror. The identifier is assigned here, once, and shared by the local
// and remote representations.
func (s *Service) CreateInspection(ctx context.Context, client, address, claimNumber string, date time.Time) (*models.Inspection, error) {
	now := s.clk.Now().UTC()
	insp := &models.Inspection{
		ID:             uuid.NewString(),
		Client:         client,
		Address:        address,
		ClaimNumber:    claimNumber,
		InspectionDate: date,
		Status:         models.StatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := dbx.WithTx(ctx, s.st.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := inspections.NewSQLiteRepository(tx).Create(ctx, insp); err != nil {
			return err
		}
		return outbox.NewSQLiteRepository(tx).Enqueue(ctx, outbox.KindUpsertInspection, insp.ID, now)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create inspection: %w", err)
	}

	s.log.Info(ctx, "inspection created", "inspection_id", insp.ID, "claim", claimNumber)
	return insp, nil
}

// StartRecording begins the inspection's audio capture.
func (s *Service) StartRecording(ctx context.Context) error {
	return s.session.Start(ctx)
}

// CapturePhoto takes a photograph, stamps it with the recording-relative
// audio timestamp read at the moment of capture, and persists it durably.
// The duration read and the insert happen inside this one call, so no
// caller ever observes a photo without its correlation key.
func (s *Service) CapturePhoto(ctx context.Context, inspectionID string) (*models.Photo, error) {
	if !s.session.Recording() {
		return nil, common.ErrNoActiveRecording
	}

	tmpURI, err := s.device.CapturePhoto(ctx)
	if err != nil {
		return nil, fmt.Errorf("photo capture failed: %w", err)
	}
	// the check and the stamp are one read; a recording stopped while the
	// shutter was open rejects the photo instead of stamping it with zero
	audioTs, ok := s.session.DurationMsIfRecording()
	if !ok {
		return nil, common.ErrNoActiveRecording
	}

	photoURI, err := s.mover.Move(tmpURI)
	if err != nil {
		return nil, fmt.Errorf("failed to move photo to durable storage: %w", err)
	}

	now := s.clk.Now().UTC()
	photo := &models.Photo{
		ID:               uuid.NewString(),
		InspectionID:     inspectionID,
		PhotoURI:         photoURI,
		Timestamp:        now,
		AudioTimestampMs: audioTs,
		CreatedAt:        now,
	}

	err = dbx.WithTx(ctx, s.st.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := photos.NewSQLiteRepository(tx).Add(ctx, photo); err != nil {
			return err
		}
		ob := outbox.NewSQLiteRepository(tx)
		if err := ob.Enqueue(ctx, outbox.KindUpsertPhoto, photo.ID, now); err != nil {
			return err
		}
		return ob.Enqueue(ctx, outbox.KindUploadPhoto, photo.ID, now)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist photo: %w", err)
	}

	s.log.Info(ctx, "photo captured", "photo_id", photo.ID, "audio_ts_ms", audioTs)
	return photo, nil
}

// FinishRecording stops the session, moves the audio artifact to durable
// storage, links it to the inspection and enqueues the upload. Remote sync
// is the outbox worker's problem; this flow is purely local.
func (s *Service) FinishRecording(ctx context.Context, inspectionID string) (string, error) {
	tmpURI, err := s.session.Stop(ctx)
	if err != nil {
		return "", err
	}

	audioURI, err := s.mover.Move(tmpURI)
	if err != nil {
		return "", fmt.Errorf("failed to move audio to durable storage: %w", err)
	}

	now := s.clk.Now().UTC()
	err = dbx.WithTx(ctx, s.st.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := inspections.NewSQLiteRepository(tx).UpdateAudioURI(ctx, inspectionID, audioURI, now); err != nil {
			return err
		}
		return outbox.NewSQLiteRepository(tx).Enqueue(ctx, outbox.KindUploadAudio, inspectionID, now)
	})
	if err != nil {
		return "", fmt.Errorf("failed to link recording: %w", err)
	}

	s.log.Info(ctx, "recording linked", "inspection_id", inspectionID, "audio_uri", audioURI)
	return audioURI, nil
}

// DeleteInspection removes an inspection and, via cascade, its photos.
func (s *Service) DeleteInspection(ctx context.Context, inspectionID string) error {
	return s.st.Inspections.Delete(ctx, inspectionID)
}
