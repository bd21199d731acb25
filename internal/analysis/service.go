// Package analysis orchestrates post-capture processing of an
// inspection: transcribe the recording, derive per-photo audio context,
// generate captions in rate-limited batches and persist the results.
// The orchestrator owns the DRAFT -> PROCESSING -> READY/ERROR status
// transitions.
package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sitescribe/internal/captions"
	"github.com/dmitrijs2005/sitescribe/internal/clock"
	"github.com/dmitrijs2005/sitescribe/internal/common"
	"github.com/dmitrijs2005/sitescribe/internal/logging"
	"github.com/dmitrijs2005/sitescribe/internal/models"
	"github.com/dmitrijs2005/sitescribe/internal/store"
	"github.com/dmitrijs2005/sitescribe/internal/transcribe"
)

// Outcome summarizes an analysis run.
type Outcome string

const (
	// OutcomeCompleted means the transcript and every caption succeeded.
	OutcomeCompleted Outcome = "COMPLETED"
	// OutcomePartial means the transcript succeeded but some captions
	// carry the failure sentinel. The inspection is still READY.
	OutcomePartial Outcome = "PARTIAL"
	// OutcomeFailed means the run aborted before captions (missing
	// audio, transcription failure). The inspection is marked ERROR.
	OutcomeFailed Outcome = "FAILED"
)

// Result reports what an analysis run achieved.
type Result struct {
	Outcome        Outcome
	CaptionsTotal  int
	CaptionsFailed int
}

// Service runs the analysis workflow for one inspection at a time.
type Service struct {
	st          *store.Store
	transcriber transcribe.Transcriber
	pipeline    *captions.Pipeline
	clk         clock.Clock
	log         logging.Logger
	windowMs    int64
}

// Option configures a Service.
type Option func(*Service)

// WithContextWindowMs overrides the symmetric audio-context window used
// when captioning a whole inspection.
func WithContextWindowMs(ms int64) Option {
	return func(s *Service) { s.windowMs = ms }
}

func NewService(st *store.Store, tr transcribe.Transcriber, p *captions.Pipeline,
	clk clock.Clock, log logging.Logger, opts ...Option) *Service {
	s := &Service{
		st:          st,
		transcriber: tr,
		pipeline:    p,
		clk:         clk,
		log:         log,
		windowMs:    captions.DefaultBatchWindowMs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run analyzes one inspection end to end. Caption failures are isolated
// per photo and never abort the run; only missing audio or a failed
// transcription do. The ERROR status write is best-effort.
//
// The transcription source is the synced remote audio URL when present,
// falling back to the local recording so an inspection can be analyzed
// before its upload completes. ErrNoAudio means neither exists.
func (s *Service) Run(ctx context.Context, inspectionID string) (Result, error) {
	insp, err := s.st.Inspections.GetByID(ctx, inspectionID)
	if err != nil {
		return Result{Outcome: OutcomeFailed}, fmt.Errorf("failed to load inspection: %w", err)
	}

	audioLocation := s.audioLocation(insp)
	if audioLocation == "" {
		s.markError(ctx, insp.ID)
		return Result{Outcome: OutcomeFailed}, common.ErrNoAudio
	}

	if err := s.st.Inspections.UpdateStatus(ctx, insp.ID, models.StatusProcessing, s.clk.Now().UTC()); err != nil {
		return Result{Outcome: OutcomeFailed}, fmt.Errorf("failed to mark inspection processing: %w", err)
	}

	transcript, err := s.transcriber.Transcribe(ctx, audioLocation)
	if err != nil {
		s.log.Error(ctx, "transcription failed", "inspection_id", insp.ID, "error", err)
		s.markError(ctx, insp.ID)
		return Result{Outcome: OutcomeFailed}, err
	}

	photoList, err := s.st.Photos.ListByInspection(ctx, insp.ID)
	if err != nil {
		s.markError(ctx, insp.ID)
		return Result{Outcome: OutcomeFailed}, fmt.Errorf("failed to list photos: %w", err)
	}

	reqs := make([]captions.Request, len(photoList))
	for i, p := range photoList {
		reqs[i] = captions.Request{
			PhotoID:          p.ID,
			Client:           insp.Client,
			Address:          insp.Address,
			ClaimNumber:      insp.ClaimNumber,
			AudioTimestampMs: p.AudioTimestampMs,
			AudioContext:     captions.ContextFor(transcript.Segments, p.AudioTimestampMs, s.windowMs),
		}
	}

	results := s.pipeline.Run(ctx, reqs)

	res := Result{CaptionsTotal: len(results)}
	for _, r := range results {
		failed := r.Caption == captions.FailedCaptionSentinel
		if err := s.st.Photos.UpdateCaption(ctx, r.PhotoID, r.Caption); err != nil {
			// a lost caption write degrades one photo, not the run
			s.log.Error(ctx, "failed to persist caption", "photo_id", r.PhotoID, "error", err)
			failed = true
		}
		// one photo counts once, even when it failed twice over
		if failed {
			res.CaptionsFailed++
		}
	}

	if err := s.st.Inspections.UpdateStatus(ctx, insp.ID, models.StatusReady, s.clk.Now().UTC()); err != nil {
		return Result{Outcome: OutcomeFailed, CaptionsTotal: res.CaptionsTotal, CaptionsFailed: res.CaptionsFailed},
			fmt.Errorf("failed to mark inspection ready: %w", err)
	}

	res.Outcome = OutcomeCompleted
	if res.CaptionsFailed > 0 {
		res.Outcome = OutcomePartial
	}
	s.log.Info(ctx, "analysis finished", "inspection_id", insp.ID,
		"outcome", res.Outcome, "captions", res.CaptionsTotal, "failed", res.CaptionsFailed)
	return res, nil
}

// RetryPhotoCaption regenerates the caption for a single photo. The
// inspection audio is transcribed again and the photo gets a wider
// context window than the batch run, then exactly one caption request
// is issued and persisted.
func (s *Service) RetryPhotoCaption(ctx context.Context, photoID string) error {
	photo, err := s.st.Photos.GetByID(ctx, photoID)
	if err != nil {
		return fmt.Errorf("failed to load photo: %w", err)
	}
	insp, err := s.st.Inspections.GetByID(ctx, photo.InspectionID)
	if err != nil {
		return fmt.Errorf("failed to load inspection: %w", err)
	}

	audioLocation := s.audioLocation(insp)
	if audioLocation == "" {
		return common.ErrNoAudio
	}

	transcript, err := s.transcriber.Transcribe(ctx, audioLocation)
	if err != nil {
		return err
	}

	reqs := []captions.Request{{
		PhotoID:          photo.ID,
		Client:           insp.Client,
		Address:          insp.Address,
		ClaimNumber:      insp.ClaimNumber,
		AudioTimestampMs: photo.AudioTimestampMs,
		AudioContext:     captions.ContextFor(transcript.Segments, photo.AudioTimestampMs, captions.DefaultLookupWindowMs),
	}}

	results := s.pipeline.Run(ctx, reqs)
	if len(results) != 1 {
		return errors.New("caption pipeline returned no result")
	}
	if results[0].Caption == captions.FailedCaptionSentinel {
		return fmt.Errorf("caption retry failed for photo %s", photoID)
	}

	if err := s.st.Photos.UpdateCaption(ctx, photo.ID, results[0].Caption); err != nil {
		return fmt.Errorf("failed to persist caption: %w", err)
	}
	s.log.Info(ctx, "photo caption regenerated", "photo_id", photo.ID)
	return nil
}

// audioLocation prefers the synced remote copy and falls back to the
// local recording so analysis can run before the upload completes.
func (s *Service) audioLocation(insp *models.Inspection) string {
	if insp.RemoteAudioURL != "" {
		return insp.RemoteAudioURL
	}
	return insp.AudioURI
}

func (s *Service) markError(ctx context.Context, id string) {
	if err := s.st.Inspections.UpdateStatus(ctx, id, models.StatusError, s.clk.Now().UTC()); err != nil {
		s.log.Error(ctx, "failed to mark inspection error", "inspection_id", id, "error", err)
	}
}
