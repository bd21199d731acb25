package analysis

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/sitescribe/internal/captions"
	"github.com/dmitrijs2005/sitescribe/internal/clock"
	"github.com/dmitrijs2005/sitescribe/internal/config"
	"github.com/dmitrijs2005/sitescribe/internal/logging"
	"github.com/dmitrijs2005/sitescribe/internal/store"
	"github.com/dmitrijs2005/sitescribe/internal/syncq"
	"github.com/dmitrijs2005/sitescribe/internal/transcribe"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// App bundles the analysis-side wiring: the evidence store, the speech
// and caption clients, the orchestrator they feed and a sync worker for
// on-demand reconciliation.
type App struct {
	config *config.Config
	logger logging.Logger
	st     *store.Store
	svc    *Service
	worker *syncq.Worker
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	st, err := store.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	clk := &clock.Real{}
	transcriber := transcribe.NewClient(c.SpeechEndpoint, c.SpeechAPIKey, c.SpeechModel, nil)
	generator := captions.NewLLMClient(c.CaptionEndpoint, c.CaptionAPIKey, c.CaptionModel, nil)
	pipeline := captions.NewPipeline(generator, clk, logger,
		captions.WithBatchSize(c.CaptionBatchSize),
		captions.WithCooldown(c.CaptionCooldown),
	)

	svc := NewService(st, transcriber, pipeline, clk, logger)

	remoteDB, err := sql.Open("pgx", c.RemoteDSN)
	if err != nil {
		return nil, fmt.Errorf("remote db init error: %w", err)
	}
	docs := syncq.NewPostgresDocumentStore(remoteDB)

	blobs, err := syncq.NewS3Uploader(ctx, syncq.S3Config{
		Region:       c.S3Region,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 init error: %w", err)
	}

	worker := syncq.NewWorker(st, docs, blobs, clk, logger,
		syncq.WithPollInterval(c.SyncPollInterval),
		syncq.WithBatchSize(c.SyncBatchSize),
	)

	return &App{config: c, logger: logger, st: st, svc: svc, worker: worker}, nil
}

// RunAnalysis analyzes one inspection and prints the outcome.
func (a *App) RunAnalysis(ctx context.Context, inspectionID string) error {
	res, err := a.svc.Run(ctx, inspectionID)
	if err != nil {
		return err
	}
	fmt.Printf("Analysis %s: %d captions, %d failed\n", res.Outcome, res.CaptionsTotal, res.CaptionsFailed)
	return nil
}

// RetryCaption regenerates the caption for one photo.
func (a *App) RetryCaption(ctx context.Context, photoID string) error {
	return a.svc.RetryPhotoCaption(ctx, photoID)
}

// Reconcile re-enqueues unsynced evidence and drains the outbox once.
func (a *App) Reconcile(ctx context.Context) error {
	n, err := a.worker.Reconcile(ctx)
	if err != nil {
		return err
	}
	if err := a.worker.ProcessOnce(ctx); err != nil {
		return err
	}
	fmt.Printf("Reconcile finished (%d items re-enqueued)\n", n)
	return nil
}

// Close releases the evidence database.
func (a *App) Close() error {
	return a.st.Close()
}
