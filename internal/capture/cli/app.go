// Package cli is the interactive field-capture console: it wires the
// evidence store, the recording session and the background sync worker,
// and drives them through a small REPL.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/sitescribe/internal/capture"
	"github.com/dmitrijs2005/sitescribe/internal/clock"
	"github.com/dmitrijs2005/sitescribe/internal/config"
	"github.com/dmitrijs2005/sitescribe/internal/filex"
	"github.com/dmitrijs2005/sitescribe/internal/logging"
	"github.com/dmitrijs2005/sitescribe/internal/recorder"
	"github.com/dmitrijs2005/sitescribe/internal/store"
	"github.com/dmitrijs2005/sitescribe/internal/syncq"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	st      *store.Store
	session *recorder.Session
	svc     *capture.Service
	worker  *syncq.Worker
	reader  *bufio.Reader

	// currentID is the inspection the photo/finish commands act on.
	currentID string
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	st, err := store.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	mover, err := filex.NewDirMover(c.EvidenceDir)
	if err != nil {
		return nil, fmt.Errorf("evidence dir error: %w", err)
	}

	clk := &clock.Real{}
	device := recorder.NewFFmpegDevice("")
	session := recorder.NewSession(device, clk, logger)
	svc := capture.NewService(st, session, device, mover, clk, logger)

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

	return &App{
		config:  c,
		logger:  logger,
		st:      st,
		session: session,
		svc:     svc,
		worker:  worker,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (a *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	a.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.worker.Run(ctx)
	}()

	a.Root(ctx)

	// a recording left running is finalized, not lost
	a.session.Reset(ctx)

	cancelFunc()
	wg.Wait()

	if err := a.st.Close(); err != nil {
		a.logger.Error(ctx, "failed to close database", "error", err)
	}
}
