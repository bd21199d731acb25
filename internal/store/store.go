// Package store opens the local evidence database and bundles its
// per-entity repositories. The database is the single source of truth
// on-device: every write is durable before the corresponding call
// returns, and the sync queue only ever mirrors what is already here.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/sitescribe/internal/store/inspections"
	"github.com/dmitrijs2005/sitescribe/internal/store/migrations"
	"github.com/dmitrijs2005/sitescribe/internal/store/outbox"
	"github.com/dmitrijs2005/sitescribe/internal/store/photos"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Store bundles the local repositories plus the underlying handle, which
// callers need for transactions (dbx.WithTx) and shutdown.
type Store struct {
	DB          *sql.DB
	Inspections inspections.Repository
	Photos      photos.Repository
	Outbox      outbox.Repository
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if necessary) the evidence database at dsn, applies
// migrations and returns the repository bundle. Foreign keys are enabled so
// deleting an inspection cascades to its photos. The pragma travels in the
// DSN because SQLite applies it per connection; a one-off PRAGMA statement
// would cover only whichever pooled connection happened to run it.
func Open(ctx context.Context, dsn string) (*Store, error) {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite", dsn+sep+"_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &Store{
		DB:          db,
		Inspections: inspections.NewSQLiteRepository(db),
		Photos:      photos.NewSQLiteRepository(db),
		Outbox:      outbox.NewSQLiteRepository(db),
	}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.DB.Close()
}
