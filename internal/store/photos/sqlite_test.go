package photos

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/sitescribe/internal/common"
	"github.com/dmitrijs2005/sitescribe/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE inspections (
  id TEXT PRIMARY KEY,
  created_at TIMESTAMP NOT NULL
);
CREATE TABLE photos (
  id TEXT PRIMARY KEY,
  inspection_id TEXT NOT NULL REFERENCES inspections(id) ON DELETE CASCADE,
  photo_uri TEXT NOT NULL,
  remote_url TEXT NOT NULL DEFAULT '',
  timestamp TIMESTAMP NOT NULL,
  audio_timestamp INTEGER NOT NULL,
  caption TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP NOT NULL
);
`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO inspections (id, created_at) VALUES ('insp1', ?)`, time.Now().UTC())
	require.NoError(t, err)

	return db
}

func makePhoto(id string, audioTsMs int64) *models.Photo {
	now := time.Now().UTC()
	return &models.Photo{
		ID:               id,
		InspectionID:     "insp1",
		PhotoURI:         "/data/" + id + ".jpg",
		Timestamp:        now,
		AudioTimestampMs: audioTsMs,
		CreatedAt:        now,
	}
}

func TestAdd_UnknownInspection(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	p := makePhoto("p1", 1000)
	p.InspectionID = "missing"
	err := r.Add(context.Background(), p)
	require.ErrorIs(t, err, common.ErrUnknownInspection)
}

func TestListByInspection_OrderedByAudioTimestamp(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	// inserted out of order on purpose
	require.NoError(t, r.Add(ctx, makePhoto("p3", 9000)))
	require.NoError(t, r.Add(ctx, makePhoto("p1", 1000)))
	require.NoError(t, r.Add(ctx, makePhoto("p2", 5000)))

	got, err := r.ListByInspection(ctx, "insp1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int64{1000, 5000, 9000},
		[]int64{got[0].AudioTimestampMs, got[1].AudioTimestampMs, got[2].AudioTimestampMs})
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, "p2", got[1].ID)
	assert.Equal(t, "p3", got[2].ID)
}

func TestCascadeDelete_NoOrphanPhotos(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Add(ctx, makePhoto("p1", 1000)))
	require.NoError(t, r.Add(ctx, makePhoto("p2", 2000)))

	_, err := db.Exec(`DELETE FROM inspections WHERE id = 'insp1'`)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM photos`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestUpdateRemoteURLAndCaption(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Add(ctx, makePhoto("p1", 1000)))

	require.NoError(t, r.UpdateRemoteURL(ctx, "p1", "https://blob/p1.jpg"))
	require.NoError(t, r.UpdateCaption(ctx, "p1", "Cracked foundation at north wall"))

	got, err := r.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "https://blob/p1.jpg", got.RemoteURL)
	assert.Equal(t, "Cracked foundation at north wall", got.Caption)

	require.ErrorIs(t, r.UpdateRemoteURL(ctx, "nope", "x"), common.ErrNotFound)
	require.ErrorIs(t, r.UpdateCaption(ctx, "nope", "x"), common.ErrNotFound)
}

func TestListUnsynced(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Add(ctx, makePhoto("p1", 1000)))

	synced := makePhoto("p2", 2000)
	synced.RemoteURL = "https://blob/p2.jpg"
	require.NoError(t, r.Add(ctx, synced))

	got, err := r.ListUnsynced(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)
}
