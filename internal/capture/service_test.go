package capture

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dmitrijs2005/sitescribe/internal/clock"
	"github.com/dmitrijs2005/sitescribe/internal/common"
	"github.com/dmitrijs2005/sitescribe/internal/logging"
	"github.com/dmitrijs2005/sitescribe/internal/recorder"
	"github.com/dmitrijs2005/sitescribe/internal/store"
	"github.com/dmitrijs2005/sitescribe/internal/store/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	uri string
}

func (h *fakeHandle) Stop(ctx context.Context) (string, error) { return h.uri, nil }

type fakeDevice struct {
	photoURI string
	onPhoto  func()
}

func (d *fakeDevice) RequestPermission(ctx context.Context) (bool, error) { return true, nil }
func (d *fakeDevice) StartRecording(ctx context.Context) (recorder.RecordingHandle, error) {
	return &fakeHandle{uri: "/tmp/rec.m4a"}, nil
}
func (d *fakeDevice) CapturePhoto(ctx context.Context) (string, error) {
	if d.onPhoto != nil {
		d.onPhoto()
	}
	return d.photoURI, nil
}

type fakeMover struct {
	prefix string
}

func (m *fakeMover) Move(src string) (string, error) { return m.prefix + src, nil }

func newTestService(t *testing.T) (*Service, *store.Store, *clock.Mock) {
	t.Helper()
	st, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	clk := clock.NewMock(time.Unix(5000, 0))
	dev := &fakeDevice{photoURI: "/tmp/photo.jpg"}
	session := recorder.NewSession(dev, clk, log)
	svc := NewService(st, session, dev, &fakeMover{prefix: "/data"}, clk, log)
	return svc, st, clk
}

func TestCreateInspection_PersistsDraftAndEnqueuesUpsert(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	insp, err := svc.CreateInspection(ctx, "ACME", "12 Main St", "CLM-1", time.Now().UTC())
	require.NoError(t, err)
	require.NotEmpty(t, insp.ID)

	got, err := st.Inspections.GetByID(ctx, insp.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACME", got.Client)
	assert.Equal(t, "DRAFT", string(got.Status))

	pending, err := st.Outbox.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, outbox.KindUpsertInspection, pending[0].Kind)
	assert.Equal(t, insp.ID, pending[0].EntityID)
}

func TestCapturePhoto_RequiresActiveRecording(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CapturePhoto(context.Background(), "any")
	require.ErrorIs(t, err, common.ErrNoActiveRecording)
}

func TestCapturePhoto_StampsCurrentRecordingDuration(t *testing.T) {
	svc, st, clk := newTestService(t)
	ctx := context.Background()

	insp, err := svc.CreateInspection(ctx, "ACME", "12 Main St", "CLM-1", time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, svc.StartRecording(ctx))

	clk.Advance(7300 * time.Millisecond)
	p1, err := svc.CapturePhoto(ctx, insp.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 7300, p1.AudioTimestampMs)
	assert.Equal(t, "/data/tmp/photo.jpg", p1.PhotoURI)

	clk.Advance(4 * time.Second)
	p2, err := svc.CapturePhoto(ctx, insp.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 11300, p2.AudioTimestampMs)

	list, err := st.Photos.ListByInspection(ctx, insp.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, p1.ID, list[0].ID)
	assert.Equal(t, p2.ID, list[1].ID)

	// each photo enqueued a document upsert and a blob upload
	pending, err := st.Outbox.ListPending(ctx, 10)
	require.NoError(t, err)
	var photoKinds []outbox.Kind
	for _, item := range pending {
		if item.Kind == outbox.KindUpsertPhoto || item.Kind == outbox.KindUploadPhoto {
			photoKinds = append(photoKinds, item.Kind)
		}
	}
	assert.Len(t, photoKinds, 4)
}

func TestCapturePhoto_RecordingStoppedMidCapture(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	clk := clock.NewMock(time.Unix(5000, 0))
	dev := &fakeDevice{photoURI: "/tmp/photo.jpg"}
	session := recorder.NewSession(dev, clk, log)
	svc := NewService(st, session, dev, &fakeMover{prefix: "/data"}, clk, log)

	insp, err := svc.CreateInspection(ctx, "ACME", "12 Main St", "CLM-1", time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, svc.StartRecording(ctx))
	clk.Advance(2 * time.Second)

	// the recording ends while the shutter is open; the photo must be
	// rejected, never stamped with a zero timestamp
	dev.onPhoto = func() { _, _ = session.Stop(ctx) }

	_, err = svc.CapturePhoto(ctx, insp.ID)
	require.ErrorIs(t, err, common.ErrNoActiveRecording)

	list, err := st.Photos.ListByInspection(ctx, insp.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFinishRecording_LinksAudioAndEnqueuesUpload(t *testing.T) {
	svc, st, clk := newTestService(t)
	ctx := context.Background()

	insp, err := svc.CreateInspection(ctx, "ACME", "12 Main St", "CLM-1", time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, svc.StartRecording(ctx))
	clk.Advance(time.Minute)

	audioURI, err := svc.FinishRecording(ctx, insp.ID)
	require.NoError(t, err)
	assert.Equal(t, "/data/tmp/rec.m4a", audioURI)

	got, err := st.Inspections.GetByID(ctx, insp.ID)
	require.NoError(t, err)
	assert.Equal(t, audioURI, got.AudioURI)

	pending, err := st.Outbox.ListPending(ctx, 10)
	require.NoError(t, err)
	var found bool
	for _, item := range pending {
		if item.Kind == outbox.KindUploadAudio && item.EntityID == insp.ID {
			found = true
		}
	}
	assert.True(t, found, "expected an audio upload in the outbox")
}

func TestFinishRecording_NoActiveRecording(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.FinishRecording(context.Background(), "any")
	require.ErrorIs(t, err, common.ErrNoActiveRecording)
}
