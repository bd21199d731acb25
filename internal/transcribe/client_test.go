package transcribe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/sitescribe/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rec.m4a")
	require.NoError(t, os.WriteFile(path, []byte("fake audio"), 0o644))
	return path
}

func TestTranscribe_NormalizesSecondsToMilliseconds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1 << 20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "verbose_json", r.FormValue("response_format"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"text": "roof damage near the chimney",
			"segments": [
				{"start": 0.0, "end": 2.5, "text": " roof damage ", "confidence": 0.95},
				{"start": 2.5, "end": 6.0, "text": "near the chimney"}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "whisper-1", srv.Client())
	tr, err := c.Transcribe(context.Background(), writeTestAudio(t))
	require.NoError(t, err)

	assert.Equal(t, "roof damage near the chimney", tr.FullText)
	require.Len(t, tr.Segments, 2)

	assert.EqualValues(t, 0, tr.Segments[0].StartMs)
	assert.EqualValues(t, 2500, tr.Segments[0].EndMs)
	assert.Equal(t, "roof damage", tr.Segments[0].Text)
	assert.Equal(t, 0.95, tr.Segments[0].Confidence)

	assert.EqualValues(t, 2500, tr.Segments[1].StartMs)
	assert.EqualValues(t, 6000, tr.Segments[1].EndMs)
	// missing confidence falls back to the conservative default
	assert.Equal(t, 0.8, tr.Segments[1].Confidence)
}

func TestTranscribe_FetchesRemoteAudio(t *testing.T) {
	var gotAudio bool
	mux := http.NewServeMux()
	mux.HandleFunc("/audio/rec.m4a", func(w http.ResponseWriter, r *http.Request) {
		gotAudio = true
		_, _ = w.Write([]byte("fake audio"))
	})
	mux.HandleFunc("/v1/audio/transcriptions", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text": "ok", "segments": []}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL+"/v1/audio/transcriptions", "k", "whisper-1", srv.Client())
	tr, err := c.Transcribe(context.Background(), srv.URL+"/audio/rec.m4a")
	require.NoError(t, err)
	assert.True(t, gotAudio)
	assert.Equal(t, "ok", tr.FullText)
	assert.Equal(t, 0.8, tr.Confidence)
}

func TestTranscribe_ServiceErrorIsTranscriptionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "whisper-1", srv.Client())
	_, err := c.Transcribe(context.Background(), writeTestAudio(t))

	var terr *common.TranscriptionError
	require.ErrorAs(t, err, &terr)
	assert.Contains(t, terr.Error(), "429")
}

func TestTranscribe_MalformedBodyIsTranscriptionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "whisper-1", srv.Client())
	_, err := c.Transcribe(context.Background(), writeTestAudio(t))

	var terr *common.TranscriptionError
	require.ErrorAs(t, err, &terr)
}

func TestTranscribe_MissingLocalFileIsTranscriptionError(t *testing.T) {
	c := NewClient("http://unused.invalid", "k", "whisper-1", &http.Client{})
	_, err := c.Transcribe(context.Background(), "/nope/missing.m4a")

	var terr *common.TranscriptionError
	require.ErrorAs(t, err, &terr)
}
