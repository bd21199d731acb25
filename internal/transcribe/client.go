package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/sitescribe/internal/common"
	"github.com/dmitrijs2005/sitescribe/internal/models"
)

// defaultConfidence is assumed when the service omits a per-segment
// confidence, rather than leaving it undefined downstream.
const defaultConfidence = 0.8

// Client implements Transcriber against an OpenAI-compatible
// audio/transcriptions endpoint. The service reports segment boundaries
// in seconds; this boundary normalizes them to milliseconds.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
}

func NewClient(endpoint, apiKey, model string, httpClient *http.Client) *Client {
	if httpClient == nil {
		// long recordings take a while to process
		httpClient = &http.Client{Timeout: 10 * time.Minute}
	}
	return &Client{httpClient: httpClient, endpoint: endpoint, apiKey: apiKey, model: model}
}

type verboseResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		Start      float64  `json:"start"`
		End        float64  `json:"end"`
		Text       string   `json:"text"`
		Confidence *float64 `json:"confidence"`
	} `json:"segments"`
}

// Transcribe fetches the audio at audioLocation, submits it and returns
// the millisecond-aligned transcript. Any transport or decode failure is
// a whole-inspection failure and comes back as *common.TranscriptionError.
func (c *Client) Transcribe(ctx context.Context, audioLocation string) (*models.Transcript, error) {
	audio, name, err := fetchAudio(ctx, c.httpClient, audioLocation)
	if err != nil {
		return nil, &common.TranscriptionError{Cause: err}
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("model", c.model); err != nil {
		return nil, &common.TranscriptionError{Cause: err}
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return nil, &common.TranscriptionError{Cause: err}
	}
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, &common.TranscriptionError{Cause: err}
	}
	if _, err := fw.Write(audio); err != nil {
		return nil, &common.TranscriptionError{Cause: err}
	}
	if err := mw.Close(); err != nil {
		return nil, &common.TranscriptionError{Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return nil, &common.TranscriptionError{Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &common.TranscriptionError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, &common.TranscriptionError{
			Cause: fmt.Errorf("speech service status %d: %s", resp.StatusCode, string(b)),
		}
	}

	var vr verboseResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, &common.TranscriptionError{Cause: fmt.Errorf("decode response: %w", err)}
	}

	return toTranscript(vr), nil
}

func toTranscript(vr verboseResponse) *models.Transcript {
	t := &models.Transcript{FullText: strings.TrimSpace(vr.Text)}

	var confSum float64
	for _, s := range vr.Segments {
		conf := defaultConfidence
		if s.Confidence != nil {
			conf = *s.Confidence
		}
		confSum += conf
		t.Segments = append(t.Segments, models.TranscriptSegment{
			StartMs:    int64(s.Start * 1000),
			EndMs:      int64(s.End * 1000),
			Text:       strings.TrimSpace(s.Text),
			Confidence: conf,
		})
	}

	if len(t.Segments) > 0 {
		t.Confidence = confSum / float64(len(t.Segments))
	} else {
		t.Confidence = defaultConfidence
	}
	return t
}

// fetchAudio loads the recording either over HTTP (the usual case: the
// sync queue has already uploaded it) or from the local filesystem.
func fetchAudio(ctx context.Context, hc *http.Client, location string) ([]byte, string, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, "", err
		}
		resp, err := hc.Do(req)
		if err != nil {
			return nil, "", fmt.Errorf("fetch audio: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			return nil, "", fmt.Errorf("fetch audio: status %d", resp.StatusCode)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, "", err
		}
		return data, filepath.Base(location), nil
	}

	data, err := os.ReadFile(location)
	if err != nil {
		return nil, "", err
	}
	return data, filepath.Base(location), nil
}
