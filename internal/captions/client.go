package captions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/sitescribe/internal/common"
)

// generatedConfidence is attributed to captions the language service
// returns successfully; the service itself reports no score.
const generatedConfidence = 0.9

// LLMClient implements Generator against an OpenAI-compatible
// chat-completions endpoint.
type LLMClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

func NewLLMClient(baseURL, apiKey, model string, httpClient *http.Client) *LLMClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &LLMClient{httpClient: httpClient, baseURL: baseURL, apiKey: apiKey, model: model}
}

func (c *LLMClient) Generate(ctx context.Context, req Request) (string, float64, error) {
	endpoint := strings.TrimRight(c.baseURL, "/") + "/v1/chat/completions"
	payload := map[string]any{
		"model":       c.model,
		"temperature": 0.2,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": buildUserPrompt(req)},
		},
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", 0, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return "", 0, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", 0, &common.TransportError{Op: "caption request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", 0, &common.AuthError{Op: "caption request", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", 0, &common.TransportError{
			Op:  "caption request",
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var wrapper struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return "", 0, fmt.Errorf("decode caption response: %w", err)
	}
	if len(wrapper.Choices) == 0 {
		return "", 0, errors.New("empty caption response")
	}

	// a blank caption is a malformed answer, never silently accepted
	caption := strings.TrimSpace(wrapper.Choices[0].Message.Content)
	if caption == "" {
		return "", 0, errors.New("caption service returned no text")
	}
	return caption, generatedConfidence, nil
}
