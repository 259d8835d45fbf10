package summarize

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

	"studymate-backend/internal/shared/telemetry"
)

const summarizePath = "/summarize"

// maxErrorBody bounds how much of a failed response is kept for logs.
const maxErrorBody = 2048

// ErrInvalidResponse is returned when a 2xx response does not carry a JSON body.
var ErrInvalidResponse = errors.New("summarizer response is not JSON")

// StatusError reports a non-2xx reply from the summarization service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API call failed with status %d", e.StatusCode)
}

// Client calls the remote summarization service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a client for baseURL. A zero timeout leaves the request bounded only
// by ctx.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type summarizeRequest struct {
	FilePath string `json:"file_path"`
}

// Summarize posts the download URL of an uploaded file. The response body is returned as-is.
func (c *Client) Summarize(ctx context.Context, fileURL string) (json.RawMessage, error) {
	payload, err := json.Marshal(summarizeRequest{FilePath: fileURL})
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + summarizePath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, fmt.Errorf("summarize request timeout: %w", err)
		}
		return nil, fmt.Errorf("summarize request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read summarize response: %w", err)
	}

	telemetry.Info("summarize.response", map[string]any{
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet}
	}
	if !json.Valid(body) {
		return nil, ErrInvalidResponse
	}
	return json.RawMessage(body), nil
}
