package upload

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
)

// ErrRejected is returned when the server refuses a document as invalid.
// Such uploads are not retried.
var ErrRejected = errors.New("rejected by server")

// Result mirrors the server's import response without importing the
// server-side packages.
type Result struct {
	BlockID         string `json:"block_id"`
	Title           string `json:"title"`
	Format          string `json:"format"`
	SessionsCreated int    `json:"sessions_created"`
}

// Client sends block documents to the BlockBoard server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the BlockBoard server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: time.Second,
	}
}

// Health checks that the server is reachable and its database is up.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("checking server health: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server unhealthy (status %d): %s", resp.StatusCode, body)
	}
	return nil
}

// UploadBlock POSTs one block document to the import endpoint.
// Retries up to 3 times with exponential backoff on transport and server
// errors; a 4xx answer fails at once with ErrRejected.
func (c *Client) UploadBlock(ctx context.Context, name string, data []byte) (*Result, error) {
	contentType := "application/json"
	if strings.HasSuffix(strings.ToLower(name), ".txt") {
		contentType = "text/plain; charset=utf-8"
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff << uint(attempt-1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := c.post(ctx, contentType, data)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, ErrRejected) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}

func (c *Client) post(ctx context.Context, contentType string, data []byte) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/v1/blocks", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK:
		var result Result
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("decoding import result: %w", err)
		}
		return &result, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, fmt.Errorf("%w (status %d): %s", ErrRejected, resp.StatusCode, bytes.TrimSpace(body))
	default:
		return nil, fmt.Errorf("import failed (status %d): %s", resp.StatusCode, bytes.TrimSpace(body))
	}
}
