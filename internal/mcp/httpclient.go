package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claude/blockboard/internal/models"
	"github.com/claude/blockboard/internal/sessions"
	"github.com/claude/blockboard/internal/storage"
)

// HTTPClient implements DataSource by calling the BlockBoard REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, body any) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("httpclient: encode body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("httpclient: %s: %w", path, storage.ErrNotFound)
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("httpclient: %s: %w", path, remoteIndexError(data))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, data)
	}
	return data, nil
}

// remoteIndexError restores the sentinel behind a 422 response.
func remoteIndexError(body []byte) error {
	var resp struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &resp)
	if strings.HasPrefix(resp.Error, sessions.ErrWeekOutOfRange.Error()) {
		return fmt.Errorf("%w%s", sessions.ErrWeekOutOfRange, strings.TrimPrefix(resp.Error, sessions.ErrWeekOutOfRange.Error()))
	}
	if strings.HasPrefix(resp.Error, sessions.ErrDayIndexOutOfRange.Error()) {
		return fmt.Errorf("%w%s", sessions.ErrDayIndexOutOfRange, strings.TrimPrefix(resp.Error, sessions.ErrDayIndexOutOfRange.Error()))
	}
	return errors.New(resp.Error)
}

func (c *HTTPClient) ListBlocks(ctx context.Context, _ int, includeArchived bool) ([]storage.BlockSummary, error) {
	params := url.Values{}
	if includeArchived {
		params.Set("archived", "true")
	}

	body, err := c.do(ctx, http.MethodGet, "/api/v1/blocks", params, nil)
	if err != nil {
		return nil, err
	}

	var blocks []storage.BlockSummary
	if err := json.Unmarshal(body, &blocks); err != nil {
		return nil, fmt.Errorf("httpclient: decode blocks: %w", err)
	}
	return blocks, nil
}

func (c *HTTPClient) GetBlock(ctx context.Context, _ int, id uuid.UUID) (*models.Block, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/blocks/"+id.String(), nil, nil)
	if err != nil {
		return nil, err
	}

	var b models.Block
	if err := json.Unmarshal(body, &b); err != nil {
		return nil, fmt.Errorf("httpclient: decode block: %w", err)
	}
	return &b, nil
}

// ActiveBlock finds the active block in the block list and fetches it.
func (c *HTTPClient) ActiveBlock(ctx context.Context, userID int) (*models.Block, error) {
	blocks, err := c.ListBlocks(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	for _, b := range blocks {
		if b.IsActive {
			return c.GetBlock(ctx, userID, b.ID)
		}
	}
	return nil, fmt.Errorf("active block: %w", storage.ErrNotFound)
}

func (c *HTTPClient) ListSessions(ctx context.Context, _ int, blockID uuid.UUID, week int) ([]models.WorkoutSession, error) {
	params := url.Values{}
	if week > 0 {
		params.Set("week", strconv.Itoa(week))
	}

	body, err := c.do(ctx, http.MethodGet, "/api/v1/blocks/"+blockID.String()+"/sessions", params, nil)
	if err != nil {
		return nil, err
	}

	var ws []models.WorkoutSession
	if err := json.Unmarshal(body, &ws); err != nil {
		return nil, fmt.Errorf("httpclient: decode sessions: %w", err)
	}
	return ws, nil
}

// AddExercise asks the server to add the exercise. The server applies its
// own progression settings, so mat is unused.
func (c *HTTPClient) AddExercise(ctx context.Context, _ int, blockID uuid.UUID, _ sessions.Materializer,
	dayIndex int, name string, typ models.ExerciseType, fromWeek int) (*storage.AddExerciseResult, error) {
	path := fmt.Sprintf("/api/v1/blocks/%s/days/%d/exercises", blockID, dayIndex)
	req := map[string]any{"name": name, "type": typ, "from_week": fromWeek}

	body, err := c.do(ctx, http.MethodPost, path, nil, req)
	if err != nil {
		return nil, err
	}

	var result storage.AddExerciseResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("httpclient: decode add exercise: %w", err)
	}
	return &result, nil
}
