package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL = "https://api.notion.com"
	apiVersion     = "2025-09-03"

	defaultTimeout     = 30 * time.Second
	maxRetries         = 3
	initialRetryDelay  = 1 * time.Second
	maxRetryDelay      = 30 * time.Second
	retryBackoffFactor = 2
)

// Client interfaces with the Notion REST API
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL, used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient creates a new Notion API client authenticated with the given
// integration token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: defaultBaseURL,
		token:   token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search queries the search endpoint, returning one page of results. The
// caller follows NextCursor to drain the listing.
func (c *Client) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	var resp SearchResponse
	if err := c.do(ctx, http.MethodPost, "/v1/search", req, &resp); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return &resp, nil
}

// SearchPages queries the search endpoint filtered to page objects.
func (c *Client) SearchPages(ctx context.Context, query, cursor string) (*SearchResponse, error) {
	return c.Search(ctx, &SearchRequest{
		Query:       query,
		Filter:      &SearchFilter{Property: "object", Value: "page"},
		StartCursor: cursor,
		PageSize:    100,
	})
}

// GetPage retrieves a page by identifier.
func (c *Client) GetPage(ctx context.Context, pageID string) (*Page, error) {
	id, err := NormalizeID(pageID)
	if err != nil {
		return nil, err
	}
	var page Page
	if err := c.do(ctx, http.MethodGet, "/v1/pages/"+url.PathEscape(id), nil, &page); err != nil {
		return nil, fmt.Errorf("retrieve page: %w", err)
	}
	return &page, nil
}

// CreatePage creates a page in a database.
func (c *Client) CreatePage(ctx context.Context, req *CreatePageRequest) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodPost, "/v1/pages", req, &page); err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	return &page, nil
}

// UpdatePage patches page properties, archived state or cover.
func (c *Client) UpdatePage(ctx context.Context, pageID string, req *UpdatePageRequest) (*Page, error) {
	id, err := NormalizeID(pageID)
	if err != nil {
		return nil, err
	}
	var page Page
	if err := c.do(ctx, http.MethodPatch, "/v1/pages/"+url.PathEscape(id), req, &page); err != nil {
		return nil, fmt.Errorf("update page: %w", err)
	}
	return &page, nil
}

// GetDatabase retrieves a database, including its data sources.
func (c *Client) GetDatabase(ctx context.Context, databaseID string) (*Database, error) {
	id, err := NormalizeID(databaseID)
	if err != nil {
		return nil, err
	}
	var db Database
	if err := c.do(ctx, http.MethodGet, "/v1/databases/"+url.PathEscape(id), nil, &db); err != nil {
		return nil, fmt.Errorf("retrieve database: %w", err)
	}
	return &db, nil
}

// ListBlockChildren lists one page of a block's children. The caller
// follows NextCursor to drain the listing.
func (c *Client) ListBlockChildren(ctx context.Context, blockID, cursor string) (*BlockChildrenResponse, error) {
	id, err := NormalizeID(blockID)
	if err != nil {
		return nil, err
	}
	path := "/v1/blocks/" + url.PathEscape(id) + "/children"
	if cursor != "" {
		path += "?start_cursor=" + url.QueryEscape(cursor)
	}
	var resp BlockChildrenResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("list block children: %w", err)
	}
	return &resp, nil
}

// AppendBlockChildren appends content blocks to a page. The caller is
// responsible for keeping batches within MaxBlocksPerRequest.
func (c *Client) AppendBlockChildren(ctx context.Context, blockID string, children []Block) error {
	id, err := NormalizeID(blockID)
	if err != nil {
		return err
	}
	req := &AppendChildrenRequest{Children: children}
	if err := c.do(ctx, http.MethodPatch, "/v1/blocks/"+url.PathEscape(id)+"/children", req, nil); err != nil {
		return fmt.Errorf("append block children: %w", err)
	}
	return nil
}

// do issues one API request with retries on rate limits and server errors.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := calculateRetryDelay(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		lastErr = c.doOnce(ctx, method, path, body, out)
		if lastErr == nil {
			return nil
		}

		// Only retry on rate limits or server errors
		if !isRetryableError(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doOnce(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	if resp.StatusCode >= 500 {
		return &ServerError{StatusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)

	var apiErr APIError
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(raw))
}

func calculateRetryDelay(attempt int) time.Duration {
	delay := initialRetryDelay
	for i := 0; i < attempt; i++ {
		delay *= time.Duration(retryBackoffFactor)
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

func isRetryableError(err error) bool {
	if err == ErrRateLimited {
		return true
	}
	if _, ok := err.(*ServerError); ok {
		return true
	}
	return false
}
