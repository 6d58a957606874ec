package covers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// GoogleBooksClient looks up book cover images via the Google Books
// volumes API.
type GoogleBooksClient struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// NewGoogleBooksClient creates a new Google Books API client with rate limiting.
func NewGoogleBooksClient() *GoogleBooksClient {
	return &GoogleBooksClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     "https://www.googleapis.com",
		rateLimiter: newRateLimiter(time.Second),
	}
}

// FindCoverURL searches for a volume by title (and author, when present)
// and returns the thumbnail URL of the first match that has one, upgraded
// to https. An empty string with a nil error means no cover was found;
// that is a normal outcome, not a failure.
func (c *GoogleBooksClient) FindCoverURL(ctx context.Context, title, author string) (string, error) {
	if title == "" {
		return "", nil
	}

	c.rateLimiter.wait()

	q := "intitle:" + title
	if author != "" {
		q += " inauthor:" + author
	}

	params := url.Values{}
	params.Set("q", q)
	searchURL := fmt.Sprintf("%s/books/v1/volumes?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "clipsync/1.0 (https://github.com/mrlokans/clipsync)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("search volumes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	for _, item := range result.Items {
		thumb := item.VolumeInfo.ImageLinks.Thumbnail
		if thumb != "" {
			return strings.Replace(thumb, "http://", "https://", 1), nil
		}
	}

	return "", nil
}

// Google Books API response types (internal)

type volumesResponse struct {
	Items []volumeItem `json:"items"`
}

type volumeItem struct {
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title      string     `json:"title"`
	Authors    []string   `json:"authors"`
	ImageLinks imageLinks `json:"imageLinks"`
}

type imageLinks struct {
	Thumbnail      string `json:"thumbnail"`
	SmallThumbnail string `json:"smallThumbnail"`
}
