// Package feed polls the external result feed on a fixed schedule and
// hands the most recent item to the ingestion pipeline.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/spindle/internal/domain/model"
)

// defaultFetchTimeout bounds one feed round trip. This is the only
// timeout on a fetch; a hung fetch delays that tick's ingestion only.
const defaultFetchTimeout = 10 * time.Second

// Client fetches the single most recent result from the feed.
type Client interface {
	Fetch(ctx context.Context) (model.FeedResult, error)
}

// HTTPClient implements Client against the upstream JSON endpoint.
// The endpoint answers with an array holding one recent result.
type HTTPClient struct {
	url    string
	client *http.Client
}

// ClientOption applies a configuration option to the HTTPClient.
type ClientOption func(*HTTPClient)

// WithFetchTimeout sets the transport-level timeout per fetch.
func WithFetchTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// NewHTTPClient creates a feed client for url.
func NewHTTPClient(url string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		url:    url,
		client: &http.Client{Timeout: defaultFetchTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch performs one GET and returns the most recent result. Transport
// and status failures wrap ErrFetch; shape failures wrap ErrParse.
func (c *HTTPClient) Fetch(ctx context.Context) (model.FeedResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return model.FeedResult{}, fmt.Errorf("%w: build request: %w", ErrFetch, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return model.FeedResult{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return model.FeedResult{}, fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}

	var items []model.FeedResult
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return model.FeedResult{}, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if len(items) == 0 {
		return model.FeedResult{}, fmt.Errorf("%w: empty array", ErrParse)
	}
	return items[0], nil
}
