package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/repwise-data/repwise/internal/httputil"
)

// Fetcher retrieves an asset from its origin when the cache misses.
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// HTTPFetcher downloads assets from a base URL by name.
type HTTPFetcher struct {
	base   string
	client httputil.HTTPClient
}

// NewHTTPFetcher creates a fetcher for baseURL. A nil client gets a standard
// client with a 30s timeout.
func NewHTTPFetcher(baseURL string, client httputil.HTTPClient) *HTTPFetcher {
	if client == nil {
		client = httputil.NewStandardClient(&http.Client{Timeout: 30 * time.Second})
	}
	return &HTTPFetcher{base: baseURL, client: client}
}

// Fetch downloads the named asset.
func (f *HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	u, err := url.JoinPath(f.base, name)
	if err != nil {
		return nil, fmt.Errorf("build asset url for %s: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build asset request for %s: %w", name, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch asset %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch asset %s: unexpected status %s", name, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read asset %s body: %w", name, err)
	}
	return data, nil
}
