package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultFetchTimeout = 15 * time.Second
	maxPayloadBytes     = 64 << 20
	userAgent           = "juriscope/1.0"
)

type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher wires an HTTP client; a nil client gets the default timeout.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %s", url, resp.Status)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("read document body: %w", err)
	}
	return b, nil
}
