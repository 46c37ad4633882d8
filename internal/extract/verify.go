package extract

import (
	"context"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultVerifyTimeout = 3 * time.Second
	DefaultVerifyTTL     = 30 * time.Minute
	defaultVerifySize    = 512
)

// URLVerifier checks that a document URL answers a HEAD request and caches
// the answer, positive or negative, for a TTL.
type URLVerifier struct {
	client  *http.Client
	timeout time.Duration
	cache   *expirable.LRU[string, bool]
}

func NewURLVerifier(client *http.Client, timeout, ttl time.Duration, size int) *URLVerifier {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultVerifyTimeout
	}
	if ttl <= 0 {
		ttl = DefaultVerifyTTL
	}
	if size <= 0 {
		size = defaultVerifySize
	}
	return &URLVerifier{
		client:  client,
		timeout: timeout,
		cache:   expirable.NewLRU[string, bool](size, nil, ttl),
	}
}

func (v *URLVerifier) Verify(ctx context.Context, url string) bool {
	if ok, hit := v.cache.Get(url); hit {
		return ok
	}
	ok := v.head(ctx, url)
	if ctx.Err() == nil {
		v.cache.Add(url, ok)
	}
	return ok
}

func (v *URLVerifier) head(ctx context.Context, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := v.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
