// Package upstream implements the HTTP client for the Minecraft Server
// Status API (api.mcsrvstat.us).
//
// The upstream service is treated as an opaque HTTP endpoint: this package
// owns transport concerns only (timeouts, retry on transient failure,
// status-code mapping). Body shape validation belongs to the normalizer
// in pkg/mcsrvstat.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/craftstat/craftstat/pkg/buildinfo"
	"github.com/craftstat/craftstat/pkg/cache"
	"github.com/craftstat/craftstat/pkg/errors"
)

// Defaults for transport configuration. The status API rate-limits
// aggressively, so the retry budget stays small.
const (
	DefaultBaseURL = "https://api.mcsrvstat.us"
	DefaultTimeout = 5 * time.Second
	DefaultRetries = 1 // additional attempts after the first
	defaultBackoff = 500 * time.Millisecond
)

// Config controls transport behavior. Zero values fall back to the
// package defaults above.
type Config struct {
	BaseURL    string        // upstream base URL, no trailing slash
	Timeout    time.Duration // per-request timeout
	Retries    int           // extra attempts on transient failure; 0 means default, negative disables
	UserAgent  string        // User-Agent header sent upstream
	HTTPClient *http.Client  // override transport, mainly for tests
}

// Client issues GET requests against the status API.
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	http      *http.Client
	baseURL   string
	retries   int
	backoff   time.Duration
	userAgent string
}

// NewClient creates a Client from cfg, applying defaults for zero fields.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	retries := cfg.Retries
	switch {
	case retries == 0:
		retries = DefaultRetries
	case retries < 0:
		retries = 0
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "craftstat/" + buildinfo.Version
	}
	return &Client{
		http:      httpClient,
		baseURL:   strings.TrimSuffix(base, "/"),
		retries:   retries,
		backoff:   defaultBackoff,
		userAgent: userAgent,
	}
}

// BaseURL returns the configured upstream base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Fetch performs a GET against path (relative to the base URL) and returns
// the raw response body. Transient failures (network errors, 5xx) are
// retried within the configured budget; 4xx responses are never retried
// since a repeat cannot help.
//
// Failure surface:
//   - UPSTREAM_UNAVAILABLE for network errors, timeouts and non-2xx statuses
//   - ctx.Err() if the caller's context is cancelled mid-retry
func (c *Client) Fetch(ctx context.Context, path string) ([]byte, error) {
	url := c.baseURL + "/" + strings.TrimPrefix(path, "/")

	var body []byte
	err := cache.Retry(ctx, c.retries+1, c.backoff, func() error {
		var err error
		body, err = c.doRequest(ctx, url)
		return err
	})
	if err != nil {
		return nil, cache.Permanent(err)
	}
	return body, nil
}

func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidQuery, err, "build request for %s", url)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, cache.Retryable(errors.Wrap(errors.ErrCodeUpstreamUnavailable, err, "request %s", url))
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, cache.Retryable(errors.Wrap(errors.ErrCodeUpstreamUnavailable, err, "read response from %s", url))
	}
	return body, nil
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code >= 500:
		return cache.Retryable(errors.New(errors.ErrCodeUpstreamUnavailable, "upstream status %d", code))
	default:
		// 4xx: retrying an identical request cannot succeed.
		return errors.New(errors.ErrCodeUpstreamUnavailable, "upstream status %d", code)
	}
}

// FetchIcon retrieves a server's icon as PNG bytes from the icon endpoint.
// The upstream serves a default icon when the server has none.
func (c *Client) FetchIcon(ctx context.Context, address string) ([]byte, error) {
	return c.Fetch(ctx, fmt.Sprintf("icon/%s", address))
}
