package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/craftstat/craftstat/pkg/errors"
)

func testClient(url string) *Client {
	c := NewClient(Config{BaseURL: url, Retries: 1})
	c.backoff = time.Millisecond
	return c
}

func TestFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/3/play.example.com" {
			t.Errorf("path = %q, want /3/play.example.com", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Error("missing User-Agent header")
		}
		w.Write([]byte(`{"online":true}`))
	}))
	defer server.Close()

	body, err := testClient(server.URL).Fetch(context.Background(), "3/play.example.com")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(body) != `{"online":true}` {
		t.Errorf("Fetch() = %q", body)
	}
}

func TestFetchRetriesOn5xx(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"online":false}`))
	}))
	defer server.Close()

	body, err := testClient(server.URL).Fetch(context.Background(), "3/mc.example.org")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if got := attempts.Load(); got != 2 {
		t.Errorf("attempts = %d, want 2", got)
	}
	if string(body) != `{"online":false}` {
		t.Errorf("Fetch() = %q", body)
	}
}

func TestFetchExhaustsRetryBudget(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := testClient(server.URL).Fetch(context.Background(), "3/mc.example.org")
	if !errors.Is(err, errors.ErrCodeUpstreamUnavailable) {
		t.Errorf("Fetch() error = %v, want UPSTREAM_UNAVAILABLE", err)
	}
	// One retry means two total attempts.
	if got := attempts.Load(); got != 2 {
		t.Errorf("attempts = %d, want 2", got)
	}
}

func TestFetchNoRetryOn4xx(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := testClient(server.URL).Fetch(context.Background(), "3/..")
	if !errors.Is(err, errors.ErrCodeUpstreamUnavailable) {
		t.Errorf("Fetch() error = %v, want UPSTREAM_UNAVAILABLE", err)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1 (4xx must not retry)", got)
	}
}

func TestFetchNetworkErrorIsUpstreamUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	_, err := testClient(server.URL).Fetch(context.Background(), "3/mc.example.org")
	if !errors.Is(err, errors.ErrCodeUpstreamUnavailable) {
		t.Errorf("Fetch() error = %v, want UPSTREAM_UNAVAILABLE", err)
	}
}

func TestFetchIcon(t *testing.T) {
	png := []byte("\x89PNG fake bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/icon/play.example.com" {
			t.Errorf("path = %q, want /icon/play.example.com", r.URL.Path)
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	}))
	defer server.Close()

	body, err := testClient(server.URL).FetchIcon(context.Background(), "play.example.com")
	if err != nil {
		t.Fatalf("FetchIcon() error: %v", err)
	}
	if string(body) != string(png) {
		t.Errorf("FetchIcon() = %q, want %q", body, png)
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{})
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", c.baseURL, DefaultBaseURL)
	}
	if c.retries != DefaultRetries {
		t.Errorf("retries = %d, want %d", c.retries, DefaultRetries)
	}
	if disabled := NewClient(Config{Retries: -1}); disabled.retries != 0 {
		t.Errorf("retries = %d, want 0 when disabled", disabled.retries)
	}
	if c.http.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", c.http.Timeout, DefaultTimeout)
	}
}
