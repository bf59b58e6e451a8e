package mcsrvstat

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/craftstat/craftstat/pkg/cache"
	"github.com/craftstat/craftstat/pkg/upstream"
)

// DefaultTTL is how long a lookup result stays fresh. The upstream API
// caches server statuses on its side for minutes; a few seconds here is
// enough to absorb bursts without masking changes.
const DefaultTTL = 10 * time.Second

// Options configures a Client. The zero value is usable; New applies
// defaults for unset fields.
type Options struct {
	TTL        time.Duration // cache TTL, DefaultTTL if zero
	Timeout    time.Duration // upstream request timeout
	Retries    int           // extra upstream attempts; 0 means default, negative disables
	BaseURL    string        // upstream base URL override
	UserAgent  string        // upstream User-Agent override
	Backend    cache.Cache   // cache backend, in-process memory if nil
	Logger     *log.Logger   // debug logging, discarded if nil
	HTTPClient *http.Client  // transport override, mainly for tests
}

// Option mutates Options during New.
type Option func(*Options)

// WithTTL sets the cache TTL.
func WithTTL(ttl time.Duration) Option { return func(o *Options) { o.TTL = ttl } }

// WithTimeout sets the upstream request timeout.
func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }

// WithRetries sets the number of extra upstream attempts on transient
// failure. Negative disables retrying.
func WithRetries(n int) Option { return func(o *Options) { o.Retries = n } }

// WithBaseURL points the client at a different upstream, e.g. a local
// test server or a self-hosted API instance.
func WithBaseURL(url string) Option { return func(o *Options) { o.BaseURL = url } }

// WithCache plugs in a cache backend. The caller keeps ownership and is
// responsible for closing it.
func WithCache(c cache.Cache) Option { return func(o *Options) { o.Backend = c } }

// WithLogger enables debug logging of cache and upstream activity.
func WithLogger(l *log.Logger) Option { return func(o *Options) { o.Logger = l } }

// WithUserAgent overrides the User-Agent header sent upstream.
func WithUserAgent(ua string) Option { return func(o *Options) { o.UserAgent = ua } }

// WithHTTPClient overrides the HTTP transport.
func WithHTTPClient(h *http.Client) Option { return func(o *Options) { o.HTTPClient = h } }

// Client is the public entry point of the library. It composes the
// validation, cache, single-flight and upstream layers behind a single
// GetStatus call.
//
// A Client is safe for concurrent use. Multiple independently-configured
// clients can coexist in one process; nothing is shared between them.
type Client struct {
	upstream *upstream.Client
	lookup   *Lookup
	backend  cache.Cache
	logger   *log.Logger

	// ownBackend marks a backend created by New, closed by Close.
	ownBackend bool
}

// New creates a Client. Without options it talks to the public
// api.mcsrvstat.us endpoint with an in-process memory cache.
func New(opts ...Option) *Client {
	var o Options
	for _, fn := range opts {
		fn(&o)
	}
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}

	backend := o.Backend
	own := false
	if backend == nil {
		backend = cache.NewMemoryCache()
		own = true
	}

	logger := o.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	c := &Client{
		upstream: upstream.NewClient(upstream.Config{
			BaseURL:    o.BaseURL,
			Timeout:    o.Timeout,
			Retries:    o.Retries,
			UserAgent:  o.UserAgent,
			HTTPClient: o.HTTPClient,
		}),
		backend:    backend,
		logger:     logger,
		ownBackend: own,
	}
	c.lookup = NewLookup(backend, c.fetchStatus, o.TTL)
	return c
}

// GetStatus looks up the live status of the queried server. The query is
// validated before any I/O; the error taxonomy of pkg/errors is propagated
// unchanged from the underlying layers.
func (c *Client) GetStatus(ctx context.Context, q Query) (*ServerStatus, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return c.lookup.Status(ctx, q.withDefaults())
}

// GetJavaStatus is shorthand for a Java-edition GetStatus.
// Port 0 means the edition default.
func (c *Client) GetJavaStatus(ctx context.Context, host string, port int) (*ServerStatus, error) {
	return c.GetStatus(ctx, Query{Host: host, Port: port, Edition: EditionJava})
}

// GetBedrockStatus is shorthand for a Bedrock-edition GetStatus.
func (c *Client) GetBedrockStatus(ctx context.Context, host string, port int) (*ServerStatus, error) {
	return c.GetStatus(ctx, Query{Host: host, Port: port, Edition: EditionBedrock})
}

// GetIcon retrieves the server icon as PNG bytes. Icons change rarely, so
// they are cached under the same TTL policy as statuses.
func (c *Client) GetIcon(ctx context.Context, q Query) ([]byte, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	q = q.withDefaults()

	key := "icon:" + q.Key()
	if data, ok, err := c.backend.Get(ctx, key); err == nil && ok {
		c.logger.Debug("icon cache hit", "address", q.Address())
		return data, nil
	}

	data, err := c.upstream.FetchIcon(ctx, q.Address())
	if err != nil {
		return nil, err
	}
	_ = c.backend.Set(ctx, key, data, c.lookup.ttl)
	return data, nil
}

// Invalidate drops any cached result for q, forcing the next lookup to
// reach the upstream API.
func (c *Client) Invalidate(ctx context.Context, q Query) error {
	if err := q.Validate(); err != nil {
		return err
	}
	return c.lookup.Invalidate(ctx, q.withDefaults())
}

// Close releases the cache backend if the client created it. Backends
// supplied via WithCache are left open.
func (c *Client) Close() error {
	if c.ownBackend {
		return c.backend.Close()
	}
	return nil
}

func (c *Client) fetchStatus(ctx context.Context, q Query) ([]byte, error) {
	c.logger.Debug("fetching status", "address", q.Address(), "edition", q.Edition)
	return c.upstream.Fetch(ctx, q.path())
}
