package mcsrvstat

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/craftstat/craftstat/pkg/cache"
)

// Fetcher retrieves the raw upstream body for a query.
type Fetcher func(ctx context.Context, q Query) ([]byte, error)

// Lookup layers short-TTL caching and request de-duplication over a
// Fetcher. It exists to respect the upstream service's rate limiter: an
// application that asks about the same server from several call sites at
// once still produces exactly one upstream request.
//
// Concurrent lookups for the same query key share one in-flight fetch and
// observe its single outcome, success or failure. Failures are never
// stored; the key reverts to empty so the next call retries from scratch.
//
// A caller abandoning its wait (context cancellation) does not abort the
// shared fetch while other callers still wait on it. The fetch runs on its
// own flight context, cancelled only when the last waiter leaves.
type Lookup struct {
	backend cache.Cache
	fetch   Fetcher
	ttl     time.Duration

	group singleflight.Group

	mu      sync.Mutex
	flights map[string]*flight
}

// flight is the reference-counted context shared by all waiters of one key.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// NewLookup creates a Lookup storing results in backend for ttl.
func NewLookup(backend cache.Cache, fetch Fetcher, ttl time.Duration) *Lookup {
	return &Lookup{
		backend: backend,
		fetch:   fetch,
		ttl:     ttl,
		flights: make(map[string]*flight),
	}
}

// cachedFetch is the envelope stored in the cache backend: the raw upstream
// body plus the timing of the request that produced it. Storing the raw
// body (not the normalized form) keeps the Raw passthrough map intact on
// cache hits.
type cachedFetch struct {
	Body      []byte    `json:"body"`
	LatencyMS int64     `json:"latency_ms"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Status resolves q through the cache, fetching and normalizing on a miss.
func (l *Lookup) Status(ctx context.Context, q Query) (*ServerStatus, error) {
	key := q.Key()

	if st, ok := l.fromCache(ctx, key, q.Edition); ok {
		return st, nil
	}

	fctx := l.retain(key)
	defer l.release(key)

	ch := l.group.DoChan(key, func() (any, error) {
		defer l.group.Forget(key)
		return l.doFetch(fctx, q, key)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*ServerStatus), nil
	}
}

func (l *Lookup) fromCache(ctx context.Context, key string, edition Edition) (*ServerStatus, bool) {
	data, ok, err := l.backend.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}

	var entry cachedFetch
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = l.backend.Delete(ctx, key)
		return nil, false
	}

	st, err := Normalize(entry.Body, edition)
	if err != nil {
		_ = l.backend.Delete(ctx, key)
		return nil, false
	}

	st.Latency = time.Duration(entry.LatencyMS) * time.Millisecond
	st.RetrievedAt = entry.FetchedAt
	return st, true
}

func (l *Lookup) doFetch(ctx context.Context, q Query, key string) (*ServerStatus, error) {
	start := time.Now()
	body, err := l.fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	latency := time.Since(start)

	st, err := Normalize(body, q.Edition)
	if err != nil {
		return nil, err
	}
	st.Latency = latency
	st.RetrievedAt = time.Now()

	entry := cachedFetch{
		Body:      body,
		LatencyMS: latency.Milliseconds(),
		FetchedAt: st.RetrievedAt,
	}
	if data, err := json.Marshal(entry); err == nil {
		// The flight context may already be cancelled by departing waiters;
		// a completed result is still worth storing.
		_ = l.backend.Set(context.WithoutCancel(ctx), key, data, l.ttl)
	}

	return st, nil
}

// retain registers interest in key's flight, creating it if needed, and
// returns the shared flight context.
func (l *Lookup) retain(key string) context.Context {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, ok := l.flights[key]
	if !ok {
		ctx, cancel := context.WithCancel(context.Background())
		f = &flight{ctx: ctx, cancel: cancel}
		l.flights[key] = f
	}
	f.waiters++
	return f.ctx
}

// release drops one waiter from key's flight. The last waiter out cancels
// the flight context, abandoning any still-running fetch.
func (l *Lookup) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, ok := l.flights[key]
	if !ok {
		return
	}
	if f.waiters--; f.waiters <= 0 {
		f.cancel()
		delete(l.flights, key)
	}
}

// Invalidate removes any cached entry for q.
func (l *Lookup) Invalidate(ctx context.Context, q Query) error {
	return l.backend.Delete(ctx, q.Key())
}
