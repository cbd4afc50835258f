// Package querycache is an in-memory store for backend reads, keyed by
// structured keys. Reads declare the key they populate; writes declare the key
// prefixes they invalidate.
//
// A fetch that was in flight when an overlapping invalidation ran does not
// repopulate the cache, so a write is never masked by a read that started
// before it.
package querycache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is the freshness window when New is given a non-positive TTL.
const DefaultTTL = 30 * time.Second

// FetchTimeout bounds a shared fetch. The fetch is detached from the caller
// that started it, so one caller giving up does not fail the others.
const FetchTimeout = 30 * time.Second

// Key identifies a cached query, e.g. {"groups", "recruiting", chapterID}.
type Key []string

// K builds a Key from parts. Non-string parts are formatted with %v.
func K(parts ...any) Key {
	k := make(Key, len(parts))
	for i, p := range parts {
		if s, ok := p.(string); ok {
			k[i] = s
			continue
		}
		k[i] = fmt.Sprint(p)
	}
	return k
}

const sep = "\x1f"

func (k Key) String() string { return strings.Join(k, sep) }

// HasPrefix reports whether k starts with every element of prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

type entry struct {
	key       Key
	value     any
	expiresAt time.Time
}

type flight struct {
	key   Key
	stale bool
}

// Cache is safe for concurrent use.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]entry
	inflight map[string]*flight

	ttl     time.Duration
	now     func() time.Time
	group   singleflight.Group
	metrics *Metrics
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithMetrics attaches prometheus counters.
func WithMetrics(m *Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// New creates a Cache whose entries stay fresh for ttl.
func New(ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		entries:  make(map[string]entry),
		inflight: make(map[string]*flight),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// TTL returns the freshness window.
func (c *Cache) TTL() time.Duration { return c.ttl }

func (c *Cache) lookup(key Key) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key.String()]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) begin(key Key) *flight {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := &flight{key: key}
	c.inflight[key.String()] = f
	return f
}

func (c *Cache) finish(f *flight, v any, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := f.key.String()
	if c.inflight[s] == f {
		delete(c.inflight, s)
	}
	if ok && !f.stale {
		c.entries[s] = entry{key: f.key, value: v, expiresAt: c.now().Add(c.ttl)}
	}
}

// Fetch returns the fresh cached value for key, or calls fn and caches its
// result. Concurrent Fetches of the same key share one call to fn. Errors are
// not cached.
//
// fn receives a context that keeps ctx's values but not its cancellation,
// bounded by FetchTimeout. Each caller still stops waiting when its own ctx
// is done.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if v, ok := c.lookup(key); ok {
		if t, ok := v.(T); ok {
			c.metrics.hit(key)
			return t, nil
		}
	}
	c.metrics.miss(key)

	ch := c.group.DoChan(key.String(), func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), FetchTimeout)
		defer cancel()
		f := c.begin(key)
		res, err := fn(fctx)
		c.finish(f, res, err == nil)
		if err != nil {
			return nil, err
		}
		return res, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	if res.Err != nil {
		return zero, res.Err
	}
	t, ok := res.Val.(T)
	if !ok {
		return zero, fmt.Errorf("querycache: key %v holds %T", []string(key), res.Val)
	}
	return t, nil
}

// Invalidate drops every entry whose key starts with prefix and marks matching
// in-flight fetches stale. It returns the number of entries removed.
func (c *Cache) Invalidate(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for s, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			delete(c.entries, s)
			removed++
		}
	}
	for _, f := range c.inflight {
		if f.key.HasPrefix(prefix) {
			f.stale = true
		}
	}
	c.metrics.invalidated(prefix, removed)
	return removed
}

// InvalidateAll calls Invalidate for each prefix.
func (c *Cache) InvalidateAll(prefixes ...Key) int {
	n := 0
	for _, p := range prefixes {
		n += c.Invalidate(p)
	}
	return n
}

// Sweep removes expired entries and returns how many were dropped.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for s, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, s)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, fresh or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
