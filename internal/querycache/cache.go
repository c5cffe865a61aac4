// Package querycache caches scoped read results keyed by entity type plus
// scope ids, mirroring how screens fetch collections for the active
// organization, project, or budget. Entries go stale by age or explicit
// invalidation; idle entries are garbage collected.
package querycache

import (
	"context"
	"strings"
	"sync"
	"time"

	"obracore/pkg/domain"
)

// Key identifies a cached query: the entity collection plus the scope ids it
// was fetched under (e.g. movements for organization X, project Y).
type Key struct {
	Entity domain.EntityType
	Scope  []string
}

// String renders the canonical cache key.
func (k Key) String() string {
	if len(k.Scope) == 0 {
		return string(k.Entity)
	}
	return string(k.Entity) + "/" + strings.Join(k.Scope, "/")
}

// prefixOf reports whether k is a prefix of other: same entity and other's
// scope starts with k's scope.
func (k Key) prefixOf(other Key) bool {
	if k.Entity != other.Entity || len(k.Scope) > len(other.Scope) {
		return false
	}
	for i, part := range k.Scope {
		if other.Scope[i] != part {
			return false
		}
	}
	return true
}

// Options gate a single Fetch call.
type Options struct {
	Enabled   bool
	StaleTime time.Duration
	Retries   int
}

// DefaultOptions enables the fetch with a 30 second stale window and one
// retry on failure.
func DefaultOptions() Options {
	return Options{Enabled: true, StaleTime: 30 * time.Second, Retries: 1}
}

type entry struct {
	key        Key
	value      any
	fetchedAt  time.Time
	lastAccess time.Time
	stale      bool
}

// Cache is the scoped query cache.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	idleTTL time.Duration
	nowFn   func() time.Time
	// epoch advances on every Invalidate. Prefix matching cannot reach keys
	// whose fetch is still in flight, so Fetch compares epochs around the
	// fetcher call instead.
	epoch uint64
}

// New builds a cache whose entries are dropped after idleTTL without access.
// A non-positive TTL disables garbage collection.
func New(idleTTL time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		idleTTL: idleTTL,
		nowFn:   func() time.Time { return time.Now().UTC() },
	}
}

// SetNowFunc overrides the cache clock, for tests.
func (c *Cache) SetNowFunc(fn func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fn != nil {
		c.nowFn = fn
	}
}

// Fetch returns the cached value for key while it is fresh, refetching
// through fetcher when the entry is missing, stale, or invalidated. Failed
// fetches are retried opts.Retries times. When opts.Enabled is false the
// fetcher is never called and the zero value is returned.
func (c *Cache) Fetch(ctx context.Context, key Key, fetcher func(context.Context) (any, error), opts Options) (any, error) {
	if !opts.Enabled {
		return nil, nil
	}

	c.mu.Lock()
	c.sweepLocked()
	now := c.nowFn()
	if e, ok := c.entries[key.String()]; ok && !e.stale && (opts.StaleTime <= 0 || now.Sub(e.fetchedAt) < opts.StaleTime) {
		e.lastAccess = now
		value := e.value
		c.mu.Unlock()
		return value, nil
	}
	epoch := c.epoch
	c.mu.Unlock()

	var value any
	var err error
	for attempt := 0; attempt <= opts.Retries; attempt++ {
		value, err = fetcher(ctx)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	now = c.nowFn()
	e := &entry{key: key, value: value, fetchedAt: now, lastAccess: now}
	if c.epoch != epoch {
		// An invalidation raced the fetch; the value may predate the write
		// that triggered it. Install it stale so the next read refetches.
		e.stale = true
	}
	c.entries[key.String()] = e
	c.mu.Unlock()
	return value, nil
}

// Invalidate synchronously marks every entry under the prefix stale; the
// next Fetch refetches.
func (c *Cache) Invalidate(prefix Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	for _, e := range c.entries {
		if prefix.prefixOf(e.key) {
			e.stale = true
		}
	}
}

// Sweep drops entries idle past the TTL.
func (c *Cache) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()
}

// Len reports the live entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) sweepLocked() {
	if c.idleTTL <= 0 {
		return
	}
	now := c.nowFn()
	for k, e := range c.entries {
		if now.Sub(e.lastAccess) > c.idleTTL {
			delete(c.entries, k)
		}
	}
}
