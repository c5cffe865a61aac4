package querycache

import (
	"context"
	"errors"
	"sync"
)

// ErrMutationInFlight is returned when a mutation is submitted while a
// previous run has not finished.
var ErrMutationInFlight = errors.New("mutation already in flight")

// Mutation wraps a write operation with a duplicate-submit guard and cache
// invalidation. On success the registered key prefixes are invalidated
// before the completion callback runs, so the callback always reads fresh
// data.
type Mutation struct {
	cache       *Cache
	invalidates []Key

	mu       sync.Mutex
	inflight bool
}

// NewMutation builds a mutation invalidating the given prefixes on success.
func NewMutation(cache *Cache, invalidates ...Key) *Mutation {
	return &Mutation{cache: cache, invalidates: invalidates}
}

// Run executes op unless a previous run is still in flight. onDone, when
// non-nil, runs after cache invalidation on success only.
func (m *Mutation) Run(ctx context.Context, op func(context.Context) error, onDone func()) error {
	m.mu.Lock()
	if m.inflight {
		m.mu.Unlock()
		return ErrMutationInFlight
	}
	m.inflight = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.inflight = false
		m.mu.Unlock()
	}()

	if err := op(ctx); err != nil {
		return err
	}
	if m.cache != nil {
		for _, prefix := range m.invalidates {
			m.cache.Invalidate(prefix)
		}
	}
	if onDone != nil {
		onDone()
	}
	return nil
}
