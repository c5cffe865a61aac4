package querycache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"obracore/pkg/domain"
)

func TestFetchCachesWhileFresh(t *testing.T) {
	cache := New(0)
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	cache.SetNowFunc(func() time.Time { return now })
	key := Key{Entity: domain.EntityProject, Scope: []string{"org1"}}

	calls := 0
	fetcher := func(context.Context) (any, error) {
		calls++
		return []string{"p1"}, nil
	}

	for i := 0; i < 3; i++ {
		v, err := cache.Fetch(context.Background(), key, fetcher, DefaultOptions())
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if got := v.([]string); len(got) != 1 || got[0] != "p1" {
			t.Fatalf("unexpected value %v", v)
		}
	}
	if calls != 1 {
		t.Fatalf("expected single fetch while fresh, got %d", calls)
	}

	// Past the stale window the fetcher runs again.
	now = now.Add(time.Minute)
	if _, err := cache.Fetch(context.Background(), key, fetcher, DefaultOptions()); err != nil {
		t.Fatalf("stale fetch: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected refetch after stale time, got %d calls", calls)
	}
}

func TestFetchDisabledReturnsZeroWithoutCalling(t *testing.T) {
	cache := New(0)
	opts := DefaultOptions()
	opts.Enabled = false

	called := false
	v, err := cache.Fetch(context.Background(), Key{Entity: domain.EntityMovement}, func(context.Context) (any, error) {
		called = true
		return nil, nil
	}, opts)
	if err != nil || v != nil {
		t.Fatalf("expected zero value, got %v / %v", v, err)
	}
	if called {
		t.Fatalf("fetcher must not run when disabled")
	}
}

func TestInvalidatePrefixMarksStaleSynchronously(t *testing.T) {
	cache := New(0)
	ctx := context.Background()
	orgScoped := Key{Entity: domain.EntityMovement, Scope: []string{"org1"}}
	projectScoped := Key{Entity: domain.EntityMovement, Scope: []string{"org1", "p1"}}
	otherOrg := Key{Entity: domain.EntityMovement, Scope: []string{"org2"}}

	calls := map[string]int{}
	fetcherFor := func(key Key) func(context.Context) (any, error) {
		return func(context.Context) (any, error) {
			calls[key.String()]++
			return key.String(), nil
		}
	}
	for _, key := range []Key{orgScoped, projectScoped, otherOrg} {
		if _, err := cache.Fetch(ctx, key, fetcherFor(key), DefaultOptions()); err != nil {
			t.Fatalf("seed fetch: %v", err)
		}
	}

	cache.Invalidate(Key{Entity: domain.EntityMovement, Scope: []string{"org1"}})

	for _, key := range []Key{orgScoped, projectScoped, otherOrg} {
		if _, err := cache.Fetch(ctx, key, fetcherFor(key), DefaultOptions()); err != nil {
			t.Fatalf("refetch: %v", err)
		}
	}
	if calls[orgScoped.String()] != 2 || calls[projectScoped.String()] != 2 {
		t.Fatalf("expected invalidated keys to refetch: %v", calls)
	}
	if calls[otherOrg.String()] != 1 {
		t.Fatalf("unrelated scope must stay cached: %v", calls)
	}
}

func TestInvalidateDuringFetchIsNotLost(t *testing.T) {
	cache := New(0)
	key := Key{Entity: domain.EntityMovement, Scope: []string{"org1"}}

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		v, err := cache.Fetch(context.Background(), key, func(context.Context) (any, error) {
			close(started)
			<-release
			return "before-write", nil
		}, DefaultOptions())
		if err != nil {
			t.Errorf("in-flight fetch: %v", err)
		}
		if v != "before-write" {
			t.Errorf("unexpected in-flight value %v", v)
		}
	}()

	// A mutation commits while the read is still fetching.
	<-started
	cache.Invalidate(Key{Entity: domain.EntityMovement})
	close(release)
	<-done

	refetched := false
	v, err := cache.Fetch(context.Background(), key, func(context.Context) (any, error) {
		refetched = true
		return "after-write", nil
	}, DefaultOptions())
	if err != nil {
		t.Fatalf("fetch after invalidation: %v", err)
	}
	if !refetched || v != "after-write" {
		t.Fatalf("stale value survived a racing invalidation: refetched=%v value=%v", refetched, v)
	}
}

func TestFetchRetriesOnce(t *testing.T) {
	cache := New(0)
	calls := 0
	v, err := cache.Fetch(context.Background(), Key{Entity: domain.EntityContact}, func(context.Context) (any, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("transient")
		}
		return "ok", nil
	}, DefaultOptions())
	if err != nil || v != "ok" {
		t.Fatalf("expected retry to recover, got %v / %v", v, err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}

	// Persistent failure surfaces after retries are exhausted.
	failures := 0
	_, err = cache.Fetch(context.Background(), Key{Entity: domain.EntityUnit}, func(context.Context) (any, error) {
		failures++
		return nil, errors.New("down")
	}, DefaultOptions())
	if err == nil || failures != 2 {
		t.Fatalf("expected error after %d attempts, err=%v", failures, err)
	}
}

func TestSweepDropsIdleEntries(t *testing.T) {
	cache := New(time.Minute)
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	cache.SetNowFunc(func() time.Time { return now })

	if _, err := cache.Fetch(context.Background(), Key{Entity: domain.EntityTask}, func(context.Context) (any, error) {
		return "tasks", nil
	}, DefaultOptions()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected entry, got %d", cache.Len())
	}

	now = now.Add(2 * time.Minute)
	cache.Sweep()
	if cache.Len() != 0 {
		t.Fatalf("expected idle entry to be collected, got %d", cache.Len())
	}
}

func TestMutationGuardRunsExactlyOnce(t *testing.T) {
	cache := New(0)
	key := Key{Entity: domain.EntityContact, Scope: []string{"org1"}}
	if _, err := cache.Fetch(context.Background(), key, func(context.Context) (any, error) {
		return "contacts", nil
	}, DefaultOptions()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	mutation := NewMutation(cache, Key{Entity: domain.EntityContact})

	started := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	var runs, rejected int
	var mu sync.Mutex

	wg.Add(1)
	go func() {
		defer wg.Done()
		err := mutation.Run(context.Background(), func(context.Context) error {
			close(started)
			<-release
			return nil
		}, nil)
		mu.Lock()
		if err == nil {
			runs++
		}
		mu.Unlock()
	}()

	<-started
	// Duplicate submit while the first run is in flight.
	if err := mutation.Run(context.Background(), func(context.Context) error {
		mu.Lock()
		runs++
		mu.Unlock()
		return nil
	}, nil); !errors.Is(err, ErrMutationInFlight) {
		t.Fatalf("expected ErrMutationInFlight, got %v", err)
	} else {
		mu.Lock()
		rejected++
		mu.Unlock()
	}
	close(release)
	wg.Wait()

	if runs != 1 || rejected != 1 {
		t.Fatalf("expected exactly one run and one rejection, got runs=%d rejected=%d", runs, rejected)
	}
}

func TestMutationInvalidatesBeforeCompletion(t *testing.T) {
	cache := New(0)
	key := Key{Entity: domain.EntityContact, Scope: []string{"org1"}}
	fetches := 0
	fetcher := func(context.Context) (any, error) {
		fetches++
		return fetches, nil
	}
	if _, err := cache.Fetch(context.Background(), key, fetcher, DefaultOptions()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	mutation := NewMutation(cache, Key{Entity: domain.EntityContact})
	var seenInCallback any
	err := mutation.Run(context.Background(), func(context.Context) error { return nil }, func() {
		// Invalidation must already have happened: this refetches.
		v, err := cache.Fetch(context.Background(), key, fetcher, DefaultOptions())
		if err != nil {
			t.Errorf("callback fetch: %v", err)
		}
		seenInCallback = v
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if seenInCallback != 2 {
		t.Fatalf("expected fresh value in callback, got %v", seenInCallback)
	}

	// Failed mutations leave the cache untouched.
	if err := mutation.Run(context.Background(), func(context.Context) error {
		return errors.New("write failed")
	}, nil); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := cache.Fetch(context.Background(), key, fetcher, DefaultOptions()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if fetches != 2 {
		t.Fatalf("failed mutation must not invalidate, fetches=%d", fetches)
	}
}
