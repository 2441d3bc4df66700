package redis

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeRedis counts Incr calls per key in memory.
type fakeRedis struct {
	mu      sync.Mutex
	counts  map[string]int64
	expires map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{counts: make(map[string]int64), expires: make(map[string]time.Duration)}
}

func (f *fakeRedis) Ping(ctx context.Context) error { return nil }

func (f *fakeRedis) Incr(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeRedis) Expire(ctx context.Context, key string, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expires[key] = expiration
	return nil
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.counts, k)
	}
	return nil
}

func (f *fakeRedis) Close() error { return nil }

func TestRateLimiterAllow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := newFakeRedis()
	rl := NewRateLimiter(fake)

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, "k", 3, time.Minute)
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if !ok {
			t.Fatalf("request %d should pass a limit of 3", i+1)
		}
	}
	ok, err := rl.Allow(ctx, "k", 3, time.Minute)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok {
		t.Fatalf("fourth request must be rejected")
	}

	// The window is set once, on the first hit.
	if fake.expires["k"] != time.Minute {
		t.Fatalf("expected window of 1m, got %v", fake.expires["k"])
	}
}

func TestRateLimiterManualCheck(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rl := NewRateLimiter(newFakeRedis())

	ok, err := rl.AllowManualCheck(ctx, 42, 6*time.Hour)
	if err != nil {
		t.Fatalf("AllowManualCheck: %v", err)
	}
	if !ok {
		t.Fatalf("first manual check must pass")
	}
	ok, err = rl.AllowManualCheck(ctx, 42, 6*time.Hour)
	if err != nil {
		t.Fatalf("AllowManualCheck: %v", err)
	}
	if ok {
		t.Fatalf("second manual check inside the window must be rejected")
	}

	// A different user has an independent window.
	ok, err = rl.AllowManualCheck(ctx, 7, 6*time.Hour)
	if err != nil {
		t.Fatalf("AllowManualCheck: %v", err)
	}
	if !ok {
		t.Fatalf("other users must not share the window")
	}
}
