package cachex

import (
	"context"
	"testing"
	"time"
)

// All facade tests run degraded (nil client): the contract under test is
// the fallback path and the non-erroring surface.

func newDegraded(t *testing.T, now func() time.Time) *Facade {
	t.Helper()
	return New(nil, time.Hour, nil, WithClock(now))
}

func TestFacadeDegradedSetGet(t *testing.T) {
	f := newDegraded(t, nil)
	ctx := context.Background()

	if !f.Degraded() {
		t.Fatal("facade with nil client should start degraded")
	}

	f.Set(ctx, "k", "v", 0)
	got, ok := f.Get(ctx, "k")
	if !ok || got != "v" {
		t.Fatalf("expected fallback hit, got %q ok=%v", got, ok)
	}

	f.Delete(ctx, "k")
	if _, ok := f.Get(ctx, "k"); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestFacadeLazyExpiry(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	f := newDegraded(t, clock)
	ctx := context.Background()

	f.Set(ctx, "k", "v", time.Minute)
	if _, ok := f.Get(ctx, "k"); !ok {
		t.Fatal("entry should be live before ttl elapses")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := f.Get(ctx, "k"); ok {
		t.Fatal("entry should expire lazily on read")
	}
}

func TestFacadeIncrement(t *testing.T) {
	f := newDegraded(t, nil)
	ctx := context.Background()

	if n := f.Increment(ctx, "cnt"); n != 1 {
		t.Fatalf("expected 1, got %d", n)
	}
	if n := f.Increment(ctx, "cnt"); n != 2 {
		t.Fatalf("expected 2, got %d", n)
	}
}

func TestFacadeExpire(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	f := newDegraded(t, clock)
	ctx := context.Background()

	f.Set(ctx, "k", "v", 0)
	f.Expire(ctx, "k", time.Second)

	now = now.Add(2 * time.Second)
	if _, ok := f.Get(ctx, "k"); ok {
		t.Fatal("expire should take effect lazily")
	}
}

func TestFacadeJSONRoundTrip(t *testing.T) {
	f := newDegraded(t, nil)
	ctx := context.Background()

	type record struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	f.SetJSON(ctx, "user:1", record{ID: "1", Name: "Maria"})

	var out record
	if !f.GetJSON(ctx, "user:1", &out) {
		t.Fatal("expected JSON hit")
	}
	if out.Name != "Maria" {
		t.Fatalf("unexpected payload: %+v", out)
	}
}

func TestFacadeGetJSONCorruptEntryIsMiss(t *testing.T) {
	f := newDegraded(t, nil)
	ctx := context.Background()

	f.Set(ctx, "user:1", "{not-json", 0)

	var out struct{ ID string }
	if f.GetJSON(ctx, "user:1", &out) {
		t.Fatal("corrupt entry should be a miss")
	}
	if _, ok := f.Get(ctx, "user:1"); ok {
		t.Fatal("corrupt entry should be evicted")
	}
}

func TestFallbackHookFiresOnce(t *testing.T) {
	calls := 0
	New(nil, time.Hour, nil, WithFallbackHook(func() { calls++ }))
	if calls != 1 {
		t.Fatalf("expected hook to fire once, fired %d times", calls)
	}
}

func TestMemoryStoreIncrementAfterExpiry(t *testing.T) {
	now := time.Now()
	m := newMemoryStore(func() time.Time { return now })

	m.set("cnt", "10", time.Second)
	now = now.Add(2 * time.Second)

	if n := m.increment("cnt"); n != 1 {
		t.Fatalf("expired counter should restart at 1, got %d", n)
	}
}
