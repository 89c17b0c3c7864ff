package ratelimit

import (
	"testing"
	"time"
)

func TestAllowWithinBudget(t *testing.T) {
	l := New(3, time.Minute)

	for i := 0; i < 3; i++ {
		allowed, remaining, _ := l.Allow("1.2.3.4")
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if remaining != 3-(i+1) {
			t.Fatalf("request %d: expected remaining %d, got %d", i+1, 3-(i+1), remaining)
		}
	}

	allowed, remaining, retryAfter := l.Allow("1.2.3.4")
	if allowed {
		t.Fatal("4th request should be rejected")
	}
	if remaining != 0 {
		t.Fatalf("expected remaining 0, got %d", remaining)
	}
	if retryAfter <= 0 || retryAfter > time.Minute {
		t.Fatalf("unexpected retryAfter: %v", retryAfter)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := New(1, time.Minute)

	if ok, _, _ := l.Allow("a"); !ok {
		t.Fatal("first request for key a should pass")
	}
	if ok, _, _ := l.Allow("b"); !ok {
		t.Fatal("key b has its own budget")
	}
	if ok, _, _ := l.Allow("a"); ok {
		t.Fatal("key a is over budget")
	}
}

func TestWindowResets(t *testing.T) {
	now := time.Now()
	l := New(1, time.Minute, WithClock(func() time.Time { return now }))

	if ok, _, _ := l.Allow("x"); !ok {
		t.Fatal("first request should pass")
	}
	if ok, _, _ := l.Allow("x"); ok {
		t.Fatal("second request in the same window should be rejected")
	}

	now = now.Add(61 * time.Second)
	if ok, remaining, _ := l.Allow("x"); !ok || remaining != 0 {
		t.Fatalf("request after window reset should pass with remaining 0, got ok=%v remaining=%d", ok, remaining)
	}
}

func TestDefaults(t *testing.T) {
	l := New(0, 0)
	if l.max != DefaultMaxRequests || l.size != DefaultWindow {
		t.Fatalf("expected defaults, got max=%d size=%v", l.max, l.size)
	}
}

func TestErrTooManyRequestsShape(t *testing.T) {
	err := ErrTooManyRequests()
	if err.HTTPStatus != 429 {
		t.Fatalf("expected 429, got %d", err.HTTPStatus)
	}
	if err.Code != "RATELIMIT_TOO_MANY_REQUESTS" {
		t.Fatalf("unexpected code %q", err.Code)
	}
}
