package breaker_test

import (
	"errors"
	"testing"
	"time"

	"github.com/infinitynet/api/pkg/breaker"
)

var errBoom = errors.New("boom")

func newTestBreaker(now *time.Time, opts ...breaker.Option) *breaker.Breaker {
	opts = append(opts,
		breaker.WithThreshold(3),
		breaker.WithResetTimeout(30*time.Second),
		breaker.WithClock(func() time.Time { return *now }),
	)
	return breaker.New(opts...)
}

func fail(b *breaker.Breaker) error {
	return b.Do(func() error { return errBoom })
}

func TestOpensAfterThresholdFailures(t *testing.T) {
	now := time.Now()
	b := newTestBreaker(&now)

	for i := 0; i < 2; i++ {
		if err := fail(b); !errors.Is(err, errBoom) {
			t.Fatalf("attempt %d: expected operation error, got %v", i, err)
		}
		if b.State() != breaker.StateClosed {
			t.Fatalf("attempt %d: breaker should still be closed", i)
		}
	}

	if err := fail(b); !errors.Is(err, errBoom) {
		t.Fatalf("third failure should still surface the operation error, got %v", err)
	}
	if b.State() != breaker.StateOpen {
		t.Fatal("breaker should open after 3 consecutive failures")
	}
}

func TestOpenShortCircuitsWithoutInvoking(t *testing.T) {
	now := time.Now()
	b := newTestBreaker(&now)

	for i := 0; i < 3; i++ {
		_ = fail(b)
	}

	invoked := false
	err := b.Do(func() error {
		invoked = true
		return nil
	})
	if !errors.Is(err, breaker.ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}
	if invoked {
		t.Fatal("operation must not run while the circuit is open")
	}
}

func TestHalfOpenSuccessCloses(t *testing.T) {
	now := time.Now()
	b := newTestBreaker(&now)

	for i := 0; i < 3; i++ {
		_ = fail(b)
	}

	now = now.Add(31 * time.Second)

	invoked := false
	if err := b.Do(func() error { invoked = true; return nil }); err != nil {
		t.Fatalf("trial call should succeed, got %v", err)
	}
	if !invoked {
		t.Fatal("trial call after the reset timeout must invoke the operation")
	}
	if b.State() != breaker.StateClosed {
		t.Fatal("successful trial should close the circuit")
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	b := newTestBreaker(&now)

	for i := 0; i < 3; i++ {
		_ = fail(b)
	}

	now = now.Add(31 * time.Second)

	if err := fail(b); !errors.Is(err, errBoom) {
		t.Fatalf("trial failure should surface the operation error, got %v", err)
	}
	if b.State() != breaker.StateOpen {
		t.Fatal("failed trial should reopen the circuit")
	}

	// The failure timestamp was refreshed: still short-circuits.
	now = now.Add(10 * time.Second)
	if err := b.Do(func() error { return nil }); !errors.Is(err, breaker.ErrOpen) {
		t.Fatalf("expected ErrOpen before the new timeout elapses, got %v", err)
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	now := time.Now()
	b := newTestBreaker(&now)

	_ = fail(b)
	_ = fail(b)
	if err := b.Do(func() error { return nil }); err != nil {
		t.Fatal(err)
	}

	// Two more failures: the earlier pair must not count toward the threshold.
	_ = fail(b)
	_ = fail(b)
	if b.State() != breaker.StateClosed {
		t.Fatal("success should have reset the consecutive-failure count")
	}
}

func TestExecuteReturnsResult(t *testing.T) {
	b := breaker.New()

	got, err := breaker.Execute(b, func() (string, error) { return "ok", nil })
	if err != nil || got != "ok" {
		t.Fatalf("expected (ok, nil), got (%q, %v)", got, err)
	}

	_, err = breaker.Execute(b, func() (string, error) { return "", errBoom })
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected operation error, got %v", err)
	}
}

func TestStateChangeCallback(t *testing.T) {
	now := time.Now()
	var transitions []string
	b := newTestBreaker(&now, breaker.WithStateChange(func(from, to breaker.State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	}))

	for i := 0; i < 3; i++ {
		_ = fail(b)
	}
	now = now.Add(31 * time.Second)
	_ = b.Do(func() error { return nil })

	want := []string{"closed->open", "open->half-open", "half-open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("expected %v, got %v", want, transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, transitions)
		}
	}
}
