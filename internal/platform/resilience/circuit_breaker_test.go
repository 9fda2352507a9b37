package resilience

import (
	"errors"
	"testing"
	"time"
)

var errUpstream = errors.New("status 503")

func fail() error { return errUpstream }
func pass() error { return nil }

func newTestBreaker(threshold, trials int, listener StateListener) (*CircuitBreaker, *time.Time) {
	now := time.Date(2026, 1, 12, 18, 0, 0, 0, time.UTC)
	b := NewCircuitBreakerFromConfig("nba_stats", CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: threshold,
		OpenTimeout:      10 * time.Second,
		HalfOpenMaxReq:   trials,
	}, listener)
	b.now = func() time.Time { return now }
	return b, &now
}

func TestCircuitBreaker_OpensTrialsAndCloses(t *testing.T) {
	b, now := newTestBreaker(2, 2, nil)

	_ = b.Execute(fail, nil)
	if got := b.State(); got != CircuitStateClosed {
		t.Fatalf("expected closed below threshold, got %s", got)
	}
	_ = b.Execute(fail, nil)
	if got := b.State(); got != CircuitStateOpen {
		t.Fatalf("expected open at threshold, got %s", got)
	}
	if err := b.Execute(pass, nil); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected rejection while open, got %v", err)
	}

	*now = now.Add(10 * time.Second)
	if got := b.State(); got != CircuitStateHalfOpen {
		t.Fatalf("expected half-open once the window expires, got %s", got)
	}
	if err := b.Execute(pass, nil); err != nil {
		t.Fatalf("first trial request: %v", err)
	}
	if got := b.State(); got != CircuitStateHalfOpen {
		t.Fatalf("expected half-open until every trial request succeeds, got %s", got)
	}
	if err := b.Execute(pass, nil); err != nil {
		t.Fatalf("second trial request: %v", err)
	}
	if got := b.State(); got != CircuitStateClosed {
		t.Fatalf("expected closed after trial requests, got %s", got)
	}
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	b, _ := newTestBreaker(2, 1, nil)

	_ = b.Execute(fail, nil)
	_ = b.Execute(pass, nil)
	_ = b.Execute(fail, nil)
	if got := b.State(); got != CircuitStateClosed {
		t.Fatalf("failures are consecutive only, got %s", got)
	}
}

func TestCircuitBreaker_FailedTrialReopens(t *testing.T) {
	b, now := newTestBreaker(1, 1, nil)

	_ = b.Execute(fail, nil)
	*now = now.Add(10 * time.Second)
	_ = b.Execute(fail, nil)
	if got := b.State(); got != CircuitStateOpen {
		t.Fatalf("expected reopen after failed trial request, got %s", got)
	}
}

func TestCircuitBreaker_LimitsConcurrentTrials(t *testing.T) {
	b, now := newTestBreaker(1, 1, nil)

	_ = b.Execute(fail, nil)
	*now = now.Add(10 * time.Second)

	err := b.Execute(func() error {
		if inner := b.Execute(pass, nil); !errors.Is(inner, ErrCircuitOpen) {
			t.Fatalf("expected second trial request to be rejected, got %v", inner)
		}
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("trial request: %v", err)
	}
	if got := b.State(); got != CircuitStateClosed {
		t.Fatalf("expected closed after trial request, got %s", got)
	}
}

func TestCircuitBreaker_DropsStaleOutcomes(t *testing.T) {
	b, _ := newTestBreaker(1, 1, nil)

	err := b.Execute(func() error {
		// Another caller opens the breaker while this call is in flight.
		_ = b.Execute(fail, nil)
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := b.State(); got != CircuitStateOpen {
		t.Fatalf("late success must not close the breaker, got %s", got)
	}
}

func TestCircuitBreaker_ExecuteIgnoresCallerErrors(t *testing.T) {
	b, _ := newTestBreaker(1, 1, nil)
	errNotFound := errors.New("player not found")
	upstreamOnly := func(err error) bool { return errors.Is(err, errUpstream) }

	if err := b.Execute(func() error { return errNotFound }, upstreamOnly); !errors.Is(err, errNotFound) {
		t.Fatalf("expected passthrough, got %v", err)
	}
	if got := b.State(); got != CircuitStateClosed {
		t.Fatalf("expected closed after caller error, got %s", got)
	}

	if err := b.Execute(fail, upstreamOnly); !errors.Is(err, errUpstream) {
		t.Fatalf("expected passthrough, got %v", err)
	}
	called := false
	if err := b.Execute(func() error { called = true; return nil }, upstreamOnly); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if called {
		t.Fatalf("fn must not run while open")
	}
}

func TestCircuitBreaker_NotifiesListener(t *testing.T) {
	var transitions []string
	b, now := newTestBreaker(1, 1, func(from, to CircuitState) {
		transitions = append(transitions, string(from)+"->"+string(to))
	})

	_ = b.Execute(fail, nil)
	*now = now.Add(10 * time.Second)
	_ = b.Execute(pass, nil)

	want := []string{"closed->open", "open->half_open", "half_open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("unexpected transitions: got=%v want=%v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("unexpected transitions: got=%v want=%v", transitions, want)
		}
	}
	if b.Name() != "nba_stats" {
		t.Fatalf("unexpected name: %s", b.Name())
	}
}

func TestNewCircuitBreakerFromConfig(t *testing.T) {
	t.Run("disabled is a nil pass-through", func(t *testing.T) {
		b := NewCircuitBreakerFromConfig("odds_api", CircuitBreakerConfig{}, nil)
		if b != nil {
			t.Fatalf("expected nil breaker")
		}
		if err := b.Execute(pass, nil); err != nil {
			t.Fatalf("nil breaker must run fn, got %v", err)
		}
		if b.State() != CircuitStateClosed {
			t.Fatalf("nil breaker reports closed")
		}
	})

	t.Run("zero values take defaults", func(t *testing.T) {
		b := NewCircuitBreakerFromConfig("prop_feed", CircuitBreakerConfig{Enabled: true}, nil)
		if b.cfg != DefaultCircuitBreakerConfig() {
			t.Fatalf("unexpected config: %+v", b.cfg)
		}
	})
}
