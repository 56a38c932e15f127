package resilience

import (
	"errors"
	"testing"
	"time"
)

var errDown = errors.New("down")

func newTestBreaker(maxFailures int) (*CircuitBreaker, *time.Time, *[]string) {
	now := time.Unix(0, 0)
	var transitions []string
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:        "whisper",
		MaxFailures: maxFailures,
		Timeout:     10 * time.Second,
		OnStateChange: func(_ string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})
	cb.now = func() time.Time { return now }
	return cb, &now, &transitions
}

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb, _, _ := newTestBreaker(2)
	_ = cb.Execute(func() error { return errDown })
	if cb.State() != StateClosed {
		t.Fatal("one failure must not open")
	}
	_ = cb.Execute(func() error { return errDown })
	if cb.State() != StateOpen {
		t.Fatal("expected open")
	}
	called := false
	if err := cb.Execute(func() error { called = true; return nil }); !errors.Is(err, ErrCircuitOpen) || called {
		t.Fatalf("open circuit must reject, err=%v called=%v", err, called)
	}
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb, _, _ := newTestBreaker(2)
	_ = cb.Execute(func() error { return errDown })
	_ = cb.Execute(func() error { return nil })
	_ = cb.Execute(func() error { return errDown })
	if cb.State() != StateClosed {
		t.Fatal("failures are counted consecutively")
	}
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb, now, transitions := newTestBreaker(1)
	_ = cb.Execute(func() error { return errDown })
	*now = now.Add(11 * time.Second)

	if cb.State() != StateHalfOpen {
		t.Fatalf("expected half-open, got %s", cb.State())
	}
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatal(err)
	}
	if cb.State() != StateClosed {
		t.Fatalf("expected closed, got %s", cb.State())
	}
	want := []string{"closed->open", "open->half-open", "half-open->closed"}
	if len(*transitions) != len(want) {
		t.Fatalf("transitions = %v", *transitions)
	}
	for i := range want {
		if (*transitions)[i] != want[i] {
			t.Errorf("transition %d = %s, want %s", i, (*transitions)[i], want[i])
		}
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb, now, _ := newTestBreaker(1)
	_ = cb.Execute(func() error { return errDown })
	*now = now.Add(11 * time.Second)
	_ = cb.Execute(func() error { return errDown })
	if cb.State() != StateOpen {
		t.Fatalf("expected open, got %s", cb.State())
	}
}

func TestCircuitBreaker_IsFailureFilter(t *testing.T) {
	ignored := errors.New("client error")
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1, IsFailure: func(err error) bool { return !errors.Is(err, ignored) }})
	_ = cb.Execute(func() error { return ignored })
	if cb.State() != StateClosed {
		t.Fatal("filtered errors must not trip the breaker")
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb, _, _ := newTestBreaker(1)
	_ = cb.Execute(func() error { return errDown })
	cb.Reset()
	if cb.State() != StateClosed {
		t.Fatal("expected closed after reset")
	}
}
