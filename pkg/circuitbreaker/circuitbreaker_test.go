package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errRemote = errors.New("remote down")

func fail(context.Context) error    { return errRemote }
func succeed(context.Context) error { return nil }

func TestOpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", 2, time.Hour)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := cb.Execute(ctx, fail); !errors.Is(err, errRemote) {
			t.Fatalf("call %d: got %v", i, err)
		}
	}
	if cb.GetState() != StateOpen {
		t.Fatalf("state = %s, want open", cb.GetState())
	}

	called := false
	err := cb.Execute(ctx, func(context.Context) error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) || called {
		t.Errorf("open breaker must short-circuit, err=%v called=%v", err, called)
	}
}

func TestHalfOpenProbeCloses(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, time.Millisecond)
	var transitions []State
	cb.OnStateChange = func(_ string, _, to State) { transitions = append(transitions, to) }
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	time.Sleep(5 * time.Millisecond)

	if err := cb.Execute(ctx, succeed); err != nil {
		t.Fatalf("probe: %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Errorf("state = %s, want closed", cb.GetState())
	}
	want := []State{StateOpen, StateHalfOpen, StateClosed}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v", transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %s, want %s", i, transitions[i], want[i])
		}
	}
}

func TestIgnoredErrorsDoNotTrip(t *testing.T) {
	errRejected := errors.New("rejected")
	cb := NewCircuitBreaker("test", 1, time.Hour)
	cb.IsFailure = func(err error) bool { return !errors.Is(err, errRejected) }

	_ = cb.Execute(context.Background(), func(context.Context) error { return errRejected })
	if cb.GetState() != StateClosed {
		t.Errorf("business rejection tripped the breaker")
	}
}
