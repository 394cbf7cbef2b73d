package resilience

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sourcegraph/conc"
)

func newTestBreaker(now *time.Time) *CircuitBreaker {
	b := NewCircuitBreaker(CircuitBreakerConfig{
		Enabled:        true,
		SamplingWindow: 30 * time.Second,
		MinThroughput:  2,
		FailureRatio:   0.5,
		BreakDuration:  15 * time.Second,
		HalfOpenMaxReq: 1,
	})
	b.now = func() time.Time { return *now }
	return b
}

func TestCircuitBreaker_BasicTransitions(t *testing.T) {
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(&now)

	if err := b.Allow(); err != nil {
		t.Fatalf("expected allow in closed state: %v", err)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed below minimum throughput, got %s", state)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after failure ratio reached, got %s", state)
	}

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}

	now = now.Add(16 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if state := b.State(); state != CircuitStateHalfOpen {
		t.Fatalf("expected half-open state, got %s", state)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected second half-open probe to be rejected, got %v", err)
	}

	b.RecordSuccess()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful half-open probe, got %s", state)
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(&now)

	b.RecordFailure()
	b.RecordFailure()
	now = now.Add(15 * time.Second)

	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe, got %v", err)
	}
	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected reopen after failed probe, got %s", state)
	}

	now = now.Add(14 * time.Second)
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected break duration to restart, got %v", err)
	}
}

func TestCircuitBreaker_RatioBelowThresholdStaysClosed(t *testing.T) {
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(&now)

	b.RecordSuccess()
	b.RecordSuccess()
	b.RecordSuccess()
	b.RecordFailure()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed at 25%% failures, got %s", state)
	}
}

func TestCircuitBreaker_OldSamplesLeaveWindow(t *testing.T) {
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(&now)

	b.RecordFailure()
	now = now.Add(31 * time.Second)
	b.RecordFailure()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected stale failure to be ignored, got %s", state)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open with two failures in window, got %s", state)
	}
}

func TestCircuitBreaker_ReleaseFreesHalfOpenSlot(t *testing.T) {
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(&now)

	b.RecordFailure()
	b.RecordFailure()
	now = now.Add(20 * time.Second)

	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe, got %v", err)
	}
	b.Release()
	if err := b.Allow(); err != nil {
		t.Fatalf("expected released slot to be reusable, got %v", err)
	}
}

func TestCircuitBreaker_StateChangeHook(t *testing.T) {
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(&now)

	var transitions []CircuitState
	b.OnStateChange(func(_, to CircuitState) {
		transitions = append(transitions, to)
	})

	b.RecordFailure()
	b.RecordFailure()
	now = now.Add(15 * time.Second)
	_ = b.Allow()
	b.RecordSuccess()

	want := []CircuitState{CircuitStateOpen, CircuitStateHalfOpen, CircuitStateClosed}
	if len(transitions) != len(want) {
		t.Fatalf("expected transitions %v, got %v", want, transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("expected transitions %v, got %v", want, transitions)
		}
	}
}

func TestCircuitBreaker_DisabledNeverOpens(t *testing.T) {
	b := NewCircuitBreaker(CircuitBreakerConfig{
		Enabled:        false,
		MinThroughput:  2,
		FailureRatio:   0.5,
		BreakDuration:  time.Minute,
		HalfOpenMaxReq: 1,
	})

	for i := 0; i < 50; i++ {
		if err := b.Allow(); err != nil {
			t.Fatalf("call %d: disabled breaker rejected: %v", i, err)
		}
		b.RecordFailure()
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected disabled breaker to stay closed, got %s", state)
	}
}

func TestCircuitBreaker_ConcurrentFailuresOpen(t *testing.T) {
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(&now)

	var admitted, rejected atomic.Int32
	var wg conc.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Go(func() {
			if err := b.Allow(); err != nil {
				if !errors.Is(err, ErrCircuitOpen) {
					t.Errorf("unexpected allow error: %v", err)
				}
				rejected.Add(1)
				return
			}
			admitted.Add(1)
			b.RecordFailure()
		})
	}
	wg.Wait()

	if got := admitted.Load() + rejected.Load(); got != 64 {
		t.Fatalf("expected 64 decisions, got %d", got)
	}
	if admitted.Load() < 2 {
		t.Fatalf("expected at least minimum throughput admitted, got %d", admitted.Load())
	}
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after concurrent failures, got %s", state)
	}
}

func TestCircuitBreaker_HalfOpenAdmitsBoundedTrialsConcurrently(t *testing.T) {
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	b := NewCircuitBreaker(CircuitBreakerConfig{
		Enabled:        true,
		SamplingWindow: 30 * time.Second,
		MinThroughput:  2,
		FailureRatio:   0.5,
		BreakDuration:  15 * time.Second,
		HalfOpenMaxReq: 3,
	})
	b.now = func() time.Time { return now }

	b.RecordFailure()
	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open, got %s", state)
	}
	now = now.Add(16 * time.Second)

	var admitted atomic.Int32
	var wg conc.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Go(func() {
			if b.Allow() == nil {
				admitted.Add(1)
			}
		})
	}
	wg.Wait()

	if got := admitted.Load(); got != 3 {
		t.Fatalf("expected exactly 3 half-open trials, got %d", got)
	}

	for i := 0; i < 3; i++ {
		b.RecordSuccess()
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after all trials succeeded, got %s", state)
	}
}
