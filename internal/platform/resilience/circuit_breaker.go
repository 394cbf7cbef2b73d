package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

type sample struct {
	at     time.Time
	failed bool
}

// CircuitBreaker opens when the failure ratio observed inside a rolling sampling
// window crosses a threshold, once the window holds at least MinThroughput calls.
// A breaker built from a config with Enabled=false admits every call and stays closed.
type CircuitBreaker struct {
	mu       sync.Mutex
	disabled bool

	samplingWindow time.Duration
	minThroughput  int
	failureRatio   float64
	breakDuration  time.Duration
	halfOpenMaxReq int

	state             CircuitState
	samples           []sample
	openedAt          time.Time
	halfOpenInFlight  int
	halfOpenSuccesses int
	now               func() time.Time
	onStateChange     func(from, to CircuitState)
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	cfg = NormalizeCircuitBreakerConfig(cfg)
	return &CircuitBreaker{
		disabled:       !cfg.Enabled,
		samplingWindow: cfg.SamplingWindow,
		minThroughput:  cfg.MinThroughput,
		failureRatio:   cfg.FailureRatio,
		breakDuration:  cfg.BreakDuration,
		halfOpenMaxReq: cfg.HalfOpenMaxReq,
		state:          CircuitStateClosed,
		now:            time.Now,
	}
}

// OnStateChange registers a hook called under the breaker lock on every transition.
// The hook must not call back into the breaker.
func (b *CircuitBreaker) OnStateChange(fn func(from, to CircuitState)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onStateChange = fn
}

func (b *CircuitBreaker) Allow() error {
	if b.disabled {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if b.state == CircuitStateOpen {
		if now.Sub(b.openedAt) < b.breakDuration {
			return ErrCircuitOpen
		}
		b.toHalfOpen()
	}

	if b.state == CircuitStateHalfOpen {
		if b.halfOpenInFlight >= b.halfOpenMaxReq {
			return ErrCircuitOpen
		}
		b.halfOpenInFlight++
	}

	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	if b.disabled {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.record(false)
	case CircuitStateHalfOpen:
		if b.halfOpenInFlight > 0 {
			b.halfOpenInFlight--
		}
		b.halfOpenSuccesses++
		if b.halfOpenSuccesses >= b.halfOpenMaxReq && b.halfOpenInFlight == 0 {
			b.toClosed()
		}
	}
}

func (b *CircuitBreaker) RecordFailure() {
	if b.disabled {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.record(true)
		if b.shouldTrip() {
			b.toOpen()
		}
	case CircuitStateHalfOpen:
		if b.halfOpenInFlight > 0 {
			b.halfOpenInFlight--
		}
		b.toOpen()
	}
}

// Release gives back a slot taken by Allow without counting an outcome.
// Used when the protected call was abandoned by the caller.
func (b *CircuitBreaker) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateHalfOpen && b.halfOpenInFlight > 0 {
		b.halfOpenInFlight--
	}
}

func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen {
		if b.now().Sub(b.openedAt) >= b.breakDuration {
			return CircuitStateHalfOpen
		}
	}

	return b.state
}

func (b *CircuitBreaker) record(failed bool) {
	now := b.now()
	b.prune(now)
	b.samples = append(b.samples, sample{at: now, failed: failed})
}

func (b *CircuitBreaker) prune(now time.Time) {
	cutoff := now.Add(-b.samplingWindow)
	drop := 0
	for drop < len(b.samples) && !b.samples[drop].at.After(cutoff) {
		drop++
	}
	if drop > 0 {
		b.samples = append(b.samples[:0], b.samples[drop:]...)
	}
}

func (b *CircuitBreaker) shouldTrip() bool {
	total := len(b.samples)
	if total < b.minThroughput {
		return false
	}
	failures := 0
	for _, s := range b.samples {
		if s.failed {
			failures++
		}
	}
	return float64(failures)/float64(total) >= b.failureRatio
}

func (b *CircuitBreaker) toClosed() {
	b.transition(CircuitStateClosed)
	b.samples = b.samples[:0]
	b.halfOpenInFlight = 0
	b.halfOpenSuccesses = 0
	b.openedAt = time.Time{}
}

func (b *CircuitBreaker) toOpen() {
	b.transition(CircuitStateOpen)
	b.openedAt = b.now()
	b.halfOpenInFlight = 0
	b.halfOpenSuccesses = 0
}

func (b *CircuitBreaker) toHalfOpen() {
	b.transition(CircuitStateHalfOpen)
	b.halfOpenInFlight = 0
	b.halfOpenSuccesses = 0
}

func (b *CircuitBreaker) transition(to CircuitState) {
	from := b.state
	b.state = to
	if from != to && b.onStateChange != nil {
		b.onStateChange(from, to)
	}
}
