package resilience

import (
	"context"
	"errors"
	"time"
)

// Pipeline composes breaker -> retry -> per-attempt timeout around a single attempt.
// A nil Breaker disables circuit breaking.
type Pipeline struct {
	Breaker *CircuitBreaker
	Retry   RetryPolicy
	Timeout time.Duration
}

func (p Pipeline) Execute(ctx context.Context, attempt func(ctx context.Context) error) error {
	if p.Breaker != nil {
		if err := p.Breaker.Allow(); err != nil {
			return err
		}
	}

	err := p.Retry.Do(ctx, func(ctx context.Context) error {
		return WithTimeout(ctx, p.Timeout, attempt)
	})

	if p.Breaker != nil {
		switch {
		case err == nil:
			p.Breaker.RecordSuccess()
		case isContextError(err) && ctx.Err() != nil:
			p.Breaker.Release()
		default:
			p.Breaker.RecordFailure()
		}
	}

	return err
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
