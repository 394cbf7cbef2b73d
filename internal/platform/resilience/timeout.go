package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrAttemptTimeout = errors.New("attempt timed out")

// WithTimeout runs fn under its own deadline. When that deadline fires while the
// parent is still live the result is ErrAttemptTimeout, otherwise the parent error wins.
func WithTimeout(ctx context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	if d <= 0 {
		return fn(ctx)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	err := fn(attemptCtx)
	if err == nil {
		return nil
	}
	if parentErr := ctx.Err(); parentErr != nil {
		return parentErr
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %v", ErrAttemptTimeout, d, err)
	}
	return err
}
