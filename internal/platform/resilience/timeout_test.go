package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithTimeout_AttemptDeadline(t *testing.T) {
	err := WithTimeout(context.Background(), 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, ErrAttemptTimeout) {
		t.Fatalf("expected ErrAttemptTimeout, got %v", err)
	}
}

func TestWithTimeout_ParentCancellationWins(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithTimeout(ctx, time.Second, func(ctx context.Context) error {
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, ErrAttemptTimeout) {
		t.Fatalf("parent cancellation must not be reported as attempt timeout")
	}
}

func TestWithTimeout_PassesThroughResult(t *testing.T) {
	boom := errors.New("boom")
	if err := WithTimeout(context.Background(), time.Second, func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if err := WithTimeout(context.Background(), 0, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
