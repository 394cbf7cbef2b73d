package resilience

import (
	"context"
	"errors"
	"sync"
)

var errFlightPanicked = errors.New("shared call panicked")

// Group collapses concurrent calls that share a key into one run of fn.
// The zero value is ready to use.
type Group[V any] struct {
	mu       sync.Mutex
	inflight map[string]*flight[V]
}

type flight[V any] struct {
	done    chan struct{}
	value   V
	err     error
	waiters int
}

// Do runs fn unless a call for key is already running, in which case it waits for
// that result. A waiter whose ctx ends stops waiting; the running call carries on.
// shared reports whether the result was handed to more than one caller.
func (g *Group[V]) Do(ctx context.Context, key string, fn func() (V, error)) (value V, shared bool, err error) {
	g.mu.Lock()
	if g.inflight == nil {
		g.inflight = make(map[string]*flight[V])
	}
	if f, ok := g.inflight[key]; ok {
		f.waiters++
		g.mu.Unlock()

		select {
		case <-f.done:
			return f.value, true, f.err
		case <-ctx.Done():
			return value, true, ctx.Err()
		}
	}

	f := &flight[V]{done: make(chan struct{})}
	g.inflight[key] = f
	g.mu.Unlock()

	completed := false
	defer func() {
		g.mu.Lock()
		delete(g.inflight, key)
		g.mu.Unlock()
		if !completed {
			f.err = errFlightPanicked
		}
		close(f.done)
	}()

	f.value, f.err = fn()
	completed = true

	g.mu.Lock()
	shared = f.waiters > 0
	g.mu.Unlock()

	return f.value, shared, f.err
}
