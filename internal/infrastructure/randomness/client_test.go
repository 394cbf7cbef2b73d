package randomness

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/rpsls-game/internal/platform/metrics"
	"github.com/riskibarqy/rpsls-game/internal/platform/resilience"
	"github.com/riskibarqy/rpsls-game/internal/usecase"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	hits    atomic.Int32
	handler func(w http.ResponseWriter, r *http.Request, hit int32)
}

func (p *stubProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	hit := p.hits.Add(1)
	p.handler(w, r, hit)
}

func newTestClient(t *testing.T, provider *stubProvider, breaker *resilience.CircuitBreaker) *Client {
	t.Helper()

	srv := httptest.NewServer(provider)
	t.Cleanup(srv.Close)

	return NewClient(Config{
		HTTPClient: srv.Client(),
		URL:        srv.URL,
		Timeout:    time.Second,
		Retry:      resilience.RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond},
		Breaker:    breaker,
		Metrics:    metrics.NewRandomSource(nil),
	})
}

func TestClient_Fetch_ValidNumber(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{handler: func(w http.ResponseWriter, r *http.Request, _ int32) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"random_number": 42}`))
	}}
	client := newTestClient(t, provider, nil)

	seed, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, seed.Value)
	assert.False(t, seed.Fallback)
	assert.Equal(t, int32(1), provider.hits.Load())

	value, err := client.FetchSeed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, value)
}

func TestClient_Fetch_ServerErrorEveryAttemptFallsBack(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{handler: func(w http.ResponseWriter, _ *http.Request, _ int32) {
		w.WriteHeader(http.StatusInternalServerError)
	}}
	client := newTestClient(t, provider, nil)

	seed, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, seed.Fallback)
	assert.Equal(t, ReasonUpstreamFailure, seed.Reason)
	assert.GreaterOrEqual(t, seed.Value, 1)
	assert.LessOrEqual(t, seed.Value, 99)
	assert.Equal(t, int32(4), provider.hits.Load(), "initial attempt plus three retries")
}

func TestClient_Fetch_RecoversOnRetry(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{handler: func(w http.ResponseWriter, _ *http.Request, hit int32) {
		if hit == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"random_number": 7}`))
	}}
	client := newTestClient(t, provider, nil)

	seed, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Seed{Value: 7}, seed)
	assert.Equal(t, int32(2), provider.hits.Load())
}

func TestClient_Fetch_InvalidPayloadsFallBackWithoutRetry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		body   string
		reason string
	}{
		{name: "zero", body: `{"random_number": 0}`, reason: ReasonNonPositive},
		{name: "negative", body: `{"random_number": -12}`, reason: ReasonNonPositive},
		{name: "missing field", body: `{"number": 12}`, reason: ReasonInvalidPayload},
		{name: "not json", body: `<html>oops</html>`, reason: ReasonInvalidPayload},
		{name: "wrong type", body: `{"random_number": "twelve"}`, reason: ReasonInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			provider := &stubProvider{handler: func(w http.ResponseWriter, _ *http.Request, _ int32) {
				_, _ = w.Write([]byte(tt.body))
			}}
			client := newTestClient(t, provider, nil)

			seed, err := client.Fetch(context.Background())
			require.NoError(t, err)
			assert.True(t, seed.Fallback)
			assert.Equal(t, tt.reason, seed.Reason)
			assert.GreaterOrEqual(t, seed.Value, 1)
			assert.LessOrEqual(t, seed.Value, 99)
			assert.Equal(t, int32(1), provider.hits.Load())
		})
	}
}

func TestClient_Fetch_AttemptTimeoutIsRetried(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{handler: func(w http.ResponseWriter, r *http.Request, _ int32) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}}
	srv := httptest.NewServer(provider)
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		HTTPClient: srv.Client(),
		URL:        srv.URL,
		Timeout:    20 * time.Millisecond,
		Retry:      resilience.RetryConfig{MaxRetries: 1, BaseDelay: time.Millisecond},
	})

	seed, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, seed.Fallback)
	assert.Equal(t, ReasonUpstreamFailure, seed.Reason)
	assert.Equal(t, int32(2), provider.hits.Load())
}

func TestClient_Fetch_CanceledContextReturnsError(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{handler: func(w http.ResponseWriter, _ *http.Request, _ int32) {
		_, _ = w.Write([]byte(`{"random_number": 42}`))
	}}
	client := newTestClient(t, provider, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Fetch(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, int32(0), provider.hits.Load())
}

func TestClient_Fetch_CancellationAbortsBackoff(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{handler: func(w http.ResponseWriter, _ *http.Request, _ int32) {
		w.WriteHeader(http.StatusBadGateway)
	}}
	srv := httptest.NewServer(provider)
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		HTTPClient: srv.Client(),
		URL:        srv.URL,
		Timeout:    time.Second,
		Retry:      resilience.RetryConfig{MaxRetries: 3, BaseDelay: time.Hour},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	started := time.Now()
	_, err := client.Fetch(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(started), 5*time.Second)
	assert.Equal(t, int32(1), provider.hits.Load())
}

func TestClient_Fetch_OpenBreakerSkipsIO(t *testing.T) {
	t.Parallel()

	breaker := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig())
	provider := &stubProvider{handler: func(w http.ResponseWriter, _ *http.Request, _ int32) {
		w.WriteHeader(http.StatusInternalServerError)
	}}
	client := newTestClient(t, provider, breaker)
	t.Cleanup(releaseTrial)

	for i := 0; i < 2; i++ {
		seed, err := client.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, ReasonUpstreamFailure, seed.Reason)
	}
	require.Equal(t, resilience.CircuitStateOpen, client.BreakerState())
	hitsBefore := provider.hits.Load()

	seed, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, seed.Fallback)
	assert.Equal(t, ReasonBreakerOpen, seed.Reason)
	assert.Equal(t, hitsBefore, provider.hits.Load())
}

func TestClient_Fetch_InvalidURLIsDependencyUnavailable(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{URL: "://missing-scheme"})

	_, err := client.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, usecase.ErrDependencyUnavailable))
}

func TestClient_FallbackStaysInRange(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{URL: "http://127.0.0.1:1"})
	seen := make(map[int]struct{})
	for i := 0; i < 2000; i++ {
		seed := client.fallback(context.Background(), ReasonUpstreamFailure)
		if seed.Value < 1 || seed.Value > 99 {
			t.Fatalf("fallback seed %d out of range", seed.Value)
		}
		seen[seed.Value] = struct{}{}
	}
	if len(seen) < 50 {
		t.Fatalf("expected a spread of fallback values, got %d distinct", len(seen))
	}
}

func TestClient_Fetch_ConcurrentRoundsShareBreaker(t *testing.T) {
	t.Parallel()

	breaker := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig())
	provider := &stubProvider{handler: func(w http.ResponseWriter, _ *http.Request, _ int32) {
		w.WriteHeader(http.StatusInternalServerError)
	}}
	client := newTestClient(t, provider, breaker)

	const rounds = 32
	seeds := make([]Seed, rounds)
	errs := make([]error, rounds)
	var wg conc.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Go(func() {
			seeds[i], errs[i] = client.Fetch(context.Background())
		})
	}
	wg.Wait()

	for i := 0; i < rounds; i++ {
		require.NoError(t, errs[i])
		assert.True(t, seeds[i].Fallback)
		assert.Contains(t, []string{ReasonUpstreamFailure, ReasonBreakerOpen}, seeds[i].Reason)
		assert.GreaterOrEqual(t, seeds[i].Value, 1)
		assert.LessOrEqual(t, seeds[i].Value, 99)
	}
	require.Equal(t, resilience.CircuitStateOpen, client.BreakerState())

	hitsBefore := provider.hits.Load()
	seed, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReasonBreakerOpen, seed.Reason)
	assert.Equal(t, hitsBefore, provider.hits.Load())
}

func TestClient_Fetch_HalfOpenAdmitsOneTrialUnderLoad(t *testing.T) {
	t.Parallel()

	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Enabled:        true,
		SamplingWindow: 30 * time.Second,
		MinThroughput:  2,
		FailureRatio:   0.5,
		BreakDuration:  50 * time.Millisecond,
		HalfOpenMaxReq: 1,
	})

	var healthy atomic.Bool
	var trialHits atomic.Int32
	release := make(chan struct{})
	var releaseOnce sync.Once
	releaseTrial := func() { releaseOnce.Do(func() { close(release) }) }

	provider := &stubProvider{handler: func(w http.ResponseWriter, _ *http.Request, _ int32) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		trialHits.Add(1)
		<-release
		_, _ = w.Write([]byte(`{"random_number": 42}`))
	}}
	client := newTestClient(t, provider, breaker)
	t.Cleanup(releaseTrial)

	for i := 0; i < 2; i++ {
		_, err := client.Fetch(context.Background())
		require.NoError(t, err)
	}
	require.Equal(t, resilience.CircuitStateOpen, client.BreakerState())

	healthy.Store(true)
	time.Sleep(80 * time.Millisecond)
	require.Equal(t, resilience.CircuitStateHalfOpen, client.BreakerState())

	const rounds = 16
	results := make(chan Seed, rounds)
	var wg conc.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Go(func() {
			seed, err := client.Fetch(context.Background())
			assert.NoError(t, err)
			results <- seed
		})
	}

	var seeds []Seed
	for len(seeds) < rounds-1 {
		select {
		case seed := <-results:
			seeds = append(seeds, seed)
		case <-time.After(5 * time.Second):
			t.Fatalf("only %d of %d rounds finished while the trial was in flight", len(seeds), rounds-1)
		}
	}
	releaseTrial()
	wg.Wait()
	seeds = append(seeds, <-results)

	var served, rejected int
	for _, seed := range seeds {
		switch {
		case !seed.Fallback:
			served++
			assert.Equal(t, 42, seed.Value)
		case seed.Reason == ReasonBreakerOpen:
			rejected++
		default:
			t.Fatalf("unexpected fallback reason %q", seed.Reason)
		}
	}
	assert.Equal(t, 1, served)
	assert.Equal(t, rounds-1, rejected)
	assert.Equal(t, int32(1), trialHits.Load())
	assert.Equal(t, resilience.CircuitStateClosed, client.BreakerState())
}
