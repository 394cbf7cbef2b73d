package randomness

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/rpsls-game/internal/platform/logging"
	"github.com/riskibarqy/rpsls-game/internal/platform/metrics"
	"github.com/riskibarqy/rpsls-game/internal/platform/resilience"
	"github.com/riskibarqy/rpsls-game/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	maxBodyBytes = 64 << 10
	fallbackMin  = 1
	fallbackMax  = 99
)

// Fallback reasons, also used as metric labels.
const (
	ReasonBreakerOpen     = "breaker_open"
	ReasonUpstreamFailure = "upstream_failure"
	ReasonInvalidPayload  = "invalid_payload"
	ReasonNonPositive     = "non_positive"
)

var errTransient = crerr.New("random source transient failure")

type Config struct {
	HTTPClient *http.Client
	URL        string
	Timeout    time.Duration
	Retry      resilience.RetryConfig
	// Breaker is shared process-wide. Nil disables circuit breaking.
	Breaker *resilience.CircuitBreaker
	Logger  *logging.Logger
	Metrics *metrics.RandomSource
}

// Seed is one fetched value. Fallback marks locally generated values.
type Seed struct {
	Value    int
	Fallback bool
	Reason   string
}

type payload struct {
	RandomNumber *int `json:"random_number"`
}

// Client fetches seeds from the external random number provider. It never
// surfaces upstream failures; those are replaced by a local fallback seed.
type Client struct {
	httpClient *http.Client
	url        string
	pipeline   resilience.Pipeline
	logger     *logging.Logger
	metrics    *metrics.RandomSource

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewClient(cfg Config) *Client {
	logger := logging.OrDefault(cfg.Logger).Named("randomness")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	c := &Client{
		httpClient: httpClient,
		url:        strings.TrimSpace(cfg.URL),
		logger:     logger,
		metrics:    cfg.Metrics,
		rng:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}

	retry := resilience.NewRetryPolicy(cfg.Retry, isTransient)
	retry.OnRetry = func(attempt int, delay time.Duration, err error) {
		logger.Warn("random source attempt failed, retrying", "retry", attempt, "backoff", delay, "error", err)
	}
	c.pipeline = resilience.Pipeline{
		Breaker: cfg.Breaker,
		Retry:   retry,
		Timeout: timeout,
	}

	if cfg.Breaker != nil {
		cfg.Metrics.BreakerState(breakerGaugeValue(cfg.Breaker.State()))
		cfg.Breaker.OnStateChange(func(from, to resilience.CircuitState) {
			cfg.Metrics.BreakerState(breakerGaugeValue(to))
			logger.Warn("random source circuit breaker state changed", "from", from, "to", to)
		})
	}

	return c
}

func (c *Client) FetchSeed(ctx context.Context) (int, error) {
	seed, err := c.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	return seed.Value, nil
}

// Fetch returns a seed and whether it came from the fallback generator.
// Errors are limited to caller cancellation and requests that cannot be built.
func (c *Client) Fetch(ctx context.Context) (Seed, error) {
	if err := ctx.Err(); err != nil {
		return Seed{}, fmt.Errorf("fetch seed: %w", err)
	}

	base, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Seed{}, fmt.Errorf("%w: build random source request: %v", usecase.ErrDependencyUnavailable, err)
	}
	base.Header.Set("Accept", "application/json")

	var body []byte
	err = c.pipeline.Execute(ctx, func(attemptCtx context.Context) error {
		raw, attemptErr := c.attempt(attemptCtx, base)
		if attemptErr != nil {
			return attemptErr
		}
		body = raw
		return nil
	})

	switch {
	case err == nil:
	case ctx.Err() != nil:
		return Seed{}, fmt.Errorf("fetch seed: %w", ctx.Err())
	case stderrors.Is(err, resilience.ErrCircuitOpen):
		c.logger.WarnContext(ctx, "random source circuit breaker rejected request", "state", c.pipeline.Breaker.State())
		return c.fallback(ctx, ReasonBreakerOpen), nil
	default:
		c.logger.WarnContext(ctx, "random source failed after retries", "error", err)
		return c.fallback(ctx, ReasonUpstreamFailure), nil
	}

	var decoded payload
	if err := sonic.Unmarshal(body, &decoded); err != nil || decoded.RandomNumber == nil {
		c.logger.WarnContext(ctx, "random source returned an unreadable payload", "body", abbreviateBody(body))
		return c.fallback(ctx, ReasonInvalidPayload), nil
	}
	if *decoded.RandomNumber <= 0 {
		c.logger.WarnContext(ctx, "random source returned a non-positive number", "random_number", *decoded.RandomNumber)
		return c.fallback(ctx, ReasonNonPositive), nil
	}

	return Seed{Value: *decoded.RandomNumber}, nil
}

func (c *Client) attempt(ctx context.Context, base *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(base.Clone(ctx))
	if err != nil {
		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.metrics.Request("timeout")
		} else {
			c.metrics.Request("transport_error")
		}
		return nil, crerr.Mark(crerr.Wrap(err, "send random source request"), errTransient)
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxBodyBytes)); err != nil {
		c.metrics.Request("transport_error")
		return nil, crerr.Mark(crerr.Wrap(err, "read random source response"), errTransient)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.Request("status_error")
		return nil, crerr.Mark(crerr.Newf("random source status=%d body=%s", resp.StatusCode, abbreviateBody(buf.B)), errTransient)
	}

	c.metrics.Request("success")
	return append([]byte(nil), buf.B...), nil
}

// BreakerState reports the shared breaker state, closed when breaking is disabled.
func (c *Client) BreakerState() resilience.CircuitState {
	if c.pipeline.Breaker == nil {
		return resilience.CircuitStateClosed
	}
	return c.pipeline.Breaker.State()
}

func (c *Client) fallback(ctx context.Context, reason string) Seed {
	c.rngMu.Lock()
	value := fallbackMin + c.rng.IntN(fallbackMax-fallbackMin+1)
	c.rngMu.Unlock()

	c.metrics.Fallback(reason)
	c.logger.InfoContext(ctx, "using fallback seed", "reason", reason, "seed", value)
	return Seed{Value: value, Fallback: true, Reason: reason}
}

func isTransient(err error) bool {
	return crerr.Is(err, errTransient) || stderrors.Is(err, resilience.ErrAttemptTimeout)
}

func breakerGaugeValue(state resilience.CircuitState) float64 {
	switch state {
	case resilience.CircuitStateOpen:
		return 2
	case resilience.CircuitStateHalfOpen:
		return 1
	default:
		return 0
	}
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	text := strings.TrimSpace(string(raw))
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
