package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/rpsls-game/internal/config"
	"github.com/riskibarqy/rpsls-game/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(randomURL string) config.Config {
	return config.Config{
		AppEnv:                            config.EnvDev,
		ServiceName:                       "rpsls-game-api",
		ServiceVersion:                    "test",
		HTTPAddr:                          ":0",
		ReadTimeout:                       time.Second,
		WriteTimeout:                      time.Second,
		CORSAllowedOrigins:                []string{"*"},
		RandomSourceURL:                   randomURL,
		RandomSourceTimeout:               time.Second,
		RandomSourceMaxRetries:            0,
		RandomSourceBackoffBase:           time.Millisecond,
		RandomSourceCircuitEnabled:        true,
		RandomSourceCircuitSamplingWindow: 30 * time.Second,
		RandomSourceCircuitMinThroughput:  2,
		RandomSourceCircuitFailureRatio:   0.5,
		RandomSourceCircuitBreakDuration:  15 * time.Second,
		RandomSourceCircuitHalfOpenMaxReq: 1,
		ScoreStore:                        config.StoreMemory,
		CacheEnabled:                      true,
		CacheTTL:                          time.Minute,
		ScoreboardDefaultLimit:            10,
		RateLimitBurst:                    1,
		MetricsEnabled:                    true,
	}
}

func newRandomProvider(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func serve(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNew_MemoryStoreServesRounds(t *testing.T) {
	provider := newRandomProvider(t, `{"random_number": 3}`)

	a, err := New(context.Background(), testConfig(provider.URL), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	h := a.Server.Handler
	rec := serve(t, h, http.MethodPost, "/play", `{"player":1,"email":"grace@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"result":"win"`)

	rec = serve(t, h, http.MethodGet, "/scoreboard?email=grace@example.com", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"computer_move":"scissors"`)

	rec = serve(t, h, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"random_source_breaker":"closed"`)

	rec = serve(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rpsls_rounds_total")
}

func TestNew_SQLiteStorePersistsAcrossRestarts(t *testing.T) {
	provider := newRandomProvider(t, `{"random_number": 2}`)
	cfg := testConfig(provider.URL)
	cfg.ScoreStore = config.StoreSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "nested", "scoreboard.db")

	first, err := New(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	rec := serve(t, first.Server.Handler, http.MethodPost, "/play", `{"player":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, first.Close())

	second, err := New(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	rec = serve(t, second.Server.Handler, http.MethodGet, "/scoreboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"result":"lose"`)
}

func TestNew_RejectsEmptyAddr(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.HTTPAddr = " "

	_, err := New(context.Background(), cfg, logging.NewNop())
	require.Error(t, err)
}

func newFailingProvider(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestNew_RandomSourceBreakerSwitch(t *testing.T) {
	tests := []struct {
		name        string
		enabled     bool
		plays       int
		wantHits    int32
		wantBreaker string
	}{
		{name: "enabled opens after failures", enabled: true, plays: 5, wantHits: 2, wantBreaker: "open"},
		{name: "disabled keeps calling the provider", enabled: false, plays: 5, wantHits: 5, wantBreaker: "closed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, hits := newFailingProvider(t)
			cfg := testConfig(provider.URL)
			cfg.RandomSourceCircuitEnabled = tt.enabled

			a, err := New(context.Background(), cfg, logging.NewNop())
			require.NoError(t, err)
			t.Cleanup(func() { _ = a.Close() })

			for i := 0; i < tt.plays; i++ {
				rec := serve(t, a.Server.Handler, http.MethodPost, "/play", `{"player":2}`)
				require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			}
			assert.Equal(t, tt.wantHits, hits.Load())

			rec := serve(t, a.Server.Handler, http.MethodGet, "/readyz", "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), `"random_source_breaker":"`+tt.wantBreaker+`"`)
		})
	}
}

func TestNewRandomSourceBreaker_DisabledIsNil(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.RandomSourceCircuitEnabled = false
	if b := newRandomSourceBreaker(cfg); b != nil {
		t.Fatalf("expected no breaker when disabled, got %v", b.State())
	}

	cfg.RandomSourceCircuitEnabled = true
	if b := newRandomSourceBreaker(cfg); b == nil {
		t.Fatal("expected a breaker when enabled")
	}
}
