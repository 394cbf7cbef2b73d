package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/rpsls-game/internal/config"
	"github.com/riskibarqy/rpsls-game/internal/domain/score"
	"github.com/riskibarqy/rpsls-game/internal/infrastructure/randomness"
	scorecache "github.com/riskibarqy/rpsls-game/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/rpsls-game/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/rpsls-game/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/rpsls-game/internal/infrastructure/repository/sqlite"
	"github.com/riskibarqy/rpsls-game/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/rpsls-game/internal/platform/cache"
	"github.com/riskibarqy/rpsls-game/internal/platform/logging"
	"github.com/riskibarqy/rpsls-game/internal/platform/metrics"
	"github.com/riskibarqy/rpsls-game/internal/platform/ratelimit"
	"github.com/riskibarqy/rpsls-game/internal/platform/resilience"
	"github.com/riskibarqy/rpsls-game/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const rateLimitIdleTTL = 10 * time.Minute

// App owns the HTTP server and every resource that must be released on shutdown.
type App struct {
	Server *http.Server

	closers []func() error
	logger  *logging.Logger
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	logger = logging.OrDefault(logger)
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{logger: logger}

	scores, err := a.openScoreRepository(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	registry := metrics.NewRegistry()
	breaker := newRandomSourceBreaker(cfg)
	randomClient := randomness.NewClient(randomness.Config{
		URL:     cfg.RandomSourceURL,
		Timeout: cfg.RandomSourceTimeout,
		Retry: resilience.RetryConfig{
			MaxRetries: cfg.RandomSourceMaxRetries,
			BaseDelay:  cfg.RandomSourceBackoffBase,
		},
		Breaker: breaker,
		Logger:  logger,
		Metrics: metrics.NewRandomSource(registry),
	})

	gameSvc := usecase.NewGameService(randomClient, scores, logger, metrics.NewRounds(registry))
	scoreboardSvc := usecase.NewScoreboardService(scores, cfg.ScoreboardDefaultLimit, logger)

	handler := httpapi.NewHandler(
		gameSvc,
		scoreboardSvc,
		[]httpapi.ReadinessProbe{{Name: "score_ledger", Check: scoreboardSvc.Ping}},
		func() string { return string(randomClient.BreakerState()) },
		logger,
	)

	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		metricsHandler = metrics.Handler(registry)
	}
	router := httpapi.NewRouter(handler, httpapi.RouterOptions{
		Logger:             logger,
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Limiter:            ratelimit.New(cfg.RateLimitRPS, cfg.RateLimitBurst, rateLimitIdleTTL),
		Metrics:            metricsHandler,
	})

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return a, nil
}

// newRandomSourceBreaker returns nil when breaking is switched off, which the
// resilience pipeline treats as "always admit".
func newRandomSourceBreaker(cfg config.Config) *resilience.CircuitBreaker {
	if !cfg.RandomSourceCircuitEnabled {
		return nil
	}
	return resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Enabled:        true,
		SamplingWindow: cfg.RandomSourceCircuitSamplingWindow,
		MinThroughput:  cfg.RandomSourceCircuitMinThroughput,
		FailureRatio:   cfg.RandomSourceCircuitFailureRatio,
		BreakDuration:  cfg.RandomSourceCircuitBreakDuration,
		HalfOpenMaxReq: cfg.RandomSourceCircuitHalfOpenMaxReq,
	})
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = crerr.CombineErrors(errs, err)
		}
	}
	a.closers = nil
	return errs
}

func (a *App) openScoreRepository(ctx context.Context, cfg config.Config) (score.Repository, error) {
	var repo score.Repository
	switch cfg.ScoreStore {
	case config.StoreMemory:
		repo = memory.NewScoreRepository()
	case config.StoreSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath, otelsql.WithQueryFormatter(formatDBQueryForTrace))
		if err != nil {
			return nil, crerr.Wrapf(err, "open sqlite score ledger %s", cfg.SQLitePath)
		}
		a.closers = append(a.closers, db.Close)
		repo = sqlite.NewScoreRepository(db)
	case config.StorePostgres:
		db, err := openPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		repo = postgres.NewScoreRepository(db)
	default:
		return nil, fmt.Errorf("unsupported score store %q", cfg.ScoreStore)
	}

	a.logger.Info("score ledger ready", "store", cfg.ScoreStore, "cache_enabled", cfg.CacheEnabled)
	if !cfg.CacheEnabled {
		return repo, nil
	}
	return scorecache.NewScoreRepository(repo, basecache.NewStore[[]score.Entry](cfg.CacheTTL)), nil
}

func openPostgres(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dbURL := postgres.ConnectionString(cfg.DBURL, cfg.DBBinaryParameters)
	opts := []otelsql.Option{
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	}
	if name := postgres.DatabaseName(dbURL); name != "" {
		opts = append(opts, otelsql.WithDBName(name))
	}

	db, err := otelsqlx.Open("postgres", dbURL, opts...)
	if err != nil {
		return nil, crerr.Wrap(err, "open postgres")
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, crerr.Wrap(err, "ping postgres")
	}
	return db, nil
}
