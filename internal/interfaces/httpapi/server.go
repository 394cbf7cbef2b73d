package httpapi

import (
	"net/http"

	"github.com/riskibarqy/rpsls-game/internal/platform/id"
	"github.com/riskibarqy/rpsls-game/internal/platform/logging"
	"github.com/riskibarqy/rpsls-game/internal/platform/ratelimit"
)

type RouterOptions struct {
	Logger             *logging.Logger
	SwaggerEnabled     bool
	CORSAllowedOrigins []string
	// Limiter throttles /play and /choice per client IP; nil disables it.
	Limiter *ratelimit.KeyedLimiter
	// Metrics is mounted on /metrics when set.
	Metrics http.Handler
	// RequestIDs defaults to random hex ids.
	RequestIDs id.Generator
}

func NewRouter(handler *Handler, opts RouterOptions) http.Handler {
	logger := logging.OrDefault(opts.Logger)
	requestIDs := opts.RequestIDs
	if requestIDs == nil {
		requestIDs = id.NewRandomGenerator()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, opts.SwaggerEnabled, opts.Metrics)
	registerGameRoutes(mux, handler, opts.Limiter)
	registerScoreboardRoutes(mux, handler)

	return RequestTracing(RequestID(requestIDs, RequestLogging(logger, CORS(opts.CORSAllowedOrigins, recoverPanic(logger, mux)))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
