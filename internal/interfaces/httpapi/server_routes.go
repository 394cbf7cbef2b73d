package httpapi

import (
	"net/http"

	"github.com/riskibarqy/rpsls-game/internal/platform/ratelimit"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool, metrics http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /readyz", handler.Readyz)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerGameRoutes(mux *http.ServeMux, handler *Handler, limiter *ratelimit.KeyedLimiter) {
	mux.HandleFunc("GET /choices", handler.ListChoices)
	mux.HandleFunc("GET /choices/{move}", handler.GetChoice)
	mux.Handle("GET /choice", RateLimit(limiter, http.HandlerFunc(handler.RandomChoice)))
	mux.Handle("POST /play", RateLimit(limiter, http.HandlerFunc(handler.Play)))
}

func registerScoreboardRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /scoreboard", handler.ListScoreboard)
	mux.HandleFunc("DELETE /scoreboard", handler.ResetScoreboard)
}
