package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/sourcegraph/conc"
)

const readinessProbeTimeout = 2 * time.Second

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz runs every probe concurrently. An open breaker is reported but does not fail readiness.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Readyz")
	defer span.End()

	results := make([]error, len(h.probes))
	var wg conc.WaitGroup
	for i, probe := range h.probes {
		wg.Go(func() {
			probeCtx, cancel := context.WithTimeout(ctx, readinessProbeTimeout)
			defer cancel()
			results[i] = probe.Check(probeCtx)
		})
	}
	wg.Wait()

	status := http.StatusOK
	body := readinessDTO{
		Status:        "ready",
		Checks:        make(map[string]string, len(h.probes)),
		RandomBreaker: h.breakerState(),
	}
	for i, probe := range h.probes {
		if err := results[i]; err != nil {
			h.logger.WarnContext(ctx, "readiness probe failed", "probe", probe.Name, "error", err)
			body.Checks[probe.Name] = err.Error()
			body.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		body.Checks[probe.Name] = "ok"
	}

	writeSuccess(ctx, w, status, body)
}
