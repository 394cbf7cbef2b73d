package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rpsls"

// NewRegistry returns a registry preloaded with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// RandomSource instruments the external seed provider client.
type RandomSource struct {
	requests     *prometheus.CounterVec
	fallbacks    *prometheus.CounterVec
	breakerState prometheus.Gauge
}

// NewRandomSource registers its collectors on reg. A nil reg yields working but unexported metrics.
func NewRandomSource(reg prometheus.Registerer) *RandomSource {
	m := &RandomSource{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "random_source",
			Name:      "requests_total",
			Help:      "Seed provider attempts by outcome.",
		}, []string{"outcome"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "random_source",
			Name:      "fallbacks_total",
			Help:      "Locally generated seeds by reason.",
		}, []string{"reason"}),
		breakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "random_source",
			Name:      "breaker_state",
			Help:      "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.fallbacks, m.breakerState)
	}
	return m
}

func (m *RandomSource) Request(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

func (m *RandomSource) Fallback(reason string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(reason).Inc()
}

func (m *RandomSource) BreakerState(value float64) {
	if m == nil {
		return
	}
	m.breakerState.Set(value)
}

// Rounds instruments the game use case.
type Rounds struct {
	played         *prometheus.CounterVec
	appendFailures prometheus.Counter
}

func NewRounds(reg prometheus.Registerer) *Rounds {
	m := &Rounds{
		played: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_total",
			Help:      "Resolved rounds by result.",
		}, []string{"result"}),
		appendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_append_failures_total",
			Help:      "Rounds whose score entry could not be stored.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.played, m.appendFailures)
	}
	return m
}

func (m *Rounds) Played(result string) {
	if m == nil {
		return
	}
	m.played.WithLabelValues(result).Inc()
}

func (m *Rounds) AppendFailed() {
	if m == nil {
		return
	}
	m.appendFailures.Inc()
}
