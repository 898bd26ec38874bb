package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nutrikatori/backend/internal/domain"
)

const namespace = "nutrikatori"

// Metrics holds the Prometheus collectors of the service on a private
// registry. It satisfies usecase.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	ingredientMatches *prometheus.CounterVec
	aliasLookups      *prometheus.CounterVec
	estimates         *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ingredientMatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingredient_matches_total",
				Help:      "Ingredient resolutions by matcher phase.",
			},
			[]string{"phase"},
		),
		aliasLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alias_lookups_total",
				Help:      "Alias expansions by outcome.",
			},
			[]string{"result"},
		),
		estimates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "estimates_total",
				Help:      "Nutrition estimates by outcome.",
			},
			[]string{"outcome"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
}

// RecordMatch counts one ingredient resolution
func (m *Metrics) RecordMatch(phase domain.MatchPhase) {
	m.ingredientMatches.WithLabelValues(string(phase)).Inc()
}

// RecordAliasLookup counts one alias expansion
func (m *Metrics) RecordAliasLookup(result string) {
	m.aliasLookups.WithLabelValues(result).Inc()
}

// RecordEstimate counts one estimate
func (m *Metrics) RecordEstimate(outcome string) {
	m.estimates.WithLabelValues(outcome).Inc()
}

// ObserveRequest records the latency of one HTTP request. route is the
// registered route pattern, not the raw path.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
