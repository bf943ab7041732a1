package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/akontos/hello-balancer/internal/backend"
)

// Collector holds the Prometheus metrics exported by the load balancer.
type Collector struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ActiveRequests  *prometheus.GaugeVec

	BackendState *prometheus.GaugeVec

	ProbesTotal   *prometheus.CounterVec
	ProbeDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with all metrics registered on a private
// registry, exposed through Handler.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hellobalancer_requests_total",
				Help: "Total number of requests forwarded, by backend and status code.",
			},
			[]string{"backend", "status"},
		),

		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hellobalancer_request_duration_seconds",
				Help:    "Forwarded request duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend"},
		),

		ActiveRequests: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hellobalancer_active_requests",
				Help: "Number of in-flight requests per backend.",
			},
			[]string{"backend"},
		),

		BackendState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hellobalancer_backend_state",
				Help: "Backend health state (0=unknown, 1=healthy, 2=unhealthy).",
			},
			[]string{"backend"},
		),

		ProbesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hellobalancer_health_probes_total",
				Help: "Total number of health probes, by backend and result.",
			},
			[]string{"backend", "result"},
		),

		ProbeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hellobalancer_health_probe_duration_seconds",
				Help:    "Health probe duration in seconds.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 3},
			},
			[]string{"backend"},
		),
	}
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveState records a backend's current health state.
func (c *Collector) ObserveState(backendURL string, state backend.HealthState) {
	c.BackendState.WithLabelValues(backendURL).Set(float64(state))
}
