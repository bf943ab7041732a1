package healthcheck

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/akontos/hello-balancer/internal/backend"
	"github.com/akontos/hello-balancer/internal/metrics"
)

// Default probe configuration, applied when Options fields are zero.
const (
	DefaultInterval           = 30 * time.Second
	DefaultTimeout            = 3 * time.Second
	DefaultPath               = "/health"
	DefaultUnhealthyThreshold = 3
	DefaultHealthyThreshold   = 2
)

// Outcome classifies a single probe.
type Outcome int

const (
	Pass Outcome = iota
	Fail
)

func (o Outcome) String() string {
	if o == Pass {
		return "pass"
	}
	return "fail"
}

// Result is the record of one probe against one backend.
type Result struct {
	Outcome   Outcome
	Timestamp time.Time
	Backend   *backend.Backend
	Duration  time.Duration
}

// Options configures a Monitor. Zero fields fall back to the package
// defaults.
type Options struct {
	Interval           time.Duration
	Timeout            time.Duration
	Path               string
	UnhealthyThreshold int
	HealthyThreshold   int
	Collector          *metrics.Collector
}

// Monitor periodically probes every backend in the pool and applies
// hysteresis to their health states: a backend flips to Unhealthy only after
// UnhealthyThreshold consecutive failures and recovers only after
// HealthyThreshold consecutive successes. A backend that has never been
// probed (Unknown) becomes Healthy on its first passing probe.
//
// The monitor is the sole writer of backend health state. It runs outside
// the request path; the routing layer observes its updates through the
// shared pool with a staleness bound of one probe interval.
type Monitor struct {
	pool               *backend.Pool
	client             *http.Client
	interval           time.Duration
	path               string
	unhealthyThreshold int
	healthyThreshold   int
	logger             *slog.Logger
	collector          *metrics.Collector
}

// NewMonitor creates a monitor over the given pool.
func NewMonitor(pool *backend.Pool, opts Options, logger *slog.Logger) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	if opts.UnhealthyThreshold <= 0 {
		opts.UnhealthyThreshold = DefaultUnhealthyThreshold
	}
	if opts.HealthyThreshold <= 0 {
		opts.HealthyThreshold = DefaultHealthyThreshold
	}

	return &Monitor{
		pool: pool,
		client: &http.Client{
			Timeout: opts.Timeout,
		},
		interval:           opts.Interval,
		path:               opts.Path,
		unhealthyThreshold: opts.UnhealthyThreshold,
		healthyThreshold:   opts.HealthyThreshold,
		logger:             logger,
		collector:          opts.Collector,
	}
}

// Start runs the probe loop until the context is cancelled. An initial round
// runs immediately so backends leave the Unknown state without waiting one
// full interval.
func (m *Monitor) Start(ctx context.Context) {
	m.logger.Info("Health monitor started",
		slog.Duration("interval", m.interval),
		slog.Int("unhealthy_threshold", m.unhealthyThreshold),
		slog.Int("healthy_threshold", m.healthyThreshold))

	m.ProbeAll(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Health monitor stopped")
			return
		case <-ticker.C:
			m.ProbeAll(ctx)
		}
	}
}

// ProbeAll probes every backend in the pool once, each on its own goroutine
// so a slow backend never delays the others, and waits for the round to
// finish. Every probe is bounded by the configured timeout.
func (m *Monitor) ProbeAll(ctx context.Context) {
	var wg sync.WaitGroup

	for _, b := range m.pool.Snapshot() {
		wg.Add(1)
		go func(b *backend.Backend) {
			defer wg.Done()
			result := m.probe(ctx, b)
			m.apply(result)
		}(b)
	}

	wg.Wait()
}

// probe issues one GET against the backend's health endpoint. Anything other
// than a 2xx within the timeout, including connection errors, is a Fail;
// the body is ignored.
func (m *Monitor) probe(ctx context.Context, b *backend.Backend) Result {
	healthURL := b.URL().ResolveReference(&url.URL{Path: m.path})
	start := time.Now()

	result := Result{
		Outcome:   Fail,
		Timestamp: start,
		Backend:   b,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL.String(), nil)
	if err != nil {
		result.Duration = time.Since(start)
		return result
	}

	res, err := m.client.Do(req)
	result.Duration = time.Since(start)
	if err != nil {
		return result
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		result.Outcome = Pass
	}

	return result
}

// apply feeds one probe result into the backend's counters and performs the
// hysteresis state transition when a threshold is reached.
func (m *Monitor) apply(result Result) {
	b := result.Backend

	if m.collector != nil {
		m.collector.ProbesTotal.WithLabelValues(b.URL().String(), result.Outcome.String()).Inc()
		m.collector.ProbeDuration.WithLabelValues(b.URL().String()).Observe(result.Duration.Seconds())
	}

	switch result.Outcome {
	case Pass:
		successes := b.RecordProbeSuccess()

		switch b.State() {
		case backend.Unknown:
			// First contact is enough to enter rotation.
			m.transition(b, backend.Healthy)
		case backend.Unhealthy:
			if successes >= m.healthyThreshold {
				m.transition(b, backend.Healthy)
			}
		}

	case Fail:
		failures := b.RecordProbeFailure()

		if b.State() != backend.Unhealthy && failures >= m.unhealthyThreshold {
			m.transition(b, backend.Unhealthy)
		}
	}
}

func (m *Monitor) transition(b *backend.Backend, state backend.HealthState) {
	if !b.SetState(state) {
		return
	}

	if m.collector != nil {
		m.collector.ObserveState(b.URL().String(), state)
	}

	if state == backend.Healthy {
		m.logger.Info("Backend entered rotation",
			slog.String("backend", b.URL().String()))
	} else {
		m.logger.Warn("Backend left rotation",
			slog.String("backend", b.URL().String()),
			slog.Int("consecutive_failures", m.unhealthyThreshold))
	}
}
