package handler

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/akontos/hello-balancer/internal/backend"
	"github.com/akontos/hello-balancer/internal/loadbalancer"
	"github.com/akontos/hello-balancer/internal/metrics"
)

// LoadBalancerHandler is the HTTP entrypoint of the routing layer. Every
// request gets a fresh routing decision from the balancer and is forwarded
// to exactly one healthy backend; backend errors, including 5xx responses,
// pass through unmodified with no internal retry.
type LoadBalancerHandler struct {
	logger    *slog.Logger
	balancer  *loadbalancer.LoadBalancer
	collector *metrics.Collector
}

// NewLoadBalancerHandler creates the routing handler. The collector may be
// nil when metrics are not wired up, e.g. in tests.
func NewLoadBalancerHandler(logger *slog.Logger, lb *loadbalancer.LoadBalancer, collector *metrics.Collector) *LoadBalancerHandler {
	return &LoadBalancerHandler{
		logger:    logger,
		balancer:  lb,
		collector: collector,
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (h *LoadBalancerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	clientIP := extractClientIP(r)

	h.logger.Info("Received request",
		slog.String("request_id", requestID),
		slog.String("from", clientIP),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path))

	chosen, err := h.balancer.GetAndReserveServer()
	if err != nil {
		h.logger.Warn("No healthy backend available",
			slog.String("request_id", requestID),
			slog.String("client", clientIP))
		http.Error(w, "No healthy backend available", http.StatusServiceUnavailable)
		return
	}
	defer chosen.DecrementConn()

	backendURL := chosen.URL().String()

	if h.collector != nil {
		h.collector.ActiveRequests.WithLabelValues(backendURL).Inc()
		defer h.collector.ActiveRequests.WithLabelValues(backendURL).Dec()
	}

	h.logger.Info("Forwarding to backend",
		slog.String("request_id", requestID),
		slog.String("backend", backendURL))

	w.Header().Set("X-Request-Id", requestID)
	w.Header().Set("X-Backend-Server", backendURL)

	wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
	start := time.Now()
	h.forward(chosen, wrapped, r)
	duration := time.Since(start)

	if h.collector != nil {
		h.collector.RequestsTotal.WithLabelValues(backendURL, strconv.Itoa(wrapped.statusCode)).Inc()
		h.collector.RequestDuration.WithLabelValues(backendURL).Observe(duration.Seconds())
	}
}

func (h *LoadBalancerHandler) forward(b *backend.Backend, w http.ResponseWriter, r *http.Request) {
	b.ReverseProxy().ServeHTTP(w, r)
}

func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}

	host, _, _ := net.SplitHostPort(r.RemoteAddr)
	return host
}
