package backend

import (
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sync"
	"time"
)

// DefaultForwardTimeout bounds how long a forwarded request waits for the
// backend to start responding. A backend that accepts the connection but
// never sends headers fails the forward instead of blocking the client.
const DefaultForwardTimeout = 30 * time.Second

// Backend represents a single greeting-service replica with its health state,
// probe counters and connection tracking. The health monitor is the only
// writer of the health fields; the routing layer reads them on every request.
type Backend struct {
	url   *url.URL
	proxy *httputil.ReverseProxy

	mutex                sync.Mutex
	state                HealthState
	consecutiveSuccesses int
	consecutiveFailures  int
	lastProbe            time.Time
	activeConnections    int
}

// New creates a Backend for the given URL. Backends start in the Unknown
// state and only become eligible for selection once a probe passes.
func New(url *url.URL) *Backend {
	return NewWithForwardTimeout(url, DefaultForwardTimeout)
}

// NewWithForwardTimeout creates a Backend whose forwards fail with a gateway
// error once the backend takes longer than forwardTimeout to send response
// headers. Non-positive timeouts fall back to DefaultForwardTimeout.
func NewWithForwardTimeout(url *url.URL, forwardTimeout time.Duration) *Backend {
	if forwardTimeout <= 0 {
		forwardTimeout = DefaultForwardTimeout
	}

	proxy := httputil.NewSingleHostReverseProxy(url)
	proxy.Transport = newForwardTransport(forwardTimeout)

	return &Backend{
		url:   url,
		proxy: proxy,
		state: Unknown,
	}
}

func newForwardTransport(forwardTimeout time.Duration) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: forwardTimeout,
	}
}

// URL returns the backend server URL.
func (b *Backend) URL() *url.URL {
	return b.url
}

// ReverseProxy returns the HTTP reverse proxy for this backend.
func (b *Backend) ReverseProxy() *httputil.ReverseProxy {
	return b.proxy
}

// State returns the current health state.
func (b *Backend) State() HealthState {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.state
}

// IsHealthy reports whether the backend is eligible for selection.
func (b *Backend) IsHealthy() bool {
	return b.State() == Healthy
}

// RecordProbeSuccess records a passed probe and returns the updated
// consecutive-success count.
func (b *Backend) RecordProbeSuccess() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.consecutiveSuccesses++
	b.consecutiveFailures = 0
	b.lastProbe = time.Now()
	return b.consecutiveSuccesses
}

// RecordProbeFailure records a failed probe and returns the updated
// consecutive-failure count.
func (b *Backend) RecordProbeFailure() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.consecutiveFailures++
	b.consecutiveSuccesses = 0
	b.lastProbe = time.Now()
	return b.consecutiveFailures
}

// SetState updates the health state.
// Returns true if the state changed, false if it was already in that state.
func (b *Backend) SetState(state HealthState) (changed bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.state == state {
		return false
	}

	b.state = state
	return true
}

// LastProbe returns the time of the most recent probe, zero if never probed.
func (b *Backend) LastProbe() time.Time {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.lastProbe
}

// IncrementConn increments the active connection count.
func (b *Backend) IncrementConn() {
	b.mutex.Lock()
	b.activeConnections++
	b.mutex.Unlock()
}

// DecrementConn decrements the active connection count.
func (b *Backend) DecrementConn() {
	b.mutex.Lock()
	if b.activeConnections > 0 {
		b.activeConnections--
	}
	b.mutex.Unlock()
}

// ActiveConnections returns the current number of active connections.
func (b *Backend) ActiveConnections() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.activeConnections
}
