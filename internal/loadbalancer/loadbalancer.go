package loadbalancer

import (
	"errors"
	"sync"

	"github.com/akontos/hello-balancer/internal/backend"
	"github.com/akontos/hello-balancer/internal/strategy"
)

// ErrNoHealthyBackend is returned when every backend in the pool is
// Unhealthy or still Unknown.
var ErrNoHealthyBackend = errors.New("no healthy backend available")

// LoadBalancer turns the pool's live health view into per-request routing
// decisions. Each decision is recomputed from a fresh pool snapshot; nothing
// is cached across requests.
type LoadBalancer struct {
	pool     *backend.Pool
	strategy strategy.Strategy
	mutex    sync.Mutex
}

// NewLoadBalancer creates a load balancer over the given pool.
func NewLoadBalancer(pool *backend.Pool, strategy strategy.Strategy) *LoadBalancer {
	return &LoadBalancer{
		pool:     pool,
		strategy: strategy,
	}
}

// GetAndReserveServer selects one healthy backend and reserves a connection
// slot on it. The caller must release the slot with DecrementConn when the
// forwarded request completes.
func (lb *LoadBalancer) GetAndReserveServer() (*backend.Backend, error) {
	lb.mutex.Lock()

	healthy := filterHealthy(lb.pool.Snapshot())
	if len(healthy) == 0 {
		lb.mutex.Unlock()
		return nil, ErrNoHealthyBackend
	}

	chosen := lb.strategy.SelectBackend(healthy)
	lb.mutex.Unlock()

	if chosen == nil {
		return nil, errors.New("strategy returned nil backend")
	}

	chosen.IncrementConn()
	return chosen, nil
}

// Strategy returns the configured distribution strategy.
func (lb *LoadBalancer) Strategy() strategy.Strategy {
	return lb.strategy
}

func filterHealthy(backends []*backend.Backend) []*backend.Backend {
	healthy := make([]*backend.Backend, 0, len(backends))

	for _, b := range backends {
		if b.IsHealthy() {
			healthy = append(healthy, b)
		}
	}

	return healthy
}
