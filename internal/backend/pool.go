package backend

import (
	"sync"
)

// Pool is the registry of backends known to the routing layer. It is created
// at startup, shared between the health monitor and the request path, and
// torn down with the process. Backends are never removed on failure, only
// through a config reload.
type Pool struct {
	mutex    sync.RWMutex
	backends []*Backend
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// Add registers a backend with the pool.
func (p *Pool) Add(b *Backend) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.backends = append(p.backends, b)
}

// Snapshot returns a copy of the current backend set. Callers may iterate
// the slice without holding the pool lock.
func (p *Pool) Snapshot() []*Backend {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	backends := make([]*Backend, len(p.backends))
	copy(backends, p.backends)
	return backends
}

// Size returns the number of registered backends.
func (p *Pool) Size() int {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return len(p.backends)
}

// Replace swaps in a new backend set, carrying over the existing backend
// object (and therefore its health state and counters) for any URL that is
// present in both sets. Used on config reload.
func (p *Pool) Replace(newBackends []*Backend) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	existing := make(map[string]*Backend, len(p.backends))
	for _, b := range p.backends {
		existing[b.URL().String()] = b
	}

	merged := make([]*Backend, 0, len(newBackends))
	for _, b := range newBackends {
		if old, ok := existing[b.URL().String()]; ok {
			merged = append(merged, old)
			continue
		}
		merged = append(merged, b)
	}

	p.backends = merged
}
