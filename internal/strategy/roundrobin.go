package strategy

import (
	"sync/atomic"

	"github.com/akontos/hello-balancer/internal/backend"
)

type roundRobinStrategy struct {
	next atomic.Uint64
}

// NewRoundRobinStrategy returns the default strategy: backends are picked in
// sequence, giving an even split across a stable healthy set over time.
func NewRoundRobinStrategy() Strategy {
	return &roundRobinStrategy{}
}

func (rr *roundRobinStrategy) SelectBackend(backends []*backend.Backend) *backend.Backend {
	if len(backends) == 0 {
		return nil
	}

	n := rr.next.Add(1) - 1
	return backends[n%uint64(len(backends))]
}
