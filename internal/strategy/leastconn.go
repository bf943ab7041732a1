package strategy

import (
	"github.com/akontos/hello-balancer/internal/backend"
)

type leastConnStrategy struct{}

// NewLeastConnStrategy returns a strategy that routes each request to the
// backend with the fewest in-flight connections at decision time.
func NewLeastConnStrategy() Strategy {
	return &leastConnStrategy{}
}

func (lc *leastConnStrategy) SelectBackend(backends []*backend.Backend) *backend.Backend {
	if len(backends) == 0 {
		return nil
	}

	best := backends[0]
	bestConns := best.ActiveConnections()

	for _, b := range backends[1:] {
		if conns := b.ActiveConnections(); conns < bestConns {
			best = b
			bestConns = conns
		}
	}

	return best
}
