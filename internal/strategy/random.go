package strategy

import (
	"math/rand/v2"

	"github.com/akontos/hello-balancer/internal/backend"
)

type randomStrategy struct{}

// NewRandomStrategy returns a strategy that picks a backend uniformly at
// random on every request.
func NewRandomStrategy() Strategy {
	return &randomStrategy{}
}

func (rs *randomStrategy) SelectBackend(backends []*backend.Backend) *backend.Backend {
	if len(backends) == 0 {
		return nil
	}

	return backends[rand.IntN(len(backends))]
}
