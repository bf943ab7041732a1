package strategy

import (
	"github.com/akontos/hello-balancer/internal/backend"
)

// Strategy selects one backend from a non-empty healthy set.
// Implementations must be safe for concurrent use.
type Strategy interface {
	SelectBackend(backends []*backend.Backend) *backend.Backend
}
