package backend

// HealthState is the monitor-maintained availability state of a backend.
type HealthState int

const (
	// Unknown is the state of a backend that has not been probed yet,
	// for example right after startup or a monitor restart.
	Unknown HealthState = iota

	// Healthy means the backend is eligible for selection.
	Healthy

	// Unhealthy means the backend failed enough consecutive probes and
	// is excluded from selection until it recovers.
	Unhealthy
)

func (s HealthState) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Unhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}
