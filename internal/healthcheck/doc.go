// Package healthcheck implements the health monitor: a periodic prober that
// classifies each backend probe as Pass or Fail and moves backends between
// Healthy and Unhealthy with hysteresis, so a single transient failure never
// drops a replica from rotation.
package healthcheck
