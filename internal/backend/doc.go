// Package backend models greeting-service replicas and the registry that
// tracks them. A Backend carries its health state, consecutive probe
// counters and a reverse proxy for request forwarding; the Pool is the
// shared table read by the routing layer and written by the health monitor.
package backend
