// Package metrics exports Prometheus metrics for the load balancer:
// forwarded request counts, durations and in-flight gauges per backend,
// backend health state, and health probe counts and durations. Metrics are
// registered on a private registry and served through Collector.Handler on
// the balancer's /metrics endpoint.
package metrics
