// Package handler implements the main HTTP request handler for the load balancer.
// It coordinates strategy selection, backend routing, and error handling.
package handler
