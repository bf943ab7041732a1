// Package greeting implements the backend service replica: a stateless HTTP
// responder with a single JSON message endpoint and a health endpoint, plus
// admin toggles used to exercise failover.
package greeting
