// Package strategy defines the distribution policy interface used by the
// routing layer and implements the supported algorithms:
//
//   - Round Robin: sequential distribution across backends (default)
//   - Least Connections: routes to the backend with fewest active connections
//   - Random: uniform random backend selection
//
// Strategies receive the already-filtered healthy backend set from the
// routing layer; they never inspect health state themselves.
package strategy
