// Package frontend implements the demo's client side: a one-shot fetch of
// the greeting through the routing layer, modeled as a Loading to
// Success-or-Error state machine that settles on the first response.
package frontend
