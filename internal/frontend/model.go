package frontend

import (
	"context"
	"fmt"
	"io"
)

// State is the rendering state of the frontend.
type State int

const (
	Loading State = iota
	Success
	Error
)

func (s State) String() string {
	switch s {
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "loading"
	}
}

// Model is the frontend's state machine: it starts Loading, issues exactly
// one request, and settles into Success or Error on the first response.
// Once settled it never changes again; there is no retry or polling.
type Model struct {
	state   State
	message string
	reason  string
}

// NewModel returns a model in the Loading state.
func NewModel() *Model {
	return &Model{state: Loading}
}

// Run performs the single fetch and settles the model. Calling Run on an
// already settled model is a no-op.
func (m *Model) Run(ctx context.Context, client *Client) {
	if m.state != Loading {
		return
	}

	message, err := client.FetchMessage(ctx)
	if err != nil {
		m.state = Error
		m.reason = err.Error()
		return
	}

	m.state = Success
	m.message = message
}

// State returns the current state.
func (m *Model) State() State {
	return m.state
}

// Message returns the fetched greeting; empty unless the state is Success.
func (m *Model) Message() string {
	return m.message
}

// Reason returns the failure description; empty unless the state is Error.
func (m *Model) Reason() string {
	return m.reason
}

// Render writes the user-visible representation of the current state.
func (m *Model) Render(w io.Writer) {
	switch m.state {
	case Success:
		fmt.Fprintln(w, m.message)
	case Error:
		fmt.Fprintf(w, "Error: %s\n", m.reason)
	default:
		fmt.Fprintln(w, "Loading...")
	}
}
