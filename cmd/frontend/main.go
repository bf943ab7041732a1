package main

import (
	"context"
	"os"

	"github.com/akontos/hello-balancer/internal/frontend"
)

// The frontend performs exactly one fetch through the routing layer and
// renders the result: the greeting on success, an error line otherwise.
// FRONTEND_TARGET points at the balancer (default http://localhost:8080).
func main() {
	target := os.Getenv("FRONTEND_TARGET")
	if target == "" {
		target = "http://localhost:8080"
	}

	model := frontend.NewModel()
	model.Render(os.Stdout)

	model.Run(context.Background(), frontend.NewClient(target, 0))
	model.Render(os.Stdout)

	if model.State() == frontend.Error {
		os.Exit(1)
	}
}
