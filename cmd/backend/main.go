package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/akontos/hello-balancer/internal/greeting"
	"github.com/akontos/hello-balancer/internal/httpserver"
	"github.com/akontos/hello-balancer/pkg/logger"
)

// Configuration comes from the environment: BACKEND_ADDRESS (listen
// address), GREETING_MESSAGE (served payload), LOG_LEVEL and ENVIRONMENT.
func main() {
	address := envOr("BACKEND_ADDRESS", ":8081")
	environment := envOr("ENVIRONMENT", "dev")

	log := logger.New(envOr("LOG_LEVEL", "info"), false, environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	service := greeting.NewService(os.Getenv("GREETING_MESSAGE"), log)

	srv, err := httpserver.New(address, service.Routes())
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("Greeting replica listening", slog.String("address", address))

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			// Includes failure to bind the listen port, which is fatal.
			log.Error("Error starting replica", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
