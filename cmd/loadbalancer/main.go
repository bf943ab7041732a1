package main

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/akontos/hello-balancer/config"
	"github.com/akontos/hello-balancer/internal/backend"
	"github.com/akontos/hello-balancer/internal/handler"
	"github.com/akontos/hello-balancer/internal/healthcheck"
	"github.com/akontos/hello-balancer/internal/httpserver"
	"github.com/akontos/hello-balancer/internal/loadbalancer"
	"github.com/akontos/hello-balancer/internal/metrics"
	"github.com/akontos/hello-balancer/internal/strategy"
	"github.com/akontos/hello-balancer/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool := backend.NewPool()
	if err := registerBackends(pool, cfg, log); err != nil {
		log.Error("Failed to register backends", slog.Any("err", err))
		os.Exit(1)
	}

	collector := metrics.NewCollector()

	monitor := healthcheck.NewMonitor(pool, healthcheck.Options{
		Interval:           cfg.ProbeInterval(),
		Timeout:            cfg.ProbeTimeout(),
		Path:               cfg.HealthCheck.Path,
		UnhealthyThreshold: cfg.HealthCheck.UnhealthyThreshold,
		HealthyThreshold:   cfg.HealthCheck.HealthyThreshold,
		Collector:          collector,
	}, log)
	go monitor.Start(ctx)

	strat := createStrategy(log, cfg.Strategy.Type)
	lb := loadbalancer.NewLoadBalancer(pool, strat)
	loadBalancerHandler := handler.NewLoadBalancerHandler(log, lb, collector)

	config.Watch(log, func(newCfg *config.Config) {
		if err := registerBackends(pool, newCfg, log); err != nil {
			log.Error("Backend reload failed", slog.Any("err", err))
		}
	})

	srv, err := httpserver.New(cfg.Server.Address, setupRouter(loadBalancerHandler, collector))
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("Load balancer listening",
		slog.String("address", cfg.Server.Address),
		slog.String("strategy", cfg.Strategy.Type),
		slog.Int("backends", pool.Size()))

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
			log.Error("Error starting load balancer", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

// registerBackends parses the configured backend URLs and installs them in
// the pool, preserving health state for URLs that were already registered.
func registerBackends(pool *backend.Pool, cfg *config.Config, log *slog.Logger) error {
	var backends []*backend.Backend

	for _, bc := range cfg.Backends {
		u, err := url.Parse(bc.URL)
		if err != nil {
			log.Error("Failed to parse backend URL",
				slog.String("url", bc.URL),
				slog.String("error", err.Error()))
			continue
		}

		backends = append(backends, backend.NewWithForwardTimeout(u, cfg.ForwardTimeout()))
	}

	if len(backends) == 0 {
		return errors.New("no valid backend URLs configured")
	}

	pool.Replace(backends)
	return nil
}

func createStrategy(logger *slog.Logger, strategyType string) strategy.Strategy {
	switch strategyType {
	case "round-robin":
		return strategy.NewRoundRobinStrategy()
	case "least-conn":
		return strategy.NewLeastConnStrategy()
	case "random":
		return strategy.NewRandomStrategy()
	default:
		logger.Warn("Unknown strategy, defaulting to round-robin", slog.String("requested", strategyType))
		return strategy.NewRoundRobinStrategy()
	}
}
