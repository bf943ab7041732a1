package main

import (
	"net/http"

	"github.com/akontos/hello-balancer/internal/handler"
	"github.com/akontos/hello-balancer/internal/metrics"
)

func setupRouter(loadBalancerHandler *handler.LoadBalancerHandler, collector *metrics.Collector) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/metrics", collector.Handler())
	mux.Handle("/", loadBalancerHandler)

	return mux
}
