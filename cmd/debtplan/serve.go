package main

import (
	"context"

	"github.com/alejandrodnm/debtplan/config"
	"github.com/alejandrodnm/debtplan/internal/adapters/httpapi"
	"github.com/alejandrodnm/debtplan/internal/application/planner"
)

func runServer(ctx context.Context, p *planner.Planner, cfg config.ServerConfig) error {
	limiter := httpapi.NewIPLimiter(cfg.RequestsPerSecond, cfg.Burst)
	defer limiter.Stop()

	return httpapi.Serve(ctx, cfg.Addr, httpapi.NewHandler(p, limiter))
}
