// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/onlyfringe/cliparse"
	"github.com/danielhkuo/onlyfringe/factcheck"
	"github.com/danielhkuo/onlyfringe/handlers"
	"github.com/danielhkuo/onlyfringe/idempotency"
	"github.com/danielhkuo/onlyfringe/metrics"
	"github.com/danielhkuo/onlyfringe/middleware"
	"github.com/danielhkuo/onlyfringe/store"
	"github.com/danielhkuo/onlyfringe/submission"
)

// Deps are the long-lived services the routes share. Idempotency and
// Metrics may be nil.
type Deps struct {
	Store       *store.Store
	Judge       factcheck.Judge
	Idempotency idempotency.Store
	Metrics     *metrics.Metrics
}

func NewRouter(cfg cliparse.Config, deps Deps) http.Handler {
	mux := http.NewServeMux()

	service := submission.NewService(deps.Store, deps.Judge, submission.Rules{
		MinSources:        cfg.MinSources,
		MinArgumentLength: cfg.MinArgumentLength,
		MaxArgumentLength: cfg.MaxArgumentLength,
		ApprovalThreshold: cfg.ApprovalThreshold,
	}, deps.Metrics)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(deps.Store)
	argumentHandler := handlers.NewArgumentHandler(deps.Store, service)
	healthHandler := handlers.NewHealthHandler(deps.Store, deps.Judge)

	// Submissions are throttled per client and may carry an Idempotency-Key
	limiter := middleware.NewRateLimiter(cfg.SubmitRate, cfg.SubmitBurst, deps.Metrics)
	idempotent := middleware.WithIdempotency(deps.Idempotency, deps.Metrics)
	submit := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(limiter.Limit(idempotent(h)))
	}

	// Service info
	mux.HandleFunc("GET /api", middleware.WithLogging(healthHandler.Welcome))
	mux.HandleFunc("GET /api/health", healthHandler.Health)

	// Users
	mux.HandleFunc("POST /api/users", middleware.WithLogging(userHandler.CreateUser))
	mux.HandleFunc("GET /api/users/{id}", middleware.WithLogging(userHandler.GetUser))

	// Arguments and rebuttals
	mux.HandleFunc("GET /api/arguments", middleware.WithLogging(argumentHandler.ListArguments))
	mux.HandleFunc("GET /api/arguments/{id}", middleware.WithLogging(argumentHandler.GetArgument))
	mux.HandleFunc("POST /api/arguments", submit(argumentHandler.SubmitArgument))
	mux.HandleFunc("POST /api/arguments/{id}/rebuttals", submit(argumentHandler.SubmitRebuttal))

	// Prometheus scrape endpoint
	mux.Handle("GET /metrics", deps.Metrics.Handler())

	return middleware.CORS(middleware.WithMetrics(deps.Metrics, mux))
}
