package routes

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"arlingtonfleet/fleetmaint/internal/api"
	"arlingtonfleet/fleetmaint/internal/jobs"
	"arlingtonfleet/fleetmaint/internal/logging"
	"arlingtonfleet/fleetmaint/internal/middleware"
	"arlingtonfleet/fleetmaint/internal/workers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func RegisterRoutes(db *gorm.DB, upSince time.Time) (http.Handler, *api.Dependencies) {

	// initialize Chi router
	r := chi.NewRouter()

	// Initialize dependencies using DI pattern
	deps, err := api.InitDependencies(db)
	if err != nil {
		panic("Failed to initialize dependencies: " + err.Error())
	}

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))
	r.Use(middleware.RateLimitMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	logging.Info("Router initialized with metrics and logging middleware")
	// health check
	r.Get("/healthCheck", api.HealthCheckHandler(db, deps.Tokens, upSince))

	// Initialize handlers with dependencies
	handlers := api.NewHandlers(deps)

	// Load state and start the background loops. The mirror's known
	// consistencies cover a start without connectivity.
	seed, err := deps.Mirror.KnownConsistencies(context.Background())
	if err != nil {
		logging.Warn("failed to read mirrored consistencies", "error", err.Error())
	}
	deps.Controller.Bootstrap(context.Background(), seed)
	jobs.InitializeJobs(context.Background(), deps.Controller, deps.Metrics)
	workers.InitWorkers(context.Background(), deps.Controller, deps.Mirror)

	// Register API routes
	RegisterAPIRoutes(r, handlers)

	return r, deps
}
