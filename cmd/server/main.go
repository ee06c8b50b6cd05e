package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"arlingtonfleet/fleetmaint/internal/logging"
	"arlingtonfleet/fleetmaint/internal/mirror"
	"arlingtonfleet/fleetmaint/internal/routes"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "development"
	}

	if err := logging.Init(appEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Fleetmaint starting up",
		"environment", appEnv,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	// Open the local SQLite mirror
	db, err := mirror.Open("")
	if err != nil {
		logging.Error("Failed to open mirror database", "error", err.Error())
		log.Fatalf("Failed to open mirror database: %v", err)
	}
	logging.Info("Mirror database ready")

	upSince := time.Now()

	// Initialize router with Chi
	// Note: dependencies are created in RegisterRoutes and wired into the handlers
	router, deps := routes.RegisterRoutes(db, upSince)
	defer deps.Sessions.CloseAll(context.Background())

	// Setup metrics endpoint outside of Chi router
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router) // Mount Chi router at root
	logging.Info("Prometheus metrics endpoint registered at /metrics")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logging.Info("Server starting",
		"port", port,
		"environment", appEnv,
	)

	log.Println("Starting server on :" + port)
	// No log.Fatal here: returning through main lets the deferred
	// session flush and log sync run.
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		logging.Error("Server stopped", "error", err.Error())
	}
}
