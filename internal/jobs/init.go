package jobs

import (
	"context"
	"os"
	"time"

	"arlingtonfleet/fleetmaint/internal/metrics"
	"arlingtonfleet/fleetmaint/internal/state"
)

// InitializeJobs initializes and starts all background jobs
func InitializeJobs(
	ctx context.Context,
	controller *state.Controller,
	metricsReg *metrics.MetricsRegistry,
) *RefreshJob {
	refreshJob := NewRefreshJob(controller, metricsReg)

	// Start scheduled refresh in background
	go refreshJob.RunScheduled(ctx, refreshInterval())

	return refreshJob
}

// refreshInterval reads REFRESH_INTERVAL (Go duration syntax), falling
// back to 5 minutes.
func refreshInterval() time.Duration {
	if raw := os.Getenv("REFRESH_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
	}
	return 5 * time.Minute
}
