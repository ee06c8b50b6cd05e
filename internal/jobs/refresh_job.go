package jobs

import (
	"context"
	"log"
	"time"

	"arlingtonfleet/fleetmaint/internal/metrics"
	"arlingtonfleet/fleetmaint/internal/state"
)

// RefreshJob periodically reloads every record collection from the
// document store so other clients' edits become visible without a
// manual refresh.
type RefreshJob struct {
	controller *state.Controller
	metricsReg *metrics.MetricsRegistry
}

func NewRefreshJob(controller *state.Controller, metricsReg *metrics.MetricsRegistry) *RefreshJob {
	return &RefreshJob{
		controller: controller,
		metricsReg: metricsReg,
	}
}

// Run performs one full refresh.
func (j *RefreshJob) Run(ctx context.Context) error {
	start := time.Now()
	if err := j.controller.RefreshAll(ctx); err != nil {
		return err
	}
	j.metricsReg.RefreshDuration.Observe(time.Since(start).Seconds())

	total := 0
	for _, slots := range j.controller.Snapshot() {
		for _, records := range slots {
			total += len(records)
		}
	}
	j.metricsReg.RecordsLoaded.Set(float64(total))
	return nil
}

// RunScheduled runs the refresh job on a schedule (e.g., every 5 minutes)
func (j *RefreshJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run immediately on start so the UI has data before the first tick
	if err := j.Run(ctx); err != nil {
		log.Printf("[RefreshJob] Error in initial run: %v", err)
	}

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				log.Printf("[RefreshJob] Error in scheduled run: %v", err)
			}
		case <-ctx.Done():
			log.Printf("[RefreshJob] Shutting down scheduled refresh")
			return
		}
	}
}
