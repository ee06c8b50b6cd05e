package workers

import (
	"context"
	"log"
	"time"

	"arlingtonfleet/fleetmaint/internal/mirror"
	"arlingtonfleet/fleetmaint/internal/state"
)

// MirrorFlushWorker periodically writes the in-memory record map into
// the local SQLite mirror, so a restart without connectivity still has
// the last known state to show.
type MirrorFlushWorker struct {
	controller *state.Controller
	repo       *mirror.Repository
}

func NewMirrorFlushWorker(controller *state.Controller, repo *mirror.Repository) *MirrorFlushWorker {
	return &MirrorFlushWorker{
		controller: controller,
		repo:       repo,
	}
}

// Start runs the flush loop until ctx is cancelled.
func (w *MirrorFlushWorker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.flush(ctx)
		case <-ctx.Done():
			// Final flush so shutdown captures the latest edits.
			w.flush(context.Background())
			log.Printf("[MirrorFlushWorker] Shutting down")
			return
		}
	}
}

func (w *MirrorFlushWorker) flush(ctx context.Context) {
	for consistency, slots := range w.controller.Snapshot() {
		for vehicleID, records := range slots {
			if len(records) == 0 {
				continue
			}
			if err := w.repo.SaveSnapshot(ctx, consistency, vehicleID, records); err != nil {
				log.Printf("[MirrorFlushWorker] Error saving snapshot %s/%d: %v", consistency, vehicleID, err)
			}
		}
	}
}
