package workers

import (
	"context"
	"time"

	"arlingtonfleet/fleetmaint/internal/mirror"
	"arlingtonfleet/fleetmaint/internal/state"
)

type WorkersContainer struct {
	MirrorFlush *MirrorFlushWorker
}

func InitWorkers(
	ctx context.Context,
	controller *state.Controller,
	mirrorRepo *mirror.Repository,
) *WorkersContainer {
	flusher := NewMirrorFlushWorker(controller, mirrorRepo)

	// Start workers
	go flusher.Start(ctx, time.Minute)

	return &WorkersContainer{
		MirrorFlush: flusher,
	}
}
