package api

import (
	"os"
	"time"

	"gorm.io/gorm"

	"arlingtonfleet/fleetmaint/internal/auth"
	"arlingtonfleet/fleetmaint/internal/cache"
	"arlingtonfleet/fleetmaint/internal/catalog"
	"arlingtonfleet/fleetmaint/internal/docviewer"
	"arlingtonfleet/fleetmaint/internal/drive"
	"arlingtonfleet/fleetmaint/internal/metrics"
	"arlingtonfleet/fleetmaint/internal/mirror"
	"arlingtonfleet/fleetmaint/internal/state"
	"arlingtonfleet/fleetmaint/internal/store"
)

// Dependencies wires every layer together; handlers receive it instead
// of reaching for globals.
type Dependencies struct {
	Cache      cache.Interface
	Tokens     auth.TokenSource
	Drive      *drive.Client
	Store      *store.RecordStore
	Mirror     *mirror.Repository
	Catalog    *catalog.Catalog
	Controller *state.Controller
	Flow       *docviewer.Flow
	Sessions   *SessionManager
	Metrics    *metrics.MetricsRegistry
}

// InitDependencies builds the full dependency graph from the environment
// and the opened mirror database.
func InitDependencies(db *gorm.DB) (*Dependencies, error) {
	var c cache.Interface
	if os.Getenv("CACHE_BACKEND") == "redis" {
		redisCache, err := cache.NewRedisCache()
		if err != nil {
			return nil, err
		}
		c = redisCache
	} else {
		c = cache.NewMemoryCache(5*time.Minute, 10*time.Minute)
	}

	tokens := auth.NewClientCredentials(
		os.Getenv("IDP_TOKEN_URL"),
		os.Getenv("IDP_CLIENT_ID"),
		os.Getenv("IDP_CLIENT_SECRET"),
	)

	registry := metrics.NewMetricsRegistry()
	driveClient := drive.NewClient(drive.ConfigFromEnv(), tokens).WithMetrics(registry)
	recordStore := store.NewRecordStore(driveClient, c).WithMetrics(registry)
	mirrorRepo := mirror.NewRepository(db)
	cat := catalog.New(mirrorRepo)

	reader := docviewer.NewStatusReader(driveClient, cat).WithMetrics(registry)
	controller := state.NewController(recordStore, cat, reader, os.Getenv("APP_USER"))
	flow := docviewer.NewFlow(driveClient, controller)

	return &Dependencies{
		Cache:      c,
		Tokens:     tokens,
		Drive:      driveClient,
		Store:      recordStore,
		Mirror:     mirrorRepo,
		Catalog:    cat,
		Controller: controller,
		Flow:       flow,
		Sessions:   NewSessionManager(),
		Metrics:    registry,
	}, nil
}
