package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"arlingtonfleet/fleetmaint/internal/cache"
	"arlingtonfleet/fleetmaint/internal/constants"
	"arlingtonfleet/fleetmaint/internal/drive"
	"arlingtonfleet/fleetmaint/internal/logging"
	"arlingtonfleet/fleetmaint/internal/metrics"
	"arlingtonfleet/fleetmaint/internal/models"
)

const cacheTTL = 5 * time.Minute

// RecordStore persists record collections and the consistency list as
// named JSON files in the remote document store.
//
// Read and write failures are asymmetric on purpose: reads degrade to
// empty data (logged, never surfaced), writes fail loudly with a
// description the caller shows to the user. Writes replace the whole
// collection; the last writer wins.
type RecordStore struct {
	drive   *drive.Client
	cache   cache.Interface
	metrics *metrics.MetricsRegistry
}

// NewRecordStore wires the store to a drive client and a cache. The cache
// holds the raw JSON of each file, keyed by file name, and is refreshed on
// every successful save.
func NewRecordStore(d *drive.Client, c cache.Interface) *RecordStore {
	return &RecordStore{drive: d, cache: c}
}

// WithMetrics attaches the Prometheus registry for cache hit/miss counts.
func (s *RecordStore) WithMetrics(m *metrics.MetricsRegistry) *RecordStore {
	s.metrics = m
	return s
}

// ListRecords returns the record collection for one (consistency, vehicle)
// pair. A missing file and any network or parse failure both yield an
// empty list; failures are logged only.
func (s *RecordStore) ListRecords(ctx context.Context, consistency string, vehicleID int) []models.MaintenanceRecord {
	name := constants.RecordsFileName(consistency, vehicleID)

	raw, err := s.loadFile(ctx, name)
	if err != nil {
		logging.Warn("failed to load records, degrading to empty list",
			"file", name, "error", err.Error())
		return []models.MaintenanceRecord{}
	}
	if raw == nil {
		return []models.MaintenanceRecord{}
	}

	var records []models.MaintenanceRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		logging.Warn("failed to parse records file, degrading to empty list",
			"file", name, "error", err.Error())
		return []models.MaintenanceRecord{}
	}
	return records
}

// SaveRecords overwrites the record collection for one (consistency,
// vehicle) pair, creating the file when absent.
func (s *RecordStore) SaveRecords(ctx context.Context, consistency string, vehicleID int, records []models.MaintenanceRecord) error {
	name := constants.RecordsFileName(consistency, vehicleID)

	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%s : %w", constants.MsgSaveRecordsFailed, err)
	}

	if err := s.saveFile(ctx, name, payload); err != nil {
		return fmt.Errorf("%s : %w", constants.MsgSaveRecordsFailed, err)
	}
	return nil
}

// ListConsistencies returns the consistency list, defaulting to the
// single default consistency when the file is absent or unreadable.
func (s *RecordStore) ListConsistencies(ctx context.Context) []string {
	raw, err := s.loadFile(ctx, constants.ConsistenciesFile)
	if err != nil {
		logging.Warn("failed to load consistencies, using default",
			"error", err.Error())
		return []string{models.DefaultConsistency}
	}
	if raw == nil {
		return []string{models.DefaultConsistency}
	}

	var consistencies []string
	if err := json.Unmarshal(raw, &consistencies); err != nil {
		logging.Warn("failed to parse consistencies file, using default",
			"error", err.Error())
		return []string{models.DefaultConsistency}
	}
	return consistencies
}

// SaveConsistencies overwrites the consistency list.
func (s *RecordStore) SaveConsistencies(ctx context.Context, consistencies []string) error {
	payload, err := json.Marshal(consistencies)
	if err != nil {
		return fmt.Errorf("%s : %w", constants.MsgSaveConsistenciesFailed, err)
	}

	if err := s.saveFile(ctx, constants.ConsistenciesFile, payload); err != nil {
		return fmt.Errorf("%s : %w", constants.MsgSaveConsistenciesFailed, err)
	}
	return nil
}

// loadFile resolves a file by name and returns its raw content, nil when
// the file does not exist. Cached content is served without touching the
// remote store.
func (s *RecordStore) loadFile(ctx context.Context, name string) ([]byte, error) {
	if val, found := s.cache.Get("file:" + name); found {
		if raw, ok := val.(string); ok {
			if s.metrics != nil {
				s.metrics.CacheHitsTotal.WithLabelValues("file").Inc()
			}
			return []byte(raw), nil
		}
	}
	if s.metrics != nil {
		s.metrics.CacheMissesTotal.WithLabelValues("file").Inc()
	}

	items, err := s.drive.ListChildren(ctx)
	if err != nil {
		return nil, err
	}

	item, ok := drive.FindChild(items, name)
	if !ok {
		return nil, nil
	}

	raw, err := s.drive.Download(ctx, item.DownloadURL)
	if err != nil {
		return nil, err
	}

	s.cache.Set("file:"+name, string(raw), cacheTTL)
	return raw, nil
}

// saveFile overwrites the named file, creating it when absent, and keeps
// the cache in step with what was written.
func (s *RecordStore) saveFile(ctx context.Context, name string, payload []byte) error {
	items, err := s.drive.ListChildren(ctx)
	if err != nil {
		return err
	}

	if item, ok := drive.FindChild(items, name); ok {
		err = s.drive.Upload(ctx, item.ID, payload, "application/json")
	} else {
		err = s.drive.UploadNew(ctx, name, payload, "application/json")
	}
	if err != nil {
		s.cache.Delete("file:" + name)
		return err
	}

	s.cache.Set("file:"+name, string(payload), cacheTTL)
	return nil
}

// Invalidate drops any cached copy of the records file for the pair; the
// next read goes to the remote store.
func (s *RecordStore) Invalidate(consistency string, vehicleID int) {
	s.cache.Delete("file:" + constants.RecordsFileName(consistency, vehicleID))
}

// InvalidateAll drops every cached records file plus the consistency
// list. Used before a full refresh so reads observe remote state.
func (s *RecordStore) InvalidateAll(consistencies []string) {
	s.cache.Delete("file:" + constants.ConsistenciesFile)
	for _, cons := range consistencies {
		for _, v := range models.Vehicles {
			s.Invalidate(cons, v.ID)
		}
	}
}
