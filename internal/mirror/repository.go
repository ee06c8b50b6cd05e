package mirror

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"arlingtonfleet/fleetmaint/internal/models"
)

// Preference keys.
const (
	PrefLanguage  = "lang"
	PrefThemeMode = "themeMode"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetPreference returns a preference value, or fallback when unset.
func (r *Repository) GetPreference(ctx context.Context, key, fallback string) (string, error) {
	var pref Preference
	err := r.db.WithContext(ctx).First(&pref, "key = ?", key).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fallback, nil
		}
		return fallback, fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	return pref.Value, nil
}

// SetPreference upserts a preference value.
func (r *Repository) SetPreference(ctx context.Context, key, value string) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&Preference{Key: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("failed to save preference %s: %w", key, err)
	}
	return nil
}

// LoadLocalSystems restores every user-defined system catalog.
func (r *Repository) LoadLocalSystems() (map[string][]models.System, error) {
	var lists []LocalSystemList
	if err := r.db.Find(&lists).Error; err != nil {
		return nil, fmt.Errorf("failed to load local systems: %w", err)
	}

	out := make(map[string][]models.System, len(lists))
	for _, list := range lists {
		var systems []models.System
		if err := json.Unmarshal([]byte(list.SystemsJSON), &systems); err != nil {
			return nil, fmt.Errorf("corrupt local systems for %s: %w", list.Consistency, err)
		}
		out[list.Consistency] = systems
	}
	return out, nil
}

// SaveLocalSystems replaces the stored catalogs with the given map.
// Runs in one transaction so a partial write never survives.
func (r *Repository) SaveLocalSystems(local map[string][]models.System) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&LocalSystemList{}).Error; err != nil {
			return fmt.Errorf("failed to clear local systems: %w", err)
		}
		for consistency, systems := range local {
			encoded, err := json.Marshal(systems)
			if err != nil {
				return err
			}
			row := LocalSystemList{Consistency: consistency, SystemsJSON: string(encoded)}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to save local systems for %s: %w", consistency, err)
			}
		}
		return nil
	})
}

// SaveSnapshot upserts the record collection of one pair.
func (r *Repository) SaveSnapshot(ctx context.Context, consistency string, vehicleID int, records []models.MaintenanceRecord) error {
	encoded, err := json.Marshal(records)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "consistency"}, {Name: "vehicle_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"records_json", "updated_at"}),
		}).
		Create(&RecordSnapshot{
			Consistency: consistency,
			VehicleID:   vehicleID,
			RecordsJSON: string(encoded),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s/%d: %w", consistency, vehicleID, err)
	}
	return nil
}

// LoadSnapshot returns the stored collection of one pair, or false when
// the pair has never been snapshotted.
func (r *Repository) LoadSnapshot(ctx context.Context, consistency string, vehicleID int) ([]models.MaintenanceRecord, bool, error) {
	var snap RecordSnapshot
	err := r.db.WithContext(ctx).
		First(&snap, "consistency = ? AND vehicle_id = ?", consistency, vehicleID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load snapshot %s/%d: %w", consistency, vehicleID, err)
	}

	var records []models.MaintenanceRecord
	if err := json.Unmarshal([]byte(snap.RecordsJSON), &records); err != nil {
		return nil, false, fmt.Errorf("corrupt snapshot %s/%d: %w", consistency, vehicleID, err)
	}
	return records, true, nil
}

// KnownConsistencies returns every consistency the mirror has seen,
// through a record snapshot or a local system list. Used to pre-seed
// the consistency list when the remote store is unreachable at startup.
func (r *Repository) KnownConsistencies(ctx context.Context) ([]string, error) {
	var fromSnapshots []string
	err := r.db.WithContext(ctx).
		Model(&RecordSnapshot{}).
		Distinct().
		Pluck("consistency", &fromSnapshots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot consistencies: %w", err)
	}

	var fromSystems []string
	err = r.db.WithContext(ctx).
		Model(&LocalSystemList{}).
		Distinct().
		Pluck("consistency", &fromSystems).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list local system consistencies: %w", err)
	}

	seen := make(map[string]bool, len(fromSnapshots)+len(fromSystems))
	out := make([]string, 0, len(fromSnapshots)+len(fromSystems))
	for _, cons := range append(fromSnapshots, fromSystems...) {
		if cons == "" || seen[cons] {
			continue
		}
		seen[cons] = true
		out = append(out, cons)
	}
	return out, nil
}

// DeleteSnapshots drops every snapshot of one consistency.
func (r *Repository) DeleteSnapshots(ctx context.Context, consistency string) error {
	err := r.db.WithContext(ctx).
		Delete(&RecordSnapshot{}, "consistency = ?", consistency).Error
	if err != nil {
		return fmt.Errorf("failed to delete snapshots for %s: %w", consistency, err)
	}
	return nil
}
