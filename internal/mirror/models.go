package mirror

import "time"

// Preference is one UI setting (language, theme mode) keyed by name.
type Preference struct {
	Key       string    `gorm:"column:key;primaryKey;type:varchar(64)"`
	Value     string    `gorm:"column:value;type:text"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Preference) TableName() string {
	return "preferences"
}

// LocalSystemList holds the user-defined system catalog of one
// consistency, JSON-encoded. The default consistency never has a row.
type LocalSystemList struct {
	Consistency string    `gorm:"column:consistency;primaryKey;type:varchar(64)"`
	SystemsJSON string    `gorm:"column:systems_json;type:text"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (LocalSystemList) TableName() string {
	return "local_system_lists"
}

// RecordSnapshot is the last known record collection of one
// (consistency, vehicle) pair, JSON-encoded as stored remotely.
type RecordSnapshot struct {
	Consistency string    `gorm:"column:consistency;primaryKey;type:varchar(64)"`
	VehicleID   int       `gorm:"column:vehicle_id;primaryKey"`
	RecordsJSON string    `gorm:"column:records_json;type:text"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (RecordSnapshot) TableName() string {
	return "record_snapshots"
}
