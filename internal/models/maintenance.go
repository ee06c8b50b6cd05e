package models

import (
	"strconv"
	"time"
)

// Status of a traceability sheet attached to a maintenance record.
// Values are the French labels persisted in the record files.
type Status string

const (
	StatusNotStarted Status = "non commencé"
	StatusInProgress Status = "en cours"
	StatusDone       Status = "terminé"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	return s == StatusNotStarted || s == StatusInProgress || s == StatusDone
}

// Pending reports whether a record with this status belongs to the
// pending projection.
func (s Status) Pending() bool {
	return s == StatusNotStarted || s == StatusInProgress
}

// Operation is a maintenance procedure identified by its code.
type Operation struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	ProtocolURL     string `json:"protocolUrl,omitempty"`
	TraceabilityURL string `json:"traceabilityUrl,omitempty"`
}

// System is a maintainable subsystem of a vehicle, holding its operations.
type System struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Operations []Operation `json:"operations"`
}

// Operation returns the operation with the given id, if present.
func (s System) Operation(id string) (Operation, bool) {
	for _, op := range s.Operations {
		if op.ID == id {
			return op, true
		}
	}
	return Operation{}, false
}

// Vehicle is one car of the consist. The fleet is a fixed set of twelve.
type Vehicle struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	PlanImage string `json:"planImage"`
}

// Position of a record marker on the vehicle plan.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MaintenanceRecord is one maintenance act recorded against a vehicle,
// owned by a (consistency, vehicle) pair. The collection for a pair is
// persisted wholesale as a single JSON file in the document store.
type MaintenanceRecord struct {
	ID          string    `json:"id"`
	VehicleID   int       `json:"vehicleId"`
	SystemID    string    `json:"systemId"`
	OperationID string    `json:"operationId"`
	Position    Position  `json:"position"`
	Timestamp   time.Time `json:"timestamp"`
	Comment     string    `json:"comment,omitempty"`
	User        string    `json:"user,omitempty"`
	Status      Status    `json:"status"`
	PDFURL      string    `json:"pdfUrl,omitempty"`
}

// NewRecordID generates the time-based identifier used for new records:
// the creation instant in Unix milliseconds, as a decimal string.
func NewRecordID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10)
}

// PendingRecord is a projection row: a record joined with its consistency
// and the resolved system/operation names. When the referenced catalog
// entry no longer exists the raw ids are kept as names.
type PendingRecord struct {
	MaintenanceRecord
	Consistency   string `json:"consistency"`
	SystemName    string `json:"systemName"`
	OperationName string `json:"operationName"`
}

// DefaultConsistency is the consist configuration that uses the built-in
// system catalog. All other consistencies carry user-defined systems.
const DefaultConsistency = "IS710"

// Vehicles is the fixed fleet.
var Vehicles = []Vehicle{
	{ID: 1, Name: "Véhicule 1"},
	{ID: 2, Name: "Véhicule 2"},
	{ID: 3, Name: "Véhicule 3"},
	{ID: 4, Name: "Véhicule 4"},
	{ID: 5, Name: "Véhicule 5"},
	{ID: 6, Name: "Véhicule 6"},
	{ID: 7, Name: "Véhicule 7"},
	{ID: 8, Name: "Véhicule 8"},
	{ID: 9, Name: "Véhicule 9"},
	{ID: 10, Name: "Véhicule 10"},
	{ID: 11, Name: "Véhicule 11"},
	{ID: 12, Name: "Véhicule 12"},
}

// VehicleByID looks a vehicle up in the fixed fleet.
func VehicleByID(id int) (Vehicle, bool) {
	for _, v := range Vehicles {
		if v.ID == id {
			return v, true
		}
	}
	return Vehicle{}, false
}
