package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/looplab/fsm"
	"golang.org/x/sync/errgroup"

	"arlingtonfleet/fleetmaint/internal/catalog"
	"arlingtonfleet/fleetmaint/internal/logging"
	"arlingtonfleet/fleetmaint/internal/models"
	"arlingtonfleet/fleetmaint/internal/store"
)

var (
	ErrNoSelection        = errors.New("no consistency and vehicle selected")
	ErrUnknownConsistency = errors.New("unknown consistency")
	ErrUnknownVehicle     = errors.New("unknown vehicle")
	ErrRecordNotFound     = errors.New("record not found")
	ErrConsistencyExists  = errors.New("consistency already exists")
	ErrDefaultConsistency = errors.New("the default consistency cannot be deleted")
)

// StatusSyncer reconciles record statuses with their traceability sheets
// during loads. Implemented by the document viewer's status reader; a nil
// syncer skips the step.
type StatusSyncer interface {
	SyncStatuses(ctx context.Context, consistency string, records []models.MaintenanceRecord) []models.MaintenanceRecord
}

// RecordInput carries the editable fields of a record form submission.
// EditingID selects the record to replace; empty means append a new one.
type RecordInput struct {
	EditingID   string          `json:"editingId,omitempty"`
	SystemID    string          `json:"systemId"`
	OperationID string          `json:"operationId"`
	Comment     string          `json:"comment"`
	Position    models.Position `json:"position"`
}

// Selection is the externally visible navigation state.
type Selection struct {
	Screen      string `json:"screen"`
	Consistency string `json:"consistency,omitempty"`
	VehicleID   int    `json:"vehicleId,omitempty"`
	EditingID   string `json:"editingRecordId,omitempty"`
}

// Controller owns the in-memory consistency -> vehicle -> records map and
// the navigation state machine, and issues all reads/writes through the
// record store. Every mutation persists before it commits to memory, so a
// failed save leaves the displayed state equal to the stored state.
type Controller struct {
	store   *store.RecordStore
	catalog *catalog.Catalog
	syncer  StatusSyncer
	user    string

	mu            sync.Mutex
	screen        *fsm.FSM
	consistencies []string
	seeded        map[string]bool
	records       map[string]map[int][]models.MaintenanceRecord

	selectedConsistency string
	selectedVehicle     int
	editingID           string
}

// NewController builds the controller. user is stamped on records the
// way the original stamped the signed-in account name.
func NewController(s *store.RecordStore, cat *catalog.Catalog, syncer StatusSyncer, user string) *Controller {
	if user == "" {
		user = "Inconnu"
	}
	return &Controller{
		store:   s,
		catalog: cat,
		syncer:  syncer,
		user:    user,
		screen:  newScreenFSM(),
		seeded:  make(map[string]bool),
		records: make(map[string]map[int][]models.MaintenanceRecord),
	}
}

// Bootstrap loads the consistency list and prepares empty record slots.
// Called once at startup; RefreshAll fills the slots. seed carries
// consistencies known to the offline mirror, so a start without
// connectivity still shows them; the remote list stays authoritative
// and the union never persists back.
func (c *Controller) Bootstrap(ctx context.Context, seed []string) {
	consistencies := c.store.ListConsistencies(ctx)
	for _, cons := range seed {
		if !containsString(consistencies, cons) {
			consistencies = append(consistencies, cons)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cons := range seed {
		c.seeded[cons] = true
	}
	c.consistencies = consistencies
	for _, cons := range consistencies {
		c.ensureSlotsLocked(cons)
	}
}

func (c *Controller) ensureSlotsLocked(consistency string) {
	if _, ok := c.records[consistency]; ok {
		return
	}
	slots := make(map[int][]models.MaintenanceRecord, len(models.Vehicles))
	for _, v := range models.Vehicles {
		slots[v.ID] = []models.MaintenanceRecord{}
	}
	c.records[consistency] = slots
}

// Screen returns the current navigation screen.
func (c *Controller) Screen() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screen.Current()
}

// Selection returns the current navigation state.
func (c *Controller) Selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Selection{
		Screen:      c.screen.Current(),
		Consistency: c.selectedConsistency,
		VehicleID:   c.selectedVehicle,
		EditingID:   c.editingID,
	}
}

// Consistencies returns the known consistency list.
func (c *Controller) Consistencies() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.consistencies...)
}

// SelectConsistency moves from the consistency chooser to the vehicle
// chooser, clearing any vehicle selection and making sure record slots
// exist for every vehicle of the consist.
func (c *Controller) SelectConsistency(ctx context.Context, consistency string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !containsString(c.consistencies, consistency) {
		return fmt.Errorf("%w: %s", ErrUnknownConsistency, consistency)
	}
	if err := c.screen.Event(ctx, EventSelectConsistency); err != nil {
		return err
	}
	c.selectedConsistency = consistency
	c.selectedVehicle = 0
	c.editingID = ""
	c.ensureSlotsLocked(consistency)
	return nil
}

// SelectVehicle selects a vehicle of the current consistency and loads
// its records from the remote store, reconciling statuses against the
// traceability sheets.
func (c *Controller) SelectVehicle(ctx context.Context, vehicleID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selectedConsistency == "" {
		return ErrNoSelection
	}
	if _, ok := models.VehicleByID(vehicleID); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownVehicle, vehicleID)
	}
	if err := c.screen.Event(ctx, EventSelectVehicle); err != nil {
		return err
	}
	c.selectedVehicle = vehicleID
	c.editingID = ""

	records := c.store.ListRecords(ctx, c.selectedConsistency, vehicleID)
	if c.syncer != nil {
		records = c.syncer.SyncStatuses(ctx, c.selectedConsistency, records)
	}
	c.records[c.selectedConsistency][vehicleID] = records
	return nil
}

// Back returns to the consistency chooser from anywhere and clears the
// whole selection.
func (c *Controller) Back(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.screen.Event(ctx, EventBack); err != nil && !isNoTransition(err) {
		return err
	}
	c.selectedConsistency = ""
	c.selectedVehicle = 0
	c.editingID = ""
	return nil
}

// isNoTransition reports an fsm event that left the machine where it was,
// which Back treats as success on the chooser screen.
func isNoTransition(err error) bool {
	var noTransition fsm.NoTransitionError
	return errors.As(err, &noTransition)
}

// OpenForm opens the record form, optionally for editing an existing
// record of the current list.
func (c *Controller) OpenForm(ctx context.Context, editingID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if editingID != "" {
		if _, ok := findRecord(c.currentRecordsLocked(), editingID); !ok {
			return fmt.Errorf("%w: %s", ErrRecordNotFound, editingID)
		}
	}
	if err := c.screen.Event(ctx, EventOpenForm); err != nil {
		return err
	}
	c.editingID = editingID
	return nil
}

// CloseForm abandons the record form.
func (c *Controller) CloseForm(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.screen.Event(ctx, EventCloseForm); err != nil {
		return err
	}
	c.editingID = ""
	return nil
}

// OpenDocument and CloseDocument guard the document viewer screen; the
// viewer flow itself lives in the docviewer package.
func (c *Controller) OpenDocument(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editingID = ""
	return c.screen.Event(ctx, EventOpenDocument)
}

func (c *Controller) CloseDocument(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screen.Event(ctx, EventCloseDocument)
}

// AddOrUpdateRecord validates and persists a form submission against the
// current (consistency, vehicle) pair. Editing replaces exactly the
// matched record, preserving its status, timestamp and attached document;
// otherwise a new record is appended with status "non commencé".
func (c *Controller) AddOrUpdateRecord(ctx context.Context, input RecordInput) (models.MaintenanceRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selectedConsistency == "" || c.selectedVehicle == 0 {
		return models.MaintenanceRecord{}, ErrNoSelection
	}
	if input.SystemID == "" || input.OperationID == "" || input.Comment == "" {
		return models.MaintenanceRecord{}, fmt.Errorf("system, operation and comment are required")
	}
	system, ok := c.catalog.System(c.selectedConsistency, input.SystemID)
	if !ok {
		return models.MaintenanceRecord{}, fmt.Errorf("%w: %s", catalog.ErrSystemNotFound, input.SystemID)
	}
	if _, ok := system.Operation(input.OperationID); !ok {
		return models.MaintenanceRecord{}, fmt.Errorf("operation %s not part of system %s", input.OperationID, input.SystemID)
	}

	current := c.currentRecordsLocked()
	var updated []models.MaintenanceRecord
	var result models.MaintenanceRecord

	if input.EditingID != "" {
		found := false
		updated = make([]models.MaintenanceRecord, len(current))
		for i, r := range current {
			if r.ID == input.EditingID {
				r.SystemID = input.SystemID
				r.OperationID = input.OperationID
				r.Comment = input.Comment
				r.User = c.user
				found = true
				result = r
			}
			updated[i] = r
		}
		if !found {
			return models.MaintenanceRecord{}, fmt.Errorf("%w: %s", ErrRecordNotFound, input.EditingID)
		}
	} else {
		result = models.MaintenanceRecord{
			ID:          models.NewRecordID(time.Now()),
			VehicleID:   c.selectedVehicle,
			SystemID:    input.SystemID,
			OperationID: input.OperationID,
			Position:    input.Position,
			Timestamp:   time.Now(),
			Comment:     input.Comment,
			User:        c.user,
			Status:      models.StatusNotStarted,
		}
		updated = append(append([]models.MaintenanceRecord(nil), current...), result)
	}

	if err := c.store.SaveRecords(ctx, c.selectedConsistency, c.selectedVehicle, updated); err != nil {
		return models.MaintenanceRecord{}, err
	}
	c.records[c.selectedConsistency][c.selectedVehicle] = updated
	c.editingID = ""
	return result, nil
}

// DeleteRecord removes exactly the record with the given id from the
// current list and persists the remainder.
func (c *Controller) DeleteRecord(ctx context.Context, recordID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selectedConsistency == "" || c.selectedVehicle == 0 {
		return ErrNoSelection
	}

	current := c.currentRecordsLocked()
	updated := make([]models.MaintenanceRecord, 0, len(current))
	found := false
	for _, r := range current {
		if r.ID == recordID {
			found = true
			continue
		}
		updated = append(updated, r)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, recordID)
	}

	if err := c.store.SaveRecords(ctx, c.selectedConsistency, c.selectedVehicle, updated); err != nil {
		return err
	}
	c.records[c.selectedConsistency][c.selectedVehicle] = updated
	return nil
}

// SetRecordStatus updates one record's status within the current pair.
func (c *Controller) SetRecordStatus(ctx context.Context, recordID string, status models.Status) error {
	c.mu.Lock()
	cons, vid := c.selectedConsistency, c.selectedVehicle
	c.mu.Unlock()

	if cons == "" || vid == 0 {
		return ErrNoSelection
	}
	return c.SetRecordStatusAt(ctx, cons, vid, recordID, status)
}

// SetRecordStatusAt updates one record's status for an explicit pair.
// The document viewer flow calls this after its save/terminate actions,
// independent of what is currently selected.
func (c *Controller) SetRecordStatusAt(ctx context.Context, consistency string, vehicleID int, recordID string, status models.Status) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status %q", status)
	}
	return c.mutateAt(ctx, consistency, vehicleID, recordID, func(r *models.MaintenanceRecord) {
		r.Status = status
	})
}

// AttachDocument stores the per-record traceability copy's URL so later
// openings reuse the copy instead of re-copying the template.
func (c *Controller) AttachDocument(ctx context.Context, consistency string, vehicleID int, recordID, pdfURL string) error {
	return c.mutateAt(ctx, consistency, vehicleID, recordID, func(r *models.MaintenanceRecord) {
		r.PDFURL = pdfURL
	})
}

func (c *Controller) mutateAt(ctx context.Context, consistency string, vehicleID int, recordID string, mutate func(*models.MaintenanceRecord)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	slots, ok := c.records[consistency]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownConsistency, consistency)
	}
	current := slots[vehicleID]
	updated := make([]models.MaintenanceRecord, len(current))
	found := false
	for i, r := range current {
		if r.ID == recordID {
			mutate(&r)
			found = true
		}
		updated[i] = r
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, recordID)
	}

	if err := c.store.SaveRecords(ctx, consistency, vehicleID, updated); err != nil {
		return err
	}
	slots[vehicleID] = updated
	return nil
}

// CreateConsistency appends a new consistency, persists the list, and
// selects it so the caller can define its local systems.
func (c *Controller) CreateConsistency(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name == "" {
		return fmt.Errorf("consistency name is required")
	}
	if containsString(c.consistencies, name) {
		return fmt.Errorf("%w: %s", ErrConsistencyExists, name)
	}

	updated := append(append([]string(nil), c.consistencies...), name)
	if err := c.store.SaveConsistencies(ctx, updated); err != nil {
		return err
	}
	c.consistencies = updated
	c.ensureSlotsLocked(name)

	if c.screen.Current() == ScreenChooseConsistency {
		if err := c.screen.Event(ctx, EventSelectConsistency); err != nil {
			return err
		}
		c.selectedConsistency = name
		c.selectedVehicle = 0
	}
	return nil
}

// DeleteConsistency removes a consistency, its local systems and its
// in-memory records, and resets the selection when it was selected. The
// default consistency cannot be deleted.
func (c *Controller) DeleteConsistency(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name == models.DefaultConsistency {
		return ErrDefaultConsistency
	}
	if !containsString(c.consistencies, name) {
		return fmt.Errorf("%w: %s", ErrUnknownConsistency, name)
	}

	updated := make([]string, 0, len(c.consistencies))
	for _, cons := range c.consistencies {
		if cons != name {
			updated = append(updated, cons)
		}
	}
	if err := c.store.SaveConsistencies(ctx, updated); err != nil {
		return err
	}

	c.consistencies = updated
	delete(c.seeded, name)
	delete(c.records, name)
	c.catalog.DropConsistency(name)

	if c.selectedConsistency == name {
		if err := c.screen.Event(ctx, EventBack); err != nil && !isNoTransition(err) {
			return err
		}
		c.selectedConsistency = ""
		c.selectedVehicle = 0
		c.editingID = ""
	}
	return nil
}

// Records returns a copy of the loaded list for an explicit pair.
func (c *Controller) Records(consistency string, vehicleID int) []models.MaintenanceRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	slots, ok := c.records[consistency]
	if !ok {
		return []models.MaintenanceRecord{}
	}
	return append([]models.MaintenanceRecord{}, slots[vehicleID]...)
}

// CurrentRecords returns a copy of the selected pair's list.
func (c *Controller) CurrentRecords() []models.MaintenanceRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.MaintenanceRecord{}, c.currentRecordsLocked()...)
}

func (c *Controller) currentRecordsLocked() []models.MaintenanceRecord {
	if c.selectedConsistency == "" || c.selectedVehicle == 0 {
		return nil
	}
	return c.records[c.selectedConsistency][c.selectedVehicle]
}

// Pending projects every loaded record whose traceability sheet is not
// finished, across all consistencies and vehicles.
func (c *Controller) Pending() []models.PendingRecord {
	return c.project(func(s models.Status) bool { return s.Pending() })
}

// Done projects every loaded record whose traceability sheet is finished.
func (c *Controller) Done() []models.PendingRecord {
	return c.project(func(s models.Status) bool { return s == models.StatusDone })
}

func (c *Controller) project(keep func(models.Status) bool) []models.PendingRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := []models.PendingRecord{}
	for _, cons := range c.consistencies {
		slots, ok := c.records[cons]
		if !ok {
			continue
		}
		for _, v := range models.Vehicles {
			for _, r := range slots[v.ID] {
				if !keep(r.Status) {
					continue
				}
				out = append(out, c.projectionRowLocked(cons, r))
			}
		}
	}
	return out
}

// projectionRowLocked resolves display names, falling back to the raw ids
// when the referenced system or operation is gone from the catalog.
func (c *Controller) projectionRowLocked(consistency string, r models.MaintenanceRecord) models.PendingRecord {
	row := models.PendingRecord{
		MaintenanceRecord: r,
		Consistency:       consistency,
		SystemName:        r.SystemID,
		OperationName:     r.OperationID,
	}
	if system, ok := c.catalog.System(consistency, r.SystemID); ok {
		row.SystemName = system.Name
		if op, ok := system.Operation(r.OperationID); ok {
			row.OperationName = op.Name
		}
	}
	return row
}

// RefreshAll reloads the consistency list and every consistency × vehicle
// record collection from the remote store, replacing in-memory state only
// where the content actually differs.
func (c *Controller) RefreshAll(ctx context.Context) error {
	c.mu.Lock()
	known := append([]string(nil), c.consistencies...)
	seeded := make([]string, 0, len(c.seeded))
	for cons := range c.seeded {
		seeded = append(seeded, cons)
	}
	c.mu.Unlock()

	c.store.InvalidateAll(known)
	consistencies := c.store.ListConsistencies(ctx)
	// An unreachable store fails open to the default list; consistencies
	// the mirror remembers must survive that until explicitly deleted.
	for _, cons := range seeded {
		if !containsString(consistencies, cons) {
			consistencies = append(consistencies, cons)
		}
	}

	type pair struct {
		cons string
		vid  int
	}
	loaded := make(map[pair][]models.MaintenanceRecord)
	var loadedMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, cons := range consistencies {
		for _, v := range models.Vehicles {
			cons, vid := cons, v.ID
			g.Go(func() error {
				records := c.store.ListRecords(gctx, cons, vid)
				if c.syncer != nil {
					records = c.syncer.SyncStatuses(gctx, cons, records)
				}
				loadedMu.Lock()
				loaded[pair{cons, vid}] = records
				loadedMu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.consistencies = consistencies
	replaced := 0
	for k, records := range loaded {
		c.ensureSlotsLocked(k.cons)
		if sameRecords(c.records[k.cons][k.vid], records) {
			continue
		}
		c.records[k.cons][k.vid] = records
		replaced++
	}
	logging.Info("refresh completed",
		"consistencies", len(consistencies),
		"lists_replaced", replaced,
	)
	return nil
}

// Snapshot returns a deep copy of the whole record map, for the mirror
// worker's periodic flush.
func (c *Controller) Snapshot() map[string]map[int][]models.MaintenanceRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]map[int][]models.MaintenanceRecord, len(c.records))
	for cons, slots := range c.records {
		copied := make(map[int][]models.MaintenanceRecord, len(slots))
		for vid, records := range slots {
			copied[vid] = append([]models.MaintenanceRecord(nil), records...)
		}
		out[cons] = copied
	}
	return out
}

// sameRecords compares two lists by their JSON forms, the same cheap
// equality the refresh path has always used.
func sameRecords(a, b []models.MaintenanceRecord) bool {
	aj, errA := json.Marshal(a)
	bj, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(aj, bj)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func findRecord(records []models.MaintenanceRecord, id string) (models.MaintenanceRecord, bool) {
	for _, r := range records {
		if r.ID == id {
			return r, true
		}
	}
	return models.MaintenanceRecord{}, false
}
