package docviewer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"arlingtonfleet/fleetmaint/internal/constants"
	"arlingtonfleet/fleetmaint/internal/drive"
	"arlingtonfleet/fleetmaint/internal/logging"
	"arlingtonfleet/fleetmaint/internal/models"
	"arlingtonfleet/fleetmaint/internal/pdfform"
)

// Session is one open traceability sheet. All edits and saves go through
// its mutex, so the autosave loop and explicit saves never interleave a
// partially applied edit into an upload.
type Session struct {
	flow        *Flow
	consistency string
	vehicleID   int
	recordID    string
	item        drive.Item

	mu      sync.Mutex
	doc     *pdfform.Document
	dirty   bool
	started bool

	stop      chan struct{}
	loopDone  chan struct{}
	closeOnce sync.Once
}

func newSession(f *Flow, consistency string, record models.MaintenanceRecord, item drive.Item, doc *pdfform.Document) *Session {
	return &Session{
		flow:        f,
		consistency: consistency,
		vehicleID:   record.VehicleID,
		recordID:    record.ID,
		item:        item,
		doc:         doc,
		started:     record.Status != models.StatusNotStarted,
		stop:        make(chan struct{}),
		loopDone:    make(chan struct{}),
	}
}

// RecordID identifies the record this session edits.
func (s *Session) RecordID() string { return s.recordID }

// Item returns the working copy being edited.
func (s *Session) Item() drive.Item { return s.item }

// Fields exports the sheet's current text field values.
func (s *Session) Fields() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Fields()
}

// Bytes returns the sheet's current content, for display.
func (s *Session) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Bytes()
}

// SetFields applies text field edits in memory. The next save uploads them.
func (s *Session) SetFields(values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.doc.SetFields(values); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// Stamp lays an annotation over the sheet, in memory.
func (s *Session) Stamp(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.doc.Stamp(text); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// Save uploads the current content over the working copy. The first
// successful save moves the record to "en cours".
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

func (s *Session) saveLocked(ctx context.Context) error {
	if err := s.flow.drive.Upload(ctx, s.item.ID, s.doc.Bytes(), "application/pdf"); err != nil {
		return fmt.Errorf("%s : %w", constants.MsgDocumentSaveFailed, err)
	}
	s.dirty = false

	if !s.started {
		if err := s.flow.updater.SetRecordStatusAt(ctx, s.consistency, s.vehicleID, s.recordID, models.StatusInProgress); err != nil {
			return fmt.Errorf("%s : %w", constants.MsgStatusUpdateFailed, err)
		}
		s.started = true
	}
	return nil
}

// Finish stamps the sheet, saves it, and moves the record to "terminé".
func (s *Session) Finish(ctx context.Context, stampText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stampText != "" {
		if err := s.doc.Stamp(stampText); err != nil {
			return err
		}
	}
	if err := s.saveLocked(ctx); err != nil {
		return err
	}
	if err := s.flow.updater.SetRecordStatusAt(ctx, s.consistency, s.vehicleID, s.recordID, models.StatusDone); err != nil {
		return fmt.Errorf("%s : %w", constants.MsgStatusUpdateFailed, err)
	}
	return nil
}

// Close stops the autosave loop and flushes unsaved edits.
func (s *Session) Close(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stop)
		<-s.loopDone

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.dirty {
			err = s.saveLocked(ctx)
		}
	})
	return err
}

func (s *Session) startAutosave(interval time.Duration) {
	if interval <= 0 {
		close(s.loopDone)
		return
	}
	go func() {
		defer close(s.loopDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.autosave()
			}
		}
	}()
}

func (s *Session) autosave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := s.saveLocked(ctx); err != nil {
		logging.Warn("autosave failed",
			"record_id", s.recordID,
			"file", s.item.Name,
			"error", err,
		)
	}
}
