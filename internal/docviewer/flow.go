package docviewer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"arlingtonfleet/fleetmaint/internal/constants"
	"arlingtonfleet/fleetmaint/internal/drive"
	"arlingtonfleet/fleetmaint/internal/models"
	"arlingtonfleet/fleetmaint/internal/pdfform"
)

var (
	ErrProtocolUnavailable     = errors.New(constants.MsgProtocolUnavailable)
	ErrTraceabilityUnavailable = errors.New(constants.MsgTraceabilityUnavailable)
)

// RecordUpdater is the slice of the state controller the viewer needs:
// attaching a working copy to a record and moving its status as the
// sheet is worked on. Persisting before commit stays the controller's job.
type RecordUpdater interface {
	AttachDocument(ctx context.Context, consistency string, vehicleID int, recordID, pdfURL string) error
	SetRecordStatusAt(ctx context.Context, consistency string, vehicleID int, recordID string, status models.Status) error
}

// Flow opens protocol and traceability documents for records.
type Flow struct {
	drive   *drive.Client
	updater RecordUpdater

	// AutosaveInterval paces each session's background save loop.
	AutosaveInterval time.Duration
}

func NewFlow(d *drive.Client, updater RecordUpdater) *Flow {
	return &Flow{
		drive:            d,
		updater:          updater,
		AutosaveInterval: 30 * time.Second,
	}
}

// ProtocolView is a read-only protocol sheet.
type ProtocolView struct {
	Item  drive.Item `json:"item"`
	Pages int        `json:"pages"`
	Data  []byte     `json:"-"`
}

// OpenProtocol fetches the protocol sheet of an operation for display.
func (f *Flow) OpenProtocol(ctx context.Context, operationID string) (*ProtocolView, error) {
	items, err := f.drive.ListChildren(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s : %w", constants.MsgDocumentFetchFailed, err)
	}
	item, ok := FindProtocol(items, operationID)
	if !ok {
		return nil, ErrProtocolUnavailable
	}

	data, err := f.drive.Download(ctx, item.DownloadURL)
	if err != nil {
		return nil, fmt.Errorf("%s : %w", constants.MsgDocumentFetchFailed, err)
	}
	doc, err := pdfform.Load(data)
	if err != nil {
		return nil, err
	}
	pages, err := doc.PageCount()
	if err != nil {
		return nil, err
	}
	return &ProtocolView{Item: item, Pages: pages, Data: data}, nil
}

// OpenTraceability opens a record's editable traceability sheet. A record
// that already carries a working copy reopens it; otherwise the system's
// template is duplicated under a timestamped name, the copy is attached
// to the record, and editing starts on the copy. The template itself is
// never written.
func (f *Flow) OpenTraceability(ctx context.Context, consistency string, record models.MaintenanceRecord, systemName string) (*Session, error) {
	items, err := f.drive.ListChildren(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s : %w", constants.MsgDocumentFetchFailed, err)
	}

	item, ok := FindByWebURL(items, record.PDFURL)
	if !ok {
		item, err = f.createWorkingCopy(ctx, items, consistency, record, systemName)
		if err != nil {
			return nil, err
		}
	}

	data, err := f.drive.Download(ctx, item.DownloadURL)
	if err != nil {
		return nil, fmt.Errorf("%s : %w", constants.MsgDocumentFetchFailed, err)
	}
	doc, err := pdfform.Load(data)
	if err != nil {
		return nil, err
	}

	session := newSession(f, consistency, record, item, doc)
	session.startAutosave(f.AutosaveInterval)
	return session, nil
}

func (f *Flow) createWorkingCopy(ctx context.Context, items []drive.Item, consistency string, record models.MaintenanceRecord, systemName string) (drive.Item, error) {
	template, ok := FindTraceabilityPDF(items, systemName)
	if !ok {
		return drive.Item{}, ErrTraceabilityUnavailable
	}

	base := strings.TrimSuffix(template.Name, ".pdf")
	name := base + "-" + time.Now().Format(constants.CopyStampLayout) + ".pdf"

	copied, err := f.drive.Copy(ctx, template.ID, name)
	if err != nil {
		return drive.Item{}, fmt.Errorf("%s : %w", constants.MsgDocumentFetchFailed, err)
	}

	// The copy is only usable if the record remembers it. Roll it back
	// rather than leaving an orphan the record cannot find again.
	if err := f.updater.AttachDocument(ctx, consistency, record.VehicleID, record.ID, copied.WebURL); err != nil {
		_ = f.drive.Delete(ctx, copied.ID)
		return drive.Item{}, err
	}
	return copied, nil
}
