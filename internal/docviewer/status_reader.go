package docviewer

import (
	"bytes"
	"context"
	"strings"

	"github.com/xuri/excelize/v2"

	"arlingtonfleet/fleetmaint/internal/catalog"
	"arlingtonfleet/fleetmaint/internal/drive"
	"arlingtonfleet/fleetmaint/internal/logging"
	"arlingtonfleet/fleetmaint/internal/metrics"
	"arlingtonfleet/fleetmaint/internal/models"
)

// StatusReader reconciles record statuses with the "statut" column of
// signature spreadsheets. The spreadsheet is the source of truth for
// work actually performed on paper, so a sheet saying "terminé" wins
// over whatever the record last stored.
type StatusReader struct {
	drive   *drive.Client
	catalog *catalog.Catalog
	metrics *metrics.MetricsRegistry
}

func NewStatusReader(d *drive.Client, cat *catalog.Catalog) *StatusReader {
	return &StatusReader{drive: d, catalog: cat}
}

// WithMetrics attaches the Prometheus registry for sync change counts.
func (r *StatusReader) WithMetrics(m *metrics.MetricsRegistry) *StatusReader {
	r.metrics = m
	return r
}

// SyncStatuses returns the records with statuses updated from their
// operations' spreadsheets. Missing sheets and unreadable rows leave
// the corresponding records untouched.
func (r *StatusReader) SyncStatuses(ctx context.Context, consistency string, records []models.MaintenanceRecord) []models.MaintenanceRecord {
	if len(records) == 0 {
		return records
	}

	items, err := r.drive.ListChildren(ctx)
	if err != nil {
		logging.Warn("status sync skipped, folder listing failed", "consistency", consistency, "error", err)
		return records
	}

	// One sheet download per distinct operation.
	type lookup struct {
		status models.Status
		ok     bool
	}
	seen := make(map[string]lookup)

	out := make([]models.MaintenanceRecord, len(records))
	for i, record := range records {
		out[i] = record

		l, cached := seen[record.OperationID]
		if !cached {
			l.status, l.ok = r.operationStatus(ctx, consistency, record, items)
			seen[record.OperationID] = l
		}
		if l.ok {
			if l.status != out[i].Status && r.metrics != nil {
				r.metrics.StatusSyncChangesTotal.Inc()
			}
			out[i].Status = l.status
		}
	}
	return out
}

// operationStatus resolves and reads one operation's spreadsheet. The
// per-operation sheet ("FT-LGT-{code}.xlsx", or any .xlsx carrying the
// code) is authoritative even when the code never reappears in its
// rows; a per-system sheet only speaks for operations it lists.
func (r *StatusReader) operationStatus(ctx context.Context, consistency string, record models.MaintenanceRecord, items []drive.Item) (models.Status, bool) {
	item, perOperation := FindStatusSheet(items, record.OperationID)
	if !perOperation {
		system, found := r.catalog.System(consistency, record.SystemID)
		if !found {
			return "", false
		}
		var ok bool
		if item, ok = FindTraceabilityXLSX(items, system.Name); !ok {
			return "", false
		}
	}

	data, err := r.drive.Download(ctx, item.DownloadURL)
	if err != nil {
		logging.Warn("status sync download failed", "file", item.Name, "error", err)
		return "", false
	}

	status, ok, err := parseStatusSheet(data, record.OperationID, !perOperation)
	if err != nil {
		logging.Warn("status sync parse failed", "file", item.Name, "error", err)
		return "", false
	}
	return status, ok
}

// parseStatusSheet scans the first worksheet: the header row is the
// first row with a cell containing "statut". The data row is the first
// one carrying the operation code in any cell; when requireRow is false
// (a per-operation sheet) the first data row serves when no row carries
// the code.
func parseStatusSheet(data []byte, operationID string, requireRow bool) (models.Status, bool, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	sheetNames := f.GetSheetList()
	if len(sheetNames) == 0 {
		return "", false, nil
	}
	rows, err := f.GetRows(sheetNames[0])
	if err != nil {
		return "", false, err
	}

	statusCol := -1
	headerRow := -1
	for i, row := range rows {
		for j, cell := range row {
			if strings.Contains(strings.ToLower(cell), "statut") {
				statusCol = j
				headerRow = i
				break
			}
		}
		if statusCol >= 0 {
			break
		}
	}
	if statusCol < 0 {
		return "", false, nil
	}

	code := strings.ToLower(operationID)
	dataRow := -1
	for i, row := range rows[headerRow+1:] {
		for _, cell := range row {
			if strings.Contains(strings.ToLower(cell), code) {
				dataRow = headerRow + 1 + i
				break
			}
		}
		if dataRow >= 0 {
			break
		}
	}
	if dataRow < 0 {
		if requireRow || headerRow+1 >= len(rows) {
			return "", false, nil
		}
		dataRow = headerRow + 1
	}

	cell := ""
	if statusCol < len(rows[dataRow]) {
		cell = rows[dataRow][statusCol]
	}
	return statusFromCell(cell), true, nil
}

// statusFromCell maps a signature cell onto a record status. Anything
// the sheet tracks but does not mark is "non commencé".
func statusFromCell(cell string) models.Status {
	v := strings.ToLower(strings.TrimSpace(cell))
	switch {
	case strings.Contains(v, "en cours"):
		return models.StatusInProgress
	case strings.Contains(v, "terminé"):
		return models.StatusDone
	default:
		return models.StatusNotStarted
	}
}
