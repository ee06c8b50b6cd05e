// Package docviewer drives the protocol and traceability document flows:
// resolving drive files from catalog naming conventions, per-record
// working copies, autosaved editing sessions and status readback from
// traceability spreadsheets.
package docviewer

import (
	"strings"

	"arlingtonfleet/fleetmaint/internal/constants"
	"arlingtonfleet/fleetmaint/internal/drive"
)

// FindProtocol locates the protocol sheet of an operation. Files are
// named "{code}-...protocole....pdf"; when no name carries the word
// "protocole", any "{code}-*.pdf" is accepted.
func FindProtocol(items []drive.Item, operationID string) (drive.Item, bool) {
	prefix := strings.ToLower(operationID) + "-"

	var fallback drive.Item
	haveFallback := false
	for _, item := range items {
		name := strings.ToLower(strings.TrimSpace(item.Name))
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".pdf") {
			continue
		}
		if strings.Contains(name, "protocole") {
			return item, true
		}
		if !haveFallback {
			fallback = item
			haveFallback = true
		}
	}
	return fallback, haveFallback
}

// FindTraceabilityPDF locates the blank traceability template of a
// system, named "FT-LGT-{system}.pdf" with dots replaced by dashes.
func FindTraceabilityPDF(items []drive.Item, systemName string) (drive.Item, bool) {
	return findByName(items, constants.TraceabilityPDFName(systemName))
}

// FindTraceabilityXLSX locates a per-system traceability spreadsheet,
// named like the PDF template.
func FindTraceabilityXLSX(items []drive.Item, systemName string) (drive.Item, bool) {
	return findByName(items, constants.TraceabilityXLSXName(systemName))
}

// FindStatusSheet locates the signature spreadsheet of one operation:
// exactly "FT-LGT-{code}.xlsx", or failing that any .xlsx whose name
// contains the code.
func FindStatusSheet(items []drive.Item, operationID string) (drive.Item, bool) {
	if item, ok := findByName(items, constants.StatusSheetName(operationID)); ok {
		return item, true
	}
	code := strings.ToLower(operationID)
	for _, item := range items {
		name := strings.ToLower(strings.TrimSpace(item.Name))
		if strings.Contains(name, code) && strings.HasSuffix(name, ".xlsx") {
			return item, true
		}
	}
	return drive.Item{}, false
}

func findByName(items []drive.Item, name string) (drive.Item, bool) {
	want := strings.ToLower(name)
	for _, item := range items {
		if strings.ToLower(strings.TrimSpace(item.Name)) == want {
			return item, true
		}
	}
	return drive.Item{}, false
}

// FindByWebURL matches a previously attached working copy by its web
// link, the identity records persist across sessions.
func FindByWebURL(items []drive.Item, webURL string) (drive.Item, bool) {
	if webURL == "" {
		return drive.Item{}, false
	}
	for _, item := range items {
		if item.WebURL == webURL {
			return item, true
		}
	}
	return drive.Item{}, false
}
