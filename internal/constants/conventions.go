package constants

import (
	"fmt"
	"strings"
)

// File-name conventions inside the maintenance folder of the document
// store. Records and consistencies are JSON; protocol and traceability
// templates are PDF/XLSX named after operation codes and system names.
const (
	ConsistenciesFile = "consistencies.json"

	// TraceabilityPrefix starts every traceability template name.
	TraceabilityPrefix = "FT-LGT-"

	// CopyStampLayout is the suffix appended to per-record copies of a
	// traceability template: base name + "-" + stamp + ".pdf".
	CopyStampLayout = "20060102150405"
)

// RecordsFileName returns the JSON file holding the record collection of
// one (consistency, vehicle) pair.
func RecordsFileName(consistency string, vehicleID int) string {
	return fmt.Sprintf("maintenance-records-%s-%d.json", consistency, vehicleID)
}

// FormatSystemName maps a system name to its file-name form: dots become
// dashes, as in "LGT-5000.0210" -> "LGT-5000-0210".
func FormatSystemName(name string) string {
	return strings.ReplaceAll(name, ".", "-")
}

// TraceabilityPDFName is the editable traceability form template for a system.
func TraceabilityPDFName(systemName string) string {
	return TraceabilityPrefix + FormatSystemName(systemName) + ".pdf"
}

// TraceabilityXLSXName is the spreadsheet traceability template for a system.
func TraceabilityXLSXName(systemName string) string {
	return TraceabilityPrefix + FormatSystemName(systemName) + ".xlsx"
}

// StatusSheetName is the per-operation signature spreadsheet. The
// operation code keeps its dots, unlike system names.
func StatusSheetName(operationID string) string {
	return TraceabilityPrefix + operationID + ".xlsx"
}
