package constants

import "testing"

func TestRecordsFileName(t *testing.T) {
	if got := RecordsFileName("IS710", 3); got != "maintenance-records-IS710-3.json" {
		t.Errorf("unexpected file name %q", got)
	}
}

func TestTraceabilityNames(t *testing.T) {
	if got := TraceabilityPDFName("LGT-5000.0210"); got != "FT-LGT-LGT-5000-0210.pdf" {
		t.Errorf("unexpected pdf name %q", got)
	}
	if got := TraceabilityXLSXName("V35-FREA-FREIN"); got != "FT-LGT-V35-FREA-FREIN.xlsx" {
		t.Errorf("unexpected xlsx name %q", got)
	}
}
