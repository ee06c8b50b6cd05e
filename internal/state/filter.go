package state

import (
	"strings"
	"time"

	"arlingtonfleet/fleetmaint/internal/models"
)

// Filter narrows the current record list. Empty fields match everything;
// text fields match case-insensitive substrings of the resolved names,
// and Date matches records stamped on the same calendar day.
type Filter struct {
	System    string        `json:"system,omitempty"`
	Operation string        `json:"operation,omitempty"`
	Comment   string        `json:"comment,omitempty"`
	User      string        `json:"user,omitempty"`
	Status    models.Status `json:"status,omitempty"`
	Date      *time.Time    `json:"date,omitempty"`
}

// FilteredRecords applies the filter to the selected pair's list and
// returns rows with display names resolved.
func (c *Controller) FilteredRecords(f Filter) []models.PendingRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := []models.PendingRecord{}
	cons := c.selectedConsistency
	for _, r := range c.currentRecordsLocked() {
		row := c.projectionRowLocked(cons, r)
		if matches(row, f) {
			out = append(out, row)
		}
	}
	return out
}

func matches(row models.PendingRecord, f Filter) bool {
	if f.Status != "" && row.Status != f.Status {
		return false
	}
	if !containsFold(row.SystemName, f.System) {
		return false
	}
	if !containsFold(row.OperationName, f.Operation) {
		return false
	}
	if !containsFold(row.Comment, f.Comment) {
		return false
	}
	if !containsFold(row.User, f.User) {
		return false
	}
	if f.Date != nil && !sameDay(row.Timestamp, *f.Date) {
		return false
	}
	return true
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
