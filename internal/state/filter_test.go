package state

import (
	"context"
	"testing"
	"time"

	"arlingtonfleet/fleetmaint/internal/catalog"
	"arlingtonfleet/fleetmaint/internal/models"
)

func TestFilteredRecords(t *testing.T) {
	folder, server := newFakeFolder()
	defer server.Close()
	c := newTestController(t, folder, server.URL)
	selectPair(t, c, models.DefaultConsistency, 1)

	first := builtinInput()
	first.Comment = "fuite d'huile sous le bogie"
	a, err := c.AddOrUpdateRecord(context.Background(), first)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	time.Sleep(2 * time.Millisecond)

	second := builtinInput()
	second.Comment = "remplacement du joint"
	b, err := c.AddOrUpdateRecord(context.Background(), second)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := c.SetRecordStatus(context.Background(), b.ID, models.StatusDone); err != nil {
		t.Fatalf("SetRecordStatus: %v", err)
	}

	t.Run("no filter matches everything", func(t *testing.T) {
		if got := c.FilteredRecords(Filter{}); len(got) != 2 {
			t.Errorf("expected 2 rows, got %d", len(got))
		}
	})

	t.Run("comment substring is case-insensitive", func(t *testing.T) {
		got := c.FilteredRecords(Filter{Comment: "HUILE"})
		if len(got) != 1 || got[0].ID != a.ID {
			t.Errorf("unexpected rows: %+v", got)
		}
	})

	t.Run("status is exact", func(t *testing.T) {
		got := c.FilteredRecords(Filter{Status: models.StatusDone})
		if len(got) != 1 || got[0].ID != b.ID {
			t.Errorf("unexpected rows: %+v", got)
		}
	})

	t.Run("system matches resolved name", func(t *testing.T) {
		got := c.FilteredRecords(Filter{System: catalog.BuiltinSystems[0].Name[:6]})
		if len(got) != 2 {
			t.Errorf("expected both rows, got %d", len(got))
		}
	})

	t.Run("date matches the calendar day", func(t *testing.T) {
		today := time.Now()
		if got := c.FilteredRecords(Filter{Date: &today}); len(got) != 2 {
			t.Errorf("expected both rows today, got %d", len(got))
		}
		yesterday := today.AddDate(0, 0, -1)
		if got := c.FilteredRecords(Filter{Date: &yesterday}); len(got) != 0 {
			t.Errorf("expected no rows yesterday, got %d", len(got))
		}
	})

	t.Run("user substring", func(t *testing.T) {
		if got := c.FilteredRecords(Filter{User: "mart"}); len(got) != 2 {
			t.Errorf("expected both rows for user, got %d", len(got))
		}
		if got := c.FilteredRecords(Filter{User: "autre"}); len(got) != 0 {
			t.Errorf("expected no rows, got %d", len(got))
		}
	})
}
