package drive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"arlingtonfleet/fleetmaint/internal/auth"
	"arlingtonfleet/fleetmaint/internal/metrics"
)

func testClient(serverURL string) *Client {
	c := NewClient(Config{
		BaseURL:  serverURL,
		SiteID:   "site-1",
		DriveID:  "drive-1",
		FolderID: "folder-1",
	}, auth.StaticTokenSource("test-token"))
	c.PollInterval = 2 * time.Millisecond
	return c
}

func TestListChildren_Success(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sites/site-1/drives/drive-1/items/folder-1/children" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(listResponse{Value: []Item{
			{Name: "consistencies.json", ID: "f1"},
			{Name: "FT-LGT-V35-FREA-FREIN.pdf", ID: "f2"},
		}})
	}))
	defer server.Close()

	items, err := testClient(server.URL).ListChildren(context.Background())
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("expected bearer token on request, got %q", gotAuth)
	}
}

func TestFindChild_CaseAndWhitespaceInsensitive(t *testing.T) {
	items := []Item{{Name: " FT-LGT-V35-FREA-FREIN.PDF ", ID: "f2"}}

	if _, ok := FindChild(items, "ft-lgt-v35-frea-frein.pdf"); !ok {
		t.Error("expected case-insensitive match")
	}
	if _, ok := FindChild(items, "ft-lgt-other.pdf"); ok {
		t.Error("expected no match for a different name")
	}
}

func TestListChildren_FoldsRemoteErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":"accessDenied","message":"Accès refusé"}}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).ListChildren(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Accès refusé") {
		t.Errorf("expected remote message in error, got %q", err.Error())
	}
}

func TestUploadNew_PutsContentUnderName(t *testing.T) {
	var gotPath, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	err := testClient(server.URL).UploadNew(context.Background(), "notes.json", []byte(`[]`), "application/json")
	if err != nil {
		t.Fatalf("UploadNew: %v", err)
	}
	if !strings.Contains(gotPath, "items/folder-1") || !strings.Contains(gotPath, "notes.json") || !strings.HasSuffix(gotPath, "content") {
		t.Errorf("unexpected upload path %s", gotPath)
	}
	if gotBody != "[]" {
		t.Errorf("unexpected body %q", gotBody)
	}
}

func TestCopy_PollsUntilCompleted(t *testing.T) {
	polls := 0
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/sites/site-1/drives/drive-1/items/tpl-1/copy", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Prefer") != "respond-async" {
			t.Errorf("expected respond-async preference")
		}
		w.Header().Set("Location", server.URL+"/monitor/1")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/monitor/1", func(w http.ResponseWriter, r *http.Request) {
		polls++
		status := "inProgress"
		if polls >= 3 {
			status = "completed"
		}
		json.NewEncoder(w).Encode(copyStatus{Status: status})
	})
	mux.HandleFunc("/sites/site-1/drives/drive-1/items/folder-1/children", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(listResponse{Value: []Item{
			{Name: "FT-LGT-V35-20240101120000.pdf", ID: "copy-1", WebURL: "https://example/copy-1"},
		}})
	})

	item, err := testClient(server.URL).Copy(context.Background(), "tpl-1", "FT-LGT-V35-20240101120000.pdf")
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if item.ID != "copy-1" {
		t.Errorf("expected resolved copy item, got %+v", item)
	}
	if polls != 3 {
		t.Errorf("expected 3 polls, got %d", polls)
	}
}

func TestCopy_TimesOutAfterMaxPolls(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/sites/site-1/drives/drive-1/items/tpl-1/copy", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", server.URL+"/monitor/1")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/monitor/1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(copyStatus{Status: "inProgress"})
	})

	c := testClient(server.URL)
	c.MaxPolls = 4

	_, err := c.Copy(context.Background(), "tpl-1", "copy.pdf")
	if !errors.Is(err, ErrCopyTimeout) {
		t.Fatalf("expected ErrCopyTimeout, got %v", err)
	}
}

func TestCopy_CancelledContextStopsPolling(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/sites/site-1/drives/drive-1/items/tpl-1/copy", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", server.URL+"/monitor/1")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/monitor/1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(copyStatus{Status: "inProgress"})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	c := testClient(server.URL)
	c.PollInterval = 2 * time.Millisecond
	c.MaxPolls = 1000

	_, err := c.Copy(ctx, "tpl-1", "copy.pdf")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context deadline error, got %v", err)
	}
}

func TestCopy_FailedStatusSurfacesMessage(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/sites/site-1/drives/drive-1/items/tpl-1/copy", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", server.URL+"/monitor/1")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/monitor/1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"failed","error":{"message":"quota exceeded"}}`))
	})

	_, err := testClient(server.URL).Copy(context.Background(), "tpl-1", "copy.pdf")
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected failure message, got %v", err)
	}
}

func TestClient_CountsRequestsAndOutcomes(t *testing.T) {
	registry := metrics.NewMetricsRegistry()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/children") {
			json.NewEncoder(w).Encode(listResponse{})
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	c := testClient(server.URL).WithMetrics(registry)
	if _, err := c.ListChildren(context.Background()); err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	if err := c.Delete(context.Background(), "nope"); err == nil {
		t.Fatal("expected delete error")
	}

	if got := testutil.ToFloat64(registry.DriveRequestsTotal.WithLabelValues("list_children", "ok")); got != 1 {
		t.Errorf("list_children ok count = %v", got)
	}
	if got := testutil.ToFloat64(registry.DriveRequestsTotal.WithLabelValues("delete", "error")); got != 1 {
		t.Errorf("delete error count = %v", got)
	}
}
