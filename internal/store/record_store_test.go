package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"arlingtonfleet/fleetmaint/internal/auth"
	"arlingtonfleet/fleetmaint/internal/cache"
	"arlingtonfleet/fleetmaint/internal/constants"
	"arlingtonfleet/fleetmaint/internal/drive"
	"arlingtonfleet/fleetmaint/internal/models"
)

// fakeFolder simulates the remote maintenance folder: children listing,
// downloads, overwrites and named creates.
type fakeFolder struct {
	mu          sync.Mutex
	files       map[string][]byte
	failUploads bool
	failAll     bool

	listCalls int
	baseURL   string
}

func newFakeFolder() (*fakeFolder, *httptest.Server) {
	f := &fakeFolder{files: map[string][]byte{}}
	server := httptest.NewServer(http.HandlerFunc(f.handle))
	f.baseURL = server.URL
	return f, server
}

func (f *fakeFolder) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAll {
		http.Error(w, `{"error":{"message":"service indisponible"}}`, http.StatusServiceUnavailable)
		return
	}

	switch {
	case strings.HasSuffix(r.URL.Path, "/children"):
		f.listCalls++
		type item struct {
			Name        string `json:"name"`
			ID          string `json:"id"`
			DownloadURL string `json:"@microsoft.graph.downloadUrl"`
		}
		var items []item
		for name := range f.files {
			items = append(items, item{Name: name, ID: name, DownloadURL: f.baseURL + "/dl/" + url.PathEscape(name)})
		}
		json.NewEncoder(w).Encode(map[string]any{"value": items})

	case strings.HasPrefix(r.URL.Path, "/dl/"):
		name, _ := url.PathUnescape(strings.TrimPrefix(r.URL.Path, "/dl/"))
		content, ok := f.files[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(content)

	case r.Method == http.MethodPut:
		if f.failUploads {
			http.Error(w, `{"error":{"message":"verrouillé"}}`, http.StatusConflict)
			return
		}
		body, _ := io.ReadAll(r.Body)
		name := uploadName(r.URL.Path)
		f.files[name] = body
		w.WriteHeader(http.StatusCreated)

	default:
		http.NotFound(w, r)
	}
}

// uploadName extracts the target file name from either upload form:
// items/{id}/content or items/{folder}:/{name}:/content.
func uploadName(path string) string {
	if idx := strings.Index(path, ":/"); idx >= 0 {
		rest := strings.TrimPrefix(path[idx+2:], "/")
		rest = strings.TrimSuffix(rest, ":/content")
		name, _ := url.PathUnescape(rest)
		return name
	}
	parts := strings.Split(path, "/")
	// .../items/{id}/content
	return parts[len(parts)-2]
}

func newTestStore(serverURL string) *RecordStore {
	client := drive.NewClient(drive.Config{
		BaseURL:  serverURL,
		SiteID:   "site-1",
		DriveID:  "drive-1",
		FolderID: "folder-1",
	}, auth.StaticTokenSource("t"))
	return NewRecordStore(client, cache.NewMemoryCache(time.Minute, time.Minute))
}

func TestSaveAndListRecords_RoundTrip(t *testing.T) {
	folder, server := newFakeFolder()
	defer server.Close()
	s := newTestStore(server.URL)

	records := []models.MaintenanceRecord{{
		ID:          "1700000000000",
		VehicleID:   3,
		SystemID:    "frein",
		OperationID: "LGT-5100.0110",
		Comment:     "contrôle visuel",
		Status:      models.StatusNotStarted,
	}}

	if err := s.SaveRecords(context.Background(), "IS710", 3, records); err != nil {
		t.Fatalf("SaveRecords: %v", err)
	}
	if _, ok := folder.files["maintenance-records-IS710-3.json"]; !ok {
		t.Fatalf("expected per-pair file, have %v", folder.files)
	}

	got := s.ListRecords(context.Background(), "IS710", 3)
	if len(got) != 1 || got[0].ID != "1700000000000" || got[0].Status != models.StatusNotStarted {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestListRecords_MissingFileYieldsEmptyList(t *testing.T) {
	_, server := newFakeFolder()
	defer server.Close()
	s := newTestStore(server.URL)

	got := s.ListRecords(context.Background(), "IS710", 1)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", got)
	}
}

func TestListRecords_FailsOpenOnRemoteError(t *testing.T) {
	folder, server := newFakeFolder()
	defer server.Close()
	folder.failAll = true
	s := newTestStore(server.URL)

	got := s.ListRecords(context.Background(), "IS710", 1)
	if len(got) != 0 {
		t.Errorf("expected empty list on remote failure, got %#v", got)
	}
}

func TestSaveRecords_FailureIsLoudAndKeepsRemoteState(t *testing.T) {
	folder, server := newFakeFolder()
	defer server.Close()
	s := newTestStore(server.URL)

	original := []models.MaintenanceRecord{{ID: "a", VehicleID: 1, Status: models.StatusDone}}
	if err := s.SaveRecords(context.Background(), "IS710", 1, original); err != nil {
		t.Fatalf("seed save: %v", err)
	}

	folder.failUploads = true
	err := s.SaveRecords(context.Background(), "IS710", 1, []models.MaintenanceRecord{{ID: "b", VehicleID: 1}})
	if err == nil {
		t.Fatal("expected save error")
	}
	if !strings.Contains(err.Error(), constants.MsgSaveRecordsFailed) {
		t.Errorf("expected %q in error, got %q", constants.MsgSaveRecordsFailed, err.Error())
	}

	// The cache was dropped on failure, so the next read re-fetches what
	// the remote store actually holds.
	folder.failUploads = false
	got := s.ListRecords(context.Background(), "IS710", 1)
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("expected stored state preserved, got %+v", got)
	}
}

func TestListConsistencies_DefaultsWhenAbsent(t *testing.T) {
	_, server := newFakeFolder()
	defer server.Close()
	s := newTestStore(server.URL)

	got := s.ListConsistencies(context.Background())
	if len(got) != 1 || got[0] != models.DefaultConsistency {
		t.Errorf("expected default consistency, got %v", got)
	}
}

func TestSaveConsistencies_RoundTrip(t *testing.T) {
	folder, server := newFakeFolder()
	defer server.Close()
	s := newTestStore(server.URL)

	if err := s.SaveConsistencies(context.Background(), []string{"IS710", "IS720"}); err != nil {
		t.Fatalf("SaveConsistencies: %v", err)
	}
	if _, ok := folder.files[constants.ConsistenciesFile]; !ok {
		t.Fatalf("expected %s to exist", constants.ConsistenciesFile)
	}

	got := s.ListConsistencies(context.Background())
	if len(got) != 2 || got[1] != "IS720" {
		t.Errorf("round trip mismatch: %v", got)
	}
}

func TestListRecords_CachedReadSkipsRemote(t *testing.T) {
	folder, server := newFakeFolder()
	defer server.Close()
	s := newTestStore(server.URL)

	if err := s.SaveRecords(context.Background(), "IS710", 2, []models.MaintenanceRecord{{ID: "a"}}); err != nil {
		t.Fatalf("seed save: %v", err)
	}

	before := folder.listCalls
	_ = s.ListRecords(context.Background(), "IS710", 2)
	if folder.listCalls != before {
		t.Errorf("expected cached read, saw %d extra listings", folder.listCalls-before)
	}

	s.Invalidate("IS710", 2)
	_ = s.ListRecords(context.Background(), "IS710", 2)
	if folder.listCalls == before {
		t.Error("expected remote read after invalidation")
	}
}
