package docviewer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"arlingtonfleet/fleetmaint/internal/auth"
	"arlingtonfleet/fleetmaint/internal/drive"
	"arlingtonfleet/fleetmaint/internal/models"
)

// minimalPDF is a one-page PDF without an AcroForm, the smallest content
// the viewer flow will accept as a template.
const minimalPDFBase64 = `JVBERi0xLjQKJeLjz9MKMSAwIG9iago8PCAvVHlwZSAvQ2F0YWxvZyAvUGFnZXMgMiAwIFIgPj4K
ZW5kb2JqCjIgMCBvYmoKPDwgL1R5cGUgL1BhZ2VzIC9LaWRzIFszIDAgUl0gL0NvdW50IDEgPj4K
ZW5kb2JqCjMgMCBvYmoKPDwgL1R5cGUgL1BhZ2UgL1BhcmVudCAyIDAgUiAvTWVkaWFCb3ggWzAg
MCA1OTUgODQyXSAvQ29udGVudHMgNCAwIFIgL1Jlc291cmNlcyA8PCA+PiA+PgplbmRvYmoKNCAw
IG9iago8PCAvTGVuZ3RoIDMgPj4Kc3RyZWFtCnEgUQplbmRzdHJlYW0KZW5kb2JqCnhyZWYKMCA1
CjAwMDAwMDAwMDAgNjU1MzUgZiAKMDAwMDAwMDAxNSAwMDAwMCBuIAowMDAwMDAwMDY0IDAwMDAw
IG4gCjAwMDAwMDAxMjEgMDAwMDAgbiAKMDAwMDAwMDIyNSAwMDAwMCBuIAp0cmFpbGVyCjw8IC9T
aXplIDUgL1Jvb3QgMSAwIFIgPj4Kc3RhcnR4cmVmCjI3NwolJUVPRgo=`

func minimalPDF(t *testing.T) []byte {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(minimalPDFBase64)
	if err != nil {
		t.Fatalf("decoding fixture: %v", err)
	}
	return data
}

// fakeDrive simulates the maintenance folder with listing, download,
// upload, delete and synchronous copy behind the async monitor protocol.
// Item ids equal file names.
type fakeDrive struct {
	mu      sync.Mutex
	files   map[string][]byte
	copies  int
	deletes []string
	baseURL string
}

func newFakeDrive() (*fakeDrive, *httptest.Server) {
	f := &fakeDrive{files: map[string][]byte{}}
	server := httptest.NewServer(http.HandlerFunc(f.handle))
	f.baseURL = server.URL
	return f, server
}

func (f *fakeDrive) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.HasSuffix(r.URL.Path, "/children"):
		type item struct {
			Name        string `json:"name"`
			ID          string `json:"id"`
			DownloadURL string `json:"@microsoft.graph.downloadUrl"`
			WebURL      string `json:"webUrl"`
		}
		var items []item
		for name := range f.files {
			items = append(items, item{
				Name:        name,
				ID:          name,
				DownloadURL: f.baseURL + "/dl/" + url.PathEscape(name),
				WebURL:      "https://web.example/" + url.PathEscape(name),
			})
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

	case strings.HasSuffix(r.URL.Path, "/copy") && r.Method == http.MethodPost:
		parts := strings.Split(r.URL.Path, "/")
		srcID := parts[len(parts)-2]
		var req struct {
			Name string `json:"name"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		src, ok := f.files[srcID]
		if !ok {
			http.NotFound(w, r)
			return
		}
		f.files[req.Name] = append([]byte(nil), src...)
		f.copies++
		w.Header().Set("Location", f.baseURL+"/monitor/1")
		w.WriteHeader(http.StatusAccepted)

	case strings.HasPrefix(r.URL.Path, "/monitor/"):
		json.NewEncoder(w).Encode(map[string]string{"status": "completed"})

	case r.Method == http.MethodPut:
		parts := strings.Split(r.URL.Path, "/")
		id := parts[len(parts)-2]
		body, _ := io.ReadAll(r.Body)
		f.files[id] = body
		w.WriteHeader(http.StatusOK)

	case r.Method == http.MethodDelete:
		parts := strings.Split(r.URL.Path, "/")
		id := parts[len(parts)-1]
		delete(f.files, id)
		f.deletes = append(f.deletes, id)
		w.WriteHeader(http.StatusNoContent)

	default:
		http.NotFound(w, r)
	}
}

func (f *fakeDrive) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for name := range f.files {
		out = append(out, name)
	}
	return out
}

// fakeUpdater records the attach and status calls the flow issues.
type fakeUpdater struct {
	mu        sync.Mutex
	attached  []string
	statuses  []models.Status
	attachErr error
}

func (u *fakeUpdater) AttachDocument(ctx context.Context, consistency string, vehicleID int, recordID, pdfURL string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.attachErr != nil {
		return u.attachErr
	}
	u.attached = append(u.attached, pdfURL)
	return nil
}

func (u *fakeUpdater) SetRecordStatusAt(ctx context.Context, consistency string, vehicleID int, recordID string, status models.Status) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.statuses = append(u.statuses, status)
	return nil
}

func newTestFlow(serverURL string, updater RecordUpdater) *Flow {
	client := drive.NewClient(drive.Config{
		BaseURL: serverURL, SiteID: "s", DriveID: "d", FolderID: "f",
	}, auth.StaticTokenSource("t"))
	client.PollInterval = 2 * time.Millisecond

	f := NewFlow(client, updater)
	f.AutosaveInterval = 0 // sessions under test save explicitly
	return f
}

func testRecord() models.MaintenanceRecord {
	return models.MaintenanceRecord{
		ID:          "1700000000000",
		VehicleID:   3,
		SystemID:    "frein",
		OperationID: "LGT-5000.0210",
		Status:      models.StatusNotStarted,
	}
}

func TestOpenTraceability_CreatesTimestampedCopy(t *testing.T) {
	folder, server := newFakeDrive()
	defer server.Close()
	folder.files["FT-LGT-V35-FREA-FREIN.pdf"] = minimalPDF(t)

	updater := &fakeUpdater{}
	flow := newTestFlow(server.URL, updater)

	session, err := flow.OpenTraceability(context.Background(), "IS710", testRecord(), "V35-FREA-FREIN")
	if err != nil {
		t.Fatalf("OpenTraceability: %v", err)
	}
	defer session.Close(context.Background())

	name := session.Item().Name
	if !strings.HasPrefix(name, "FT-LGT-V35-FREA-FREIN-") || !strings.HasSuffix(name, ".pdf") {
		t.Errorf("unexpected copy name %q", name)
	}
	if folder.copies != 1 {
		t.Errorf("expected one copy, got %d", folder.copies)
	}
	if len(updater.attached) != 1 {
		t.Fatalf("expected the copy attached to the record, got %v", updater.attached)
	}

	fields, err := session.Fields()
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	if len(fields) != 0 {
		t.Errorf("template has no form fields, got %v", fields)
	}
}

func TestOpenTraceability_ReusesAttachedCopy(t *testing.T) {
	folder, server := newFakeDrive()
	defer server.Close()
	folder.files["FT-LGT-V35-FREA-FREIN.pdf"] = minimalPDF(t)
	folder.files["FT-LGT-V35-FREA-FREIN-20260102150405.pdf"] = minimalPDF(t)

	updater := &fakeUpdater{}
	flow := newTestFlow(server.URL, updater)

	record := testRecord()
	record.PDFURL = "https://web.example/" + url.PathEscape("FT-LGT-V35-FREA-FREIN-20260102150405.pdf")

	session, err := flow.OpenTraceability(context.Background(), "IS710", record, "V35-FREA-FREIN")
	if err != nil {
		t.Fatalf("OpenTraceability: %v", err)
	}
	defer session.Close(context.Background())

	if folder.copies != 0 {
		t.Errorf("expected no new copy, got %d", folder.copies)
	}
	if session.Item().Name != "FT-LGT-V35-FREA-FREIN-20260102150405.pdf" {
		t.Errorf("expected the attached copy reopened, got %s", session.Item().Name)
	}
}

func TestOpenTraceability_MissingTemplate(t *testing.T) {
	_, server := newFakeDrive()
	defer server.Close()

	flow := newTestFlow(server.URL, &fakeUpdater{})

	_, err := flow.OpenTraceability(context.Background(), "IS710", testRecord(), "V35-FREA-FREIN")
	if !errors.Is(err, ErrTraceabilityUnavailable) {
		t.Fatalf("expected ErrTraceabilityUnavailable, got %v", err)
	}
}

func TestOpenTraceability_AttachFailureRollsBackCopy(t *testing.T) {
	folder, server := newFakeDrive()
	defer server.Close()
	folder.files["FT-LGT-V35-FREA-FREIN.pdf"] = minimalPDF(t)

	updater := &fakeUpdater{attachErr: errors.New("sauvegarde refusée")}
	flow := newTestFlow(server.URL, updater)

	if _, err := flow.OpenTraceability(context.Background(), "IS710", testRecord(), "V35-FREA-FREIN"); err == nil {
		t.Fatal("expected attach failure to surface")
	}
	if len(folder.deletes) != 1 {
		t.Errorf("expected the orphan copy deleted, deletes=%v", folder.deletes)
	}
	if got := folder.names(); len(got) != 1 || got[0] != "FT-LGT-V35-FREA-FREIN.pdf" {
		t.Errorf("expected only the template left, got %v", got)
	}
}

func TestSession_SaveMovesRecordInProgressOnce(t *testing.T) {
	folder, server := newFakeDrive()
	defer server.Close()
	folder.files["FT-LGT-V35-FREA-FREIN.pdf"] = minimalPDF(t)

	updater := &fakeUpdater{}
	flow := newTestFlow(server.URL, updater)

	session, err := flow.OpenTraceability(context.Background(), "IS710", testRecord(), "V35-FREA-FREIN")
	if err != nil {
		t.Fatalf("OpenTraceability: %v", err)
	}
	defer session.Close(context.Background())

	if err := session.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := session.Save(context.Background()); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	if len(updater.statuses) != 1 || updater.statuses[0] != models.StatusInProgress {
		t.Errorf("expected one en-cours transition, got %v", updater.statuses)
	}
}

func TestSession_FinishStampsAndTerminates(t *testing.T) {
	folder, server := newFakeDrive()
	defer server.Close()
	folder.files["FT-LGT-V35-FREA-FREIN.pdf"] = minimalPDF(t)

	updater := &fakeUpdater{}
	flow := newTestFlow(server.URL, updater)

	session, err := flow.OpenTraceability(context.Background(), "IS710", testRecord(), "V35-FREA-FREIN")
	if err != nil {
		t.Fatalf("OpenTraceability: %v", err)
	}
	defer session.Close(context.Background())

	before := len(minimalPDF(t))
	if err := session.Finish(context.Background(), "Terminé le 12/03/2026"); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	want := []models.Status{models.StatusInProgress, models.StatusDone}
	if len(updater.statuses) != 2 || updater.statuses[0] != want[0] || updater.statuses[1] != want[1] {
		t.Errorf("expected %v, got %v", want, updater.statuses)
	}

	// The stamped content was uploaded over the working copy.
	folder.mu.Lock()
	uploaded := folder.files[session.Item().ID]
	folder.mu.Unlock()
	if len(uploaded) == before {
		t.Error("expected the uploaded copy to carry the stamp")
	}
}

func TestSession_CloseFlushesUnsavedEdits(t *testing.T) {
	folder, server := newFakeDrive()
	defer server.Close()
	folder.files["FT-LGT-V35-FREA-FREIN.pdf"] = minimalPDF(t)

	updater := &fakeUpdater{}
	flow := newTestFlow(server.URL, updater)

	session, err := flow.OpenTraceability(context.Background(), "IS710", testRecord(), "V35-FREA-FREIN")
	if err != nil {
		t.Fatalf("OpenTraceability: %v", err)
	}

	// Edit without saving; closing must upload the dirty content.
	before := len(minimalPDF(t))
	if err := session.Stamp("Contrôle en cours"); err != nil {
		t.Fatalf("Stamp: %v", err)
	}
	if err := session.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	folder.mu.Lock()
	uploaded := folder.files[session.Item().ID]
	folder.mu.Unlock()
	if len(uploaded) == before {
		t.Error("expected the closed session to upload its edits")
	}
	if len(updater.statuses) != 1 || updater.statuses[0] != models.StatusInProgress {
		t.Errorf("expected the flush to start the record, got %v", updater.statuses)
	}
}

func TestOpenProtocol(t *testing.T) {
	folder, server := newFakeDrive()
	defer server.Close()
	folder.files["LGT-5000.0210-protocole.pdf"] = minimalPDF(t)

	flow := newTestFlow(server.URL, &fakeUpdater{})

	view, err := flow.OpenProtocol(context.Background(), "LGT-5000.0210")
	if err != nil {
		t.Fatalf("OpenProtocol: %v", err)
	}
	if view.Pages != 1 {
		t.Errorf("expected 1 page, got %d", view.Pages)
	}
	if view.Item.Name != "LGT-5000.0210-protocole.pdf" {
		t.Errorf("unexpected item %s", view.Item.Name)
	}

	if _, err := flow.OpenProtocol(context.Background(), "LGT-9999.0001"); !errors.Is(err, ErrProtocolUnavailable) {
		t.Errorf("expected ErrProtocolUnavailable, got %v", err)
	}
}
