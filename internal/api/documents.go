package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"arlingtonfleet/fleetmaint/internal/constants"
	"arlingtonfleet/fleetmaint/internal/drive"
	"arlingtonfleet/fleetmaint/internal/models"
)

// GetProtocol handles GET /operations/{operationID}/protocol, serving the
// read-only protocol sheet of an operation.
func (h *Handlers) GetProtocol() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		operationID := chi.URLParam(r, "operationID")

		view, err := h.deps.Flow.OpenProtocol(r.Context(), operationID)
		if err != nil {
			respondWithError(w, statusForError(err), err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", view.Item.Name))
		_, _ = w.Write(view.Data)
	}
}

// DocumentInfo describes an open editing session to the UI.
type DocumentInfo struct {
	RecordID string            `json:"recordId"`
	File     drive.Item        `json:"file"`
	Fields   map[string]string `json:"fields"`
}

func (h *Handlers) currentRecord(recordID string) (string, models.MaintenanceRecord, error) {
	sel := h.deps.Controller.Selection()
	for _, record := range h.deps.Controller.CurrentRecords() {
		if record.ID == recordID {
			return sel.Consistency, record, nil
		}
	}
	return "", models.MaintenanceRecord{}, fmt.Errorf("%s : %s", constants.MsgLoadRecordsFailed, recordID)
}

// OpenDocument handles POST /records/{recordID}/document: enters the
// viewer screen and opens (copying on first use) the record's
// traceability sheet.
func (h *Handlers) OpenDocument() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID := chi.URLParam(r, "recordID")

		consistency, record, err := h.currentRecord(recordID)
		if err != nil {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		system, ok := h.deps.Catalog.System(consistency, record.SystemID)
		if !ok {
			respondWithError(w, http.StatusNotFound, constants.MsgSystemNotFound)
			return
		}

		if err := h.deps.Controller.OpenDocument(r.Context()); err != nil {
			respondWithError(w, statusForError(err), err.Error())
			return
		}

		session, err := h.deps.Flow.OpenTraceability(r.Context(), consistency, record, system.Name)
		if err != nil {
			// Leave the viewer screen again so navigation stays coherent.
			_ = h.deps.Controller.CloseDocument(r.Context())
			respondWithError(w, statusForError(err), err.Error())
			return
		}
		if err := h.deps.Sessions.Put(r.Context(), session); err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.deps.Metrics.DocumentSessionsOpen.Set(float64(h.deps.Sessions.Len()))

		fields, err := session.Fields()
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		info := DocumentInfo{RecordID: recordID, File: session.Item(), Fields: fields}
		respondWithSuccess(w, http.StatusOK, &info)
	}
}

// GetDocument handles GET /records/{recordID}/document, serving the
// session's current PDF content.
func (h *Handlers) GetDocument() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID := chi.URLParam(r, "recordID")
		session, err := h.deps.Sessions.Get(recordID)
		if err != nil {
			respondWithError(w, statusForError(err), err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", session.Item().Name))
		_, _ = w.Write(session.Bytes())
	}
}

// UpdateFields handles PUT /records/{recordID}/document/fields, applying
// form field edits in memory. Autosave or an explicit save uploads them.
func (h *Handlers) UpdateFields() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID := chi.URLParam(r, "recordID")
		session, err := h.deps.Sessions.Get(recordID)
		if err != nil {
			respondWithError(w, statusForError(err), err.Error())
			return
		}

		var values map[string]string
		if err := decodeBody(r, &values); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if err := session.SetFields(values); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		fields, err := session.Fields()
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondWithSuccess(w, http.StatusOK, &fields)
	}
}

// SaveDocument handles POST /records/{recordID}/document/save, flushing
// the sheet to the document store now.
func (h *Handlers) SaveDocument() http.HandlerFunc {
	type response struct {
		SavedAt time.Time `json:"savedAt"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		recordID := chi.URLParam(r, "recordID")
		session, err := h.deps.Sessions.Get(recordID)
		if err != nil {
			respondWithError(w, statusForError(err), err.Error())
			return
		}
		if err := session.Save(r.Context()); err != nil {
			respondWithError(w, statusForError(err), err.Error())
			return
		}
		respondWithSuccess(w, http.StatusOK, &response{SavedAt: time.Now().UTC()})
	}
}

// FinishDocument handles POST /records/{recordID}/document/finish:
// stamps the sheet, saves it and moves the record to "terminé".
func (h *Handlers) FinishDocument() http.HandlerFunc {
	type request struct {
		Stamp string `json:"stamp,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		recordID := chi.URLParam(r, "recordID")
		session, err := h.deps.Sessions.Get(recordID)
		if err != nil {
			respondWithError(w, statusForError(err), err.Error())
			return
		}

		var req request
		if err := decodeBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
			respondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		stamp := req.Stamp
		if stamp == "" {
			stamp = "Terminé le " + time.Now().Format("02/01/2006")
		}

		if err := session.Finish(r.Context(), stamp); err != nil {
			respondWithError(w, statusForError(err), err.Error())
			return
		}
		records := h.deps.Controller.CurrentRecords()
		respondWithSuccess(w, http.StatusOK, &records)
	}
}

// CloseDocument handles DELETE /records/{recordID}/document: flushes the
// session and leaves the viewer screen.
func (h *Handlers) CloseDocument() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID := chi.URLParam(r, "recordID")

		if err := h.deps.Sessions.Close(r.Context(), recordID); err != nil {
			respondWithError(w, statusForError(err), err.Error())
			return
		}
		h.deps.Metrics.DocumentSessionsOpen.Set(float64(h.deps.Sessions.Len()))

		if err := h.deps.Controller.CloseDocument(r.Context()); err != nil {
			respondWithError(w, statusForError(err), err.Error())
			return
		}
		sel := h.deps.Controller.Selection()
		respondWithSuccess(w, http.StatusOK, &sel)
	}
}
