package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/looplab/fsm"

	"arlingtonfleet/fleetmaint/internal/catalog"
	"arlingtonfleet/fleetmaint/internal/docviewer"
	"arlingtonfleet/fleetmaint/internal/drive"
	"arlingtonfleet/fleetmaint/internal/models"
	"arlingtonfleet/fleetmaint/internal/state"
)

// Handlers groups all HTTP handlers around the dependency container.
type Handlers struct {
	deps *Dependencies
}

func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{deps: deps}
}

// statusForError maps domain errors onto HTTP status codes.
func statusForError(err error) int {
	var invalidEvent fsm.InvalidEventError
	switch {
	case errors.Is(err, state.ErrRecordNotFound),
		errors.Is(err, state.ErrUnknownConsistency),
		errors.Is(err, state.ErrUnknownVehicle),
		errors.Is(err, catalog.ErrSystemNotFound),
		errors.Is(err, ErrNoOpenSession),
		errors.Is(err, docviewer.ErrProtocolUnavailable),
		errors.Is(err, docviewer.ErrTraceabilityUnavailable):
		return http.StatusNotFound
	case errors.Is(err, state.ErrNoSelection),
		errors.Is(err, state.ErrConsistencyExists),
		errors.Is(err, state.ErrDefaultConsistency),
		errors.Is(err, catalog.ErrSystemExists):
		return http.StatusConflict
	case errors.As(err, &invalidEvent):
		return http.StatusConflict
	case errors.Is(err, drive.ErrCopyTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// StateResponse is the full navigation snapshot the UI renders from.
type StateResponse struct {
	Selection     state.Selection            `json:"selection"`
	Consistencies []string                   `json:"consistencies"`
	Vehicles      []models.Vehicle           `json:"vehicles"`
	Records       []models.MaintenanceRecord `json:"records"`
}

// GetState handles GET /state
func (h *Handlers) GetState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := StateResponse{
			Selection:     h.deps.Controller.Selection(),
			Consistencies: h.deps.Controller.Consistencies(),
			Vehicles:      models.Vehicles,
			Records:       h.deps.Controller.CurrentRecords(),
		}
		respondWithSuccess(w, http.StatusOK, &resp)
	}
}

// ListConsistencies handles GET /consistencies
func (h *Handlers) ListConsistencies() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := h.deps.Controller.Consistencies()
		respondWithSuccess(w, http.StatusOK, &list)
	}
}

// CreateConsistency handles POST /consistencies
func (h *Handlers) CreateConsistency() http.HandlerFunc {
	type request struct {
		Name string `json:"name"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if err := h.deps.Controller.CreateConsistency(r.Context(), req.Name); err != nil {
			respondWithError(w, statusForError(err), err.Error())
			return
		}
		sel := h.deps.Controller.Selection()
		respondWithSuccess(w, http.StatusCreated, &sel)
	}
}

// DeleteConsistency handles DELETE /consistencies/{name}
func (h *Handlers) DeleteConsistency() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if err := h.deps.Controller.DeleteConsistency(r.Context(), name); err != nil {
			respondWithError(w, statusForError(err), err.Error())
			return
		}
		// The mirror keeps snapshots per consistency; drop them with it.
		if err := h.deps.Mirror.DeleteSnapshots(r.Context(), name); err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		sel := h.deps.Controller.Selection()
		respondWithSuccess(w, http.StatusOK, &sel)
	}
}

// SelectConsistency handles POST /selection/consistency
func (h *Handlers) SelectConsistency() http.HandlerFunc {
	type request struct {
		Name string `json:"name"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if err := h.deps.Controller.SelectConsistency(r.Context(), req.Name); err != nil {
			respondWithError(w, statusForError(err), err.Error())
			return
		}
		sel := h.deps.Controller.Selection()
		respondWithSuccess(w, http.StatusOK, &sel)
	}
}

// SelectVehicle handles POST /selection/vehicle
func (h *Handlers) SelectVehicle() http.HandlerFunc {
	type request struct {
		VehicleID int `json:"vehicleId"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if err := h.deps.Controller.SelectVehicle(r.Context(), req.VehicleID); err != nil {
			respondWithError(w, statusForError(err), err.Error())
			return
		}
		records := h.deps.Controller.CurrentRecords()
		respondWithSuccess(w, http.StatusOK, &records)
	}
}

// Back handles POST /selection/back
func (h *Handlers) Back() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.deps.Controller.Back(r.Context()); err != nil {
			respondWithError(w, statusForError(err), err.Error())
			return
		}
		sel := h.deps.Controller.Selection()
		respondWithSuccess(w, http.StatusOK, &sel)
	}
}

// OpenRecordForm handles POST /records/form
func (h *Handlers) OpenRecordForm() http.HandlerFunc {
	type request struct {
		EditingID string `json:"editingId,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if err := h.deps.Controller.OpenForm(r.Context(), req.EditingID); err != nil {
			respondWithError(w, statusForError(err), err.Error())
			return
		}
		sel := h.deps.Controller.Selection()
		respondWithSuccess(w, http.StatusOK, &sel)
	}
}

// CloseRecordForm handles DELETE /records/form
func (h *Handlers) CloseRecordForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.deps.Controller.CloseForm(r.Context()); err != nil {
			respondWithError(w, statusForError(err), err.Error())
			return
		}
		sel := h.deps.Controller.Selection()
		respondWithSuccess(w, http.StatusOK, &sel)
	}
}

// ListRecords handles GET /records with optional filter query parameters.
func (h *Handlers) ListRecords() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := state.Filter{
			System:    q.Get("system"),
			Operation: q.Get("operation"),
			Comment:   q.Get("comment"),
			User:      q.Get("user"),
			Status:    models.Status(q.Get("status")),
		}
		if raw := q.Get("date"); raw != "" {
			day, err := time.Parse("2006-01-02", raw)
			if err != nil {
				respondWithError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
				return
			}
			filter.Date = &day
		}

		rows := h.deps.Controller.FilteredRecords(filter)
		respondWithSuccess(w, http.StatusOK, &rows)
	}
}

// SubmitRecord handles POST /records, creating or editing via EditingID.
func (h *Handlers) SubmitRecord() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input state.RecordInput
		if err := decodeBody(r, &input); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}

		record, err := h.deps.Controller.AddOrUpdateRecord(r.Context(), input)
		if err != nil {
			h.deps.Metrics.RecordSavesTotal.WithLabelValues("error").Inc()
			respondWithError(w, statusForError(err), err.Error())
			return
		}
		h.deps.Metrics.RecordSavesTotal.WithLabelValues("ok").Inc()
		respondWithSuccess(w, http.StatusCreated, &record)
	}
}

// DeleteRecord handles DELETE /records/{recordID}
func (h *Handlers) DeleteRecord() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID := chi.URLParam(r, "recordID")
		if err := h.deps.Controller.DeleteRecord(r.Context(), recordID); err != nil {
			respondWithError(w, statusForError(err), err.Error())
			return
		}
		records := h.deps.Controller.CurrentRecords()
		respondWithSuccess(w, http.StatusOK, &records)
	}
}

// SetRecordStatus handles PUT /records/{recordID}/status
func (h *Handlers) SetRecordStatus() http.HandlerFunc {
	type request struct {
		Status models.Status `json:"status"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		recordID := chi.URLParam(r, "recordID")
		var req request
		if err := decodeBody(r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if !req.Status.Valid() {
			respondWithError(w, http.StatusBadRequest, "invalid status")
			return
		}
		if err := h.deps.Controller.SetRecordStatus(r.Context(), recordID, req.Status); err != nil {
			respondWithError(w, statusForError(err), err.Error())
			return
		}
		records := h.deps.Controller.CurrentRecords()
		respondWithSuccess(w, http.StatusOK, &records)
	}
}

// PendingRecords handles GET /records/pending
func (h *Handlers) PendingRecords() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows := h.deps.Controller.Pending()
		respondWithSuccess(w, http.StatusOK, &rows)
	}
}

// DoneRecords handles GET /records/done
func (h *Handlers) DoneRecords() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows := h.deps.Controller.Done()
		respondWithSuccess(w, http.StatusOK, &rows)
	}
}

// Refresh handles POST /refresh, a full reload from the document store.
func (h *Handlers) Refresh() http.HandlerFunc {
	type response struct {
		RefreshedAt time.Time `json:"refreshedAt"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		if err := h.deps.Controller.RefreshAll(r.Context()); err != nil {
			respondWithError(w, statusForError(err), err.Error())
			return
		}
		h.deps.Metrics.RefreshDuration.Observe(time.Since(start).Seconds())
		respondWithSuccess(w, http.StatusOK, &response{RefreshedAt: time.Now().UTC()})
	}
}
