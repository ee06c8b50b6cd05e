package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"arlingtonfleet/fleetmaint/internal/models"
)

// ListSystems handles GET /consistencies/{name}/systems
func (h *Handlers) ListSystems() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		systems := h.deps.Catalog.SystemsFor(name)
		respondWithSuccess(w, http.StatusOK, &systems)
	}
}

// AddSystem handles POST /consistencies/{name}/systems, defining a
// user-defined system on a non-default consistency.
func (h *Handlers) AddSystem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		var system models.System
		if err := decodeBody(r, &system); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if err := h.deps.Catalog.AddLocalSystem(name, system); err != nil {
			respondWithError(w, statusForError(err), err.Error())
			return
		}
		systems := h.deps.Catalog.SystemsFor(name)
		respondWithSuccess(w, http.StatusCreated, &systems)
	}
}

// RemoveSystem handles DELETE /consistencies/{name}/systems/{systemID}
func (h *Handlers) RemoveSystem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		systemID := chi.URLParam(r, "systemID")
		if err := h.deps.Catalog.RemoveLocalSystem(name, systemID); err != nil {
			respondWithError(w, statusForError(err), err.Error())
			return
		}
		systems := h.deps.Catalog.SystemsFor(name)
		respondWithSuccess(w, http.StatusOK, &systems)
	}
}

// RemoveOperation handles DELETE /consistencies/{name}/systems/{systemID}/operations/{operationID}
func (h *Handlers) RemoveOperation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		systemID := chi.URLParam(r, "systemID")
		operationID := chi.URLParam(r, "operationID")
		if err := h.deps.Catalog.RemoveLocalOperation(name, systemID, operationID); err != nil {
			respondWithError(w, statusForError(err), err.Error())
			return
		}
		systems := h.deps.Catalog.SystemsFor(name)
		respondWithSuccess(w, http.StatusOK, &systems)
	}
}
