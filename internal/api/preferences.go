package api

import (
	"net/http"

	"arlingtonfleet/fleetmaint/internal/mirror"
)

// Preferences is the persisted UI settings pair.
type Preferences struct {
	Language  string `json:"lang"`
	ThemeMode string `json:"themeMode"`
}

// GetPreferences handles GET /preferences
func (h *Handlers) GetPreferences() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang, err := h.deps.Mirror.GetPreference(r.Context(), mirror.PrefLanguage, "fr")
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		theme, err := h.deps.Mirror.GetPreference(r.Context(), mirror.PrefThemeMode, "light")
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		prefs := Preferences{Language: lang, ThemeMode: theme}
		respondWithSuccess(w, http.StatusOK, &prefs)
	}
}

// UpdatePreferences handles PUT /preferences; empty fields keep their
// stored value.
func (h *Handlers) UpdatePreferences() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var prefs Preferences
		if err := decodeBody(r, &prefs); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}

		if prefs.Language != "" {
			if err := h.deps.Mirror.SetPreference(r.Context(), mirror.PrefLanguage, prefs.Language); err != nil {
				respondWithError(w, http.StatusInternalServerError, err.Error())
				return
			}
		}
		if prefs.ThemeMode != "" {
			if err := h.deps.Mirror.SetPreference(r.Context(), mirror.PrefThemeMode, prefs.ThemeMode); err != nil {
				respondWithError(w, http.StatusInternalServerError, err.Error())
				return
			}
		}
		respondWithSuccess(w, http.StatusOK, &prefs)
	}
}
