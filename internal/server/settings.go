package server

import (
	"net/http"

	"riabuilder/internal/store"
)

// GetSettings returns the assistant profile settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.GetSettings()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// PutSettings replaces the assistant profile settings.
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var settings store.AssistantSettings
	if err := decodeJSON(r, &settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.store.PutSettings(settings); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// ListSummaries returns saved conversation summaries, oldest first.
func (h *Handler) ListSummaries(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListSummaries()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
