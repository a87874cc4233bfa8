package server

import (
	"net/http"
)

type canonRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ListCanonDocs returns the canon in creation order.
func (h *Handler) ListCanonDocs(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListCanonDocs()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// CreateCanonDoc adds a canon entry.
func (h *Handler) CreateCanonDoc(w http.ResponseWriter, r *http.Request) {
	var req canonRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Title == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "title and content are required")
		return
	}
	doc, err := h.store.CreateCanonDoc(req.Title, req.Content)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// GetCanonDoc returns one canon entry.
func (h *Handler) GetCanonDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.GetCanonDoc(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// UpdateCanonDoc replaces a canon entry's title and content.
func (h *Handler) UpdateCanonDoc(w http.ResponseWriter, r *http.Request) {
	var req canonRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Title == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "title and content are required")
		return
	}
	doc, err := h.store.UpdateCanonDoc(r.PathValue("id"), req.Title, req.Content)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// DeleteCanonDoc removes a canon entry.
func (h *Handler) DeleteCanonDoc(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteCanonDoc(r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
