package server

import (
	"net/http"

	"riabuilder/internal/store"
)

// ListTodos returns every todo item.
func (h *Handler) ListTodos(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListTodos()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// CreateTodo adds a todo item.
func (h *Handler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var item store.TodoItem
	if err := decodeJSON(r, &item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if item.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	created, err := h.store.CreateTodo(item)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateTodo replaces a todo item. The path ID wins over any ID in the
// body.
func (h *Handler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	var item store.TodoItem
	if err := decodeJSON(r, &item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	item.ID = r.PathValue("id")
	updated, err := h.store.UpdateTodo(item)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteTodo removes a todo item.
func (h *Handler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTodo(r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetChecklist returns the launch checklist, seeding defaults on first
// use.
func (h *Handler) GetChecklist(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.GetChecklist()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ToggleChecklistItem flips one checklist item's done state.
func (h *Handler) ToggleChecklistItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.store.ToggleChecklistItem(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
