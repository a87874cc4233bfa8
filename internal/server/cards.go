package server

import (
	"net/http"

	"riabuilder/internal/board"
	"riabuilder/internal/logging"
)

type createCardRequest struct {
	Text          string   `json:"text"`
	Category      string   `json:"category"`
	Subcategory   string   `json:"subcategory"`
	Stage         string   `json:"stage"`
	Type          string   `json:"type"`
	Goal          string   `json:"goal"`
	Pinned        bool     `json:"pinned"`
	ReferenceURLs []string `json:"referenceUrls"`
}

// ListCards returns every card in board order.
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.store.ListCards()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

// CreateCard adds a card. Unknown categories and pages fall back to
// their defaults rather than rejecting the request.
func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req createCardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	code, matched := board.ResolveCategory(req.Category)
	if !matched && req.Category != "" {
		logging.Board("CreateCard: unknown category %q, using %s", req.Category, code)
	}
	page, _ := board.ValidatePage(code, req.Subcategory)

	stage := board.DefaultStage
	if req.Stage != "" {
		stage = board.Stage(req.Stage)
		if !board.ValidStage(stage) {
			writeError(w, http.StatusBadRequest, "unknown stage: "+req.Stage)
			return
		}
	}
	cardType := board.DefaultType
	if req.Type != "" {
		cardType = board.CardType(req.Type)
		if !board.ValidType(cardType) {
			writeError(w, http.StatusBadRequest, "unknown card type: "+req.Type)
			return
		}
	}

	card, err := h.store.CreateCard(board.Card{
		Text:          req.Text,
		Category:      code,
		Subcategory:   page,
		Stage:         stage,
		Type:          cardType,
		Goal:          req.Goal,
		Pinned:        req.Pinned,
		ReferenceURLs: req.ReferenceURLs,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	h.publish(EventBoardChanged, card)
	writeJSON(w, http.StatusCreated, card)
}

// GetCard returns one card with its notes.
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.store.GetCard(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// UpdateCard applies a partial update. Unknown IDs are a 404 with no
// side effects.
func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	var upd board.CardUpdate
	if err := decodeJSON(r, &upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if upd.Stage != nil && !board.ValidStage(*upd.Stage) {
		writeError(w, http.StatusBadRequest, "unknown stage: "+string(*upd.Stage))
		return
	}
	if upd.Type != nil && !board.ValidType(*upd.Type) {
		writeError(w, http.StatusBadRequest, "unknown card type: "+string(*upd.Type))
		return
	}
	if upd.Category != nil {
		code, _ := board.ResolveCategory(*upd.Category)
		upd.Category = &code
	}

	card, err := h.store.UpdateCard(r.PathValue("id"), upd)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	h.publish(EventBoardChanged, card)
	writeJSON(w, http.StatusOK, card)
}

// DeleteCard removes a card and its notes.
func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.DeleteCard(id); err != nil {
		writeStoreError(w, err)
		return
	}
	h.publish(EventBoardChanged, map[string]string{"deleted": id})
	w.WriteHeader(http.StatusNoContent)
}

type addNoteRequest struct {
	Text string `json:"text"`
}

// AddCardNote appends a note to a card.
func (h *Handler) AddCardNote(w http.ResponseWriter, r *http.Request) {
	var req addNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	note, err := h.store.AddNote(r.PathValue("id"), req.Text)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	h.publish(EventBoardChanged, map[string]string{"card": r.PathValue("id")})
	writeJSON(w, http.StatusCreated, note)
}

type reorderRequest struct {
	IDs []string `json:"ids"`
}

// ReorderCards persists a new full board ordering.
func (h *Handler) ReorderCards(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids are required")
		return
	}
	if err := h.store.ReorderCards(req.IDs); err != nil {
		writeStoreError(w, err)
		return
	}
	cards, err := h.store.ListCards()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	h.publish(EventBoardChanged, map[string]int{"reordered": len(req.IDs)})
	writeJSON(w, http.StatusOK, cards)
}
