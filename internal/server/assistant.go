package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"riabuilder/internal/assistant"
)

type turnRequest struct {
	Text string `json:"text"`
}

// AssistantHistory returns the conversation transcript, welcome message
// included.
func (h *Handler) AssistantHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.assistant.History())
}

// AssistantTurn runs one conversation turn. Overlapping turns get a
// 409; the reply is also broadcast on the event feed.
func (h *Handler) AssistantTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	start := time.Now()
	reply, err := h.assistant.Turn(r.Context(), req.Text)
	h.metrics.TurnDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		switch {
		case errors.Is(err, assistant.ErrTurnInFlight):
			h.metrics.TurnsTotal.WithLabelValues("busy").Inc()
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, assistant.ErrEmptyTurn):
			h.metrics.TurnsTotal.WithLabelValues("rejected").Inc()
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.metrics.TurnsTotal.WithLabelValues("error").Inc()
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	outcome := "ok"
	if reply.IsError {
		outcome = "model_error"
	}
	h.metrics.TurnsTotal.WithLabelValues(outcome).Inc()
	h.publish(EventAssistantReply, reply)
	writeJSON(w, http.StatusOK, reply)
}

// maxAttachmentUpload caps chat attachments at 20 MiB.
const maxAttachmentUpload = 20 << 20

// StageAttachment queues an uploaded file (multipart field "file") for
// the next assistant turn.
func (h *Handler) StageAttachment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAttachmentUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file upload required in field \"file\"")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}

	h.assistant.Attach(assistant.NewAttachment(header.Filename, header.Header.Get("Content-Type"), data, nil))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"name":    header.Filename,
		"pending": h.assistant.PendingAttachments(),
	})
}

// DropAttachments discards every staged attachment.
func (h *Handler) DropAttachments(w http.ResponseWriter, r *http.Request) {
	h.assistant.DropAttachments()
	w.WriteHeader(http.StatusNoContent)
}

// AssistantSummarize persists a summary of the session and resets the
// transcript. An empty session is a no-op.
func (h *Handler) AssistantSummarize(w http.ResponseWriter, r *http.Request) {
	summary, err := h.assistant.Summarize(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if summary == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "nothing to summarize"})
		return
	}
	h.publish(EventSummarySaved, summary)
	writeJSON(w, http.StatusOK, summary)
}
