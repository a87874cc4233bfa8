// Package server exposes the workspace over HTTP: kanban cards,
// documents, canon, planning data, assistant turns, and a WebSocket
// event feed.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"riabuilder/internal/assistant"
	"riabuilder/internal/config"
	"riabuilder/internal/logging"
	"riabuilder/internal/store"
	"riabuilder/internal/voice"
)

// Assistant is the conversational surface the server drives.
type Assistant interface {
	Turn(ctx context.Context, text string) (assistant.Message, error)
	Summarize(ctx context.Context) (*store.ConversationSummary, error)
	History() []assistant.Message
	Attach(a *assistant.Attachment)
	DropAttachments()
	PendingAttachments() int
}

// Handler routes the HTTP API.
type Handler struct {
	store       *store.LocalStore
	assistant   Assistant
	hub         *Hub
	metrics     *Metrics
	cfg         *config.Config
	transcriber *voice.HTTPTranscriber
}

// NewHandler wires the API handler. The event hub starts immediately.
func NewHandler(st *store.LocalStore, asst Assistant, cfg *config.Config) *Handler {
	h := &Handler{
		store:       st,
		assistant:   asst,
		hub:         NewHub(),
		metrics:     NewMetrics("riabuilder"),
		cfg:         cfg,
		transcriber: voice.NewHTTPTranscriber(cfg.Integrations.TranscribeURL),
	}
	return h
}

// Hub returns the WebSocket event hub, for callers that publish events
// from outside the request path.
func (h *Handler) Hub() *Hub {
	return h.hub
}

// Router returns the configured routes wrapped in the metrics
// middleware.
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)
	mux.Handle("GET /metrics", h.metrics.Handler())

	mux.HandleFunc("GET /api/v1/cards", h.ListCards)
	mux.HandleFunc("POST /api/v1/cards", h.CreateCard)
	mux.HandleFunc("GET /api/v1/cards/{id}", h.GetCard)
	mux.HandleFunc("PATCH /api/v1/cards/{id}", h.UpdateCard)
	mux.HandleFunc("DELETE /api/v1/cards/{id}", h.DeleteCard)
	mux.HandleFunc("POST /api/v1/cards/{id}/notes", h.AddCardNote)
	mux.HandleFunc("PUT /api/v1/cards/order", h.ReorderCards)

	mux.HandleFunc("GET /api/v1/documents", h.ListDocuments)
	mux.HandleFunc("POST /api/v1/documents", h.UploadDocument)
	mux.HandleFunc("GET /api/v1/documents/{id}", h.GetDocument)
	mux.HandleFunc("GET /api/v1/documents/{id}/content", h.GetDocumentContent)
	mux.HandleFunc("DELETE /api/v1/documents/{id}", h.DeleteDocument)

	mux.HandleFunc("GET /api/v1/canon", h.ListCanonDocs)
	mux.HandleFunc("POST /api/v1/canon", h.CreateCanonDoc)
	mux.HandleFunc("GET /api/v1/canon/{id}", h.GetCanonDoc)
	mux.HandleFunc("PUT /api/v1/canon/{id}", h.UpdateCanonDoc)
	mux.HandleFunc("DELETE /api/v1/canon/{id}", h.DeleteCanonDoc)

	mux.HandleFunc("GET /api/v1/settings", h.GetSettings)
	mux.HandleFunc("PUT /api/v1/settings", h.PutSettings)
	mux.HandleFunc("GET /api/v1/summaries", h.ListSummaries)

	mux.HandleFunc("GET /api/v1/todos", h.ListTodos)
	mux.HandleFunc("POST /api/v1/todos", h.CreateTodo)
	mux.HandleFunc("PUT /api/v1/todos/{id}", h.UpdateTodo)
	mux.HandleFunc("DELETE /api/v1/todos/{id}", h.DeleteTodo)

	mux.HandleFunc("GET /api/v1/checklist", h.GetChecklist)
	mux.HandleFunc("POST /api/v1/checklist/{id}/toggle", h.ToggleChecklistItem)

	mux.HandleFunc("GET /api/v1/calculator", h.GetCalculator)
	mux.HandleFunc("PUT /api/v1/calculator", h.PutCalculator)

	mux.HandleFunc("GET /api/v1/integrations/status", h.IntegrationStatus)

	mux.HandleFunc("POST /api/v1/voice/transcribe", h.Transcribe)

	mux.HandleFunc("GET /api/v1/assistant/history", h.AssistantHistory)
	mux.HandleFunc("POST /api/v1/assistant/turn", h.AssistantTurn)
	mux.HandleFunc("POST /api/v1/assistant/summarize", h.AssistantSummarize)
	mux.HandleFunc("POST /api/v1/assistant/attachments", h.StageAttachment)
	mux.HandleFunc("DELETE /api/v1/assistant/attachments", h.DropAttachments)

	mux.HandleFunc("GET /ws/events", h.HandleWebSocket)

	return h.metrics.Middleware(mux)
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeStoreError maps store failures onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// Server runs the HTTP API with graceful shutdown.
type Server struct {
	httpSrv *http.Server
}

// New builds a server listening on addr.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		httpSrv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// ListenAndServe blocks until the listener fails or Shutdown runs.
func (s *Server) ListenAndServe() error {
	logging.Server("listening on %s", s.httpSrv.Addr)
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Server("shutting down")
	return s.httpSrv.Shutdown(ctx)
}
