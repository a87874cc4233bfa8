package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"riabuilder/internal/logging"
)

// Event types pushed over /ws/events.
const (
	EventAssistantReply = "assistant_reply"
	EventBoardChanged   = "board_changed"
	EventSummarySaved   = "summary_saved"
)

// Event is one message on the event feed.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const clientSendBuffer = 16

// Hub fans events out to connected WebSocket clients. Each client gets
// a buffered send queue and a writer goroutine; slow clients are
// dropped rather than allowed to stall the feed.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan Event
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]chan Event)}
}

// Broadcast queues an event for every connected client.
func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, send := range h.clients {
		select {
		case send <- ev:
		default:
			logging.Server("dropping slow websocket client %s", conn.RemoteAddr())
			delete(h.clients, conn)
			close(send)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) register(conn *websocket.Conn) chan Event {
	send := make(chan Event, clientSendBuffer)
	h.mu.Lock()
	h.clients[conn] = send
	h.mu.Unlock()
	return send
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	if send, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(send)
	}
	h.mu.Unlock()
}

// HandleWebSocket upgrades the connection and streams events until the
// client disconnects.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Server("websocket upgrade failed: %v", err)
		return
	}
	logging.Server("websocket client connected: %s", conn.RemoteAddr())
	h.metrics.WSConnectionsActive.Inc()

	send := h.hub.register(conn)

	// Writer: pushes queued events until the queue closes.
	go func() {
		for ev := range send {
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(ev); err != nil {
				logging.Server("websocket write failed: %v", err)
				break
			}
			h.metrics.WSEventsTotal.WithLabelValues(ev.Type).Inc()
		}
		conn.Close()
	}()

	// Reader: drains control frames and detects disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.hub.unregister(conn)
	conn.Close()
	h.metrics.WSConnectionsActive.Dec()
	logging.Server("websocket client disconnected: %s", conn.RemoteAddr())
}

// publish broadcasts an event from a request handler.
func (h *Handler) publish(eventType string, data interface{}) {
	h.hub.Broadcast(Event{Type: eventType, Data: data})
}
