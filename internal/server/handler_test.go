package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"riabuilder/internal/assistant"
	"riabuilder/internal/board"
	"riabuilder/internal/config"
	"riabuilder/internal/store"
	"riabuilder/internal/voice"
)

type fakeAssistant struct {
	turn        func(text string) (assistant.Message, error)
	summarize   func() (*store.ConversationSummary, error)
	history     []assistant.Message
	attachments []*assistant.Attachment
}

func (f *fakeAssistant) Turn(_ context.Context, text string) (assistant.Message, error) {
	if f.turn == nil {
		return assistant.Message{Role: assistant.RoleModel, Text: "ok"}, nil
	}
	return f.turn(text)
}

func (f *fakeAssistant) Summarize(context.Context) (*store.ConversationSummary, error) {
	if f.summarize == nil {
		return nil, nil
	}
	return f.summarize()
}

func (f *fakeAssistant) History() []assistant.Message {
	return f.history
}

func (f *fakeAssistant) Attach(a *assistant.Attachment) {
	f.attachments = append(f.attachments, a)
}

func (f *fakeAssistant) DropAttachments() {
	f.attachments = nil
}

func (f *fakeAssistant) PendingAttachments() int {
	return len(f.attachments)
}

func newTestServer(t *testing.T, asst Assistant) (*httptest.Server, *Handler) {
	t.Helper()
	st, err := store.NewLocalStore(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := config.Default()
	h := NewHandler(st, asst, &cfg)
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return srv, h
}

func doJSON(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAssistant{})
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	var body map[string]string
	decodeBody(t, resp, &body)
	require.Equal(t, "ok", body["status"])
}

func TestCardLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAssistant{})

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/cards", map[string]interface{}{
		"text":     "Compare custodians",
		"category": "growth engine",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var card board.Card
	decodeBody(t, resp, &card)
	require.Equal(t, "Marketing", card.Category)
	require.Equal(t, board.DefaultStage, card.Stage)
	require.Equal(t, board.DefaultType, card.Type)

	resp = doJSON(t, http.MethodPatch, srv.URL+"/api/v1/cards/"+card.ID, map[string]string{
		"stage": "ready_to_go",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated board.Card
	decodeBody(t, resp, &updated)
	require.Equal(t, board.StageReadyToGo, updated.Stage)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/cards/"+card.ID+"/notes", map[string]string{
		"text": "Called Schwab",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(srv.URL + "/api/v1/cards/" + card.ID)
	require.NoError(t, err)
	var fetched board.Card
	decodeBody(t, resp, &fetched)
	require.Len(t, fetched.Notes, 1)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/cards/"+card.ID, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/v1/cards")
	require.NoError(t, err)
	var cards []board.Card
	decodeBody(t, resp, &cards)
	require.Empty(t, cards)
}

func TestCreateCardValidation(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAssistant{})

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/cards", map[string]string{"category": "Ops"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/cards", map[string]string{
		"text":  "x",
		"stage": "parked",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestUpdateCardNotFound(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAssistant{})
	resp := doJSON(t, http.MethodPatch, srv.URL+"/api/v1/cards/missing", map[string]string{"text": "y"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestChecklistToggle(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAssistant{})

	resp, err := http.Get(srv.URL + "/api/v1/checklist")
	require.NoError(t, err)
	var items []store.ChecklistItem
	decodeBody(t, resp, &items)
	require.NotEmpty(t, items)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/checklist/"+items[0].ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var toggled store.ChecklistItem
	decodeBody(t, resp, &toggled)
	require.True(t, toggled.Done)
}

func TestAssistantTurnConflict(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAssistant{
		turn: func(string) (assistant.Message, error) {
			return assistant.Message{}, assistant.ErrTurnInFlight
		},
	})
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/assistant/turn", map[string]string{"text": "hi"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestAssistantTurnBroadcastsReply(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAssistant{
		turn: func(text string) (assistant.Message, error) {
			return assistant.Message{Role: assistant.RoleModel, Text: "Reply to " + text}, nil
		},
	})

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/assistant/turn", map[string]string{"text": "hello"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var reply assistant.Message
	decodeBody(t, resp, &reply)
	require.Equal(t, "Reply to hello", reply.Text)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	require.Equal(t, EventAssistantReply, ev.Type)
}

func TestSummarizeEmptySession(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAssistant{})
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/assistant/summarize", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	require.Equal(t, "nothing to summarize", body["status"])
}

func TestIntegrationStatusOverlay(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"slackConfigured":true,"slackChannelConfigured":true,"tavilyConfigured":false}`)
	}))
	defer remote.Close()

	st, err := store.NewLocalStore(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := config.Default()
	cfg.Integrations.IntegrationStatusURL = remote.URL
	cfg.Integrations.GoogleAccessToken = "tok"
	h := NewHandler(st, &fakeAssistant{}, &cfg)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/integrations/status")
	require.NoError(t, err)
	var status integrationStatus
	decodeBody(t, resp, &status)
	require.True(t, status.SlackConfigured)
	require.True(t, status.SlackChannelConfigured)
	require.False(t, status.TavilyConfigured)
	require.True(t, status.DriveConfigured)
	require.False(t, status.ModelConfigured)
}

func multipartUpload(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestDocumentUploadAndDownload(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAssistant{})

	body, contentType := multipartUpload(t, "adv-notes.md", []byte("# Form ADV notes"))
	resp, err := http.Post(srv.URL+"/api/v1/documents", contentType, body)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var meta struct {
		ID       string `json:"id"`
		Filename string `json:"filename"`
		FileType string `json:"fileType"`
	}
	decodeBody(t, resp, &meta)
	require.Equal(t, "adv-notes.md", meta.Filename)
	require.Equal(t, "md", meta.FileType)

	resp, err = http.Get(srv.URL + "/api/v1/documents/" + meta.ID + "/content")
	require.NoError(t, err)
	defer resp.Body.Close()
	downloaded, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "# Form ADV notes", string(downloaded))
}

func TestStageAttachment(t *testing.T) {
	asst := &fakeAssistant{}
	srv, _ := newTestServer(t, asst)

	body, contentType := multipartUpload(t, "sketch.png", []byte{1, 2, 3})
	resp, err := http.Post(srv.URL+"/api/v1/assistant/attachments", contentType, body)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	require.Equal(t, 1, asst.PendingAttachments())

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/assistant/attachments", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
	require.Zero(t, asst.PendingAttachments())
}

func TestTranscribeProxy(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := r.FormFile("file"); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"missing file"}`)
			return
		}
		fmt.Fprint(w, `{"text":"move the card"}`)
	}))
	defer remote.Close()

	st, err := store.NewLocalStore(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := config.Default()
	cfg.Integrations.TranscribeURL = remote.URL
	h := NewHandler(st, &fakeAssistant{}, &cfg)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	body, contentType := multipartUpload(t, "clip.webm", bytes.Repeat([]byte{1}, voice.MinSegmentBytes))
	resp, err := http.Post(srv.URL+"/api/v1/voice/transcribe", contentType, body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var respBody map[string]string
	decodeBody(t, resp, &respBody)
	require.Equal(t, "move the card", respBody["text"])
}

func TestTranscribeUnconfigured(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAssistant{})
	resp, err := http.Post(srv.URL+"/api/v1/voice/transcribe", "multipart/form-data", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp.Body.Close()
}

func TestHubBroadcastWithoutClients(t *testing.T) {
	hub := NewHub()
	require.Zero(t, hub.ClientCount())
	hub.Broadcast(Event{Type: EventBoardChanged})
}
