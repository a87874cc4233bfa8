package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textResponse(text string) string {
	return `{"candidates":[{"content":{"parts":[{"text":` + jsonString(text) + `}],"role":"model"},"finishReason":"STOP"}]}`
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func newTestClient(url string) *Client {
	cfg := DefaultConfig("test-key")
	cfg.BaseURL = url
	return NewClient(cfg)
}

func TestGenerateRequiresAPIKey(t *testing.T) {
	c := NewClient(Config{})
	_, err := c.Generate(context.Background(), Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestGenerateSendsWirePayload(t *testing.T) {
	var captured Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, ":generateContent"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(textResponse("hello")))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	req := Request{
		Contents:          []Content{{Role: "user", Parts: []Part{{Text: "hi"}}}},
		SystemInstruction: &Content{Parts: []Part{{Text: "be brief"}}},
		Tools: []Tool{{FunctionDeclarations: []FunctionDeclaration{{
			Name: "create_card", Description: "adds a card",
		}}}},
	}
	resp, err := c.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text())

	require.Len(t, captured.Contents, 1)
	assert.Equal(t, "user", captured.Contents[0].Role)
	require.NotNil(t, captured.SystemInstruction)
	assert.Equal(t, "be brief", captured.SystemInstruction.Parts[0].Text)
	require.Len(t, captured.Tools, 1)
	assert.Equal(t, "create_card", captured.Tools[0].FunctionDeclarations[0].Name)
	// Defaults filled in.
	assert.Greater(t, captured.GenerationConfig.MaxOutputTokens, 0)
}

func TestGenerateRetriesRateLimit(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(textResponse("ok")))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	resp, err := c.Generate(context.Background(), Request{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: "hi"}}}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, "ok", resp.Text())
}

func TestGenerateSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"code":400,"message":"invalid argument","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Generate(context.Background(), Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid argument")
}

func TestGenerateParsesFunctionCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[
			{"text":"Adding that now."},
			{"functionCall":{"name":"create_card","args":{"text":"Call custodian","category":"Ops"}}}
		],"role":"model"},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	resp, err := c.Generate(context.Background(), Request{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: "add a card"}}}},
	})
	require.NoError(t, err)

	cand, ok := resp.FirstCandidate()
	require.True(t, ok)
	require.Len(t, cand.Content.Parts, 2)
	assert.Equal(t, "Adding that now.", cand.Content.Parts[0].Text)
	fc := cand.Content.Parts[1].FunctionCall
	require.NotNil(t, fc)
	assert.Equal(t, "create_card", fc.Name)
	assert.Equal(t, "Call custodian", fc.Args["text"])
}

func TestCompleteWithSystemEmptyCandidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[],"role":"model"},"finishReason":"SAFETY"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.CompleteWithSystem(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SAFETY")
}
