package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const defaultTranscribeTimeout = 60 * time.Second

// HTTPTranscriber posts audio segments to a transcription endpoint as a
// multipart upload and reads the text back.
type HTTPTranscriber struct {
	url        string
	httpClient *http.Client
}

// NewHTTPTranscriber wires a transcriber against url. An empty url
// leaves the transcriber unconfigured.
func NewHTTPTranscriber(url string) *HTTPTranscriber {
	return &HTTPTranscriber{
		url:        url,
		httpClient: &http.Client{Timeout: defaultTranscribeTimeout},
	}
}

// Configured reports whether an endpoint URL is set.
func (t *HTTPTranscriber) Configured() bool {
	return strings.TrimSpace(t.url) != ""
}

type transcribeResponse struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

// Transcribe uploads one segment and returns the transcript.
func (t *HTTPTranscriber) Transcribe(ctx context.Context, seg Segment) (string, error) {
	if !t.Configured() {
		return "", fmt.Errorf("transcription is not configured: no endpoint URL set")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "segment.webm")
	if err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	if _, err := part.Write(seg.Data); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, &buf)
	if err != nil {
		return "", fmt.Errorf("create transcribe request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcribe request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read transcribe response: %w", err)
	}

	var parsed transcribeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse transcribe response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != "" {
			return "", fmt.Errorf("transcription failed: %s", parsed.Error)
		}
		return "", fmt.Errorf("transcription failed with status %d", resp.StatusCode)
	}
	return strings.TrimSpace(parsed.Text), nil
}
