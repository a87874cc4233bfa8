package voice

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTranscribeUploadsSegment(t *testing.T) {
	var gotFilename string
	var gotBytes []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		gotFilename = header.Filename
		gotBytes, err = io.ReadAll(file)
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"  move the website card  "}`))
	}))
	defer srv.Close()

	tr := NewHTTPTranscriber(srv.URL)
	defer tr.httpClient.CloseIdleConnections()
	text, err := tr.Transcribe(context.Background(), Segment{Data: []byte{9, 8, 7}, MimeType: "audio/webm"})
	require.NoError(t, err)
	require.Equal(t, "move the website card", text)
	require.Equal(t, "segment.webm", gotFilename)
	require.Equal(t, []byte{9, 8, 7}, gotBytes)
}

func TestTranscribeSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"model overloaded"}`))
	}))
	defer srv.Close()

	tr := NewHTTPTranscriber(srv.URL)
	defer tr.httpClient.CloseIdleConnections()
	_, err := tr.Transcribe(context.Background(), Segment{Data: []byte{1}})
	require.ErrorContains(t, err, "model overloaded")
}

func TestTranscribeUnconfigured(t *testing.T) {
	tr := NewHTTPTranscriber("")
	require.False(t, tr.Configured())
	_, err := tr.Transcribe(context.Background(), Segment{Data: []byte{1}})
	require.ErrorContains(t, err, "not configured")
}
