package server

import (
	"io"
	"net/http"

	"riabuilder/internal/voice"
)

// maxAudioUpload caps transcription uploads at 20 MiB.
const maxAudioUpload = 20 << 20

// Transcribe forwards an uploaded audio segment (multipart field
// "file") to the transcription service and returns the text.
func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	if !h.transcriber.Configured() {
		writeError(w, http.StatusServiceUnavailable, "transcription is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAudioUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "audio upload required in field \"file\"")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}
	if len(data) < voice.MinSegmentBytes {
		writeError(w, http.StatusBadRequest, "audio segment too short")
		return
	}

	text, err := h.transcriber.Transcribe(r.Context(), voice.Segment{
		Data:     data,
		MimeType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}
