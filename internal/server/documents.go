package server

import (
	"io"
	"net/http"

	"riabuilder/internal/docs"
)

// maxDocumentUpload caps document uploads at 50 MiB.
const maxDocumentUpload = 50 << 20

// UploadDocument stores an uploaded file (multipart field "file") in
// the document library.
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file upload required in field \"file\"")
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}

	meta, err := h.store.SaveDocument(docs.DocumentMeta{
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Tags:     r.Form["tag"],
		Summary:  r.FormValue("summary"),
	}, payload)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, meta)
}

// DeleteDocument removes a document and its payload.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteDocument(r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListDocuments returns document metadata, newest first.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListDocuments()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetDocument returns one document's metadata.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	meta, err := h.store.GetDocument(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// GetDocumentContent streams the stored payload with its original MIME
// type.
func (h *Handler) GetDocumentContent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	meta, err := h.store.GetDocument(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	payload, err := h.store.GetDocumentPayload(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	contentType := meta.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+meta.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}
