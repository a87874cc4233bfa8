package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"riabuilder/internal/docs"
	"riabuilder/internal/logging"
)

// SaveDocument stores a document's metadata and raw payload. The meta's ID,
// Size, FileType, and UploadedAt are assigned here.
func (s *LocalStore) SaveDocument(meta docs.DocumentMeta, payload []byte) (docs.DocumentMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta.ID = uuid.NewString()
	meta.Size = int64(len(payload))
	meta.UploadedAt = nowMillis()
	if meta.FileType == "" {
		meta.FileType = docs.FileExtension(meta.Filename)
	}

	tags, err := json.Marshal(stringsOrEmpty(meta.Tags))
	if err != nil {
		return docs.DocumentMeta{}, fmt.Errorf("failed to encode tags: %w", err)
	}
	linked, err := json.Marshal(stringsOrEmpty(meta.LinkedCards))
	if err != nil {
		return docs.DocumentMeta{}, fmt.Errorf("failed to encode linked cards: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO documents (id, filename, file_type, mime_type, size, uploaded_at,
			drive_file_id, drive_mime_type, is_canonical, tags, summary, linked_cards, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Filename, meta.FileType, meta.MimeType, meta.Size, meta.UploadedAt,
		meta.DriveFileID, meta.DriveMimeType, boolToInt(meta.IsCanonical),
		string(tags), meta.Summary, string(linked), payload,
	)
	if err != nil {
		return docs.DocumentMeta{}, fmt.Errorf("failed to insert document: %w", err)
	}
	logging.Docs("Saved document %s (%s, %d bytes)", meta.Filename, meta.ID, meta.Size)
	return meta, nil
}

// GetDocument loads document metadata by id.
func (s *LocalStore) GetDocument(id string) (docs.DocumentMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(documentSelect+` WHERE id = ?`, id)
	meta, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return docs.DocumentMeta{}, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return docs.DocumentMeta{}, fmt.Errorf("failed to load document: %w", err)
	}
	return meta, nil
}

// GetDocumentPayload returns the raw stored bytes of a document.
func (s *LocalStore) GetDocumentPayload(id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM documents WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document payload: %w", err)
	}
	return payload, nil
}

// ListDocuments returns the full document index, newest first.
func (s *LocalStore) ListDocuments() ([]docs.DocumentMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(documentSelect + ` ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	index := []docs.DocumentMeta{}
	for rows.Next() {
		meta, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		index = append(index, meta)
	}
	return index, rows.Err()
}

// UpdateDocumentMeta rewrites the mutable metadata fields of a document:
// drive linkage, canonical flag, tags, summary, and card links.
func (s *LocalStore) UpdateDocumentMeta(meta docs.DocumentMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tags, err := json.Marshal(stringsOrEmpty(meta.Tags))
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}
	linked, err := json.Marshal(stringsOrEmpty(meta.LinkedCards))
	if err != nil {
		return fmt.Errorf("failed to encode linked cards: %w", err)
	}

	res, err := s.db.Exec(
		`UPDATE documents SET drive_file_id = ?, drive_mime_type = ?, is_canonical = ?,
			tags = ?, summary = ?, linked_cards = ?
		 WHERE id = ?`,
		meta.DriveFileID, meta.DriveMimeType, boolToInt(meta.IsCanonical),
		string(tags), meta.Summary, string(linked), meta.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document %s: %w", meta.ID, ErrNotFound)
	}
	logging.DocsDebug("Updated document meta %s", meta.ID)
	return nil
}

// DeleteDocument removes a document and its payload.
func (s *LocalStore) DeleteDocument(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	logging.Docs("Deleted document %s", id)
	return nil
}

const documentSelect = `SELECT id, filename, file_type, mime_type, size, uploaded_at,
	drive_file_id, drive_mime_type, is_canonical, tags, summary, linked_cards FROM documents`

func scanDocument(row rowScanner) (docs.DocumentMeta, error) {
	var meta docs.DocumentMeta
	var canonical int
	var tags, linked string
	err := row.Scan(&meta.ID, &meta.Filename, &meta.FileType, &meta.MimeType, &meta.Size,
		&meta.UploadedAt, &meta.DriveFileID, &meta.DriveMimeType, &canonical,
		&tags, &meta.Summary, &linked)
	if err != nil {
		return docs.DocumentMeta{}, err
	}
	meta.IsCanonical = canonical != 0
	if err := json.Unmarshal([]byte(tags), &meta.Tags); err != nil {
		meta.Tags = nil
	}
	if err := json.Unmarshal([]byte(linked), &meta.LinkedCards); err != nil {
		meta.LinkedCards = nil
	}
	return meta, nil
}

func stringsOrEmpty(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
