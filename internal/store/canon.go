package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"riabuilder/internal/logging"
)

// CanonDoc is a user-curated reference document the assistant treats as
// ground truth when assembling context.
type CanonDoc struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// CreateCanonDoc persists a new canonical document.
func (s *LocalStore) CreateCanonDoc(title, content string) (CanonDoc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := nowMillis()
	doc := CanonDoc{ID: uuid.NewString(), Title: title, Content: content, CreatedAt: now, UpdatedAt: now}
	_, err := s.db.Exec(
		`INSERT INTO canon_docs (id, title, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		doc.ID, doc.Title, doc.Content, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return CanonDoc{}, fmt.Errorf("failed to insert canon doc: %w", err)
	}
	logging.Docs("Created canon doc %q (%s)", doc.Title, doc.ID)
	return doc, nil
}

// UpdateCanonDoc rewrites a canonical document's title and content.
func (s *LocalStore) UpdateCanonDoc(id, title, content string) (CanonDoc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := nowMillis()
	res, err := s.db.Exec(
		`UPDATE canon_docs SET title = ?, content = ?, updated_at = ? WHERE id = ?`,
		title, content, now, id)
	if err != nil {
		return CanonDoc{}, fmt.Errorf("failed to update canon doc: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return CanonDoc{}, fmt.Errorf("canon doc %s: %w", id, ErrNotFound)
	}
	return s.getCanonDocLocked(id)
}

// GetCanonDoc loads one canonical document.
func (s *LocalStore) GetCanonDoc(id string) (CanonDoc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getCanonDocLocked(id)
}

func (s *LocalStore) getCanonDocLocked(id string) (CanonDoc, error) {
	var doc CanonDoc
	err := s.db.QueryRow(
		`SELECT id, title, content, created_at, updated_at FROM canon_docs WHERE id = ?`, id,
	).Scan(&doc.ID, &doc.Title, &doc.Content, &doc.CreatedAt, &doc.UpdatedAt)
	if err == sql.ErrNoRows {
		return CanonDoc{}, fmt.Errorf("canon doc %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return CanonDoc{}, fmt.Errorf("failed to load canon doc: %w", err)
	}
	return doc, nil
}

// ListCanonDocs returns all canonical documents, oldest first.
func (s *LocalStore) ListCanonDocs() ([]CanonDoc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT id, title, content, created_at, updated_at FROM canon_docs ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list canon docs: %w", err)
	}
	defer rows.Close()

	out := []CanonDoc{}
	for rows.Next() {
		var doc CanonDoc
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan canon doc: %w", err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// DeleteCanonDoc removes a canonical document.
func (s *LocalStore) DeleteCanonDoc(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM canon_docs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete canon doc: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("canon doc %s: %w", id, ErrNotFound)
	}
	logging.Docs("Deleted canon doc %s", id)
	return nil
}
