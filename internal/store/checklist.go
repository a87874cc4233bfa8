package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// ChecklistItem is one launch-checklist entry.
type ChecklistItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// DefaultChecklist seeds an empty checklist table on first use.
var DefaultChecklist = []string{
	"File Form ADV",
	"Register with state regulator",
	"Open custodian relationship",
	"Set up compliance calendar",
	"Draft client agreement",
	"Launch website",
}

// GetChecklist returns the checklist in order, seeding defaults when the
// table is empty.
func (s *LocalStore) GetChecklist() ([]ChecklistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.listChecklistLocked()
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		return items, nil
	}
	for i, text := range DefaultChecklist {
		if _, err := s.db.Exec(
			`INSERT INTO checklist_items (id, text, done, position) VALUES (?, ?, 0, ?)`,
			uuid.NewString(), text, i+1); err != nil {
			return nil, fmt.Errorf("failed to seed checklist: %w", err)
		}
	}
	return s.listChecklistLocked()
}

// ToggleChecklistItem flips an item's done state and returns the result.
func (s *LocalStore) ToggleChecklistItem(id string) (ChecklistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`UPDATE checklist_items SET done = 1 - done WHERE id = ?`, id)
	if err != nil {
		return ChecklistItem{}, fmt.Errorf("failed to toggle checklist item: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ChecklistItem{}, fmt.Errorf("checklist item %s: %w", id, ErrNotFound)
	}

	var item ChecklistItem
	var done int
	err = s.db.QueryRow(`SELECT id, text, done FROM checklist_items WHERE id = ?`, id).
		Scan(&item.ID, &item.Text, &done)
	if err == sql.ErrNoRows {
		return ChecklistItem{}, fmt.Errorf("checklist item %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return ChecklistItem{}, fmt.Errorf("failed to load checklist item: %w", err)
	}
	item.Done = done != 0
	return item, nil
}

func (s *LocalStore) listChecklistLocked() ([]ChecklistItem, error) {
	rows, err := s.db.Query(`SELECT id, text, done FROM checklist_items ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist: %w", err)
	}
	defer rows.Close()

	out := []ChecklistItem{}
	for rows.Next() {
		var item ChecklistItem
		var done int
		if err := rows.Scan(&item.ID, &item.Text, &done); err != nil {
			return nil, fmt.Errorf("failed to scan checklist item: %w", err)
		}
		item.Done = done != 0
		out = append(out, item)
	}
	return out, rows.Err()
}
