package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// TodoItem is one entry on the admin todo list.
type TodoItem struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Description string   `json:"description,omitempty"`
	Completed   bool     `json:"completed"`
	Priority    string   `json:"priority"` // low | medium | high
	DueDate     string   `json:"dueDate,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	CreatedAt   int64    `json:"createdAt"`
}

// CreateTodo persists a new todo at the end of the list.
func (s *LocalStore) CreateTodo(item TodoItem) (TodoItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = uuid.NewString()
	item.CreatedAt = nowMillis()
	if item.Priority == "" {
		item.Priority = "medium"
	}
	tags, err := json.Marshal(stringsOrEmpty(item.Tags))
	if err != nil {
		return TodoItem{}, fmt.Errorf("failed to encode tags: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO todos (id, text, description, completed, priority, due_date, category, tags, position, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?,
		   (SELECT COALESCE(MAX(position), 0) + 1 FROM todos), ?)`,
		item.ID, item.Text, item.Description, boolToInt(item.Completed),
		item.Priority, item.DueDate, item.Category, string(tags), item.CreatedAt)
	if err != nil {
		return TodoItem{}, fmt.Errorf("failed to insert todo: %w", err)
	}
	return item, nil
}

// UpdateTodo rewrites a todo's mutable fields.
func (s *LocalStore) UpdateTodo(item TodoItem) (TodoItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tags, err := json.Marshal(stringsOrEmpty(item.Tags))
	if err != nil {
		return TodoItem{}, fmt.Errorf("failed to encode tags: %w", err)
	}
	res, err := s.db.Exec(
		`UPDATE todos SET text = ?, description = ?, completed = ?, priority = ?,
			due_date = ?, category = ?, tags = ?
		 WHERE id = ?`,
		item.Text, item.Description, boolToInt(item.Completed), item.Priority,
		item.DueDate, item.Category, string(tags), item.ID)
	if err != nil {
		return TodoItem{}, fmt.Errorf("failed to update todo: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return TodoItem{}, fmt.Errorf("todo %s: %w", item.ID, ErrNotFound)
	}
	return s.getTodoLocked(item.ID)
}

// ListTodos returns all todos in list order.
func (s *LocalStore) ListTodos() ([]TodoItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT id, text, description, completed, priority, due_date, category, tags, created_at
		 FROM todos ORDER BY position ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	out := []TodoItem{}
	for rows.Next() {
		item, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// DeleteTodo removes a todo.
func (s *LocalStore) DeleteTodo(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *LocalStore) getTodoLocked(id string) (TodoItem, error) {
	row := s.db.QueryRow(
		`SELECT id, text, description, completed, priority, due_date, category, tags, created_at
		 FROM todos WHERE id = ?`, id)
	item, err := scanTodo(row)
	if err == sql.ErrNoRows {
		return TodoItem{}, fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return TodoItem{}, fmt.Errorf("failed to load todo: %w", err)
	}
	return item, nil
}

func scanTodo(row rowScanner) (TodoItem, error) {
	var item TodoItem
	var completed int
	var tags string
	err := row.Scan(&item.ID, &item.Text, &item.Description, &completed, &item.Priority,
		&item.DueDate, &item.Category, &tags, &item.CreatedAt)
	if err != nil {
		return TodoItem{}, err
	}
	item.Completed = completed != 0
	if err := json.Unmarshal([]byte(tags), &item.Tags); err != nil {
		item.Tags = nil
	}
	if len(item.Tags) == 0 {
		item.Tags = nil
	}
	return item, nil
}
