package store

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"riabuilder/internal/logging"
)

// ConversationSummary is one compressed chat session: a prose summary plus
// the decisions worth keeping. Summaries are append-only.
type ConversationSummary struct {
	ID           string   `json:"id"`
	Summary      string   `json:"summary"`
	KeyDecisions []string `json:"keyDecisions"`
	CreatedAt    int64    `json:"createdAt"`
}

// AppendSummary persists a new conversation summary.
func (s *LocalStore) AppendSummary(summary string, keyDecisions []string) (ConversationSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs := ConversationSummary{
		ID:           uuid.NewString(),
		Summary:      summary,
		KeyDecisions: stringsOrEmpty(keyDecisions),
		CreatedAt:    nowMillis(),
	}
	decisions, err := json.Marshal(cs.KeyDecisions)
	if err != nil {
		return ConversationSummary{}, fmt.Errorf("failed to encode key decisions: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO conversation_summaries (id, summary, key_decisions, created_at) VALUES (?, ?, ?, ?)`,
		cs.ID, cs.Summary, string(decisions), cs.CreatedAt)
	if err != nil {
		return ConversationSummary{}, fmt.Errorf("failed to insert summary: %w", err)
	}
	logging.Session("Appended conversation summary %s (%d decisions)", cs.ID, len(cs.KeyDecisions))
	return cs, nil
}

// ListSummaries returns all conversation summaries, oldest first.
func (s *LocalStore) ListSummaries() ([]ConversationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT id, summary, key_decisions, created_at FROM conversation_summaries ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	defer rows.Close()

	out := []ConversationSummary{}
	for rows.Next() {
		var cs ConversationSummary
		var decisions string
		if err := rows.Scan(&cs.ID, &cs.Summary, &decisions, &cs.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		if err := json.Unmarshal([]byte(decisions), &cs.KeyDecisions); err != nil {
			cs.KeyDecisions = []string{}
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}
