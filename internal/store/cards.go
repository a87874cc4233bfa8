package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"riabuilder/internal/board"
	"riabuilder/internal/logging"
)

// CreateCard persists a new card, appending it to the end of the board
// order. The card's ID and Timestamp are assigned here.
func (s *LocalStore) CreateCard(c board.Card) (board.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = uuid.NewString()
	c.Timestamp = nowMillis()
	if c.Notes == nil {
		c.Notes = []board.Note{}
	}

	urls, err := json.Marshal(refURLsOrEmpty(c.ReferenceURLs))
	if err != nil {
		return board.Card{}, fmt.Errorf("failed to encode reference urls: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO cards (id, text, category, subcategory, stage, type, goal, pinned, position, reference_urls, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?,
		   (SELECT COALESCE(MAX(position), 0) + 1 FROM cards), ?, ?)`,
		c.ID, c.Text, c.Category, c.Subcategory, string(c.Stage), string(c.Type),
		c.Goal, boolToInt(c.Pinned), string(urls), c.Timestamp,
	)
	if err != nil {
		return board.Card{}, fmt.Errorf("failed to insert card: %w", err)
	}
	logging.Board("Created card %s in %s/%s stage=%s", c.ID, c.Category, c.Subcategory, c.Stage)
	return c, nil
}

// GetCard loads a single card with its notes.
func (s *LocalStore) GetCard(id string) (board.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getCardLocked(id)
}

func (s *LocalStore) getCardLocked(id string) (board.Card, error) {
	row := s.db.QueryRow(
		`SELECT id, text, category, subcategory, stage, type, goal, pinned, reference_urls, created_at
		 FROM cards WHERE id = ?`, id)
	c, err := scanCard(row)
	if err == sql.ErrNoRows {
		return board.Card{}, fmt.Errorf("card %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return board.Card{}, fmt.Errorf("failed to load card: %w", err)
	}
	notes, err := s.notesForCard(id)
	if err != nil {
		return board.Card{}, err
	}
	c.Notes = notes
	return c, nil
}

// ListCards returns all cards in board order, notes included.
func (s *LocalStore) ListCards() ([]board.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT id, text, category, subcategory, stage, type, goal, pinned, reference_urls, created_at
		 FROM cards ORDER BY position ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	cards := []board.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range cards {
		notes, err := s.notesForCard(cards[i].ID)
		if err != nil {
			return nil, err
		}
		cards[i].Notes = notes
	}
	return cards, nil
}

// UpdateCard applies the non-nil fields of upd to the card with the given
// id. An unknown id is an error and mutates nothing.
func (s *LocalStore) UpdateCard(id string, upd board.CardUpdate) (board.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sets []string
	var args []interface{}
	appendSet := func(col string, v interface{}) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if upd.Text != nil {
		appendSet("text", *upd.Text)
	}
	if upd.Category != nil {
		appendSet("category", *upd.Category)
	}
	if upd.Subcategory != nil {
		appendSet("subcategory", *upd.Subcategory)
	}
	if upd.Stage != nil {
		appendSet("stage", string(*upd.Stage))
	}
	if upd.Type != nil {
		appendSet("type", string(*upd.Type))
	}
	if upd.Goal != nil {
		appendSet("goal", *upd.Goal)
	}
	if upd.Pinned != nil {
		appendSet("pinned", boolToInt(*upd.Pinned))
	}

	if len(sets) > 0 {
		args = append(args, id)
		res, err := s.db.Exec("UPDATE cards SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
		if err != nil {
			return board.Card{}, fmt.Errorf("failed to update card: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return board.Card{}, fmt.Errorf("card %s: %w", id, ErrNotFound)
		}
		logging.Board("Updated card %s (%d fields)", id, len(sets))
	}
	return s.getCardLocked(id)
}

// DeleteCard removes a card and its notes.
func (s *LocalStore) DeleteCard(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("card %s: %w", id, ErrNotFound)
	}
	logging.Board("Deleted card %s", id)
	return nil
}

// AddNote appends a timestamped note to a card.
func (s *LocalStore) AddNote(cardID, text string) (board.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getCardLocked(cardID); err != nil {
		return board.Note{}, err
	}
	n := board.Note{ID: uuid.NewString(), Text: text, Timestamp: nowMillis()}
	_, err := s.db.Exec(
		`INSERT INTO card_notes (id, card_id, text, created_at) VALUES (?, ?, ?, ?)`,
		n.ID, cardID, n.Text, n.Timestamp)
	if err != nil {
		return board.Note{}, fmt.Errorf("failed to insert note: %w", err)
	}
	logging.BoardDebug("Added note %s to card %s", n.ID, cardID)
	return n, nil
}

// ReorderCards rewrites board positions to match the given id order. Ids
// not listed keep their relative order after the listed ones.
func (s *LocalStore) ReorderCards(orderedIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin reorder: %w", err)
	}
	defer tx.Rollback()

	for i, id := range orderedIDs {
		if _, err := tx.Exec(`UPDATE cards SET position = ? WHERE id = ?`, i+1, id); err != nil {
			return fmt.Errorf("failed to reorder card %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reorder: %w", err)
	}
	logging.BoardDebug("Reordered %d cards", len(orderedIDs))
	return nil
}

func (s *LocalStore) notesForCard(cardID string) ([]board.Note, error) {
	rows, err := s.db.Query(
		`SELECT id, text, created_at FROM card_notes WHERE card_id = ? ORDER BY created_at ASC`, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}
	defer rows.Close()

	notes := []board.Note{}
	for rows.Next() {
		var n board.Note
		if err := rows.Scan(&n.ID, &n.Text, &n.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCard(row rowScanner) (board.Card, error) {
	var c board.Card
	var stage, ctype, urls string
	var pinned int
	err := row.Scan(&c.ID, &c.Text, &c.Category, &c.Subcategory, &stage, &ctype,
		&c.Goal, &pinned, &urls, &c.Timestamp)
	if err != nil {
		return board.Card{}, err
	}
	c.Stage = board.Stage(stage)
	c.Type = board.CardType(ctype)
	c.Pinned = pinned != 0
	if err := json.Unmarshal([]byte(urls), &c.ReferenceURLs); err != nil {
		c.ReferenceURLs = nil
	}
	if len(c.ReferenceURLs) == 0 {
		c.ReferenceURLs = nil
	}
	return c, nil
}

func refURLsOrEmpty(urls []string) []string {
	if urls == nil {
		return []string{}
	}
	return urls
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
