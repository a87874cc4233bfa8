package store

import (
	"fmt"

	"riabuilder/internal/logging"
)

// Schema versions:
// v1: cards, card_notes, documents, canon_docs, conversation_summaries,
//     settings, todos, checklist_items, calculator
const currentSchemaVersion = 1

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS cards (
		id             TEXT PRIMARY KEY,
		text           TEXT NOT NULL,
		category       TEXT NOT NULL,
		subcategory    TEXT NOT NULL DEFAULT '',
		stage          TEXT NOT NULL,
		type           TEXT NOT NULL,
		goal           TEXT NOT NULL DEFAULT '',
		pinned         INTEGER NOT NULL DEFAULT 0,
		position       INTEGER NOT NULL DEFAULT 0,
		reference_urls TEXT NOT NULL DEFAULT '[]',
		created_at     INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cards_stage ON cards(stage)`,
	`CREATE INDEX IF NOT EXISTS idx_cards_category ON cards(category)`,
	`CREATE TABLE IF NOT EXISTS card_notes (
		id         TEXT PRIMARY KEY,
		card_id    TEXT NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
		text       TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_card_notes_card ON card_notes(card_id)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id              TEXT PRIMARY KEY,
		filename        TEXT NOT NULL,
		file_type       TEXT NOT NULL DEFAULT '',
		mime_type       TEXT NOT NULL DEFAULT '',
		size            INTEGER NOT NULL DEFAULT 0,
		uploaded_at     INTEGER NOT NULL,
		drive_file_id   TEXT NOT NULL DEFAULT '',
		drive_mime_type TEXT NOT NULL DEFAULT '',
		is_canonical    INTEGER NOT NULL DEFAULT 0,
		tags            TEXT NOT NULL DEFAULT '[]',
		summary         TEXT NOT NULL DEFAULT '',
		linked_cards    TEXT NOT NULL DEFAULT '[]',
		payload         BLOB
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_filename ON documents(filename)`,
	`CREATE TABLE IF NOT EXISTS canon_docs (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		content    TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS conversation_summaries (
		id            TEXT PRIMARY KEY,
		summary       TEXT NOT NULL,
		key_decisions TEXT NOT NULL DEFAULT '[]',
		created_at    INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS todos (
		id          TEXT PRIMARY KEY,
		text        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		completed   INTEGER NOT NULL DEFAULT 0,
		priority    TEXT NOT NULL DEFAULT 'medium',
		due_date    TEXT NOT NULL DEFAULT '',
		category    TEXT NOT NULL DEFAULT '',
		tags        TEXT NOT NULL DEFAULT '[]',
		position    INTEGER NOT NULL DEFAULT 0,
		created_at  INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS checklist_items (
		id       TEXT PRIMARY KEY,
		text     TEXT NOT NULL,
		done     INTEGER NOT NULL DEFAULT 0,
		position INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS calculator (
		id                  INTEGER PRIMARY KEY CHECK (id = 1),
		num_clients         INTEGER NOT NULL DEFAULT 0,
		meetings_per_client INTEGER NOT NULL DEFAULT 0,
		minutes_per_meeting INTEGER NOT NULL DEFAULT 0,
		work_days_per_week  INTEGER NOT NULL DEFAULT 0,
		weeks_per_year      INTEGER NOT NULL DEFAULT 0,
		hours_per_day       REAL NOT NULL DEFAULT 0,
		start_hour          INTEGER NOT NULL DEFAULT 0,
		end_hour            INTEGER NOT NULL DEFAULT 0,
		notes               TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS schema_meta (
		key   TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	)`,
}

func (s *LocalStore) migrate() error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}

	var version int
	err := s.db.QueryRow(`SELECT value FROM schema_meta WHERE key = 'version'`).Scan(&version)
	if err != nil {
		version = 0
	}
	if version < currentSchemaVersion {
		logging.Store("Migrating schema from v%d to v%d", version, currentSchemaVersion)
		if _, err := s.db.Exec(
			`INSERT INTO schema_meta (key, value) VALUES ('version', ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			currentSchemaVersion,
		); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
	}
	return nil
}
