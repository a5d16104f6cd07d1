// Package store provides the SQLite-backed record store for notes,
// notebooks, tasks, and flat key-value application state.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/noteflow/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notebooks (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	color       TEXT NOT NULL DEFAULT '',
	icon        TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	content     TEXT NOT NULL DEFAULT '[]',
	notebook_id TEXT NOT NULL,
	tags        TEXT NOT NULL DEFAULT '[]',
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL,
	is_favorite INTEGER NOT NULL DEFAULT 0,
	is_archived INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_notes_notebook ON notes(notebook_id);
CREATE INDEX IF NOT EXISTS idx_notes_updated ON notes(updated_at);

CREATE TABLE IF NOT EXISTS tasks (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	completed   INTEGER NOT NULL DEFAULT 0,
	due_date    DATETIME,
	reminder    DATETIME,
	priority    TEXT NOT NULL DEFAULT 'medium',
	flagged     INTEGER NOT NULL DEFAULT 0,
	note_id     TEXT NOT NULL,
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL,
	sort_order  INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_tasks_note ON tasks(note_id);

CREATE TABLE IF NOT EXISTS app_state (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Default records seeded on first run.
const (
	DefaultNotebookID  = "default"
	defaultNoteID      = "tasks-default"
	defaultNoteTitle   = "Things to do"
	defaultNotebookMsg = "Your default notebook for quick thoughts"
)

// Store wraps a sql.DB with record-store operations.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database, applies the schema, and seeds
// the default notebook and note when the store is empty.
func Open(dsn string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	s := &Store{conn: conn}
	if err := s.seed(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: seed: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Ping verifies the database connection is alive.
func (s *Store) Ping() error {
	return s.conn.Ping()
}

// seed inserts the default notebook and the "Things to do" note on first run.
func (s *Store) seed() error {
	var notebooks int
	if err := s.conn.QueryRow(`SELECT count(*) FROM notebooks`).Scan(&notebooks); err != nil {
		return err
	}
	now := time.Now()
	if notebooks == 0 {
		_, err := s.conn.Exec(`
			INSERT INTO notebooks (id, name, description, color, icon, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, DefaultNotebookID, "Quick Notes", defaultNotebookMsg, "#4F46E5", "BookOpen", now, now)
		if err != nil {
			return err
		}
	}

	var tasksNote int
	if err := s.conn.QueryRow(`SELECT count(*) FROM notes WHERE title = ?`, defaultNoteTitle).Scan(&tasksNote); err != nil {
		return err
	}
	if tasksNote == 0 {
		content := []models.Block{{
			ID:         uuid.NewString(),
			Type:       models.BlockParagraph,
			Content:    "Your default task list",
			Properties: map[string]any{},
		}}
		contentJSON, err := marshalBlocks(content)
		if err != nil {
			return err
		}
		_, err = s.conn.Exec(`
			INSERT INTO notes (id, title, content, notebook_id, tags, created_at, updated_at, is_favorite, is_archived)
			VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0)
		`, defaultNoteID, defaultNoteTitle, contentJSON, DefaultNotebookID, `["tasks"]`, now, now)
		if err != nil {
			return err
		}
	}
	return nil
}
