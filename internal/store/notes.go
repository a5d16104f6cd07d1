package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/noteflow/internal/apperr"
	"github.com/starford/noteflow/internal/models"
)

// NoteUpdate carries partial note fields. Nil pointers leave the stored
// value unchanged; updated_at is refreshed on every call.
type NoteUpdate struct {
	Title      *string
	Content    *[]models.Block
	NotebookID *string
	Tags       *[]string
	IsFavorite *bool
	IsArchived *bool
}

// CreateNote inserts a note, generating the id and timestamps. An empty
// block list is replaced by a single empty paragraph so the never-empty
// invariant holds from birth.
func (s *Store) CreateNote(n models.Note) (*models.Note, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.NotebookID == "" {
		n.NotebookID = DefaultNotebookID
	}
	if len(n.Content) == 0 {
		n.Content = []models.Block{{
			ID:         uuid.NewString(),
			Type:       models.BlockParagraph,
			Properties: map[string]any{},
		}}
	}
	now := time.Now()
	n.CreatedAt = now
	n.UpdatedAt = now

	contentJSON, err := marshalBlocks(n.Content)
	if err != nil {
		return nil, fmt.Errorf("store: marshal content: %w", err)
	}
	tagsJSON, _ := json.Marshal(nonNilStrings(n.Tags))

	_, err = s.conn.Exec(`
		INSERT INTO notes (id, title, content, notebook_id, tags, created_at, updated_at, is_favorite, is_archived)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.Title, contentJSON, n.NotebookID, string(tagsJSON), n.CreatedAt, n.UpdatedAt, n.IsFavorite, n.IsArchived)
	if err != nil {
		return nil, fmt.Errorf("store: insert note: %w", err)
	}
	return &n, nil
}

// GetNote returns the note with the given id.
func (s *Store) GetNote(id string) (*models.Note, error) {
	row := s.conn.QueryRow(noteSelect+` WHERE id = ?`, id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get note: %w", err)
	}
	return n, nil
}

// ListNotes returns every note, most recently updated first.
func (s *Store) ListNotes() ([]models.Note, error) {
	return s.queryNotes(noteSelect + ` ORDER BY updated_at DESC`)
}

// ListNotesByNotebook returns the notes belonging to a notebook.
func (s *Store) ListNotesByNotebook(notebookID string) ([]models.Note, error) {
	return s.queryNotes(noteSelect+` WHERE notebook_id = ? ORDER BY updated_at DESC`, notebookID)
}

// UpdateNote merges the given fields into a note and refreshes updated_at.
func (s *Store) UpdateNote(id string, upd NoteUpdate) (*models.Note, error) {
	tx, err := s.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if err := updateNoteTx(tx, id, upd); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}
	return s.GetNote(id)
}

// DeleteNote removes a note and its tasks.
func (s *Store) DeleteNote(id string) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete note: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperr.ErrNotFound
	}
	if _, err := tx.Exec(`DELETE FROM tasks WHERE note_id = ?`, id); err != nil {
		return fmt.Errorf("store: delete note tasks: %w", err)
	}
	return tx.Commit()
}

const noteSelect = `
	SELECT id, title, content, notebook_id, tags, created_at, updated_at, is_favorite, is_archived
	FROM notes`

// updateNoteTx applies a partial update inside an existing transaction.
func updateNoteTx(tx *sql.Tx, id string, upd NoteUpdate) error {
	row := tx.QueryRow(noteSelect+` WHERE id = ?`, id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: read note for update: %w", err)
	}

	if upd.Title != nil {
		n.Title = *upd.Title
	}
	if upd.Content != nil {
		n.Content = *upd.Content
	}
	if upd.NotebookID != nil {
		n.NotebookID = *upd.NotebookID
	}
	if upd.Tags != nil {
		n.Tags = *upd.Tags
	}
	if upd.IsFavorite != nil {
		n.IsFavorite = *upd.IsFavorite
	}
	if upd.IsArchived != nil {
		n.IsArchived = *upd.IsArchived
	}

	contentJSON, err := marshalBlocks(n.Content)
	if err != nil {
		return fmt.Errorf("store: marshal content: %w", err)
	}
	tagsJSON, _ := json.Marshal(nonNilStrings(n.Tags))

	_, err = tx.Exec(`
		UPDATE notes
		SET title = ?, content = ?, notebook_id = ?, tags = ?, updated_at = ?, is_favorite = ?, is_archived = ?
		WHERE id = ?
	`, n.Title, contentJSON, n.NotebookID, string(tagsJSON), time.Now(), n.IsFavorite, n.IsArchived, id)
	if err != nil {
		return fmt.Errorf("store: update note: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(r rowScanner) (*models.Note, error) {
	var (
		n           models.Note
		contentJSON string
		tagsJSON    string
	)
	err := r.Scan(&n.ID, &n.Title, &contentJSON, &n.NotebookID, &tagsJSON,
		&n.CreatedAt, &n.UpdatedAt, &n.IsFavorite, &n.IsArchived)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(contentJSON), &n.Content); err != nil {
		return nil, fmt.Errorf("store: decode content: %w", err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &n.Tags); err != nil {
		return nil, fmt.Errorf("store: decode tags: %w", err)
	}
	return &n, nil
}

func (s *Store) queryNotes(query string, args ...any) ([]models.Note, error) {
	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list notes: %w", err)
	}
	defer rows.Close()

	var out []models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

func marshalBlocks(blocks []models.Block) (string, error) {
	if blocks == nil {
		blocks = []models.Block{}
	}
	data, err := json.Marshal(blocks)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
