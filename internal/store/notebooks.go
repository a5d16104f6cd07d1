package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/noteflow/internal/apperr"
	"github.com/starford/noteflow/internal/models"
)

// NotebookUpdate carries partial notebook fields.
type NotebookUpdate struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
}

// CreateNotebook inserts a notebook, generating the id and timestamps.
func (s *Store) CreateNotebook(nb models.Notebook) (*models.Notebook, error) {
	if nb.ID == "" {
		nb.ID = uuid.NewString()
	}
	now := time.Now()
	nb.CreatedAt = now
	nb.UpdatedAt = now
	nb.NoteCount = 0

	_, err := s.conn.Exec(`
		INSERT INTO notebooks (id, name, description, color, icon, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, nb.ID, nb.Name, nb.Description, nb.Color, nb.Icon, nb.CreatedAt, nb.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: insert notebook: %w", err)
	}
	return &nb, nil
}

// GetNotebook returns the notebook with the given id, including its derived
// count of non-archived notes.
func (s *Store) GetNotebook(id string) (*models.Notebook, error) {
	row := s.conn.QueryRow(notebookSelect+` WHERE nb.id = ? GROUP BY nb.id`, id)
	nb, err := scanNotebook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get notebook: %w", err)
	}
	return nb, nil
}

// ListNotebooks returns every notebook with derived note counts.
func (s *Store) ListNotebooks() ([]models.Notebook, error) {
	rows, err := s.conn.Query(notebookSelect + ` GROUP BY nb.id ORDER BY nb.created_at`)
	if err != nil {
		return nil, fmt.Errorf("store: list notebooks: %w", err)
	}
	defer rows.Close()

	var out []models.Notebook
	for rows.Next() {
		nb, err := scanNotebook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *nb)
	}
	return out, rows.Err()
}

// UpdateNotebook merges the given fields into a notebook.
func (s *Store) UpdateNotebook(id string, upd NotebookUpdate) (*models.Notebook, error) {
	nb, err := s.GetNotebook(id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		nb.Name = *upd.Name
	}
	if upd.Description != nil {
		nb.Description = *upd.Description
	}
	if upd.Color != nil {
		nb.Color = *upd.Color
	}
	if upd.Icon != nil {
		nb.Icon = *upd.Icon
	}
	_, err = s.conn.Exec(`
		UPDATE notebooks SET name = ?, description = ?, color = ?, icon = ?, updated_at = ? WHERE id = ?
	`, nb.Name, nb.Description, nb.Color, nb.Icon, time.Now(), id)
	if err != nil {
		return nil, fmt.Errorf("store: update notebook: %w", err)
	}
	return s.GetNotebook(id)
}

// DuplicateNotebook copies a notebook under a new id with " (Copy)" appended
// to the name. Notes are not copied.
func (s *Store) DuplicateNotebook(id string) (*models.Notebook, error) {
	nb, err := s.GetNotebook(id)
	if err != nil {
		return nil, err
	}
	copyNB := *nb
	copyNB.ID = ""
	copyNB.Name = nb.Name + " (Copy)"
	return s.CreateNotebook(copyNB)
}

// DeleteNotebook removes a notebook, all its notes, and their tasks in one
// transaction. It returns the number of notes deleted with it.
func (s *Store) DeleteNotebook(id string) (int, error) {
	tx, err := s.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`DELETE FROM notebooks WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("store: delete notebook: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return 0, apperr.ErrNotFound
	}

	if _, err := tx.Exec(`DELETE FROM tasks WHERE note_id IN (SELECT id FROM notes WHERE notebook_id = ?)`, id); err != nil {
		return 0, fmt.Errorf("store: delete notebook tasks: %w", err)
	}
	res, err = tx.Exec(`DELETE FROM notes WHERE notebook_id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("store: delete notebook notes: %w", err)
	}
	deleted, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit: %w", err)
	}
	return int(deleted), nil
}

const notebookSelect = `
	SELECT nb.id, nb.name, nb.description, nb.color, nb.icon, nb.created_at, nb.updated_at,
	       count(n.id)
	FROM notebooks nb
	LEFT JOIN notes n ON n.notebook_id = nb.id AND n.is_archived = 0`

func scanNotebook(r rowScanner) (*models.Notebook, error) {
	var nb models.Notebook
	err := r.Scan(&nb.ID, &nb.Name, &nb.Description, &nb.Color, &nb.Icon,
		&nb.CreatedAt, &nb.UpdatedAt, &nb.NoteCount)
	if err != nil {
		return nil, err
	}
	return &nb, nil
}
