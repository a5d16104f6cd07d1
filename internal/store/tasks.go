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

// TaskUpdate carries partial task fields. Nil pointers leave the stored
// value unchanged. ClearDueDate/ClearReminder unset the optional dates.
type TaskUpdate struct {
	Title         *string
	Description   *string
	Completed     *bool
	DueDate       *time.Time
	ClearDueDate  bool
	Reminder      *time.Time
	ClearReminder bool
	Priority      *models.Priority
	Flagged       *bool
}

// CreateTask inserts a task. The manual order slot is assigned as
// max(order)+1 among the tasks of the owning note.
func (s *Store) CreateTask(t models.Task) (*models.Task, error) {
	tx, err := s.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	created, err := createTaskTx(tx, t)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}
	return created, nil
}

// GetTask returns the task with the given id.
func (s *Store) GetTask(id string) (*models.Task, error) {
	row := s.conn.QueryRow(taskSelect+` WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get task: %w", err)
	}
	return t, nil
}

// ListTasks returns every task ordered by the manual sort position.
func (s *Store) ListTasks() ([]models.Task, error) {
	return s.queryTasks(taskSelect + ` ORDER BY sort_order`)
}

// ListTasksByNote returns the tasks belonging to a note.
func (s *Store) ListTasksByNote(noteID string) ([]models.Task, error) {
	return s.queryTasks(taskSelect+` WHERE note_id = ? ORDER BY sort_order`, noteID)
}

// UpdateTask merges the given fields into a task and refreshes updated_at.
func (s *Store) UpdateTask(id string, upd TaskUpdate) (*models.Task, error) {
	t, err := s.GetTask(id)
	if err != nil {
		return nil, err
	}
	applyTaskUpdate(t, upd)

	_, err = s.conn.Exec(`
		UPDATE tasks
		SET title = ?, description = ?, completed = ?, due_date = ?, reminder = ?,
		    priority = ?, flagged = ?, updated_at = ?
		WHERE id = ?
	`, t.Title, t.Description, t.Completed, nullTime(t.DueDate), nullTime(t.Reminder),
		string(t.Priority), t.Flagged, time.Now(), id)
	if err != nil {
		return nil, fmt.Errorf("store: update task: %w", err)
	}
	return s.GetTask(id)
}

// DeleteTask removes a task and, in the same transaction, strips the paired
// task block from the owning note's content.
func (s *Store) DeleteTask(id string) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	row := tx.QueryRow(taskSelect+` WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: read task for delete: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete task: %w", err)
	}

	// Remove the mirrored block. The note may have been deleted already;
	// that is not an error.
	noteRow := tx.QueryRow(noteSelect+` WHERE id = ?`, t.NoteID)
	n, err := scanNote(noteRow)
	if err == nil {
		kept := n.Content[:0:0]
		for _, b := range n.Content {
			if b.Type == models.BlockTask && blockTaskID(b) == id {
				continue
			}
			kept = append(kept, b)
		}
		if len(kept) != len(n.Content) {
			if err := updateNoteTx(tx, t.NoteID, NoteUpdate{Content: &kept}); err != nil {
				return err
			}
		}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("store: read owning note: %w", err)
	}

	return tx.Commit()
}

// UpsertTaskBlock writes a task record and its embedded task block in the
// owning note as one transaction. A task with an empty id is created; the
// note's block list gains a task block carrying the task id, or the existing
// one is refreshed from the record.
func (s *Store) UpsertTaskBlock(t models.Task) (*models.Task, error) {
	tx, err := s.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var saved *models.Task
	if t.ID == "" {
		saved, err = createTaskTx(tx, t)
		if err != nil {
			return nil, err
		}
	} else {
		row := tx.QueryRow(taskSelect+` WHERE id = ?`, t.ID)
		existing, scanErr := scanTask(row)
		if errors.Is(scanErr, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		if scanErr != nil {
			return nil, fmt.Errorf("store: read task: %w", scanErr)
		}
		t.NoteID = existing.NoteID
		t.Order = existing.Order
		t.CreatedAt = existing.CreatedAt
		t.UpdatedAt = time.Now()
		_, err = tx.Exec(`
			UPDATE tasks
			SET title = ?, description = ?, completed = ?, due_date = ?, reminder = ?,
			    priority = ?, flagged = ?, updated_at = ?
			WHERE id = ?
		`, t.Title, t.Description, t.Completed, nullTime(t.DueDate), nullTime(t.Reminder),
			string(t.Priority), t.Flagged, t.UpdatedAt, t.ID)
		if err != nil {
			return nil, fmt.Errorf("store: update task: %w", err)
		}
		saved = &t
	}

	noteRow := tx.QueryRow(noteSelect+` WHERE id = ?`, saved.NoteID)
	n, err := scanNote(noteRow)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: read owning note: %w", err)
	}

	blocks := n.Content
	found := false
	for i, b := range blocks {
		if b.Type == models.BlockTask && blockTaskID(b) == saved.ID {
			blocks[i] = taskBlock(blocks[i].ID, *saved)
			found = true
			break
		}
	}
	if !found {
		blocks = append(blocks, taskBlock(uuid.NewString(), *saved))
	}
	if err := updateNoteTx(tx, saved.NoteID, NoteUpdate{Content: &blocks}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}
	return saved, nil
}

// ReorderTasks assigns dense 1..N order values to the given ids in list
// order. Ids not listed keep their previous order values.
func (s *Store) ReorderTasks(ids []string) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.Prepare(`UPDATE tasks SET sort_order = ?, updated_at = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("store: prepare reorder: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for i, id := range ids {
		if _, err := stmt.Exec(i+1, now, id); err != nil {
			return fmt.Errorf("store: reorder task %s: %w", id, err)
		}
	}
	return tx.Commit()
}

const taskSelect = `
	SELECT id, title, description, completed, due_date, reminder, priority, flagged,
	       note_id, created_at, updated_at, sort_order
	FROM tasks`

func createTaskTx(tx *sql.Tx, t models.Task) (*models.Task, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	var maxOrder sql.NullInt64
	if err := tx.QueryRow(`SELECT max(sort_order) FROM tasks WHERE note_id = ?`, t.NoteID).Scan(&maxOrder); err != nil {
		return nil, fmt.Errorf("store: max order: %w", err)
	}
	t.Order = int(maxOrder.Int64) + 1

	_, err := tx.Exec(`
		INSERT INTO tasks (id, title, description, completed, due_date, reminder, priority, flagged,
		                   note_id, created_at, updated_at, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Title, t.Description, t.Completed, nullTime(t.DueDate), nullTime(t.Reminder),
		string(t.Priority), t.Flagged, t.NoteID, t.CreatedAt, t.UpdatedAt, t.Order)
	if err != nil {
		return nil, fmt.Errorf("store: insert task: %w", err)
	}
	return &t, nil
}

func applyTaskUpdate(t *models.Task, upd TaskUpdate) {
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Completed != nil {
		t.Completed = *upd.Completed
	}
	if upd.DueDate != nil {
		t.DueDate = upd.DueDate
	}
	if upd.ClearDueDate {
		t.DueDate = nil
	}
	if upd.Reminder != nil {
		t.Reminder = upd.Reminder
	}
	if upd.ClearReminder {
		t.Reminder = nil
	}
	if upd.Priority != nil {
		t.Priority = *upd.Priority
	}
	if upd.Flagged != nil {
		t.Flagged = *upd.Flagged
	}
}

// taskBlock builds the note block mirroring a task record.
func taskBlock(blockID string, t models.Task) models.Block {
	props := map[string]any{
		"taskId":    t.ID,
		"completed": t.Completed,
		"priority":  string(t.Priority),
		"flagged":   t.Flagged,
	}
	if t.Description != "" {
		props["description"] = t.Description
	}
	if t.DueDate != nil {
		props["dueDate"] = t.DueDate.Format(time.RFC3339)
	}
	return models.Block{
		ID:         blockID,
		Type:       models.BlockTask,
		Content:    t.Title,
		Properties: props,
	}
}

// blockTaskID extracts the linked task id from a task block, or "".
func blockTaskID(b models.Block) string {
	if b.Properties == nil {
		return ""
	}
	id, _ := b.Properties["taskId"].(string)
	return id
}

func scanTask(r rowScanner) (*models.Task, error) {
	var (
		t        models.Task
		due      sql.NullTime
		reminder sql.NullTime
		priority string
	)
	err := r.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &due, &reminder,
		&priority, &t.Flagged, &t.NoteID, &t.CreatedAt, &t.UpdatedAt, &t.Order)
	if err != nil {
		return nil, err
	}
	t.Priority = models.Priority(priority)
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	if reminder.Valid {
		rem := reminder.Time
		t.Reminder = &rem
	}
	return &t, nil
}

func (s *Store) queryTasks(query string, args ...any) ([]models.Task, error) {
	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list tasks: %w", err)
	}
	defer rows.Close()

	var out []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
