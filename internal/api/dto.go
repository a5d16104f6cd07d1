package api

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/noteflow/internal/filters"
	"github.com/starford/noteflow/internal/models"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Title      string         `json:"title" example:"Meeting notes"`
	Content    []models.Block `json:"content"`
	NotebookID string         `json:"notebook_id" example:"default"`
	Tags       []string       `json:"tags" example:"work,planning"`
}

// Validate checks the block types of the supplied content.
func (r CreateNoteRequest) Validate() error {
	return validateBlocks(r.Content)
}

// UpdateNoteRequest is the request body for updating a note. Absent fields
// keep their current values.
type UpdateNoteRequest struct {
	Title      *string         `json:"title"`
	Content    *[]models.Block `json:"content"`
	NotebookID *string         `json:"notebook_id"`
	Tags       *[]string       `json:"tags"`
	IsFavorite *bool           `json:"is_favorite"`
	IsArchived *bool           `json:"is_archived"`
}

// Validate checks the block types when content is being replaced.
func (r UpdateNoteRequest) Validate() error {
	if r.Content == nil {
		return nil
	}
	return validateBlocks(*r.Content)
}

func validateBlocks(blocks []models.Block) error {
	for _, b := range blocks {
		if !models.ValidBlockType(b.Type) {
			return validation.NewError("validation_block_type", "unknown block type "+string(b.Type))
		}
	}
	return nil
}

// BlockOpRequest is one editing operation inside an EditBlocksRequest.
type BlockOpRequest struct {
	Op         string         `json:"op" example:"update"`
	BlockID    string         `json:"block_id,omitempty"`
	AfterID    string         `json:"after_id,omitempty"`
	TargetID   string         `json:"target_id,omitempty"`
	Position   string         `json:"position,omitempty" example:"after"`
	Type       string         `json:"type,omitempty" example:"paragraph"`
	Content    *string        `json:"content,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Validate implements request validation.
func (r BlockOpRequest) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.Op, validation.Required,
			validation.In("insert", "update", "delete", "move", "set_type", "focus")),
		validation.Field(&r.Position, validation.In("", "before", "after")),
	); err != nil {
		return err
	}
	if r.Type != "" && !models.ValidBlockType(models.BlockType(r.Type)) {
		return validation.NewError("validation_block_type", "unknown block type "+r.Type)
	}
	return nil
}

// EditBlocksRequest carries a batch of block operations for an open note.
type EditBlocksRequest struct {
	Ops []BlockOpRequest `json:"ops" validate:"required"`
}

// Validate implements request validation.
func (r EditBlocksRequest) Validate() error {
	if len(r.Ops) == 0 {
		return validation.NewError("validation_ops", "ops must not be empty")
	}
	for _, op := range r.Ops {
		if err := op.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// EditBlocksResponse is the block list after a batch of operations.
type EditBlocksResponse struct {
	NoteID  string         `json:"note_id"`
	Blocks  []models.Block `json:"blocks" validate:"required"`
	Focused string         `json:"focused,omitempty"`
}

// CreateNotebookRequest is the request body for creating a notebook.
type CreateNotebookRequest struct {
	Name        string `json:"name" example:"Work" validate:"required"`
	Description string `json:"description" example:"Work notes"`
	Color       string `json:"color" example:"#4F46E5"`
	Icon        string `json:"icon" example:"BookOpen"`
}

// Validate implements request validation.
func (r CreateNotebookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
	)
}

// UpdateNotebookRequest is the request body for updating a notebook.
type UpdateNotebookRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
}

// Validate implements request validation.
func (r UpdateNotebookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty),
	)
}

// CreateTaskRequest is the request body for creating a task.
type CreateTaskRequest struct {
	Title       string     `json:"title" example:"Ship release" validate:"required"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"due_date"`
	Reminder    *time.Time `json:"reminder"`
	Priority    string     `json:"priority" example:"medium"`
	Flagged     bool       `json:"flagged"`
	NoteID      string     `json:"note_id" example:"tasks-default"`
}

// Validate implements request validation.
func (r CreateTaskRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 500)),
		validation.Field(&r.Priority, validation.In("", "low", "medium", "high")),
	)
}

// UpdateTaskRequest is the request body for updating a task. Absent fields
// keep their current values; the clear flags drop the optional dates.
type UpdateTaskRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Completed     *bool      `json:"completed"`
	DueDate       *time.Time `json:"due_date"`
	ClearDueDate  bool       `json:"clear_due_date"`
	Reminder      *time.Time `json:"reminder"`
	ClearReminder bool       `json:"clear_reminder"`
	Priority      *string    `json:"priority"`
	Flagged       *bool      `json:"flagged"`
}

// Validate implements request validation.
func (r UpdateTaskRequest) Validate() error {
	if r.Priority != nil {
		if err := validation.Validate(*r.Priority, validation.In("low", "medium", "high")); err != nil {
			return validation.NewError("validation_priority", "priority must be low, medium, or high")
		}
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty),
	)
}

// UpsertTaskBlockRequest carries the task fields written atomically together
// with the mirrored block inside the owning note.
type UpsertTaskBlockRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"due_date"`
	Reminder    *time.Time `json:"reminder"`
	Priority    string     `json:"priority"`
	Flagged     bool       `json:"flagged"`
	NoteID      string     `json:"note_id" validate:"required"`
}

// Validate implements request validation.
func (r UpsertTaskBlockRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.NoteID, validation.Required),
		validation.Field(&r.Priority, validation.In("", "low", "medium", "high")),
	)
}

// ReorderTasksRequest carries the visible task ids in their new order.
type ReorderTasksRequest struct {
	IDs []string `json:"ids" validate:"required"`
}

// Validate implements request validation.
func (r ReorderTasksRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IDs, validation.Required),
	)
}

// SaveFilterRequest is the request body for saving a named filter.
type SaveFilterRequest struct {
	Name          string             `json:"name" example:"Work favorites" validate:"required"`
	Filters       models.NoteFilters `json:"filters"`
	SortBy        models.NoteSortBy  `json:"sort_by" example:"updated"`
	SortAscending bool               `json:"sort_ascending"`
}

// Validate implements request validation.
func (r SaveFilterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
	)
}

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []models.Note `json:"notes" validate:"required"`
	Total int           `json:"total" example:"42" validate:"required"`
}

// TaskListResponse wraps task listings with collection counts.
type TaskListResponse struct {
	Tasks     []models.Task `json:"tasks" validate:"required"`
	Total     int           `json:"total" example:"12"`
	Pending   int           `json:"pending" example:"7"`
	Completed int           `json:"completed" example:"5"`
}

// FilterStateResponse is the live filter selection.
type FilterStateResponse = filters.FilterState
