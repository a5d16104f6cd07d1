// Package models defines the domain types for Noteflow.
package models

import "time"

// BlockType enumerates the supported content block kinds.
type BlockType string

// Block types.
const (
	BlockParagraph    BlockType = "paragraph"
	BlockHeading1     BlockType = "heading1"
	BlockHeading2     BlockType = "heading2"
	BlockHeading3     BlockType = "heading3"
	BlockBulletedList BlockType = "bulleted-list"
	BlockNumberedList BlockType = "numbered-list"
	BlockTodo         BlockType = "todo"
	BlockTask         BlockType = "task"
	BlockCode         BlockType = "code"
	BlockQuote        BlockType = "quote"
	BlockDivider      BlockType = "divider"
	BlockTable        BlockType = "table"
	BlockImage        BlockType = "image"
	BlockEmbed        BlockType = "embed"
)

// ValidBlockType reports whether t is one of the known block kinds.
func ValidBlockType(t BlockType) bool {
	switch t {
	case BlockParagraph, BlockHeading1, BlockHeading2, BlockHeading3,
		BlockBulletedList, BlockNumberedList, BlockTodo, BlockTask,
		BlockCode, BlockQuote, BlockDivider, BlockTable, BlockImage, BlockEmbed:
		return true
	}
	return false
}

// Block is one unit of note content. Blocks form a tree through Children,
// though the editor only manipulates the flat top-level list.
type Block struct {
	ID         string         `json:"id"`
	Type       BlockType      `json:"type"`
	Content    string         `json:"content"`
	Properties map[string]any `json:"properties,omitempty"`
	Children   []Block        `json:"children,omitempty"`
}

// Note is a document made of an ordered block sequence.
// Invariant: Content is never empty; at least one block is always present.
type Note struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    []Block   `json:"content"`
	NotebookID string    `json:"notebook_id"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	IsFavorite bool      `json:"is_favorite"`
	IsArchived bool      `json:"is_archived"`
}

// Notebook is a named container grouping notes. NoteCount is derived from
// the notes collection (non-archived notes referencing the notebook), not
// an independently authoritative field.
type Notebook struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	NoteCount   int       `json:"note_count"`
}

// Priority is a task priority level.
type Priority string

// Task priorities.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Ordinal returns the numeric rank of a priority (high outranks low).
// Unknown values rank below low so malformed data sorts last.
func (p Priority) Ordinal() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Task is a to-do item, optionally mirrored by a task-type block inside its
// owning note (linked through the block's "taskId" property).
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Reminder    *time.Time `json:"reminder,omitempty"`
	Priority    Priority   `json:"priority"`
	Flagged     bool       `json:"flagged"`
	NoteID      string     `json:"note_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Order       int        `json:"order"`
}

// DateRange bounds a timestamp field. Each bound is independently optional.
type DateRange struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// Active reports whether at least one bound is set.
func (r DateRange) Active() bool {
	return r.Start != nil || r.End != nil
}

// Contains reports whether t falls within the range. Unset bounds pass.
func (r DateRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

// NoteFilters is a transient query specification for the notes collection.
// Zero-valued fields are inactive clauses.
type NoteFilters struct {
	Search           string    `json:"search"`
	Tags             []string  `json:"tags"`
	DateRange        DateRange `json:"date_range"`
	CreatedDateRange DateRange `json:"created_date_range"`
	Favorites        *bool     `json:"favorites"`
	Notebooks        []string  `json:"notebooks"`
}

// NoteSortBy selects the note sort key.
type NoteSortBy string

// Note sort keys.
const (
	NoteSortUpdated      NoteSortBy = "updated"
	NoteSortCreated      NoteSortBy = "created"
	NoteSortTitle        NoteSortBy = "title"
	NoteSortAlphabetical NoteSortBy = "alphabetical"
)

// TaskStatus filters tasks by completion.
type TaskStatus string

// Task status filter values.
const (
	TaskStatusAll       TaskStatus = "all"
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// TaskFilters is a transient query specification for the tasks collection.
type TaskFilters struct {
	Status   TaskStatus `json:"status"`
	Priority string     `json:"priority"` // "all", "low", "medium", "high"
	Flagged  *bool      `json:"flagged"`
	NoteID   string     `json:"note_id"`
}

// TaskSortBy selects the task sort key. Anything else falls back to the
// manual order field.
type TaskSortBy string

// Task sort keys.
const (
	TaskSortDueDate  TaskSortBy = "dueDate"
	TaskSortPriority TaskSortBy = "priority"
	TaskSortCreated  TaskSortBy = "created"
	TaskSortUpdated  TaskSortBy = "updated"
	TaskSortTitle    TaskSortBy = "title"
	TaskSortManual   TaskSortBy = "manual"
)

// SavedFilter is a named, persisted snapshot of a filter+sort configuration.
// Applying one copies its fields into live state; it never binds by reference.
type SavedFilter struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Filters       NoteFilters `json:"filters"`
	SortBy        NoteSortBy  `json:"sort_by"`
	SortAscending bool        `json:"sort_ascending"`
	CreatedAt     time.Time   `json:"created_at"`
}
