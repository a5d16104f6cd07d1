// Package editor implements the block model for an open note: an ordered
// block list plus a focused-block cursor, with the insert, update, delete,
// reorder, and slash-command transitions of the editing surface.
//
// Invariant: the block list is never empty. Deleting the last block
// substitutes a fresh empty paragraph.
package editor

import (
	"github.com/google/uuid"

	"github.com/starford/noteflow/internal/models"
)

// Position selects which side of a target block a dragged block lands on.
type Position string

// Drop positions.
const (
	Before Position = "before"
	After  Position = "after"
)

// Editor is the in-memory state of one open note's content.
type Editor struct {
	blocks  []models.Block
	focused string // focused block id, "" when nothing has focus
}

// New builds an editor over the given blocks. An empty list is replaced by a
// single empty paragraph.
func New(blocks []models.Block) *Editor {
	e := &Editor{blocks: cloneBlocks(blocks)}
	e.ensureMinimum()
	return e
}

// Blocks returns a copy of the current block list.
func (e *Editor) Blocks() []models.Block {
	return cloneBlocks(e.blocks)
}

// cloneBlocks copies the slice and each block's properties map, so callers
// never alias editor state.
func cloneBlocks(blocks []models.Block) []models.Block {
	out := make([]models.Block, len(blocks))
	copy(out, blocks)
	for i := range out {
		if out[i].Properties == nil {
			continue
		}
		props := make(map[string]any, len(out[i].Properties))
		for k, v := range out[i].Properties {
			props[k] = v
		}
		out[i].Properties = props
	}
	return out
}

// Len returns the number of top-level blocks.
func (e *Editor) Len() int { return len(e.blocks) }

// Focused returns the focused block id, or "".
func (e *Editor) Focused() string { return e.focused }

// SetFocus moves focus to the given block id. Focus on an unknown id clears
// it.
func (e *Editor) SetFocus(id string) {
	if _, ok := e.indexOf(id); ok {
		e.focused = id
		return
	}
	e.focused = ""
}

// NewBlock creates a detached block of the given type.
func NewBlock(t models.BlockType) models.Block {
	return models.Block{
		ID:         uuid.NewString(),
		Type:       t,
		Properties: map[string]any{},
	}
}

// Insert creates a new block of the given type immediately after afterID and
// focuses it. When afterID is empty or unknown the block is appended.
// It returns the new block's id.
func (e *Editor) Insert(afterID string, t models.BlockType) string {
	b := NewBlock(t)
	if i, ok := e.indexOf(afterID); ok {
		e.blocks = append(e.blocks[:i+1], append([]models.Block{b}, e.blocks[i+1:]...)...)
	} else {
		e.blocks = append(e.blocks, b)
	}
	e.focused = b.ID
	return b.ID
}

// BlockUpdate carries partial block fields for Update.
type BlockUpdate struct {
	Type       *models.BlockType
	Content    *string
	Properties map[string]any // merged key-by-key when non-nil
}

// Update merges fields into the block with the given id. Unknown ids are a
// silent no-op.
func (e *Editor) Update(id string, upd BlockUpdate) {
	i, ok := e.indexOf(id)
	if !ok {
		return
	}
	if upd.Type != nil {
		e.blocks[i].Type = *upd.Type
	}
	if upd.Content != nil {
		e.blocks[i].Content = *upd.Content
	}
	if upd.Properties != nil {
		if e.blocks[i].Properties == nil {
			e.blocks[i].Properties = map[string]any{}
		}
		for k, v := range upd.Properties {
			e.blocks[i].Properties[k] = v
		}
	}
}

// Delete removes the block with the given id. Unknown ids are a silent
// no-op. Removing the last block substitutes a fresh empty paragraph and
// focuses it; otherwise focus moves to the previous block when the deleted
// block held it.
func (e *Editor) Delete(id string) {
	i, ok := e.indexOf(id)
	if !ok {
		return
	}
	e.blocks = append(e.blocks[:i], e.blocks[i+1:]...)

	if len(e.blocks) == 0 {
		e.ensureMinimum()
		e.focused = e.blocks[0].ID
		return
	}
	if e.focused == id {
		prev := i - 1
		if prev < 0 {
			prev = 0
		}
		e.focused = e.blocks[prev].ID
	}
}

// Move removes the dragged block and reinserts it adjacent to the target.
// A no-op when either id is absent or they are equal.
func (e *Editor) Move(draggedID, targetID string, pos Position) {
	if draggedID == targetID {
		return
	}
	from, ok := e.indexOf(draggedID)
	if !ok {
		return
	}
	if _, ok := e.indexOf(targetID); !ok {
		return
	}

	dragged := e.blocks[from]
	rest := append(e.blocks[:from:from], e.blocks[from+1:]...)

	to, _ := indexOfBlocks(rest, targetID)
	if pos == After {
		to++
	}
	e.blocks = append(rest[:to:to], append([]models.Block{dragged}, rest[to:]...)...)
}

// SetType changes a block's type and clears its content. Converting to a
// task block seeds the default task properties; the taskId link is written
// later, once the block has content and a backing task record exists.
func (e *Editor) SetType(id string, t models.BlockType) {
	i, ok := e.indexOf(id)
	if !ok {
		return
	}
	e.blocks[i].Type = t
	e.blocks[i].Content = ""
	if t == models.BlockTask {
		e.blocks[i].Properties = map[string]any{
			"completed": false,
			"priority":  string(models.PriorityMedium),
			"flagged":   false,
		}
	}
	e.focused = id
}

func (e *Editor) ensureMinimum() {
	if len(e.blocks) == 0 {
		e.blocks = []models.Block{NewBlock(models.BlockParagraph)}
	}
}

func (e *Editor) indexOf(id string) (int, bool) {
	return indexOfBlocks(e.blocks, id)
}

func indexOfBlocks(blocks []models.Block, id string) (int, bool) {
	if id == "" {
		return 0, false
	}
	for i, b := range blocks {
		if b.ID == id {
			return i, true
		}
	}
	return 0, false
}
