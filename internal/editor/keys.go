package editor

import (
	"strings"

	"github.com/starford/noteflow/internal/models"
)

// slashCommands maps the command picker entries to block types.
var slashCommands = map[string]models.BlockType{
	"h1":      models.BlockHeading1,
	"h2":      models.BlockHeading2,
	"h3":      models.BlockHeading3,
	"todo":    models.BlockTodo,
	"bullet":  models.BlockBulletedList,
	"number":  models.BlockNumberedList,
	"code":    models.BlockCode,
	"task":    models.BlockTask,
	"quote":   models.BlockQuote,
	"divider": models.BlockDivider,
}

// Commands returns the recognised slash-command names.
func Commands() []string {
	out := make([]string, 0, len(slashCommands))
	for name := range slashCommands {
		out = append(out, name)
	}
	return out
}

// InsertBelow handles Enter: a new paragraph is inserted after the focused
// block and receives focus. With no focus the block is appended.
func (e *Editor) InsertBelow() string {
	return e.Insert(e.focused, models.BlockParagraph)
}

// DeleteEmpty handles Backspace on an empty block: when more than one block
// exists and the block's content is empty, the block is deleted and focus
// moves to the previous block (cursor at its end, which is the caller's
// concern). Returns true when a deletion happened.
func (e *Editor) DeleteEmpty(id string) bool {
	i, ok := e.indexOf(id)
	if !ok || len(e.blocks) <= 1 || e.blocks[i].Content != "" {
		return false
	}
	prev := i - 1
	if prev < 0 {
		prev = 0
	}
	focusTo := e.blocks[prev].ID
	if prev == i {
		focusTo = ""
	}
	e.blocks = append(e.blocks[:i], e.blocks[i+1:]...)
	if focusTo == "" {
		focusTo = e.blocks[0].ID
	}
	e.focused = focusTo
	return true
}

// FocusPrev handles Arrow-Up at the top boundary of a block: focus moves to
// the previous block. A no-op on the first block or an unknown id.
func (e *Editor) FocusPrev(id string) {
	i, ok := e.indexOf(id)
	if !ok || i == 0 {
		return
	}
	e.focused = e.blocks[i-1].ID
}

// FocusNext handles Arrow-Down at the bottom boundary of a block: focus
// moves to the next block. A no-op on the last block or an unknown id.
func (e *Editor) FocusNext(id string) {
	i, ok := e.indexOf(id)
	if !ok || i == len(e.blocks)-1 {
		return
	}
	e.focused = e.blocks[i+1].ID
}

// ApplySlashCommand resolves a command picked from the "/" menu: the block
// changes type via SetType, which also drops the trailing "/" along with the
// rest of the typed content. Unknown commands are ignored. Returns true when
// the command was applied.
func (e *Editor) ApplySlashCommand(id, command string) bool {
	t, ok := slashCommands[strings.TrimPrefix(command, "/")]
	if !ok {
		return false
	}
	if _, ok := e.indexOf(id); !ok {
		return false
	}
	e.SetType(id, t)
	return true
}
