// Package noteservice coordinates the record store, the search index, and
// the event broker behind the API surface.
package noteservice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/noteflow/internal/autosave"
	"github.com/starford/noteflow/internal/editor"
	"github.com/starford/noteflow/internal/filters"
	"github.com/starford/noteflow/internal/models"
	"github.com/starford/noteflow/internal/query"
	"github.com/starford/noteflow/internal/search"
	"github.com/starford/noteflow/internal/sse"
	"github.com/starford/noteflow/internal/store"
)

// View selects which archived slice of the notes collection a listing sees.
type View string

// Views.
const (
	ViewAll      View = "all"      // non-archived notes
	ViewArchived View = "archived" // archived notes only
)

// Service coordinates record-store operations with index refresh and event
// publication.
type Service struct {
	store    *store.Store
	broker   *sse.Broker
	registry *filters.Registry
	saver    *autosave.Saver

	mu  sync.RWMutex
	idx *search.Index

	// editing is the single open block-editing session; the saver holds at
	// most one pending snapshot, always for this session's note.
	emu     sync.Mutex
	editing *editSession
}

type editSession struct {
	noteID string
	ed     *editor.Editor
}

// NewService creates a service and builds the initial search index.
// autosaveDelay is the quiet interval before edited blocks are persisted.
func NewService(st *store.Store, broker *sse.Broker, autosaveDelay time.Duration) (*Service, error) {
	s := &Service{
		store:    st,
		broker:   broker,
		registry: filters.NewRegistry(st),
	}
	s.saver = autosave.New(autosaveDelay, s.persistSnapshot)
	if err := s.refreshIndex(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close flushes any pending block edit and stops the autosave machinery.
func (s *Service) Close() {
	s.saver.Close()
}

// Registry exposes the saved-filter registry.
func (s *Service) Registry() *filters.Registry {
	return s.registry
}

// refreshIndex rebuilds the fuzzy index from the current notes snapshot.
// The engines are pure functions over snapshots, so a full rebuild on every
// mutation is the whole consistency story.
func (s *Service) refreshIndex() error {
	notes, err := s.store.ListNotes()
	if err != nil {
		return err
	}
	idx := search.Build(notes)
	s.mu.Lock()
	s.idx = idx
	s.mu.Unlock()
	return nil
}

func (s *Service) publish(entity, kind, id string) {
	if s.broker != nil {
		s.broker.PublishRecordEvent(entity, kind, id)
	}
}

// Search answers a fuzzy query against the current index.
func (s *Service) Search(_ context.Context, text string) []search.Result {
	s.mu.RLock()
	idx := s.idx
	s.mu.RUnlock()
	return idx.Query(text)
}

// ListNotes returns the filtered, sorted notes for a view.
func (s *Service) ListNotes(_ context.Context, view View, spec models.NoteFilters, sortBy models.NoteSortBy, ascending bool) ([]models.Note, error) {
	notes, err := s.store.ListNotes()
	if err != nil {
		return nil, err
	}
	if view == ViewArchived {
		notes = query.OnlyArchived(notes)
	} else {
		notes = query.ExcludeArchived(notes)
	}
	return query.SortNotes(query.FilterNotes(notes, spec), sortBy, ascending), nil
}

// GetNote returns one note.
func (s *Service) GetNote(_ context.Context, id string) (*models.Note, error) {
	return s.store.GetNote(id)
}

// CreateNote inserts a note and reindexes.
func (s *Service) CreateNote(_ context.Context, n models.Note) (*models.Note, error) {
	created, err := s.store.CreateNote(n)
	if err != nil {
		return nil, err
	}
	if err := s.refreshIndex(); err != nil {
		return nil, err
	}
	s.publish("note", "created", created.ID)
	return created, nil
}

// UpdateNote merges fields into a note and reindexes.
func (s *Service) UpdateNote(_ context.Context, id string, upd store.NoteUpdate) (*models.Note, error) {
	updated, err := s.store.UpdateNote(id, upd)
	if err != nil {
		return nil, err
	}
	if upd.Content != nil {
		// A direct content write wins over any open editing session.
		s.dropSession(id)
	}
	if err := s.refreshIndex(); err != nil {
		return nil, err
	}
	s.publish("note", "updated", id)
	return updated, nil
}

// DeleteNote removes a note (and its tasks) and reindexes.
func (s *Service) DeleteNote(_ context.Context, id string) error {
	if err := s.store.DeleteNote(id); err != nil {
		return err
	}
	s.dropSession(id)
	if err := s.refreshIndex(); err != nil {
		return err
	}
	s.publish("note", "deleted", id)
	return nil
}

// OpenNote publishes the cross-view signal asking the host UI to select a
// note. The note must exist; delivery past that point is best-effort.
func (s *Service) OpenNote(_ context.Context, id string) error {
	if _, err := s.store.GetNote(id); err != nil {
		return err
	}
	if s.broker != nil {
		s.broker.PublishOpenNote(id)
	}
	return nil
}

// BlockOp is one block-editing transition applied by EditBlocks.
type BlockOp struct {
	Op         string
	BlockID    string
	AfterID    string
	TargetID   string
	Position   editor.Position
	Type       models.BlockType
	Content    *string
	Properties map[string]any
}

// Block operation names.
const (
	OpInsert  = "insert"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpMove    = "move"
	OpSetType = "set_type"
	OpFocus   = "focus"
)

// EditBlocks applies block operations to a note through its editing session
// and queues the result for debounced persistence. It returns the updated
// block list and the focused block id. Switching to a different note flushes
// the previous session's pending snapshot first.
func (s *Service) EditBlocks(_ context.Context, noteID string, ops []BlockOp) ([]models.Block, string, error) {
	s.emu.Lock()
	defer s.emu.Unlock()

	if s.editing == nil || s.editing.noteID != noteID {
		s.saver.Flush()
		note, err := s.store.GetNote(noteID)
		if err != nil {
			return nil, "", err
		}
		s.editing = &editSession{noteID: noteID, ed: editor.New(note.Content)}
	}

	ed := s.editing.ed
	for _, op := range ops {
		switch op.Op {
		case OpInsert:
			t := op.Type
			if t == "" {
				t = models.BlockParagraph
			}
			ed.Insert(op.AfterID, t)
		case OpUpdate:
			upd := editor.BlockUpdate{Content: op.Content, Properties: op.Properties}
			if op.Type != "" {
				t := op.Type
				upd.Type = &t
			}
			ed.Update(op.BlockID, upd)
		case OpDelete:
			ed.Delete(op.BlockID)
		case OpMove:
			ed.Move(op.BlockID, op.TargetID, op.Position)
		case OpSetType:
			ed.SetType(op.BlockID, op.Type)
		case OpFocus:
			ed.SetFocus(op.BlockID)
		default:
			return nil, "", fmt.Errorf("unknown block operation %q", op.Op)
		}
	}

	blocks := ed.Blocks()
	s.saver.Notify(autosave.Snapshot{NoteID: noteID, Blocks: blocks})
	return blocks, ed.Focused(), nil
}

// FlushEdits forces any pending block edit through to the store immediately.
func (s *Service) FlushEdits() {
	s.saver.Flush()
}

// persistSnapshot is the autosave callback: it writes the debounced block
// snapshot through the store, reindexes, and announces the update.
func (s *Service) persistSnapshot(snap autosave.Snapshot) {
	blocks := snap.Blocks
	if _, err := s.store.UpdateNote(snap.NoteID, store.NoteUpdate{Content: &blocks}); err != nil {
		slog.Error("autosave persist failed",
			slog.String("note_id", snap.NoteID),
			slog.String("error", err.Error()))
		return
	}
	if err := s.refreshIndex(); err != nil {
		slog.Error("autosave reindex failed", slog.String("error", err.Error()))
		return
	}
	s.publish("note", "updated", snap.NoteID)
}

// dropSession discards the editing session (and any stale pending snapshot)
// for a note whose content was replaced or removed outside the editor.
func (s *Service) dropSession(noteID string) {
	s.emu.Lock()
	if s.editing != nil && s.editing.noteID == noteID {
		s.editing = nil
		s.saver.Discard()
	}
	s.emu.Unlock()
}

// AvailableTags returns the distinct tags across all notes.
func (s *Service) AvailableTags(_ context.Context) ([]string, error) {
	notes, err := s.store.ListNotes()
	if err != nil {
		return nil, err
	}
	return query.AvailableTags(notes), nil
}

// ListNotebooks returns every notebook with derived note counts.
func (s *Service) ListNotebooks(_ context.Context) ([]models.Notebook, error) {
	return s.store.ListNotebooks()
}

// GetNotebook returns one notebook.
func (s *Service) GetNotebook(_ context.Context, id string) (*models.Notebook, error) {
	return s.store.GetNotebook(id)
}

// CreateNotebook inserts a notebook.
func (s *Service) CreateNotebook(_ context.Context, nb models.Notebook) (*models.Notebook, error) {
	created, err := s.store.CreateNotebook(nb)
	if err != nil {
		return nil, err
	}
	s.publish("notebook", "created", created.ID)
	return created, nil
}

// UpdateNotebook merges fields into a notebook.
func (s *Service) UpdateNotebook(_ context.Context, id string, upd store.NotebookUpdate) (*models.Notebook, error) {
	updated, err := s.store.UpdateNotebook(id, upd)
	if err != nil {
		return nil, err
	}
	s.publish("notebook", "updated", id)
	return updated, nil
}

// DuplicateNotebook copies a notebook (without its notes).
func (s *Service) DuplicateNotebook(_ context.Context, id string) (*models.Notebook, error) {
	created, err := s.store.DuplicateNotebook(id)
	if err != nil {
		return nil, err
	}
	s.publish("notebook", "created", created.ID)
	return created, nil
}

// DeleteNotebook removes a notebook and everything in it, returning the
// count of notes deleted with it.
func (s *Service) DeleteNotebook(_ context.Context, id string) (int, error) {
	deleted, err := s.store.DeleteNotebook(id)
	if err != nil {
		return 0, err
	}
	if err := s.refreshIndex(); err != nil {
		return 0, err
	}
	s.publish("notebook", "deleted", id)
	return deleted, nil
}

// ListTasks returns the filtered, sorted task collection.
func (s *Service) ListTasks(_ context.Context, spec models.TaskFilters, sortBy models.TaskSortBy, ascending bool) ([]models.Task, error) {
	tasks, err := s.store.ListTasks()
	if err != nil {
		return nil, err
	}
	return query.SortTasks(query.FilterTasks(tasks, spec), sortBy, ascending), nil
}

// TaskCounts summarises the full task collection.
func (s *Service) TaskCounts(_ context.Context) (query.TaskCounts, error) {
	tasks, err := s.store.ListTasks()
	if err != nil {
		return query.TaskCounts{}, err
	}
	return query.CountTasks(tasks), nil
}

// GetTask returns one task.
func (s *Service) GetTask(_ context.Context, id string) (*models.Task, error) {
	return s.store.GetTask(id)
}

// CreateTask inserts a task.
func (s *Service) CreateTask(_ context.Context, t models.Task) (*models.Task, error) {
	created, err := s.store.CreateTask(t)
	if err != nil {
		return nil, err
	}
	s.publish("task", "created", created.ID)
	return created, nil
}

// UpdateTask merges fields into a task.
func (s *Service) UpdateTask(_ context.Context, id string, upd store.TaskUpdate) (*models.Task, error) {
	updated, err := s.store.UpdateTask(id, upd)
	if err != nil {
		return nil, err
	}
	s.publish("task", "updated", id)
	return updated, nil
}

// UpsertTaskBlock writes a task and its embedded note block atomically and
// reindexes (the note's content changed).
func (s *Service) UpsertTaskBlock(_ context.Context, t models.Task) (*models.Task, error) {
	saved, err := s.store.UpsertTaskBlock(t)
	if err != nil {
		return nil, err
	}
	s.dropSession(saved.NoteID)
	if err := s.refreshIndex(); err != nil {
		return nil, err
	}
	s.publish("task", "updated", saved.ID)
	s.publish("note", "updated", saved.NoteID)
	return saved, nil
}

// DeleteTask removes a task and its mirrored note block.
func (s *Service) DeleteTask(_ context.Context, id string) error {
	task, err := s.store.GetTask(id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTask(id); err != nil {
		return err
	}
	s.dropSession(task.NoteID)
	if err := s.refreshIndex(); err != nil {
		return err
	}
	s.publish("task", "deleted", id)
	s.publish("note", "updated", task.NoteID)
	return nil
}

// ReorderTasks persists dense 1..N order values over the given visible ids.
// Hidden (filtered-out) tasks keep their previous order values.
func (s *Service) ReorderTasks(_ context.Context, ids []string) error {
	if err := s.store.ReorderTasks(ids); err != nil {
		return err
	}
	for _, id := range ids {
		s.publish("task", "updated", id)
	}
	return nil
}
