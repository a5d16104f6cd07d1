package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/noteflow/internal/apperr"
	"github.com/starford/noteflow/internal/editor"
	"github.com/starford/noteflow/internal/models"
	"github.com/starford/noteflow/internal/noteservice"
	"github.com/starford/noteflow/internal/store"
)

const maxBodyBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// noteFiltersFromQuery parses the notes listing query parameters into a
// filter specification. Absent parameters stay inactive clauses.
func noteFiltersFromQuery(r *http.Request) models.NoteFilters {
	q := r.URL.Query()
	f := models.NoteFilters{
		Search: q.Get("search"),
	}
	if tags := q.Get("tags"); tags != "" {
		f.Tags = strings.Split(tags, ",")
	}
	if notebooks := q.Get("notebooks"); notebooks != "" {
		f.Notebooks = strings.Split(notebooks, ",")
	}
	if fav := q.Get("favorites"); fav != "" {
		v := fav == "true" || fav == "1"
		f.Favorites = &v
	}
	f.DateRange = models.DateRange{
		Start: parseTime(q.Get("updated_after")),
		End:   parseTime(q.Get("updated_before")),
	}
	f.CreatedDateRange = models.DateRange{
		Start: parseTime(q.Get("created_after")),
		End:   parseTime(q.Get("created_before")),
	}
	return f
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

func sortParams(r *http.Request) (string, bool) {
	q := r.URL.Query()
	return q.Get("sort"), q.Get("order") == "asc"
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes with filtering and sorting
//	@Tags			notes
//	@Produce		json
//	@Param			search			query		string	false	"Substring filter over title, content, and tags"
//	@Param			tags			query		string	false	"Comma-separated tag filter (any match)"
//	@Param			notebooks		query		string	false	"Comma-separated notebook id filter"
//	@Param			favorites		query		bool	false	"Favorites only (true) or non-favorites only (false)"
//	@Param			updated_after	query		string	false	"RFC3339 lower bound on update time"
//	@Param			updated_before	query		string	false	"RFC3339 upper bound on update time"
//	@Param			created_after	query		string	false	"RFC3339 lower bound on creation time"
//	@Param			created_before	query		string	false	"RFC3339 upper bound on creation time"
//	@Param			sort			query		string	false	"Sort key"	Enums(updated, created, title, alphabetical)
//	@Param			order			query		string	false	"asc or desc (default desc)"
//	@Param			view			query		string	false	"all (default) or archived"
//	@Success		200				{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	view := noteservice.ViewAll
	if r.URL.Query().Get("view") == "archived" {
		view = noteservice.ViewArchived
	}
	sort, ascending := sortParams(r)

	notes, err := h.svc.ListNotes(r.Context(), view, noteFiltersFromQuery(r), models.NoteSortBy(sort), ascending)
	if err != nil {
		slog.Error("list notes failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a single note
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{object}	models.Note
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	note, err := h.svc.GetNote(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get note failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateNoteRequest	true	"Note to create"
//	@Success		201		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	note, err := h.svc.CreateNote(r.Context(), models.Note{
		Title:      req.Title,
		Content:    req.Content,
		NotebookID: req.NotebookID,
		Tags:       req.Tags,
	})
	if err != nil {
		slog.Error("create note failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PUT /api/notes/{id}.
//
//	@Summary		Update a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Note id"
//	@Param			body	body		UpdateNoteRequest	true	"Fields to change"
//	@Success		200		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	note, err := h.svc.UpdateNote(r.Context(), id, store.NoteUpdate{
		Title:      req.Title,
		Content:    req.Content,
		NotebookID: req.NotebookID,
		Tags:       req.Tags,
		IsFavorite: req.IsFavorite,
		IsArchived: req.IsArchived,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("update note failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/{id}.
//
//	@Summary		Delete a note and its tasks
//	@Tags			notes
//	@Param			id	path	string	true	"Note id"
//	@Success		204	"Note deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteNote(r.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("delete note failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EditBlocks handles PATCH /api/notes/{id}/blocks.
//
//	@Summary		Apply block operations to a note's content
//	@Description	Operations run through the server-side editing session; the result is persisted by the debounced autosaver.
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Note id"
//	@Param			body	body		EditBlocksRequest	true	"Operations to apply"
//	@Success		200		{object}	EditBlocksResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/blocks [patch]
func (h *Handler) EditBlocks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req EditBlocksRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	ops := make([]noteservice.BlockOp, len(req.Ops))
	for i, op := range req.Ops {
		ops[i] = noteservice.BlockOp{
			Op:         op.Op,
			BlockID:    op.BlockID,
			AfterID:    op.AfterID,
			TargetID:   op.TargetID,
			Position:   editor.Position(op.Position),
			Type:       models.BlockType(op.Type),
			Content:    op.Content,
			Properties: op.Properties,
		}
	}
	blocks, focused, err := h.svc.EditBlocks(r.Context(), id, ops)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("edit blocks failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, EditBlocksResponse{NoteID: id, Blocks: blocks, Focused: focused})
}

// OpenNote handles POST /api/notes/{id}/open.
//
//	@Summary		Broadcast the open-note signal to connected clients
//	@Tags			notes
//	@Param			id	path	string	true	"Note id"
//	@Success		202	"Signal published"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/open [post]
func (h *Handler) OpenNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.OpenNote(r.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("open note failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// Search handles GET /api/search.
//
//	@Summary		Fuzzy search across note titles, content, and tags
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	results := h.svc.Search(r.Context(), q)
	if limit, _ := strconv.Atoi(r.URL.Query().Get("limit")); limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// Tags handles GET /api/tags.
//
//	@Summary		List the distinct tags across all notes
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.AvailableTags(r.Context())
	if err != nil {
		slog.Error("list tags failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tags": tags,
	})
}
