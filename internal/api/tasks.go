package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/noteflow/internal/apperr"
	"github.com/starford/noteflow/internal/models"
	"github.com/starford/noteflow/internal/store"
)

// ListTasks handles GET /api/tasks.
//
//	@Summary		List tasks with filtering and sorting
//	@Tags			tasks
//	@Produce		json
//	@Param			status	query		string	false	"all (default), pending, or completed"
//	@Param			priority	query	string	false	"all (default), low, medium, or high"
//	@Param			flagged	query		bool	false	"Flagged only (true) or unflagged only (false)"
//	@Param			note	query		string	false	"Scope to one note's tasks"
//	@Param			sort	query		string	false	"Sort key"	Enums(dueDate, priority, created, updated, title, manual)
//	@Param			order	query		string	false	"asc or desc (default desc)"
//	@Success		200		{object}	TaskListResponse
//	@Security		BearerAuth
//	@Router			/tasks [get]
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	spec := models.TaskFilters{
		Status:   models.TaskStatus(q.Get("status")),
		Priority: q.Get("priority"),
		NoteID:   q.Get("note"),
	}
	if flagged := q.Get("flagged"); flagged != "" {
		v := flagged == "true" || flagged == "1"
		spec.Flagged = &v
	}
	sort, ascending := sortParams(r)

	tasks, err := h.svc.ListTasks(r.Context(), spec, models.TaskSortBy(sort), ascending)
	if err != nil {
		slog.Error("list tasks failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	counts, err := h.svc.TaskCounts(r.Context())
	if err != nil {
		slog.Error("count tasks failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, TaskListResponse{
		Tasks:     tasks,
		Total:     counts.Total,
		Pending:   counts.Pending,
		Completed: counts.Completed,
	})
}

// GetTask handles GET /api/tasks/{id}.
//
//	@Summary		Get a single task
//	@Tags			tasks
//	@Produce		json
//	@Param			id	path		string	true	"Task id"
//	@Success		200	{object}	models.Task
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{id} [get]
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	task, err := h.svc.GetTask(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get task failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// CreateTask handles POST /api/tasks.
//
//	@Summary		Create a task
//	@Tags			tasks
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateTaskRequest	true	"Task to create"
//	@Success		201		{object}	models.Task
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks [post]
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	task, err := h.svc.CreateTask(r.Context(), models.Task{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		DueDate:     req.DueDate,
		Reminder:    req.Reminder,
		Priority:    models.Priority(req.Priority),
		Flagged:     req.Flagged,
		NoteID:      req.NoteID,
	})
	if err != nil {
		slog.Error("create task failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// UpdateTask handles PUT /api/tasks/{id}.
//
//	@Summary		Update a task
//	@Tags			tasks
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Task id"
//	@Param			body	body		UpdateTaskRequest	true	"Fields to change"
//	@Success		200		{object}	models.Task
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{id} [put]
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	upd := store.TaskUpdate{
		Title:         req.Title,
		Description:   req.Description,
		Completed:     req.Completed,
		DueDate:       req.DueDate,
		ClearDueDate:  req.ClearDueDate,
		Reminder:      req.Reminder,
		ClearReminder: req.ClearReminder,
		Flagged:       req.Flagged,
	}
	if req.Priority != nil {
		p := models.Priority(*req.Priority)
		upd.Priority = &p
	}
	task, err := h.svc.UpdateTask(r.Context(), id, upd)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("update task failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// UpsertTaskBlock handles PUT /api/tasks/{id}/block.
//
//	@Summary		Write a task and its mirrored note block atomically
//	@Tags			tasks
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Task id"
//	@Param			body	body		UpsertTaskBlockRequest	true	"Task fields"
//	@Success		200		{object}	models.Task
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{id}/block [put]
func (h *Handler) UpsertTaskBlock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpsertTaskBlockRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	task, err := h.svc.UpsertTaskBlock(r.Context(), models.Task{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		DueDate:     req.DueDate,
		Reminder:    req.Reminder,
		Priority:    models.Priority(req.Priority),
		Flagged:     req.Flagged,
		NoteID:      req.NoteID,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("upsert task block failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/{id}.
//
//	@Summary		Delete a task and its mirrored note block
//	@Tags			tasks
//	@Param			id	path	string	true	"Task id"
//	@Success		204	"Task deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{id} [delete]
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteTask(r.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("delete task failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderTasks handles POST /api/tasks/reorder.
//
//	@Summary		Persist a new manual order for the given tasks
//	@Tags			tasks
//	@Accept			json
//	@Param			body	body	ReorderTasksRequest	true	"Visible task ids in their new order"
//	@Success		204		"Order persisted"
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/reorder [post]
func (h *Handler) ReorderTasks(w http.ResponseWriter, r *http.Request) {
	var req ReorderTasksRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := h.svc.ReorderTasks(r.Context(), req.IDs); err != nil {
		slog.Error("reorder tasks failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
