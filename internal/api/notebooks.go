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

// ListNotebooks handles GET /api/notebooks.
//
//	@Summary		List notebooks with derived note counts
//	@Tags			notebooks
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Security		BearerAuth
//	@Router			/notebooks [get]
func (h *Handler) ListNotebooks(w http.ResponseWriter, r *http.Request) {
	notebooks, err := h.svc.ListNotebooks(r.Context())
	if err != nil {
		slog.Error("list notebooks failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notebooks": notebooks,
		"total":     len(notebooks),
	})
}

// GetNotebook handles GET /api/notebooks/{id}.
//
//	@Summary		Get a single notebook
//	@Tags			notebooks
//	@Produce		json
//	@Param			id	path		string	true	"Notebook id"
//	@Success		200	{object}	models.Notebook
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notebooks/{id} [get]
func (h *Handler) GetNotebook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	nb, err := h.svc.GetNotebook(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get notebook failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, nb)
}

// CreateNotebook handles POST /api/notebooks.
//
//	@Summary		Create a notebook
//	@Tags			notebooks
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateNotebookRequest	true	"Notebook to create"
//	@Success		201		{object}	models.Notebook
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notebooks [post]
func (h *Handler) CreateNotebook(w http.ResponseWriter, r *http.Request) {
	var req CreateNotebookRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	nb, err := h.svc.CreateNotebook(r.Context(), models.Notebook{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
	})
	if err != nil {
		slog.Error("create notebook failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, nb)
}

// UpdateNotebook handles PUT /api/notebooks/{id}.
//
//	@Summary		Update a notebook
//	@Tags			notebooks
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Notebook id"
//	@Param			body	body		UpdateNotebookRequest	true	"Fields to change"
//	@Success		200		{object}	models.Notebook
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notebooks/{id} [put]
func (h *Handler) UpdateNotebook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateNotebookRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	nb, err := h.svc.UpdateNotebook(r.Context(), id, store.NotebookUpdate{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("update notebook failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, nb)
}

// DuplicateNotebook handles POST /api/notebooks/{id}/duplicate.
//
//	@Summary		Duplicate a notebook (metadata only, not its notes)
//	@Tags			notebooks
//	@Produce		json
//	@Param			id	path		string	true	"Notebook id"
//	@Success		201	{object}	models.Notebook
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notebooks/{id}/duplicate [post]
func (h *Handler) DuplicateNotebook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	nb, err := h.svc.DuplicateNotebook(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("duplicate notebook failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, nb)
}

// DeleteNotebook handles DELETE /api/notebooks/{id}.
//
//	@Summary		Delete a notebook and all notes inside it
//	@Tags			notebooks
//	@Produce		json
//	@Param			id	path		string	true	"Notebook id"
//	@Success		200	{object}	map[string]any
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notebooks/{id} [delete]
func (h *Handler) DeleteNotebook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := h.svc.DeleteNotebook(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("delete notebook failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"deleted_notes": deleted,
	})
}
