package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/noteflow/internal/apperr"
	"github.com/starford/noteflow/internal/filters"
)

// ListFilters handles GET /api/filters.
//
//	@Summary		List saved filters
//	@Tags			filters
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Security		BearerAuth
//	@Router			/filters [get]
func (h *Handler) ListFilters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"filters": h.svc.Registry().List(),
	})
}

// SaveFilter handles POST /api/filters.
//
//	@Summary		Save the given filter+sort combination under a name
//	@Tags			filters
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SaveFilterRequest	true	"Filter to save"
//	@Success		201		{object}	models.SavedFilter
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/filters [post]
func (h *Handler) SaveFilter(w http.ResponseWriter, r *http.Request) {
	var req SaveFilterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	saved, err := h.svc.Registry().Save(req.Name, req.Filters, req.SortBy, req.SortAscending)
	if err != nil {
		slog.Error("save filter failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// ApplyFilter handles POST /api/filters/{id}/apply: the saved filter's
// configuration becomes the live selection and is returned to the caller.
//
//	@Summary		Apply a saved filter as the live selection
//	@Tags			filters
//	@Produce		json
//	@Param			id	path		string	true	"Saved filter id"
//	@Success		200	{object}	FilterStateResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/filters/{id}/apply [post]
func (h *Handler) ApplyFilter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, err := h.svc.Registry().Apply(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("apply filter failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	if err := h.svc.Registry().SaveState(*state); err != nil {
		slog.Error("persist filter state failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// DeleteFilter handles DELETE /api/filters/{id}. Deleting a saved filter
// never touches the live selection, even if it was the one applied.
//
//	@Summary		Delete a saved filter
//	@Tags			filters
//	@Param			id	path	string	true	"Saved filter id"
//	@Success		204	"Filter deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/filters/{id} [delete]
func (h *Handler) DeleteFilter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Registry().Delete(id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("delete filter failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetFilterState handles GET /api/filters/state.
//
//	@Summary		Get the persisted live filter selection
//	@Tags			filters
//	@Produce		json
//	@Success		200	{object}	FilterStateResponse
//	@Security		BearerAuth
//	@Router			/filters/state [get]
func (h *Handler) GetFilterState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Registry().LoadState())
}

// PutFilterState handles PUT /api/filters/state.
//
//	@Summary		Persist the live filter selection
//	@Tags			filters
//	@Accept			json
//	@Produce		json
//	@Param			body	body		FilterStateResponse	true	"Selection to persist"
//	@Success		200		{object}	FilterStateResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/filters/state [put]
func (h *Handler) PutFilterState(w http.ResponseWriter, r *http.Request) {
	var state filters.FilterState
	if !decodeBody(w, r, &state) {
		return
	}
	if err := h.svc.Registry().SaveState(state); err != nil {
		slog.Error("persist filter state failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, state)
}
