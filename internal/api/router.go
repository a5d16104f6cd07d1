package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/noteflow/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes CRUD plus the cross-view open signal.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/{id}", h.GetNote)
	r.Put("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)
	r.Post("/notes/{id}/open", h.OpenNote)
	r.Patch("/notes/{id}/blocks", h.EditBlocks)

	// Notebooks.
	r.Get("/notebooks", h.ListNotebooks)
	r.Post("/notebooks", h.CreateNotebook)
	r.Get("/notebooks/{id}", h.GetNotebook)
	r.Put("/notebooks/{id}", h.UpdateNotebook)
	r.Delete("/notebooks/{id}", h.DeleteNotebook)
	r.Post("/notebooks/{id}/duplicate", h.DuplicateNotebook)

	// Tasks. The reorder route must register before {id} routes would
	// otherwise shadow it.
	r.Get("/tasks", h.ListTasks)
	r.Post("/tasks", h.CreateTask)
	r.Post("/tasks/reorder", h.ReorderTasks)
	r.Get("/tasks/{id}", h.GetTask)
	r.Put("/tasks/{id}", h.UpdateTask)
	r.Delete("/tasks/{id}", h.DeleteTask)
	r.Put("/tasks/{id}/block", h.UpsertTaskBlock)

	// Search and tags.
	r.Get("/search", h.Search)
	r.Get("/tags", h.Tags)

	// Saved filters and the live selection.
	r.Get("/filters", h.ListFilters)
	r.Post("/filters", h.SaveFilter)
	r.Get("/filters/state", h.GetFilterState)
	r.Put("/filters/state", h.PutFilterState)
	r.Post("/filters/{id}/apply", h.ApplyFilter)
	r.Delete("/filters/{id}", h.DeleteFilter)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
