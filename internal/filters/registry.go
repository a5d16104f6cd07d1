// Package filters persists named filter+sort combinations and the last-used
// filter state as serialized JSON in the flat key-value state store.
// Corrupt or missing storage loads as empty; no error reaches the caller.
package filters

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/starford/noteflow/internal/apperr"
	"github.com/starford/noteflow/internal/models"
)

// State storage keys.
const (
	savedFiltersKey = "noteflow-saved-filters"
	filterStateKey  = "noteflow-filter-state"
)

// StateStore is the flat key-value persistence the registry writes through.
type StateStore interface {
	GetState(key string) (value string, ok bool, err error)
	SetState(key, value string) error
}

// FilterState is the live filter+sort selection persisted across restarts.
type FilterState struct {
	Filters       models.NoteFilters `json:"filters"`
	SortBy        models.NoteSortBy  `json:"sort_by"`
	SortAscending bool               `json:"sort_ascending"`
}

// DefaultState is the selection used when nothing was persisted: no active
// clauses, newest-updated first.
func DefaultState() FilterState {
	return FilterState{SortBy: models.NoteSortUpdated, SortAscending: false}
}

// Registry manages SavedFilter records over a StateStore.
type Registry struct {
	store StateStore
}

// NewRegistry creates a registry over the given store.
func NewRegistry(store StateStore) *Registry {
	return &Registry{store: store}
}

// List returns every saved filter. Missing or corrupt storage yields an
// empty list.
func (r *Registry) List() []models.SavedFilter {
	raw, ok, err := r.store.GetState(savedFiltersKey)
	if err != nil || !ok {
		return []models.SavedFilter{}
	}
	var out []models.SavedFilter
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return []models.SavedFilter{}
	}
	return out
}

// Save snapshots the given filter+sort combination under a new id and
// appends it. Names are not deduplicated; two saved filters may share one.
func (r *Registry) Save(name string, filters models.NoteFilters, sortBy models.NoteSortBy, sortAscending bool) (*models.SavedFilter, error) {
	saved := models.SavedFilter{
		ID:            uuid.NewString(),
		Name:          name,
		Filters:       filters,
		SortBy:        sortBy,
		SortAscending: sortAscending,
		CreatedAt:     time.Now(),
	}
	list := append(r.List(), saved)
	if err := r.persist(list); err != nil {
		return nil, err
	}
	return &saved, nil
}

// Apply returns a copy of the saved filter's state, ready to install as the
// live selection. The stored entry is never mutated.
func (r *Registry) Apply(id string) (*FilterState, error) {
	for _, f := range r.List() {
		if f.ID == id {
			return &FilterState{
				Filters:       f.Filters,
				SortBy:        f.SortBy,
				SortAscending: f.SortAscending,
			}, nil
		}
	}
	return nil, apperr.ErrNotFound
}

// Delete removes a saved filter by id.
func (r *Registry) Delete(id string) error {
	list := r.List()
	kept := list[:0:0]
	for _, f := range list {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	if len(kept) == len(list) {
		return apperr.ErrNotFound
	}
	return r.persist(kept)
}

// SaveState persists the live filter selection.
func (r *Registry) SaveState(state FilterState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return r.store.SetState(filterStateKey, string(data))
}

// LoadState returns the persisted live selection, or the default when
// nothing usable was stored.
func (r *Registry) LoadState() FilterState {
	raw, ok, err := r.store.GetState(filterStateKey)
	if err != nil || !ok {
		return DefaultState()
	}
	var state FilterState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return DefaultState()
	}
	if state.SortBy == "" {
		state.SortBy = models.NoteSortUpdated
	}
	return state
}

func (r *Registry) persist(list []models.SavedFilter) error {
	if list == nil {
		list = []models.SavedFilter{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return r.store.SetState(savedFiltersKey, string(data))
}
