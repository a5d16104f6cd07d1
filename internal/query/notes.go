// Package query implements the pure filter and sort pipelines over note and
// task snapshots. Functions here never mutate their inputs and never fail:
// malformed or empty filter clauses degrade to no-ops.
package query

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/starford/noteflow/internal/models"
)

// FilterNotes returns the notes passing every active clause of spec.
// Clauses are conjunctive; an empty/zero clause is inactive.
func FilterNotes(notes []models.Note, spec models.NoteFilters) []models.Note {
	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if noteMatches(n, spec) {
			out = append(out, n)
		}
	}
	return out
}

func noteMatches(n models.Note, spec models.NoteFilters) bool {
	if term := strings.TrimSpace(spec.Search); term != "" {
		if !searchMatches(n, strings.ToLower(term)) {
			return false
		}
	}

	if len(spec.Tags) > 0 && !anyTagIn(n.Tags, spec.Tags) {
		return false
	}

	if len(spec.Notebooks) > 0 && !contains(spec.Notebooks, n.NotebookID) {
		return false
	}

	if spec.Favorites != nil && n.IsFavorite != *spec.Favorites {
		return false
	}

	if spec.DateRange.Active() && !spec.DateRange.Contains(n.UpdatedAt) {
		return false
	}
	if spec.CreatedDateRange.Active() && !spec.CreatedDateRange.Contains(n.CreatedAt) {
		return false
	}

	return true
}

// searchMatches checks the lowercased term against the title, every block's
// content, and every tag.
func searchMatches(n models.Note, term string) bool {
	if strings.Contains(strings.ToLower(n.Title), term) {
		return true
	}
	for _, b := range n.Content {
		if strings.Contains(strings.ToLower(b.Content), term) {
			return true
		}
	}
	for _, tag := range n.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// SortNotes returns a sorted copy. Unknown keys fall back to the updated
// timestamp; the default presentation is updated-descending (ascending=false).
func SortNotes(notes []models.Note, by models.NoteSortBy, ascending bool) []models.Note {
	sorted := make([]models.Note, len(notes))
	copy(sorted, notes)

	// Collators carry mutable internal state, so each sort builds its own.
	coll := collate.New(language.Und, collate.IgnoreCase)

	cmp := func(a, b models.Note) int {
		switch by {
		case models.NoteSortCreated:
			return a.CreatedAt.Compare(b.CreatedAt)
		case models.NoteSortTitle, models.NoteSortAlphabetical:
			return coll.CompareString(titleOrUntitled(a), titleOrUntitled(b))
		default:
			return a.UpdatedAt.Compare(b.UpdatedAt)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		c := cmp(sorted[i], sorted[j])
		if ascending {
			return c < 0
		}
		return c > 0
	})
	return sorted
}

// ExcludeArchived keeps only non-archived notes. Archived-note exclusion is
// a view concern layered on top of NoteFilters, not part of the filter spec.
func ExcludeArchived(notes []models.Note) []models.Note {
	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if !n.IsArchived {
			out = append(out, n)
		}
	}
	return out
}

// OnlyArchived keeps only archived notes.
func OnlyArchived(notes []models.Note) []models.Note {
	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if n.IsArchived {
			out = append(out, n)
		}
	}
	return out
}

// AvailableTags returns the sorted set of distinct tags across notes.
func AvailableTags(notes []models.Note) []string {
	set := make(map[string]struct{})
	for _, n := range notes {
		for _, tag := range n.Tags {
			set[tag] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for tag := range set {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// ActiveClauses counts the active clauses of a filter spec.
func ActiveClauses(spec models.NoteFilters) int {
	count := 0
	if strings.TrimSpace(spec.Search) != "" {
		count++
	}
	if len(spec.Tags) > 0 {
		count++
	}
	if len(spec.Notebooks) > 0 {
		count++
	}
	if spec.Favorites != nil {
		count++
	}
	if spec.DateRange.Active() {
		count++
	}
	if spec.CreatedDateRange.Active() {
		count++
	}
	return count
}

func titleOrUntitled(n models.Note) string {
	if n.Title == "" {
		return "Untitled"
	}
	return n.Title
}

func anyTagIn(tags, wanted []string) bool {
	for _, w := range wanted {
		if contains(tags, w) {
			return true
		}
	}
	return false
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
