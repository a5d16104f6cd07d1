package query

import (
	"sort"
	"strings"

	"github.com/starford/noteflow/internal/models"
)

// FilterTasks returns the tasks passing every active clause.
func FilterTasks(tasks []models.Task, spec models.TaskFilters) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if taskMatches(t, spec) {
			out = append(out, t)
		}
	}
	return out
}

func taskMatches(t models.Task, spec models.TaskFilters) bool {
	switch spec.Status {
	case models.TaskStatusPending:
		if t.Completed {
			return false
		}
	case models.TaskStatusCompleted:
		if !t.Completed {
			return false
		}
	}

	if spec.Priority != "" && spec.Priority != "all" && string(t.Priority) != spec.Priority {
		return false
	}
	if spec.Flagged != nil && t.Flagged != *spec.Flagged {
		return false
	}
	if spec.NoteID != "" && t.NoteID != spec.NoteID {
		return false
	}
	return true
}

// SortTasks returns a sorted copy. Missing due dates sort last regardless of
// direction. Priority compares by ordinal (high=3, medium=2, low=1), so the
// descending default puts high-priority tasks first. Unknown keys fall back
// to the manual order field.
func SortTasks(tasks []models.Task, by models.TaskSortBy, ascending bool) []models.Task {
	sorted := make([]models.Task, len(tasks))
	copy(sorted, tasks)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]

		if by == models.TaskSortDueDate {
			// Absent due dates always lose, before direction is applied.
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				return false
			case a.DueDate == nil:
				return false
			case b.DueDate == nil:
				return true
			}
		}

		c := compareTasks(a, b, by)
		if ascending {
			return c < 0
		}
		return c > 0
	})
	return sorted
}

func compareTasks(a, b models.Task, by models.TaskSortBy) int {
	switch by {
	case models.TaskSortDueDate:
		return a.DueDate.Compare(*b.DueDate)
	case models.TaskSortPriority:
		return a.Priority.Ordinal() - b.Priority.Ordinal()
	case models.TaskSortCreated:
		return a.CreatedAt.Compare(b.CreatedAt)
	case models.TaskSortUpdated:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case models.TaskSortTitle:
		return strings.Compare(a.Title, b.Title)
	default:
		return a.Order - b.Order
	}
}

// ReorderSequence maps the visible (already filtered and sorted) task list
// to dense 1..N order assignments matching its visual order. Hidden tasks
// keep their previous order values untouched.
func ReorderSequence(visible []models.Task) []string {
	ids := make([]string, len(visible))
	for i, t := range visible {
		ids[i] = t.ID
	}
	return ids
}

// TaskCounts summarises a task collection for dashboards.
type TaskCounts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Flagged   int `json:"flagged"`
}

// CountTasks tallies the collection.
func CountTasks(tasks []models.Task) TaskCounts {
	c := TaskCounts{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			c.Completed++
		} else {
			c.Pending++
		}
		if t.Flagged {
			c.Flagged++
		}
	}
	return c
}
