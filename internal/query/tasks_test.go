package query

import (
	"testing"

	"github.com/starford/noteflow/internal/models"
)

func taskFixture() []models.Task {
	due3 := ts(3)
	due9 := ts(9)
	return []models.Task{
		{ID: "t1", Title: "write report", Priority: models.PriorityLow, Order: 1,
			NoteID: "n1", CreatedAt: ts(1), UpdatedAt: ts(4), DueDate: &due9},
		{ID: "t2", Title: "call plumber", Priority: models.PriorityHigh, Order: 2,
			NoteID: "n1", CreatedAt: ts(2), UpdatedAt: ts(6), Flagged: true},
		{ID: "t3", Title: "buy milk", Priority: models.PriorityMedium, Order: 3,
			NoteID: "n2", CreatedAt: ts(3), UpdatedAt: ts(5), Completed: true, DueDate: &due3},
	}
}

func taskIDs(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestFilterTasks_Status(t *testing.T) {
	tasks := taskFixture()

	pending := FilterTasks(tasks, models.TaskFilters{Status: models.TaskStatusPending})
	if len(pending) != 2 {
		t.Errorf("pending = %v", taskIDs(pending))
	}
	completed := FilterTasks(tasks, models.TaskFilters{Status: models.TaskStatusCompleted})
	if len(completed) != 1 || completed[0].ID != "t3" {
		t.Errorf("completed = %v", taskIDs(completed))
	}
	all := FilterTasks(tasks, models.TaskFilters{Status: models.TaskStatusAll})
	if len(all) != 3 {
		t.Errorf("all = %v", taskIDs(all))
	}
}

func TestFilterTasks_PriorityAllIsInactive(t *testing.T) {
	tasks := taskFixture()
	if got := FilterTasks(tasks, models.TaskFilters{Priority: "all"}); len(got) != 3 {
		t.Errorf("priority=all filtered to %v", taskIDs(got))
	}
	if got := FilterTasks(tasks, models.TaskFilters{Priority: "high"}); len(got) != 1 || got[0].ID != "t2" {
		t.Errorf("priority=high = %v", taskIDs(got))
	}
}

func TestFilterTasks_FlaggedAndNoteScope(t *testing.T) {
	tasks := taskFixture()

	flagged := true
	if got := FilterTasks(tasks, models.TaskFilters{Flagged: &flagged}); len(got) != 1 || got[0].ID != "t2" {
		t.Errorf("flagged = %v", taskIDs(got))
	}
	if got := FilterTasks(tasks, models.TaskFilters{NoteID: "n2"}); len(got) != 1 || got[0].ID != "t3" {
		t.Errorf("note scope = %v", taskIDs(got))
	}
}

func TestSortTasks_PriorityDescendingPutsHighFirst(t *testing.T) {
	got := SortTasks(taskFixture(), models.TaskSortPriority, false)
	want := []string{"t2", "t3", "t1"} // high, medium, low
	for i, id := range taskIDs(got) {
		if id != want[i] {
			t.Fatalf("order = %v, want %v", taskIDs(got), want)
		}
	}
}

func TestSortTasks_MissingDueDatesAlwaysLast(t *testing.T) {
	tasks := taskFixture() // t2 has no due date

	asc := taskIDs(SortTasks(tasks, models.TaskSortDueDate, true))
	if asc[len(asc)-1] != "t2" {
		t.Errorf("ascending: %v, want t2 last", asc)
	}
	desc := taskIDs(SortTasks(tasks, models.TaskSortDueDate, false))
	if desc[len(desc)-1] != "t2" {
		t.Errorf("descending: %v, want t2 last", desc)
	}

	// Direction still applies among dated tasks.
	if asc[0] != "t3" || desc[0] != "t1" {
		t.Errorf("dated ordering wrong: asc=%v desc=%v", asc, desc)
	}
}

func TestSortTasks_ManualFallback(t *testing.T) {
	got := SortTasks(taskFixture(), models.TaskSortBy("bogus"), true)
	want := []string{"t1", "t2", "t3"}
	for i, id := range taskIDs(got) {
		if id != want[i] {
			t.Fatalf("order = %v, want %v", taskIDs(got), want)
		}
	}
}

func TestSortTasks_TitleAscending(t *testing.T) {
	got := SortTasks(taskFixture(), models.TaskSortTitle, true)
	want := []string{"t3", "t2", "t1"} // buy milk, call plumber, write report
	for i, id := range taskIDs(got) {
		if id != want[i] {
			t.Fatalf("order = %v, want %v", taskIDs(got), want)
		}
	}
}

func TestReorderSequence(t *testing.T) {
	visible := SortTasks(taskFixture(), models.TaskSortTitle, true)
	ids := ReorderSequence(visible)
	want := []string{"t3", "t2", "t1"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("sequence = %v, want %v", ids, want)
		}
	}
}

func TestCountTasks(t *testing.T) {
	c := CountTasks(taskFixture())
	if c.Total != 3 || c.Pending != 2 || c.Completed != 1 || c.Flagged != 1 {
		t.Errorf("counts = %+v", c)
	}
}
