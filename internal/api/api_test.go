package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/noteflow/internal/models"
	"github.com/starford/noteflow/internal/noteservice"
	"github.com/starford/noteflow/internal/testutil"
)

// testEnv sets up a temp store, service, and router for testing.
// An empty token means disabled auth mode.
func testEnv(t *testing.T, authToken string) (*noteservice.Service, http.Handler) {
	t.Helper()
	svc, _ := testutil.TestService(t)
	router := NewRouter(svc, authToken != "", authToken, nil)
	return svc, router
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createNote(t *testing.T, router http.Handler, body map[string]any) models.Note {
	t.Helper()
	w := do(t, router, http.MethodPost, "/notes", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create note = %d, body = %s", w.Code, w.Body.String())
	}
	var n models.Note
	_ = json.Unmarshal(w.Body.Bytes(), &n)
	return n
}

func TestCreateAndGetNote(t *testing.T) {
	_, router := testEnv(t, "")

	created := createNote(t, router, map[string]any{
		"title": "Hello",
		"tags":  []string{"greeting"},
	})
	if created.ID == "" {
		t.Fatal("no id in create response")
	}
	// Empty content must have been replaced with one paragraph.
	if len(created.Content) != 1 || created.Content[0].Type != models.BlockParagraph {
		t.Errorf("content = %v, want single empty paragraph", created.Content)
	}

	w := do(t, router, http.MethodGet, "/notes/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get = %d", w.Code)
	}
	var got models.Note
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Title != "Hello" {
		t.Errorf("title = %q", got.Title)
	}
}

func TestCreateNoteRejectsUnknownBlockType(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/notes", map[string]any{
		"title":   "bad",
		"content": []map[string]any{{"type": "hologram", "content": "x"}},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUpdateNotePartialAndNotFound(t *testing.T) {
	_, router := testEnv(t, "")
	created := createNote(t, router, map[string]any{"title": "v1"})

	w := do(t, router, http.MethodPut, "/notes/"+created.ID, map[string]any{
		"is_favorite": true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d, body = %s", w.Code, w.Body.String())
	}
	var got models.Note
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if !got.IsFavorite || got.Title != "v1" {
		t.Errorf("got favorite=%v title=%q", got.IsFavorite, got.Title)
	}

	w = do(t, router, http.MethodPut, "/notes/ghost", map[string]any{"title": "x"})
	if w.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", w.Code)
	}
}

func TestDeleteNote(t *testing.T) {
	_, router := testEnv(t, "")
	created := createNote(t, router, map[string]any{"title": "bye"})

	if w := do(t, router, http.MethodDelete, "/notes/"+created.ID, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/notes/"+created.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
}

func TestListNotesFiltering(t *testing.T) {
	_, router := testEnv(t, "")

	createNote(t, router, map[string]any{"title": "work note", "tags": []string{"work"}})
	createNote(t, router, map[string]any{"title": "home note", "tags": []string{"home"}})

	w := do(t, router, http.MethodGet, "/notes?tags=work", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var resp NoteListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || resp.Notes[0].Title != "work note" {
		t.Errorf("filtered list = %+v", resp)
	}
}

func TestListNotesArchivedView(t *testing.T) {
	_, router := testEnv(t, "")
	created := createNote(t, router, map[string]any{"title": "to archive"})

	do(t, router, http.MethodPut, "/notes/"+created.ID, map[string]any{"is_archived": true})

	var normal, archived NoteListResponse
	w := do(t, router, http.MethodGet, "/notes", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &normal)
	w = do(t, router, http.MethodGet, "/notes?view=archived", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &archived)

	for _, n := range normal.Notes {
		if n.ID == created.ID {
			t.Error("archived note in default view")
		}
	}
	if archived.Total != 1 || archived.Notes[0].ID != created.ID {
		t.Errorf("archived view = %+v", archived)
	}
}

func TestTaskLifecycle(t *testing.T) {
	_, router := testEnv(t, "")
	note := createNote(t, router, map[string]any{"title": "host"})

	w := do(t, router, http.MethodPost, "/tasks", map[string]any{
		"title":    "ship it",
		"priority": "high",
		"note_id":  note.ID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create task = %d, body = %s", w.Code, w.Body.String())
	}
	var task models.Task
	_ = json.Unmarshal(w.Body.Bytes(), &task)

	w = do(t, router, http.MethodPut, "/tasks/"+task.ID, map[string]any{"completed": true})
	if w.Code != http.StatusOK {
		t.Fatalf("update task = %d", w.Code)
	}

	w = do(t, router, http.MethodGet, "/tasks?status=completed", nil)
	var resp TaskListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Tasks) != 1 || resp.Tasks[0].ID != task.ID {
		t.Errorf("completed list = %+v", resp.Tasks)
	}
	if resp.Completed != 1 {
		t.Errorf("completed count = %d", resp.Completed)
	}

	if w := do(t, router, http.MethodDelete, "/tasks/"+task.ID, nil); w.Code != http.StatusNoContent {
		t.Errorf("delete task = %d", w.Code)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/tasks", map[string]any{"title": ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing title = %d, want 400", w.Code)
	}
	w = do(t, router, http.MethodPost, "/tasks", map[string]any{"title": "x", "priority": "urgent"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad priority = %d, want 400", w.Code)
	}
}

func TestUpsertTaskBlockEndpoint(t *testing.T) {
	svc, router := testEnv(t, "")
	note := createNote(t, router, map[string]any{"title": "host"})

	created, err := svc.CreateTask(t.Context(), models.Task{Title: "v1", NoteID: note.ID})
	if err != nil {
		t.Fatal(err)
	}

	w := do(t, router, http.MethodPut, "/tasks/"+created.ID+"/block", map[string]any{
		"title":     "v2",
		"completed": true,
		"note_id":   note.ID,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("upsert block = %d, body = %s", w.Code, w.Body.String())
	}

	got, err := svc.GetNote(t.Context(), note.ID)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, b := range got.Content {
		if b.Type == models.BlockTask && b.Content == "v2" {
			found = true
		}
	}
	if !found {
		t.Error("mirrored block missing from note content")
	}
}

func TestReorderTasksEndpoint(t *testing.T) {
	svc, router := testEnv(t, "")
	note := createNote(t, router, map[string]any{"title": "host"})

	a, _ := svc.CreateTask(t.Context(), models.Task{Title: "a", NoteID: note.ID})
	b, _ := svc.CreateTask(t.Context(), models.Task{Title: "b", NoteID: note.ID})

	w := do(t, router, http.MethodPost, "/tasks/reorder", map[string]any{
		"ids": []string{b.ID, a.ID},
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("reorder = %d, body = %s", w.Code, w.Body.String())
	}

	gotA, _ := svc.GetTask(t.Context(), a.ID)
	gotB, _ := svc.GetTask(t.Context(), b.ID)
	if gotB.Order != 1 || gotA.Order != 2 {
		t.Errorf("orders: b=%d a=%d, want 1 and 2", gotB.Order, gotA.Order)
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	createNote(t, router, map[string]any{
		"title": "Quarterly planning",
		"content": []map[string]any{
			{"type": "paragraph", "content": "budget review"},
		},
	})

	w := do(t, router, http.MethodGet, "/search?q=quarterly", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d", w.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp["results"].([]any)) == 0 {
		t.Error("no results for indexed title")
	}

	if w := do(t, router, http.MethodGet, "/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("missing q = %d, want 400", w.Code)
	}
}

func TestSavedFilterFlow(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/filters", map[string]any{
		"name":    "work stuff",
		"filters": map[string]any{"tags": []string{"work"}},
		"sort_by": "title",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("save filter = %d, body = %s", w.Code, w.Body.String())
	}
	var saved models.SavedFilter
	_ = json.Unmarshal(w.Body.Bytes(), &saved)

	// Apply installs it as live state.
	w = do(t, router, http.MethodPost, "/filters/"+saved.ID+"/apply", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("apply = %d", w.Code)
	}

	w = do(t, router, http.MethodGet, "/filters/state", nil)
	var state FilterStateResponse
	_ = json.Unmarshal(w.Body.Bytes(), &state)
	if state.SortBy != models.NoteSortTitle || len(state.Filters.Tags) != 1 {
		t.Errorf("live state = %+v", state)
	}

	// Deleting the saved filter leaves the live state untouched.
	if w := do(t, router, http.MethodDelete, "/filters/"+saved.ID, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete filter = %d", w.Code)
	}
	w = do(t, router, http.MethodGet, "/filters/state", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &state)
	if state.SortBy != models.NoteSortTitle {
		t.Error("deleting the saved filter reset the live state")
	}
}

func TestSaveFilterRequiresName(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/filters", map[string]any{"name": ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestOpenNoteEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	created := createNote(t, router, map[string]any{"title": "target"})

	if w := do(t, router, http.MethodPost, "/notes/"+created.ID+"/open", nil); w.Code != http.StatusAccepted {
		t.Errorf("open = %d, want 202", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/notes/ghost/open", nil); w.Code != http.StatusNotFound {
		t.Errorf("open missing = %d, want 404", w.Code)
	}
}

func TestTagsEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	createNote(t, router, map[string]any{"title": "a", "tags": []string{"zeta", "alpha"}})

	w := do(t, router, http.MethodGet, "/tags", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("tags = %d", w.Code)
	}
	var resp map[string][]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	// Includes the seeded "tasks" tag; sorted set.
	want := []string{"alpha", "tasks", "zeta"}
	if len(resp["tags"]) != len(want) {
		t.Fatalf("tags = %v, want %v", resp["tags"], want)
	}
	for i := range want {
		if resp["tags"][i] != want[i] {
			t.Fatalf("tags = %v, want %v", resp["tags"], want)
		}
	}
}

func TestNotebookLifecycle(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/notebooks", map[string]any{
		"name":  "Work",
		"color": "#112233",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create notebook = %d, body = %s", w.Code, w.Body.String())
	}
	var nb models.Notebook
	_ = json.Unmarshal(w.Body.Bytes(), &nb)

	w = do(t, router, http.MethodPost, "/notebooks/"+nb.ID+"/duplicate", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("duplicate = %d", w.Code)
	}
	var dup models.Notebook
	_ = json.Unmarshal(w.Body.Bytes(), &dup)
	if dup.Name != "Work (Copy)" {
		t.Errorf("duplicate name = %q", dup.Name)
	}

	w = do(t, router, http.MethodDelete, "/notebooks/"+nb.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete notebook = %d", w.Code)
	}

	if w := do(t, router, http.MethodGet, "/notebooks/"+nb.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("get deleted = %d, want 404", w.Code)
	}
}

func TestCreateNotebookRequiresName(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/notebooks", map[string]any{"name": ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	_, router := testEnv(t, "secret123")

	// Missing token.
	if w := do(t, router, http.MethodGet, "/notes", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", w.Code)
	}

	// Wrong token.
	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}

	// Valid token.
	req = httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token = %d, want 200", w.Code)
	}
}

func TestInvalidJSONBody(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewReader([]byte("{broken")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("broken json = %d, want 400", w.Code)
	}
}

func TestEditBlocksEndpoint(t *testing.T) {
	svc, router := testEnv(t, "")

	note := createNote(t, router, map[string]any{"title": "Editing"})
	first := note.Content[0].ID

	w := do(t, router, http.MethodPatch, "/notes/"+note.ID+"/blocks", map[string]any{
		"ops": []map[string]any{
			{"op": "update", "block_id": first, "content": "typed text"},
			{"op": "insert", "after_id": first, "type": "heading1"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("edit blocks = %d, body = %s", w.Code, w.Body.String())
	}
	var resp EditBlocksResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Blocks) != 2 || resp.Blocks[0].Content != "typed text" {
		t.Fatalf("blocks = %+v", resp.Blocks)
	}
	if resp.Focused == "" {
		t.Error("focused block missing from response")
	}

	// Persistence is debounced; flush and confirm the store caught up.
	svc.FlushEdits()
	w = do(t, router, http.MethodGet, "/notes/"+note.ID, nil)
	var stored models.Note
	_ = json.Unmarshal(w.Body.Bytes(), &stored)
	if len(stored.Content) != 2 {
		t.Errorf("stored content = %+v", stored.Content)
	}
}

func TestEditBlocksValidation(t *testing.T) {
	_, router := testEnv(t, "")
	note := createNote(t, router, map[string]any{"title": "Strict"})

	w := do(t, router, http.MethodPatch, "/notes/"+note.ID+"/blocks", map[string]any{
		"ops": []map[string]any{{"op": "explode"}},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown op = %d, want 400", w.Code)
	}

	w = do(t, router, http.MethodPatch, "/notes/"+note.ID+"/blocks", map[string]any{
		"ops": []map[string]any{},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty ops = %d, want 400", w.Code)
	}

	w = do(t, router, http.MethodPatch, "/notes/missing/blocks", map[string]any{
		"ops": []map[string]any{{"op": "insert"}},
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("missing note = %d, want 404", w.Code)
	}
}
