package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/noteflow/internal/models"
	"github.com/starford/noteflow/internal/noteservice"
	"github.com/starford/noteflow/internal/testutil"
)

func testServer(t *testing.T) (*Server, *noteservice.Service) {
	t.Helper()
	svc, _ := testutil.TestService(t)
	return New(svc), svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so we invoke the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_notes":
		result, err = srv.searchNotes(ctx, req)
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "create_note":
		result, err = srv.createNote(ctx, req)
	case "list_tasks":
		result, err = srv.listTasks(ctx, req)
	case "complete_task":
		result, err = srv.completeTask(ctx, req)
	case "get_note_contract":
		result, err = srv.getNoteContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndReadNote(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_note", map[string]interface{}{
		"title":   "From MCP",
		"content": `[{"type":"paragraph","content":"hello"}]`,
	})
	text := resultText(r)
	if !strings.HasPrefix(text, "created: ") {
		t.Fatalf("create result = %q", text)
	}
	id := strings.TrimPrefix(text, "created: ")

	r = callTool(t, srv, "read_note", map[string]interface{}{"id": id})
	var note models.Note
	if err := json.Unmarshal([]byte(resultText(r)), &note); err != nil {
		t.Fatalf("read result is not a note: %v", err)
	}
	if note.Title != "From MCP" {
		t.Errorf("title = %q", note.Title)
	}
}

func TestCreateNoteRejectsBadBlocks(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_note", map[string]interface{}{
		"title":   "bad",
		"content": `[{"type":"hologram"}]`,
	})
	if !r.IsError {
		t.Error("unknown block type accepted")
	}

	r = callTool(t, srv, "create_note", map[string]interface{}{
		"title":   "bad",
		"content": "not json",
	})
	if !r.IsError {
		t.Error("non-JSON content accepted")
	}
}

func TestReadNoteMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_note", map[string]interface{}{"id": "nope"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestListAndCompleteTask(t *testing.T) {
	srv, svc := testServer(t)

	note, err := svc.CreateNote(context.Background(), models.Note{Title: "host"})
	if err != nil {
		t.Fatal(err)
	}
	task, err := svc.CreateTask(context.Background(), models.Task{Title: "do it", NoteID: note.ID})
	if err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "list_tasks", map[string]interface{}{"status": "pending"})
	var tasks []models.Task
	if err := json.Unmarshal([]byte(resultText(r)), &tasks); err != nil {
		t.Fatalf("list result is not a task array: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != task.ID {
		t.Errorf("pending tasks = %v", tasks)
	}

	r = callTool(t, srv, "complete_task", map[string]interface{}{"id": task.ID})
	if resultText(r) != "completed: do it" {
		t.Errorf("complete result = %q", resultText(r))
	}

	got, _ := svc.GetTask(context.Background(), task.ID)
	if !got.Completed {
		t.Error("task not marked completed")
	}
}

func TestSearchNotesTool(t *testing.T) {
	srv, svc := testServer(t)

	if _, err := svc.CreateNote(context.Background(), models.Note{Title: "Quarterly planning"}); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "search_notes", map[string]interface{}{"query": "quarterly"})
	if !strings.Contains(resultText(r), "Quarterly planning") {
		t.Errorf("search result = %q", resultText(r))
	}
}

func TestContractTool(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_note_contract", nil)
	if !strings.Contains(resultText(r), "Block Format Contract") {
		t.Error("contract text missing")
	}
}
