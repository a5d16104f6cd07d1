package importer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/noteflow/internal/models"
	"github.com/starford/noteflow/internal/noteservice"
	"github.com/starford/noteflow/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const sampleDoc = `{
	"title": "Imported note",
	"content": [{"type": "paragraph", "content": "from the inbox"}],
	"tags": ["inbox"],
	"tasks": [{"title": "follow up", "priority": "high"}]
}`

func findNote(t *testing.T, svc *noteservice.Service, title string) *models.Note {
	t.Helper()
	notes, err := svc.ListNotes(context.Background(), noteservice.ViewAll, models.NoteFilters{}, "", false)
	if err != nil {
		t.Fatal(err)
	}
	for i, n := range notes {
		if n.Title == title {
			return &notes[i]
		}
	}
	return nil
}

func TestImportFileCreatesRecordsAndRemovesFile(t *testing.T) {
	svc, _ := testutil.TestService(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "drop.json")
	if err := os.WriteFile(path, []byte(sampleDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := importFile(context.Background(), svc, path); err != nil {
		t.Fatalf("importFile: %v", err)
	}

	note := findNote(t, svc, "Imported note")
	if note == nil {
		t.Fatal("imported note not found")
	}
	if len(note.Tags) != 1 || note.Tags[0] != "inbox" {
		t.Errorf("tags = %v", note.Tags)
	}

	tasks, err := svc.ListTasks(context.Background(), models.TaskFilters{NoteID: note.ID}, "", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 || tasks[0].Title != "follow up" || tasks[0].Priority != models.PriorityHigh {
		t.Errorf("tasks = %v", tasks)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("drop file not removed after import")
	}
}

func TestImportFileInvalidJSONKeepsFile(t *testing.T) {
	svc, _ := testutil.TestService(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(path, []byte("{partial"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := importFile(context.Background(), svc, path); err == nil {
		t.Fatal("partial JSON imported without error")
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("failed import removed the drop file")
	}
}

func TestSweepImportsExistingFiles(t *testing.T) {
	svc, _ := testutil.TestService(t)
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "pre.json"), []byte(sampleDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ignore.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	sweep(context.Background(), svc, dir, discardLogger())

	if findNote(t, svc, "Imported note") == nil {
		t.Error("pre-existing drop file not imported")
	}
	if _, err := os.Stat(filepath.Join(dir, "ignore.txt")); err != nil {
		t.Error("non-JSON file was touched")
	}
}

func TestWatchImportsNewFiles(t *testing.T) {
	svc, _ := testutil.TestService(t)
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, svc, dir, discardLogger())
	}()

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "live.json"), []byte(sampleDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for findNote(t, svc, "Imported note") == nil && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if findNote(t, svc, "Imported note") == nil {
		t.Fatal("watched file not imported")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Watch did not stop on cancel")
	}
}
