// Package importer watches a drop directory for JSON note documents and
// loads them into the record store. Files are removed once imported, so the
// directory acts as a one-way inbox.
package importer

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/noteflow/internal/models"
	"github.com/starford/noteflow/internal/noteservice"
)

// Document is the on-disk import format: one note, optionally with tasks
// that will be attached to it.
type Document struct {
	Title      string         `json:"title"`
	Content    []models.Block `json:"content"`
	NotebookID string         `json:"notebook_id"`
	Tags       []string       `json:"tags"`
	Tasks      []TaskDocument `json:"tasks"`
}

// TaskDocument is a task entry inside an import document.
type TaskDocument struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"due_date"`
	Priority    string     `json:"priority"`
	Flagged     bool       `json:"flagged"`
}

// Watch starts an fsnotify watcher on the import directory and processes
// drop files until ctx is cancelled. Files already present at startup are
// imported first.
func Watch(ctx context.Context, svc *noteservice.Service, dir string, logger *slog.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("importer: started", slog.String("dir", dir))

	sweep(ctx, svc, dir, logger)

	for {
		select {
		case <-ctx.Done():
			logger.Info("importer: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.HasSuffix(ev.Name, ".json") {
				continue
			}
			// A Create for a file still being written parses as partial
			// JSON; the trailing Write event retries it.
			if err := importFile(ctx, svc, ev.Name); err != nil {
				logger.Warn("importer: import failed",
					slog.String("file", ev.Name),
					slog.String("error", err.Error()))
				continue
			}
			logger.Info("importer: imported", slog.String("file", ev.Name))

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("importer: error", slog.String("error", watchErr.Error()))
		}
	}
}

// sweep imports any drop files already sitting in the directory.
func sweep(ctx context.Context, svc *noteservice.Service, dir string, logger *slog.Logger) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("importer: sweep failed", slog.String("error", err.Error()))
		return
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := importFile(ctx, svc, path); err != nil {
			logger.Warn("importer: import failed",
				slog.String("file", path),
				slog.String("error", err.Error()))
			continue
		}
		logger.Info("importer: imported", slog.String("file", path))
	}
}

// importFile loads one drop file, creates its records, and removes the file.
// The file stays in place on any failure so the import can be retried.
func importFile(ctx context.Context, svc *noteservice.Service, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	note, err := svc.CreateNote(ctx, models.Note{
		Title:      doc.Title,
		Content:    doc.Content,
		NotebookID: doc.NotebookID,
		Tags:       doc.Tags,
	})
	if err != nil {
		return err
	}

	for _, t := range doc.Tasks {
		if _, err := svc.CreateTask(ctx, models.Task{
			Title:       t.Title,
			Description: t.Description,
			Completed:   t.Completed,
			DueDate:     t.DueDate,
			Priority:    models.Priority(t.Priority),
			Flagged:     t.Flagged,
			NoteID:      note.ID,
		}); err != nil {
			return err
		}
	}

	return os.Remove(path)
}
