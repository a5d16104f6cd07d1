// Package autosave implements the debounced write used by the editor:
// edits accumulate and are flushed through a save callback once input has
// been quiet for a fixed interval, with an unconditional flush on teardown.
package autosave

import (
	"sync"
	"time"

	"github.com/starford/noteflow/internal/models"
)

// Snapshot is the editor state handed to the save callback.
type Snapshot struct {
	NoteID string
	Title  string
	Blocks []models.Block
}

// SaveFunc persists a snapshot. Failures are the callback's concern; the
// saver never retries.
type SaveFunc func(Snapshot)

// Saver debounces saves of editor snapshots. A superseded timer is cleared
// and replaced; Flush forces any pending save through immediately.
type Saver struct {
	delay time.Duration
	save  SaveFunc

	mu      sync.Mutex
	timer   *time.Timer
	pending *Snapshot
	closed  bool
}

// New creates a Saver with the given quiet interval. A non-positive delay
// falls back to one second.
func New(delay time.Duration, save SaveFunc) *Saver {
	if delay <= 0 {
		delay = time.Second
	}
	return &Saver{delay: delay, save: save}
}

// Notify records a new snapshot and restarts the debounce timer.
func (s *Saver) Notify(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = &snap
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

func (s *Saver) fire() {
	s.mu.Lock()
	snap := s.pending
	s.pending = nil
	s.mu.Unlock()
	if snap != nil {
		s.save(*snap)
	}
}

// Flush synchronously saves any pending snapshot, cancelling the timer.
func (s *Saver) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	snap := s.pending
	s.pending = nil
	s.mu.Unlock()
	if snap != nil {
		s.save(*snap)
	}
}

// Discard drops any pending snapshot without saving it. Used when the note
// content is replaced outside the editor and the pending snapshot is stale.
func (s *Saver) Discard() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
	s.mu.Unlock()
}

// Close flushes any pending snapshot and rejects further notifications.
// Used on editor teardown.
func (s *Saver) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.Flush()
}

// Dirty reports whether a snapshot is waiting to be saved.
func (s *Saver) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}
