// Package testutil provides shared test helpers for setting up databases
// and services.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/noteflow/internal/noteservice"
	"github.com/starford/noteflow/internal/store"
)

// TestStore creates a temporary SQLite store that is automatically cleaned
// up. The database is seeded with the default notebook and task note.
func TestStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "noteflow-test.db")
	st, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// TestService creates a service over a temporary store with no broker.
// The autosave delay is long enough that tests control persistence through
// FlushEdits rather than timers.
func TestService(t *testing.T) (*noteservice.Service, *store.Store) {
	t.Helper()
	st := TestStore(t)
	svc, err := noteservice.NewService(st, nil, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(svc.Close)
	return svc, st
}
