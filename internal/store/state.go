package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// GetState returns the value stored under key. ok is false when the key is
// absent.
func (s *Store) GetState(key string) (value string, ok bool, err error) {
	err = s.conn.QueryRow(`SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: get state: %w", err)
	}
	return value, true, nil
}

// SetState stores value under key, replacing any previous value.
func (s *Store) SetState(key, value string) error {
	_, err := s.conn.Exec(`
		INSERT INTO app_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("store: set state: %w", err)
	}
	return nil
}

// DeleteState removes a key. Deleting an absent key is a no-op.
func (s *Store) DeleteState(key string) error {
	if _, err := s.conn.Exec(`DELETE FROM app_state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("store: delete state: %w", err)
	}
	return nil
}
