package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jihun-01/scratcha-dashboard/ports"
)

// SettingsStore persists local UI preferences (session token, dark-mode
// flag) in the settings table.
type SettingsStore struct {
	db *DB
}

// NewSettingsStore creates a SQLite-backed settings store.
func NewSettingsStore(db *DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get returns the stored value, or "" when the name is unset.
func (s *SettingsStore) Get(ctx context.Context, name string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE name = ?", name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", name, err)
	}
	return value, nil
}

// Set stores a value, replacing any existing one.
func (s *SettingsStore) Set(ctx context.Context, name, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, name, value)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", name, err)
	}
	return nil
}

// Delete removes a value.
func (s *SettingsStore) Delete(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM settings WHERE name = ?", name); err != nil {
		return fmt.Errorf("delete setting %s: %w", name, err)
	}
	return nil
}

var _ ports.SettingsStore = (*SettingsStore)(nil)
