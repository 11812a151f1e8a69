package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorruptRecord reports a stored value that no longer decodes as the
// expected shape. There is no migration path for settings; the operator has
// to clear the record.
var ErrCorruptRecord = errors.New("stored record is corrupt")

// Settings keys.
const (
	KeyHeroImage       = "hero_image"
	KeyAdminCredential = "admin_credential"
)

// SettingsStore is a durable key/value record store for the handful of
// process-wide singletons: the hero image and the admin credential.
type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get returns the stored string and whether the key exists.
func (s *SettingsStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM settings WHERE key = ?
	`, key).Scan(&value)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SettingsStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %q: %w", key, err)
	}
	return nil
}

// GetJSON decodes the stored value into v. A value that fails to decode is
// reported as ErrCorruptRecord.
func (s *SettingsStore) GetJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("%w: setting %q: %v", ErrCorruptRecord, key, err)
	}
	return true, nil
}

func (s *SettingsStore) SetJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode setting %q: %w", key, err)
	}
	return s.Set(ctx, key, string(raw))
}
