package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

const clinicIDKey = "clinic_id"

// ErrSettingNotFound is returned by Get for keys that were never set.
var ErrSettingNotFound = errors.New("setting not found")

type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("setting %q: %w", key, ErrSettingNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *SettingsStore) GetAll() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("get all settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

func (s *SettingsStore) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

func (s *SettingsStore) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete setting %q: %w", key, err)
	}
	return nil
}

// ClinicID returns the stored clinic id, or 0 when none has been chosen.
func (s *SettingsStore) ClinicID() (int64, error) {
	v, err := s.Get(clinicIDKey)
	if errors.Is(err, ErrSettingNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse clinic id %q: %w", v, err)
	}
	return id, nil
}

// SetClinicID stores the clinic id. Zero clears it.
func (s *SettingsStore) SetClinicID(id int64) error {
	if id == 0 {
		return s.Delete(clinicIDKey)
	}
	if id < 0 {
		return fmt.Errorf("clinic id must be positive, got %d", id)
	}
	return s.Set(clinicIDKey, strconv.FormatInt(id, 10))
}
