package db

import (
	"database/sql"
	"errors"
	"strconv"
)

// Setting keys used by the terminal UI
const (
	SettingTheme           = "theme"
	SettingTutorialSeen    = "tutorial_seen"
	SettingNoticeMinimized = "notice_minimized"
	SettingShowCompleted   = "show_completed"
	SettingLastProject     = "last_project"
)

// GetSetting retrieves a setting value by key, "" when unset
func (db *DB) GetSetting(key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetSetting sets a setting value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// GetBool reads a boolean setting, returning def when unset or unparsable
func (db *DB) GetBool(key string, def bool) bool {
	v, err := db.GetSetting(key)
	if err != nil || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// SetBool stores a boolean setting
func (db *DB) SetBool(key string, value bool) error {
	return db.SetSetting(key, strconv.FormatBool(value))
}
