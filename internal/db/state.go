package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/tgienger/taskflow/internal/models"
)

// Cache keys holding the board, one JSON document each
const (
	keyTodos          = "todos"
	keyProjects       = "projects"
	keyHiddenProjects = "hiddenProjects"
	keyProjectColors  = "projectColors"
)

// Load reads the board from the cache. Keys that were never written leave
// their field nil.
func (db *DB) Load() (models.State, error) {
	var st models.State
	targets := map[string]any{
		keyTodos:          &st.Todos,
		keyProjects:       &st.Projects,
		keyHiddenProjects: &st.HiddenProjects,
		keyProjectColors:  &st.ProjectColors,
	}

	rows, err := db.Query("SELECT key, value FROM cache")
	if err != nil {
		return st, fmt.Errorf("query cache: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return st, fmt.Errorf("scan cache: %w", err)
		}
		target, ok := targets[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal([]byte(value), target); err != nil {
			return st, fmt.Errorf("decode %s: %w", key, err)
		}
	}
	if err := rows.Err(); err != nil {
		return st, fmt.Errorf("iterate cache: %w", err)
	}
	return st, nil
}

// Save writes the whole board in one transaction
func (db *DB) Save(st models.State) error {
	values := map[string]any{
		keyTodos:          st.Todos,
		keyProjects:       st.Projects,
		keyHiddenProjects: st.HiddenProjects,
		keyProjectColors:  st.ProjectColors,
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	for key, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("encode %s: %w", key, err)
		}
		if err := put(tx, key, string(data)); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func put(tx *sql.Tx, key, value string) error {
	_, err := tx.Exec(`
		INSERT INTO cache (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
