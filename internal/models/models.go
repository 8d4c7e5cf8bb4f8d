package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ID is an opaque task or comment identifier.
// Older backups stored millisecond timestamps as JSON numbers, so ID decodes from both forms.
type ID string

// UnmarshalJSON accepts a JSON string or number
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Project represents a named column of tasks
type Project struct {
	Name   string
	Color  string
	Hidden bool
}

// Comment represents a comment on a task
type Comment struct {
	ID        ID        `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Task represents a single to-do item.
// Priority is only meaningful while the task is incomplete.
type Task struct {
	ID          ID         `json:"id"`
	Text        string     `json:"text"`
	Project     string     `json:"project"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt"`
	Priority    int        `json:"priority"`
	Comments    []Comment  `json:"comments"`
}

// Clone returns a deep copy of the task
func (t Task) Clone() Task {
	c := t
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	c.Comments = append([]Comment(nil), t.Comments...)
	if c.Comments == nil {
		c.Comments = []Comment{}
	}
	return c
}

// State is the full persisted shape of the board
type State struct {
	Todos          []Task            `json:"todos"`
	Projects       []string          `json:"projects"`
	HiddenProjects []string          `json:"hiddenProjects"`
	ProjectColors  map[string]string `json:"projectColors"`
}
