// Package task defines the task record exchanged with the task API.
package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrEmptyTitle is returned when a title is empty after trimming.
	ErrEmptyTitle = errors.New("title required")

	// ErrInvalidDueDate is returned when a due date is not YYYY-MM-DD.
	ErrInvalidDueDate = errors.New("invalid due date (want YYYY-MM-DD)")
)

// Task is a single task record as known to this client.
type Task struct {
	ID          int64
	Title       string
	Description string
	DueDate     *Date
	Completed   bool
	CreatedAt   time.Time
}

// wireTask is the JSON shape of a task record.
type wireTask struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	DueDate     *Date     `json:"due_date"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// MarshalJSON encodes the task, writing null for an empty description.
func (t Task) MarshalJSON() ([]byte, error) {
	w := wireTask{
		ID:        t.ID,
		Title:     t.Title,
		DueDate:   t.DueDate,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
	}
	if t.Description != "" {
		desc := t.Description
		w.Description = &desc
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a task record. A null description decodes as "".
func (t *Task) UnmarshalJSON(data []byte) error {
	var w wireTask
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*t = Task{
		ID:        w.ID,
		Title:     w.Title,
		DueDate:   w.DueDate,
		Completed: w.Completed,
		CreatedAt: w.CreatedAt,
	}
	if w.Description != nil {
		t.Description = *w.Description
	}
	return nil
}

// Validate checks the invariants every cached record must hold.
func (t Task) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("invalid task id: %d", t.ID)
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("task %d: %w", t.ID, ErrEmptyTitle)
	}
	return nil
}

// Draft holds the user-editable fields sent on create and update.
type Draft struct {
	Title       string
	Description string
	DueDate     *Date
}

// NewDraft builds a Draft from raw user input.
// The title is trimmed and must not be empty; the description is kept as
// typed; a non-empty due must be YYYY-MM-DD.
func NewDraft(title, description, due string) (Draft, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Draft{}, ErrEmptyTitle
	}

	d := Draft{
		Title:       title,
		Description: description,
	}

	if due = strings.TrimSpace(due); due != "" {
		date, err := ParseDate(due)
		if err != nil {
			return Draft{}, ErrInvalidDueDate
		}
		d.DueDate = &date
	}
	return d, nil
}

// DraftOf returns the editable fields of t.
func DraftOf(t Task) Draft {
	return Draft{
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
	}
}

// MarshalJSON encodes the draft as {title, description, due_date}.
func (d Draft) MarshalJSON() ([]byte, error) {
	var desc *string
	if d.Description != "" {
		desc = &d.Description
	}
	return json.Marshal(struct {
		Title       string  `json:"title"`
		Description *string `json:"description"`
		DueDate     *Date   `json:"due_date"`
	}{d.Title, desc, d.DueDate})
}

// UnmarshalJSON decodes a draft body. Fields are not validated here.
func (d *Draft) UnmarshalJSON(data []byte) error {
	var w struct {
		Title       string  `json:"title"`
		Description *string `json:"description"`
		DueDate     *Date   `json:"due_date"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*d = Draft{Title: w.Title, DueDate: w.DueDate}
	if w.Description != nil {
		d.Description = *w.Description
	}
	return nil
}
