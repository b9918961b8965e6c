package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Field limits for a Task.
const (
	MaxTaskTitleLength       = 200
	MaxTaskDescriptionLength = 2000
)

// Common validation errors for Task.
var (
	ErrEmptyTaskTitle         = fmt.Errorf("%w: task title cannot be empty", ErrValidation)
	ErrTaskTitleTooLong       = fmt.Errorf("%w: task title is too long", ErrValidation)
	ErrTaskDescriptionTooLong = fmt.Errorf("%w: task description is too long", ErrValidation)
)

// Task is a single unit of work tracked by the API.
// ID is assigned by the store on insert and never changes afterwards.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTask creates an unsaved Task with the given fields.
// The returned Task has no ID; the store assigns one on insert.
func NewTask(title, description string, isCompleted bool) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		Title:       title,
		Description: description,
		IsCompleted: isCompleted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks that the Task's user-editable fields are acceptable.
// It does not check the ID, which is only meaningful once the Task is stored.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTaskTitle
	}

	if utf8.RuneCountInString(t.Title) > MaxTaskTitleLength {
		return ErrTaskTitleTooLong
	}

	if utf8.RuneCountInString(t.Description) > MaxTaskDescriptionLength {
		return ErrTaskDescriptionTooLong
	}

	return nil
}
