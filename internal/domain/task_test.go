package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	task, err := NewTask("Write report", "quarterly numbers", false)
	require.NoError(t, err)

	assert.Zero(t, task.ID, "new tasks are not assigned an ID")
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, "quarterly numbers", task.Description)
	assert.False(t, task.IsCompleted)
	assert.False(t, task.CreatedAt.IsZero())
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)

	_, err = NewTask("   ", "", false)
	assert.ErrorIs(t, err, ErrEmptyTaskTitle)
}

func TestTaskValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		task    Task
		wantErr error
	}{
		{
			name: "valid task",
			task: Task{Title: "A"},
		},
		{
			name:    "empty title",
			task:    Task{Title: ""},
			wantErr: ErrEmptyTaskTitle,
		},
		{
			name:    "title too long",
			task:    Task{Title: strings.Repeat("x", MaxTaskTitleLength+1)},
			wantErr: ErrTaskTitleTooLong,
		},
		{
			name: "title at limit with multibyte runes",
			task: Task{Title: strings.Repeat("é", MaxTaskTitleLength)},
		},
		{
			name:    "description too long",
			task:    Task{Title: "A", Description: strings.Repeat("d", MaxTaskDescriptionLength+1)},
			wantErr: ErrTaskDescriptionTooLong,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.task.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
			assert.ErrorIs(t, err, ErrValidation, "all task validation errors wrap ErrValidation")
		})
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := NewValidationError("id", "has invalid format", ErrInvalidID)
	assert.Equal(t, "invalid ID: id has invalid format", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidID))

	generic := NewValidationError("", "payload id does not match path id", nil)
	assert.True(t, errors.Is(generic, ErrValidation))
	assert.Equal(t, "validation failed: payload id does not match path id", generic.Error())
}
