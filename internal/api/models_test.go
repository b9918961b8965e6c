package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/phrazzld/taskapi/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskRequest_ToDomain(t *testing.T) {
	var req TaskRequest
	require.NoError(t, json.Unmarshal(
		[]byte(`{"id": 4, "title": "Write report", "description": "Q1", "is_completed": true}`), &req))

	task := req.ToDomain()

	assert.Equal(t, &domain.Task{ID: 4, Title: "Write report", Description: "Q1", IsCompleted: true}, task)
}

func TestTaskResponse_JSON(t *testing.T) {
	ts := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	resp := taskToResponse(&domain.Task{ID: 1, Title: "A", CreatedAt: ts, UpdatedAt: ts})

	b, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 1,
		"title": "A",
		"description": "",
		"is_completed": false,
		"created_at": "2024-05-01T08:30:00Z",
		"updated_at": "2024-05-01T08:30:00Z"
	}`, string(b))
}

func TestTasksToResponse_EmptyIsArray(t *testing.T) {
	b, err := json.Marshal(tasksToResponse(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}
