package api

import (
	"time"

	"github.com/phrazzld/taskapi/internal/domain"
)

// TaskRequest is the body of POST /api/tasks and PUT /api/tasks/{id}.
// ID is ignored on create and must match the path on update.
type TaskRequest struct {
	ID          int64  `json:"id"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	IsCompleted bool   `json:"is_completed"`
}

// ToDomain converts the request into an unsaved domain.Task.
func (r TaskRequest) ToDomain() *domain.Task {
	return &domain.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		IsCompleted: r.IsCompleted,
	}
}

// TaskResponse is the JSON representation of a task.
type TaskResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		IsCompleted: task.IsCompleted,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func tasksToResponse(tasks []domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, taskToResponse(&tasks[i]))
	}
	return out
}
