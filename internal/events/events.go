package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Task change event types.
const (
	TaskCreated = "task.created"
	TaskUpdated = "task.updated"
	TaskDeleted = "task.deleted"
)

// TaskChangedEvent announces that a task row was written.
type TaskChangedEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of TaskCreated, TaskUpdated or TaskDeleted
	Type string `json:"type"`

	// TaskID is the store identifier of the affected task
	TaskID int64 `json:"task_id"`

	OccurredAt time.Time `json:"occurred_at"`
}

// NewTaskChangedEvent creates an event of the given type for taskID.
func NewTaskChangedEvent(eventType string, taskID int64) *TaskChangedEvent {
	return &TaskChangedEvent{
		ID:         uuid.New(),
		Type:       eventType,
		TaskID:     taskID,
		OccurredAt: time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that react to task changes.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *TaskChangedEvent) error
}

// EventHandlerFunc adapts a function to the EventHandler interface.
type EventHandlerFunc func(ctx context.Context, event *TaskChangedEvent) error

// HandleEvent calls f(ctx, event).
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *TaskChangedEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *TaskChangedEvent) error
}
