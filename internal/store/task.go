package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/taskapi/internal/domain"
)

// DBTX is an interface that abstracts the database access layer.
// It is implemented by both *sql.DB and *sql.Tx, so a store can run its
// queries against either a pooled connection or an open transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SaveOutcome tags the result of persisting changes to an existing task.
type SaveOutcome int

const (
	// SaveSucceeded means the row was replaced.
	SaveSucceeded SaveOutcome = iota
	// SaveNotFound means no row with the task's ID exists any more.
	SaveNotFound
	// SaveFailed means the store could not complete the write; Err holds the cause.
	SaveFailed
)

// String returns the snake_case name of the outcome for logging.
func (o SaveOutcome) String() string {
	switch o {
	case SaveSucceeded:
		return "succeeded"
	case SaveNotFound:
		return "not_found"
	default:
		return "failed"
	}
}

// SaveResult is returned by TaskStore.MarkModified instead of an error so that
// a vanished row and a broken store are distinct values rather than error strings.
type SaveResult struct {
	Outcome SaveOutcome
	Err     error
}

// Saved returns a successful SaveResult.
func Saved() SaveResult {
	return SaveResult{Outcome: SaveSucceeded}
}

// SaveMissing returns a SaveResult for a row that no longer exists.
func SaveMissing() SaveResult {
	return SaveResult{Outcome: SaveNotFound, Err: ErrTaskNotFound}
}

// SaveFailure returns a SaveResult carrying the underlying cause.
func SaveFailure(err error) SaveResult {
	return SaveResult{Outcome: SaveFailed, Err: err}
}

// Succeeded reports whether the save went through.
func (r SaveResult) Succeeded() bool {
	return r.Outcome == SaveSucceeded
}

// Error returns the error carried by the result, or nil on success.
func (r SaveResult) Error() error {
	if r.Outcome == SaveSucceeded {
		return nil
	}
	return r.Err
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// FindAll returns every task ordered by ascending ID.
	// Returns an empty slice, never nil, when the table is empty.
	FindAll(ctx context.Context) ([]domain.Task, error)

	// FindByID retrieves a task by its identifier.
	// Returns ErrTaskNotFound if the task does not exist.
	FindByID(ctx context.Context, id int64) (*domain.Task, error)

	// Insert saves a new task. The store assigns task.ID and the timestamps.
	// Any ID already set on the task is ignored.
	Insert(ctx context.Context, task *domain.Task) error

	// MarkModified replaces every editable column of the row identified by task.ID.
	MarkModified(ctx context.Context, task *domain.Task) SaveResult

	// Remove deletes the task identified by task.ID.
	// Returns ErrTaskNotFound if no row was deleted.
	Remove(ctx context.Context, task *domain.Task) error

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
