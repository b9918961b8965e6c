package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskapi/internal/domain"
	"github.com/phrazzld/taskapi/internal/platform/logger"
	"github.com/phrazzld/taskapi/internal/store"
)

const taskColumns = `id, title, description, is_completed, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// FindAll implements store.TaskStore.FindAll
func (s *PostgresTaskStore) FindAll(ctx context.Context) ([]domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "find_all", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		var task domain.Task
		if err := scanTask(rows, &task); err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, store.NewStoreError("task", "find_all", "scan failed", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "find_all", "row iteration failed", MapError(err))
	}

	log.Debug("tasks retrieved", slog.Int("count", len(tasks)))
	return tasks, nil
}

// FindByID implements store.TaskStore.FindByID
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) FindByID(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	var task domain.Task
	if err := scanTask(s.db.QueryRowContext(ctx, query, id), &task); err != nil {
		if IsNotFoundError(err) {
			log.Debug("task not found", slog.Int64("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, store.NewStoreError("task", "find_by_id", "query failed", MapError(err))
	}

	return &task, nil
}

// Insert implements store.TaskStore.Insert
// The database assigns the ID; any ID already set on task is ignored.
func (s *PostgresTaskStore) Insert(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during insert", slog.String("error", err.Error()))
		return err
	}

	now := s.now()
	query := `
		INSERT INTO tasks (title, description, is_completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := s.db.QueryRowContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.IsCompleted,
		now,
		now,
	).Scan(&id)
	if err != nil {
		log.Error("failed to insert task", slog.String("error", err.Error()))
		return store.NewStoreError("task", "insert", "insert failed", MapError(err))
	}

	task.ID = id
	task.CreatedAt = now
	task.UpdatedAt = now

	log.Info("task created", slog.Int64("task_id", id))
	return nil
}

// MarkModified implements store.TaskStore.MarkModified
// Every editable column of the row is replaced with the values on task.
func (s *PostgresTaskStore) MarkModified(ctx context.Context, task *domain.Task) store.SaveResult {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return store.SaveFailure(fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
	}

	now := s.now()
	query := `
		UPDATE tasks
		SET title = $1, description = $2, is_completed = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.IsCompleted,
		now,
		task.ID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return store.SaveFailure(store.NewStoreError("task", "update", "update failed", MapError(err)))
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			log.Debug("task to update no longer exists", slog.Int64("task_id", task.ID))
			return store.SaveMissing()
		}
		return store.SaveFailure(store.NewStoreError("task", "update", "rows affected unavailable", err))
	}

	task.UpdatedAt = now
	log.Info("task updated", slog.Int64("task_id", task.ID))
	return store.Saved()
}

// Remove implements store.TaskStore.Remove
// Returns store.ErrTaskNotFound if no row was deleted.
func (s *PostgresTaskStore) Remove(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, task.ID)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return store.NewStoreError("task", "remove", "delete failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return err
		}
		return store.NewStoreError("task", "remove", "rows affected unavailable", err)
	}

	log.Info("task deleted", slog.Int64("task_id", task.ID))
	return nil
}

// Ping implements store.TaskStore.Ping
func (s *PostgresTaskStore) Ping(ctx context.Context) error {
	var one int
	if err := s.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("task store ping failed: %w", err)
	}
	return nil
}

// WithTx implements store.TaskStore.WithTx
// It returns a new TaskStore instance that uses the provided transaction.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
		now:    s.now,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner, task *domain.Task) error {
	return row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.IsCompleted,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
}
