package sqlite

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

// TaskStore implements store.TaskStore on SQLite.
type TaskStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore creates a TaskStore over db, which is usually the *sql.DB returned by Open.
func NewTaskStore(db store.DBTX, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "sqlite_task_store")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// FindAll implements store.TaskStore.
func (s *TaskStore) FindAll(ctx context.Context) ([]domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id ASC`)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// FindByID implements store.TaskStore.
func (s *TaskStore) FindByID(ctx context.Context, id int64) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrTaskNotFound
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, err
	}
	return task, nil
}

// Insert implements store.TaskStore.
func (s *TaskStore) Insert(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	now := s.now()
	stamp := now.Format(time.RFC3339Nano)

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (title, description, is_completed, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		task.Title, task.Description, task.IsCompleted, stamp, stamp)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to insert task",
			slog.String("error", err.Error()))
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted task ID: %w", err)
	}

	task.ID = id
	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

// MarkModified implements store.TaskStore.
func (s *TaskStore) MarkModified(ctx context.Context, task *domain.Task) store.SaveResult {
	if err := task.Validate(); err != nil {
		return store.SaveFailure(fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
	}

	now := s.now()
	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, is_completed = ?, updated_at = ? WHERE id = ?`,
		task.Title, task.Description, task.IsCompleted, now.Format(time.RFC3339Nano), task.ID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return store.SaveFailure(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return store.SaveFailure(err)
	}
	if n == 0 {
		return store.SaveMissing()
	}

	task.UpdatedAt = now
	return store.Saved()
}

// Remove implements store.TaskStore.
func (s *TaskStore) Remove(ctx context.Context, task *domain.Task) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, task.ID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// Ping implements store.TaskStore.
func (s *TaskStore) Ping(ctx context.Context) error {
	var one int
	if err := s.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("task store ping failed: %w", err)
	}
	return nil
}

// WithTx implements store.TaskStore.
func (s *TaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &TaskStore{db: tx, logger: s.logger, now: s.now}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task             domain.Task
		created, updated string
	)
	if err := row.Scan(&task.ID, &task.Title, &task.Description, &task.IsCompleted, &created, &updated); err != nil {
		return nil, err
	}

	var err error
	if task.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", created, err)
	}
	if task.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("invalid updated_at %q: %w", updated, err)
	}
	return &task, nil
}
