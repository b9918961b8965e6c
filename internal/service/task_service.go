package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/phrazzld/taskapi/internal/cache"
	"github.com/phrazzld/taskapi/internal/domain"
	"github.com/phrazzld/taskapi/internal/events"
	"github.com/phrazzld/taskapi/internal/platform/logger"
	"github.com/phrazzld/taskapi/internal/store"
	"golang.org/x/sync/singleflight"
)

const (
	// TasksCacheKey is the single cache key holding the serialized task list.
	TasksCacheKey = "TasksCache"

	// DefaultCacheTTL is the absolute expiration applied to the cached task list.
	DefaultCacheTTL = 10 * time.Minute

	// DefaultLoadTimeout bounds a shared store load that outlives the request
	// that started it.
	DefaultLoadTimeout = 30 * time.Second
)

// TaskService provides task-related operations
type TaskService interface {
	// ListTasks returns every task ordered by ID, served from the cache when a
	// fresh snapshot is present. The result may be stale by up to the cache TTL.
	ListTasks(ctx context.Context) ([]domain.Task, error)

	// GetTask retrieves a task by its ID straight from the store.
	GetTask(ctx context.Context, id int64) (*domain.Task, error)

	// CreateTask validates and persists a new task. Any ID on task is ignored;
	// the returned task carries the store-assigned ID.
	CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error)

	// UpdateTask replaces the task identified by id. task.ID must equal id.
	UpdateTask(ctx context.Context, id int64, task *domain.Task) error

	// DeleteTask removes the task identified by id.
	DeleteTask(ctx context.Context, id int64) error

	// InvalidateCache drops the cached task list so the next ListTasks reads the store.
	InvalidateCache(ctx context.Context) error
}

// Option configures a TaskService.
type Option func(*taskServiceImpl)

// WithCacheTTL sets the expiration of the cached task list.
// Non-positive values are ignored.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *taskServiceImpl) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithFailOpen makes ListTasks fall back to the store when the cache cannot be
// read and only log cache write failures.
func WithFailOpen(failOpen bool) Option {
	return func(s *taskServiceImpl) {
		s.failOpen = failOpen
	}
}

// WithLoadTimeout bounds the shared store read performed on a cache miss.
// Non-positive values are ignored.
func WithLoadTimeout(timeout time.Duration) Option {
	return func(s *taskServiceImpl) {
		if timeout > 0 {
			s.loadTimeout = timeout
		}
	}
}

// WithTransactions runs multi-step writes inside a transaction on db.
func WithTransactions(db *sql.DB) Option {
	return func(s *taskServiceImpl) {
		s.db = db
	}
}

// WithEventEmitter publishes a TaskChangedEvent after every successful write.
func WithEventEmitter(emitter events.EventEmitter) Option {
	return func(s *taskServiceImpl) {
		s.emitter = emitter
	}
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	store    store.TaskStore
	cache    cache.Cache
	db       *sql.DB
	emitter  events.EventEmitter
	cacheTTL    time.Duration
	loadTimeout time.Duration
	failOpen    bool
	loads       singleflight.Group
	logger      *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	taskStore store.TaskStore,
	taskCache cache.Cache,
	logger *slog.Logger,
	opts ...Option,
) (TaskService, error) {
	if taskStore == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "taskStore cannot be nil"}
	}
	if taskCache == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "taskCache cannot be nil"}
	}
	if logger == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "logger cannot be nil"}
	}

	s := &taskServiceImpl{
		store:    taskStore,
		cache:    taskCache,
		cacheTTL:    DefaultCacheTTL,
		loadTimeout: DefaultLoadTimeout,
		logger:      logger.With(slog.String("component", "task_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(ctx context.Context) ([]domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	raw, found, err := s.cache.GetString(ctx, TasksCacheKey)
	switch {
	case err != nil && !s.failOpen:
		log.Error("failed to read task list from cache", slog.String("error", err.Error()))
		return nil, cacheError("list_tasks", "failed to read cached task list", err)
	case err != nil:
		log.Warn("task cache unreadable, reading store directly", slog.String("error", err.Error()))
	case found:
		var tasks []domain.Task
		if decodeErr := json.Unmarshal([]byte(raw), &tasks); decodeErr == nil && tasks != nil {
			log.Debug("task list served from cache", slog.Int("count", len(tasks)))
			return tasks, nil
		} else if decodeErr != nil {
			log.Warn("cached task list is not decodable, refreshing from store",
				slog.String("error", decodeErr.Error()))
		} else {
			log.Warn("cached task list is null, refreshing from store")
		}
	}

	return s.loadAndCache(ctx)
}

// loadAndCache reads every task from the store and writes the snapshot to the
// cache. Concurrent callers share a single load; each caller stops waiting
// when its own ctx is done.
func (s *taskServiceImpl) loadAndCache(ctx context.Context) ([]domain.Task, error) {
	ch := s.loads.DoChan(TasksCacheKey, func() (any, error) {
		// The shared load must not be cancelled by whichever caller started it.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
		defer cancel()
		log := logger.FromContextOrDefault(loadCtx, s.logger)

		tasks, err := s.store.FindAll(loadCtx)
		if err != nil {
			log.Error("failed to load tasks from store", slog.String("error", err.Error()))
			return nil, storeError("list_tasks", "failed to load tasks", err)
		}

		payload, err := json.Marshal(tasks)
		if err != nil {
			return nil, NewTaskServiceError("list_tasks", "failed to encode task list", err)
		}

		if err := s.cache.SetString(loadCtx, TasksCacheKey, string(payload), s.cacheTTL); err != nil {
			if !s.failOpen {
				log.Error("failed to write task list to cache", slog.String("error", err.Error()))
				return nil, cacheError("list_tasks", "failed to cache task list", err)
			}
			log.Warn("failed to write task list to cache", slog.String("error", err.Error()))
		}

		log.Debug("task list loaded from store and cached",
			slog.Int("count", len(tasks)),
			slog.Duration("ttl", s.cacheTTL))
		return tasks, nil
	})

	select {
	case <-ctx.Done():
		logger.FromContextOrDefault(ctx, s.logger).Warn("stopped waiting for task list load",
			slog.String("error", ctx.Err().Error()))
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		tasks := res.Val.([]domain.Task)
		if res.Shared {
			tasks = slices.Clone(tasks)
		}
		return tasks, nil
	}
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := s.store.FindByID(ctx, id)
	if err != nil {
		if !store.IsNotFoundError(err) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task",
				slog.String("error", err.Error()),
				slog.Int64("task_id", id))
		}
		return nil, storeError("get_task", "failed to retrieve task", err)
	}
	return task, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if task == nil {
		return nil, fmt.Errorf("%w: task is required", ErrInvalidTask)
	}

	created, err := domain.NewTask(task.Title, task.Description, task.IsCompleted)
	if err != nil {
		log.Debug("rejected invalid task", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrInvalidTask, err)
	}

	if err := s.store.Insert(ctx, created); err != nil {
		if errors.Is(err, domain.ErrValidation) || errors.Is(err, store.ErrInvalidEntity) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTask, err)
		}
		log.Error("failed to create task", slog.String("error", err.Error()))
		return nil, storeError("create_task", "failed to save task", err)
	}

	log.Info("task created", slog.Int64("task_id", created.ID))
	s.emit(ctx, events.TaskCreated, created.ID)
	return created, nil
}

// UpdateTask implements TaskService.UpdateTask
func (s *taskServiceImpl) UpdateTask(ctx context.Context, id int64, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if task == nil {
		return fmt.Errorf("%w: task is required", ErrInvalidTask)
	}
	if task.ID != id {
		log.Debug("rejected update with mismatched ID",
			slog.Int64("path_id", id),
			slog.Int64("body_id", task.ID))
		return ErrIDMismatch
	}

	updated := &domain.Task{
		ID:          id,
		Title:       task.Title,
		Description: task.Description,
		IsCompleted: task.IsCompleted,
	}
	if err := updated.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTask, err)
	}

	result := s.store.MarkModified(ctx, updated)
	if result.Succeeded() {
		log.Info("task updated", slog.Int64("task_id", id))
		s.emit(ctx, events.TaskUpdated, id)
		return nil
	}
	if result.Outcome == store.SaveNotFound {
		return ErrTaskNotFound
	}

	err := result.Error()
	if err == nil {
		err = errors.New("unknown save failure")
	}
	log.Error("failed to update task",
		slog.String("error", err.Error()),
		slog.Int64("task_id", id))
	return storeError("update_task", "failed to save task", err)
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	remove := func(ctx context.Context, st store.TaskStore) error {
		task, err := st.FindByID(ctx, id)
		if err != nil {
			return err
		}
		return st.Remove(ctx, task)
	}

	var err error
	if s.db != nil {
		err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
			return remove(ctx, s.store.WithTx(tx))
		})
	} else {
		err = remove(ctx, s.store)
	}
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to delete task",
				slog.String("error", err.Error()),
				slog.Int64("task_id", id))
		}
		return storeError("delete_task", "failed to delete task", err)
	}

	log.Info("task deleted", slog.Int64("task_id", id))
	s.emit(ctx, events.TaskDeleted, id)
	return nil
}

// InvalidateCache implements TaskService.InvalidateCache
func (s *taskServiceImpl) InvalidateCache(ctx context.Context) error {
	if err := s.cache.Delete(ctx, TasksCacheKey); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to invalidate task cache",
			slog.String("error", err.Error()))
		return cacheError("invalidate_cache", "failed to delete cached task list", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("task cache invalidated")
	return nil
}

// emit publishes a change event. The write has already been committed, so a
// handler failure is only logged.
func (s *taskServiceImpl) emit(ctx context.Context, eventType string, taskID int64) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.EmitEvent(ctx, events.NewTaskChangedEvent(eventType, taskID)); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("task change event handler failed",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType),
			slog.Int64("task_id", taskID))
	}
}
