package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskapi/internal/cache"
	"github.com/phrazzld/taskapi/internal/config"
	"github.com/phrazzld/taskapi/internal/events"
	"github.com/phrazzld/taskapi/internal/service"
	"github.com/phrazzld/taskapi/internal/store"
)

// application holds the shared dependencies of the running server and
// releases them on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	taskStore   store.TaskStore
	taskCache   cache.Cache
	emitter     *events.InMemoryEventEmitter
	taskService service.TaskService
}

// newApplication wires the task service on top of an open database and cache.
// The application takes ownership of db and taskCache.
func newApplication(
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	taskCache cache.Cache,
) (*application, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if taskCache == nil {
		return nil, errors.New("taskCache cannot be nil")
	}

	app := &application{
		config:    cfg,
		logger:    logger,
		db:        db,
		taskCache: taskCache,
		emitter:   events.NewInMemoryEventEmitter(logger),
	}

	var err error
	app.taskStore, err = newTaskStore(cfg.Database.Driver, db, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Cache.InvalidateOnWrite {
		app.emitter.RegisterHandler(
			service.NewCacheInvalidationHandler(taskCache, logger),
			events.TaskCreated, events.TaskUpdated, events.TaskDeleted,
		)
		logger.Info("task list cache is invalidated on every write")
	}

	app.taskService, err = service.NewTaskService(
		app.taskStore,
		taskCache,
		logger,
		service.WithCacheTTL(cfg.Cache.TTL),
		service.WithLoadTimeout(cfg.Cache.LoadTimeout),
		service.WithFailOpen(cfg.Cache.FailOpen),
		service.WithTransactions(db),
		service.WithEventEmitter(app.emitter),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run serves HTTP until ctx is cancelled or a termination signal arrives,
// then releases every resource.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup closes the cache and the database connection.
func (app *application) cleanup() {
	if err := app.taskCache.Close(); err != nil {
		app.logger.Error("error closing cache", slog.String("error", err.Error()))
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database connection", slog.String("error", err.Error()))
	}
	app.logger.Info("application resources released")
}
