package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/phrazzld/taskapi/internal/config"
	"github.com/phrazzld/taskapi/internal/platform/postgres"
	"github.com/phrazzld/taskapi/internal/platform/sqlite"
	"github.com/phrazzld/taskapi/internal/store"
)

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
)

// setupAppDatabase opens the configured database and verifies the connection.
func setupAppDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	switch cfg.Driver {
	case driverSQLite:
		db, err := sqlite.Open(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		logger.Info("database connection established", slog.String("driver", cfg.Driver))
		return db, nil

	case driverPostgres:
		db, err := sql.Open("pgx", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database connection: %w", err)
		}

		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}

		logger.Info("database connection established",
			slog.String("driver", cfg.Driver),
			slog.Int("max_open_conns", cfg.MaxOpenConns))
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// newTaskStore returns the TaskStore implementation for driver.
func newTaskStore(driver string, db *sql.DB, logger *slog.Logger) (store.TaskStore, error) {
	switch driver {
	case driverPostgres:
		return postgres.NewPostgresTaskStore(db, logger), nil
	case driverSQLite:
		return sqlite.NewTaskStore(db, logger), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
