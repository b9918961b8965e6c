package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskapi/internal/config"
	"github.com/phrazzld/taskapi/internal/platform/postgres"
	"github.com/pressly/goose/v3"
)

// migrationCommands are the goose operations exposed by 'taskapi migrate'.
var migrationCommands = []string{"up", "down", "status", "version", "reset"}

// slogGooseLogger forwards goose output to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf implements goose.Logger.
func (l *slogGooseLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf implements goose.Logger. It logs at ERROR and does not exit;
// goose returns the underlying error to the caller.
func (l *slogGooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// runMigrateCommand opens the configured database and runs one goose command.
func runMigrateCommand(ctx context.Context, cfg *config.Config, logger *slog.Logger, command string) error {
	if cfg.Database.Driver != driverPostgres {
		return fmt.Errorf("migrations are only supported for the %s driver; %s creates its schema on open",
			driverPostgres, cfg.Database.Driver)
	}

	db, err := setupAppDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}()

	return runMigrations(ctx, db, logger, command)
}

// runMigrations executes command against db using the embedded migration files.
func runMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger, command string) error {
	if !slices.Contains(migrationCommands, command) {
		return fmt.Errorf("unknown migration command %q", command)
	}

	log := logger.With(
		slog.String("component", "migrations"),
		slog.String("correlation_id", uuid.NewString()),
		slog.String("command", command),
	)

	goose.SetLogger(&slogGooseLogger{logger: log})
	goose.SetBaseFS(postgres.Migrations)
	goose.SetTableName(postgres.MigrationsTable)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	start := time.Now()
	log.Info("starting migration operation")

	var err error
	switch command {
	case "up":
		err = goose.UpContext(ctx, db, postgres.MigrationsDir)
	case "down":
		err = goose.DownContext(ctx, db, postgres.MigrationsDir)
	case "status":
		err = goose.StatusContext(ctx, db, postgres.MigrationsDir)
	case "version":
		err = goose.VersionContext(ctx, db, postgres.MigrationsDir)
	case "reset":
		err = goose.ResetContext(ctx, db, postgres.MigrationsDir)
	}

	log.Info("migration operation completed",
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		slog.Bool("success", err == nil))
	if err != nil {
		return fmt.Errorf("goose %s failed: %w", command, err)
	}
	return nil
}
