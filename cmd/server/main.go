// Package main implements the entry point for the task API server,
// which serves CRUD operations on tasks with a cache-aside task list.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/phrazzld/taskapi/internal/config"
	"github.com/phrazzld/taskapi/internal/platform/logger"
	"github.com/spf13/cobra"
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "taskapi",
		Short: "Task API server",
		Long:  "Task API server. Running it without a subcommand is the same as 'taskapi serve'.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	root.AddCommand(newServeCmd(&configPath), newMigrateCmd(&configPath))
	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), *configPath)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|version|reset]",
		Short:     "Manage PostgreSQL schema migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: migrationCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfigAndLogger(*configPath)
			if err != nil {
				return err
			}
			return runMigrateCommand(cmd.Context(), cfg, log, args[0])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// loadConfigAndLogger loads configuration and installs the default logger.
func loadConfigAndLogger(configPath string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("cache_driver", cfg.Cache.Driver),
		slog.Duration("cache_ttl", cfg.Cache.TTL),
		slog.Bool("invalidate_on_write", cfg.Cache.InvalidateOnWrite),
		slog.Bool("cache_fail_open", cfg.Cache.FailOpen))
	return cfg, log, nil
}

// runServe wires the application and serves until ctx is cancelled or a
// termination signal arrives.
func runServe(ctx context.Context, configPath string) error {
	cfg, log, err := loadConfigAndLogger(configPath)
	if err != nil {
		return err
	}

	db, err := setupAppDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}

	if cfg.Database.Driver == driverPostgres {
		if err := runMigrations(ctx, db, log, "up"); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	taskCache, err := setupAppCache(ctx, cfg, log)
	if err != nil {
		_ = db.Close()
		return err
	}

	app, err := newApplication(cfg, log, db, taskCache)
	if err != nil {
		_ = taskCache.Close()
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
