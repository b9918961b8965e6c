package testdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/taskapi/internal/platform/postgres"
	"github.com/phrazzld/taskapi/internal/redact"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

// Environment variables consulted for the test database URL, in order.
const (
	EnvDatabaseURL     = "DATABASE_URL"
	EnvTestDatabaseURL = "TASKAPI_TEST_DATABASE_URL"
)

// GetTestDatabaseURL returns the first non-empty database URL from the environment.
func GetTestDatabaseURL() string {
	for _, key := range []string{EnvDatabaseURL, EnvTestDatabaseURL} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// IsIntegrationTestEnvironment reports whether a test database is configured.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// SkipIfNoDatabase skips the test when no test database is configured.
func SkipIfNoDatabase(t *testing.T) {
	t.Helper()
	if !IsIntegrationTestEnvironment() {
		t.Skipf("skipping database test: set %s to run", EnvDatabaseURL)
	}
}

// GetTestDB opens the test database, applies migrations and registers a cleanup
// that closes the connection pool.
func GetTestDB(t *testing.T) *sql.DB {
	t.Helper()
	SkipIfNoDatabase(t)

	dbURL := GetTestDatabaseURL()
	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err, "failed to open test database %s", redact.String(dbURL))
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "failed to ping test database %s", redact.String(dbURL))

	require.NoError(t, ApplyMigrations(ctx, db, &testGooseLogger{t: t}))
	return db
}

// ApplyMigrations runs every pending migration against db.
func ApplyMigrations(ctx context.Context, db *sql.DB, logger goose.Logger) error {
	goose.SetLogger(logger)
	goose.SetBaseFS(postgres.Migrations)
	goose.SetTableName(postgres.MigrationsTable)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, postgres.MigrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// WithTx runs fn inside a transaction that is always rolled back, so tests can
// write freely without affecting each other.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("warning: failed to rollback transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// testGooseLogger routes goose output to the test log.
type testGooseLogger struct {
	t *testing.T
}

func (l *testGooseLogger) Printf(format string, v ...any) {
	l.t.Helper()
	l.t.Logf(format, v...)
}

func (l *testGooseLogger) Fatalf(format string, v ...any) {
	l.t.Helper()
	l.t.Errorf(format, v...)
}
