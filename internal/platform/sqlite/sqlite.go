package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

const schema = `
	CREATE TABLE IF NOT EXISTS tasks (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		title        TEXT    NOT NULL,
		description  TEXT    NOT NULL DEFAULT '',
		is_completed INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT    NOT NULL,
		updated_at   TEXT    NOT NULL
	);
`

// Open opens the database at dsn and creates the tasks table if it does not exist.
// The pool is limited to one connection so that ":memory:" databases are shared
// by every caller and writers never contend for the file lock.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := InitSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// InitSchema creates the tasks table. It is safe to call more than once.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create sqlite schema: %w", err)
	}
	return nil
}
