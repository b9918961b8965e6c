package postgres

import "embed"

// MigrationsDir is the directory inside Migrations holding the goose SQL files.
const MigrationsDir = "migrations"

// MigrationsTable is the goose version table name.
const MigrationsTable = "schema_migrations"

// Migrations holds the versioned schema for the tasks table.
//
//go:embed migrations/*.sql
var Migrations embed.FS
