// Package sqlite provides a store.TaskStore backed by an embedded SQLite
// database (modernc.org/sqlite, no cgo). It is intended for local runs and
// tests; the schema is created on open rather than through migrations.
package sqlite
