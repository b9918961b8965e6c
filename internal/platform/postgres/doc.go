// Package postgres provides the PostgreSQL implementation of store.TaskStore
// along with the embedded goose migrations for its schema. It handles query
// execution, mapping of pgconn error codes to store errors, and scanning rows
// into domain.Task values.
package postgres
