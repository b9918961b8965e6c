// Package testdb provides helpers for tests that need a real PostgreSQL database.
//
// Tests call SkipIfNoDatabase first; the helpers are no-ops unless DATABASE_URL
// (or TASKAPI_TEST_DATABASE_URL) points at a reachable server. The schema is
// created from the migrations embedded in internal/platform/postgres, and each
// test body runs inside a transaction that is rolled back afterwards.
package testdb
