// Package cache defines the key-value cache used by the task service for its
// cache-aside reads, with a Redis implementation for deployments and an
// in-process implementation for local runs and tests.
package cache
