// Package config handles configuration loading, parsing, and validation
// from various sources (defaults, a YAML file, a .env file and environment
// variables). It provides type-safe access to the settings needed by the
// server, the task stores and the cache while keeping configuration details
// separate from business logic.
package config
