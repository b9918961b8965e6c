package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is wrapped by every error a Cache returns when the backing
// service cannot be reached or rejects the command. A missing key is not an error.
var ErrUnavailable = errors.New("cache unavailable")

// Cache is a string key-value store with per-entry absolute expiration.
type Cache interface {
	// GetString returns the value stored under key. found is false when the key
	// is absent or expired.
	GetString(ctx context.Context, key string) (value string, found bool, err error)

	// SetString stores value under key, overwriting any previous value.
	// The entry expires ttl after the write; a ttl <= 0 means no expiration.
	SetString(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping verifies the cache is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}
