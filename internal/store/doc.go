// Package store defines interfaces for task persistence.
// These interfaces abstract the underlying data storage mechanism from
// the service layer, so the cache-aside logic stays independent of the
// specific database in use.
package store
