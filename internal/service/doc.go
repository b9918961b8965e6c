// Package service implements the task use cases on top of a store.TaskStore
// and a cache.Cache.
//
// Reads of the full task list go through the cache (cache-aside); single-task
// reads and all writes go straight to the store. Writes do not touch the cache
// unless a CacheInvalidationHandler is subscribed to the service's events.
package service
