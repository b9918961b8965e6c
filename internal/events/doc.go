// Package events provides in-process notifications about task writes.
//
// The task service emits a TaskChangedEvent after every successful create,
// update or delete; handlers such as the cache invalidator subscribe through
// an EventEmitter without the service knowing who listens.
package events
