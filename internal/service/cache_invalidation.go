package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskapi/internal/cache"
	"github.com/phrazzld/taskapi/internal/events"
	"github.com/phrazzld/taskapi/internal/platform/logger"
)

// CacheInvalidationHandler drops the cached task list whenever a task changes.
// Subscribing it to the service's emitter turns on invalidate-on-write.
type CacheInvalidationHandler struct {
	cache  cache.Cache
	logger *slog.Logger
}

var _ events.EventHandler = (*CacheInvalidationHandler)(nil)

// NewCacheInvalidationHandler creates a handler that deletes TasksCacheKey from c.
func NewCacheInvalidationHandler(c cache.Cache, logger *slog.Logger) *CacheInvalidationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheInvalidationHandler{
		cache:  c,
		logger: logger.With(slog.String("component", "cache_invalidation")),
	}
}

// HandleEvent implements events.EventHandler.
func (h *CacheInvalidationHandler) HandleEvent(ctx context.Context, event *events.TaskChangedEvent) error {
	if err := h.cache.Delete(ctx, TasksCacheKey); err != nil {
		return fmt.Errorf("%w: invalidate after %s: %w", ErrCacheUnavailable, event.Type, err)
	}
	logger.FromContextOrDefault(ctx, h.logger).Debug("task list cache invalidated",
		slog.String("event_type", event.Type),
		slog.Int64("task_id", event.TaskID))
	return nil
}
