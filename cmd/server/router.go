package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/handlers"
	"github.com/phrazzld/taskapi/internal/api"
	apiMiddleware "github.com/phrazzld/taskapi/internal/api/middleware"
	"github.com/phrazzld/taskapi/internal/api/shared"
)

const readinessTimeout = 2 * time.Second

// readinessResponse reports the state of each dependency checked by /health/ready.
type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// setupRouter creates the application router with middleware, task routes and
// health endpoints.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace(app.logger))
	r.Use(handlers.CORS(
		handlers.AllowedOrigins(app.config.Server.CORSAllowedOrigins),
		handlers.AllowedMethods([]string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		}),
		handlers.AllowedHeaders([]string{"Content-Type", middleware.RequestIDHeader}),
		handlers.ExposedHeaders([]string{"Location", shared.TraceIDHeader}),
	))

	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	r.Route("/api", taskHandler.Routes)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})
	r.Get("/health/ready", app.handleReady)

	return r
}

// handleReady reports 200 when both the store and the cache answer a ping.
func (app *application) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	resp := readinessResponse{Status: "ok", Checks: map[string]string{}}
	status := http.StatusOK

	check := func(name string, ping func(context.Context) error) {
		if err := ping(ctx); err != nil {
			app.logger.Warn("readiness check failed",
				slog.String("dependency", name),
				slog.String("error", err.Error()))
			resp.Checks[name] = "unavailable"
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			return
		}
		resp.Checks[name] = "ok"
	}
	check("store", app.taskStore.Ping)
	check("cache", app.taskCache.Ping)

	shared.RespondWithJSON(w, r, status, resp)
}
