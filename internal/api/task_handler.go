package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskapi/internal/api/shared"
	"github.com/phrazzld/taskapi/internal/platform/logger"
	"github.com/phrazzld/taskapi/internal/service"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if taskService == nil {
		panic("taskService cannot be nil for TaskHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// Routes mounts the task endpoints on r under /tasks and under /Task, the
// path existing clients of the API already call.
func (h *TaskHandler) Routes(r chi.Router) {
	r.Route("/tasks", h.taskRoutes)
	r.Route("/Task", h.taskRoutes)
}

func (h *TaskHandler) taskRoutes(r chi.Router) {
	r.Get("/", h.ListTasks)
	r.Post("/", h.CreateTask)
	r.Delete("/", h.DeleteTask)
	r.Post("/cache/invalidate", h.InvalidateCache)

	r.Get("/{id}", h.GetTask)
	r.Put("/{id}", h.UpdateTask)
	r.Delete("/{id}", h.DeleteTask)
}

// ListTasks handles GET /api/tasks requests.
// The list may be served from cache and lag recent writes by up to the cache TTL.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.ListTasks(r.Context())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// GetTask handles GET /api/tasks/{id} requests
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handleTaskID(w, r, log)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// CreateTask handles POST /api/tasks requests.
// On success it returns 201 with the created task and a Location header.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req TaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("invalid create task body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), req.ToDomain())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/tasks/%d", task.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// UpdateTask handles PUT /api/tasks/{id} requests.
// The body must carry the same ID as the path.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handleTaskID(w, r, log)
	if !ok {
		return
	}

	var req TaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("invalid update task body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	if err := h.taskService.UpdateTask(r.Context(), id, req.ToDomain()); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithStatus(w, http.StatusNoContent)
}

// DeleteTask handles DELETE /api/tasks/{id} and DELETE /api/tasks?id={id} requests
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handleTaskID(w, r, log)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), id); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithStatus(w, http.StatusNoContent)
}

// InvalidateCache handles POST /api/tasks/cache/invalidate requests
func (h *TaskHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	if err := h.taskService.InvalidateCache(r.Context()); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithStatus(w, http.StatusNoContent)
}
