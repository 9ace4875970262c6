package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/taskflow/taskflow-api/internal/api/middleware"
	"github.com/taskflow/taskflow-api/internal/api/shared"
	"github.com/taskflow/taskflow-api/internal/domain"
	"github.com/taskflow/taskflow-api/internal/service/permission"
	"github.com/taskflow/taskflow-api/internal/store"
)

// TaskHandler handles task CRUD and the per-task comment endpoints.
// Every operation consults the permission engine before touching the
// store.
type TaskHandler struct {
	taskStore    store.TaskStore
	commentStore store.CommentStore
	permissions  *permission.Engine
	validator    *validator.Validate
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(
	taskStore store.TaskStore,
	commentStore store.CommentStore,
	permissions *permission.Engine,
) *TaskHandler {
	return &TaskHandler{
		taskStore:    taskStore,
		commentStore: commentStore,
		permissions:  permissions,
		validator:    validator.New(),
	}
}

// List handles GET /api/tasks. Filters arrive as query parameters;
// order_by=urgency sorts by time remaining to the deadline.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if err := h.permissions.CanAccessTaskCollection(user, permission.ActionList); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	filter, err := taskFilterFromQuery(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid filter: "+err.Error())
		return
	}

	tasks, err := h.taskStore.List(r.Context(), filter)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to list tasks", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskListResponse(tasks))
}

// Create handles POST /api/tasks. The caller becomes the task's owner.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if err := h.permissions.CanAccessTaskCollection(user, permission.ActionCreate); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	var deadline time.Time
	if req.Deadline != nil {
		deadline = *req.Deadline
	}

	task, err := domain.NewTask(req.Title, req.Description, user.ID, req.ExecutorIDs, deadline)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task data: "+err.Error())
		return
	}

	if req.Status != "" {
		status, perr := domain.ParseTaskStatus(req.Status)
		if perr != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task status")
			return
		}
		task.Status = status
	}
	if req.Priority != "" {
		priority, perr := domain.ParseTaskPriority(req.Priority)
		if perr != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task priority")
			return
		}
		task.Priority = priority
	}

	if err := h.taskStore.Create(r.Context(), task); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to create task", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewTaskResponse(task))
}

// Get handles GET /api/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	if err := h.permissions.CanAccessTask(user, task, permission.ActionGet, nil); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Update handles PUT /api/tasks/{id}: a full replacement of the task's
// mutable fields.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	if err := h.permissions.CanAccessTask(user, task, permission.ActionUpdate, nil); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if ok := h.applyTaskUpdate(w, r, task, &req); !ok {
		return
	}

	if err := h.taskStore.Update(r.Context(), task); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Patch handles PATCH /api/tasks/{id}: a partial update. The set of
// top-level keys in the body feeds the field-level permission check, so
// an executor sending {"status": ...} passes while any other field in
// the same body fails the whole request.
func (h *TaskHandler) Patch(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	fields, err := shared.DecodeJSONFields(r, &req)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.permissions.CanAccessTask(user, task, permission.ActionPatch, fields); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if ok := h.applyTaskUpdate(w, r, task, &req); !ok {
		return
	}

	if err := h.taskStore.Update(r.Context(), task); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	if err := h.permissions.CanAccessTask(user, task, permission.ActionDelete, nil); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if err := h.taskStore.Delete(r.Context(), task.ID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, shared.MessageResponse{Message: "Task deleted"})
}

// ListComments handles GET /api/tasks/{id}/comments. Reading the
// comment thread requires read access to the task itself.
func (h *TaskHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	if err := h.permissions.CanAccessTask(user, task, permission.ActionGet, nil); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	comments, err := h.commentStore.ListByTask(r.Context(), task.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to list comments", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewCommentListResponse(comments))
}

// CreateComment handles POST /api/tasks/{id}/comments. Only the task's
// owner and executors may comment.
func (h *TaskHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	if err := h.permissions.CanCreateComment(user, task); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	var req CommentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	comment, err := domain.NewComment(task.ID, user.ID, req.Text)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid comment data: "+err.Error())
		return
	}

	if err := h.commentStore.Create(r.Context(), comment); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to create comment", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewCommentResponse(comment))
}

// loadTask resolves the {id} path parameter to a task, writing the
// error response itself when it cannot.
func (h *TaskHandler) loadTask(w http.ResponseWriter, r *http.Request) (*domain.Task, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return nil, false
	}

	task, err := h.taskStore.GetByID(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return nil, false
	}
	return task, true
}

// applyTaskUpdate copies the request's non-nil fields onto the task and
// re-validates it. Writes the error response and returns false when the
// result would be invalid.
func (h *TaskHandler) applyTaskUpdate(
	w http.ResponseWriter,
	r *http.Request,
	task *domain.Task,
	req *UpdateTaskRequest,
) bool {
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		status, err := domain.ParseTaskStatus(*req.Status)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task status")
			return false
		}
		task.Status = status
	}
	if req.Priority != nil {
		priority, err := domain.ParseTaskPriority(*req.Priority)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task priority")
			return false
		}
		task.Priority = priority
	}
	if req.Deadline != nil {
		task.Deadline = *req.Deadline
	}
	if req.ExecutorIDs != nil {
		task.ExecutorIDs = *req.ExecutorIDs
	}

	task.UpdatedAt = time.Now().UTC()

	if err := task.Validate(); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task data: "+err.Error())
		return false
	}
	return true
}

// taskFilterFromQuery builds a store filter from list query parameters.
func taskFilterFromQuery(r *http.Request) (store.TaskFilter, error) {
	var filter store.TaskFilter
	q := r.URL.Query()

	if v := q.Get("status"); v != "" {
		status, err := domain.ParseTaskStatus(v)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}
	if v := q.Get("priority"); v != "" {
		priority, err := domain.ParseTaskPriority(v)
		if err != nil {
			return filter, err
		}
		filter.Priority = &priority
	}
	if v := q.Get("owner_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, err
		}
		filter.OwnerID = &id
	}
	if v := q.Get("executor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, err
		}
		filter.ExecutorID = &id
	}
	filter.OrderByUrgency = q.Get("order_by") == "urgency"

	return filter, nil
}
