package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/taskflow-api/internal/api/middleware"
	"github.com/taskflow/taskflow-api/internal/config"
	"github.com/taskflow/taskflow-api/internal/domain"
	"github.com/taskflow/taskflow-api/internal/mocks"
	"github.com/taskflow/taskflow-api/internal/platform/cache"
	"github.com/taskflow/taskflow-api/internal/service/auth"
	"github.com/taskflow/taskflow-api/internal/service/permission"
	"github.com/taskflow/taskflow-api/internal/service/verification"
)

// taskFixture wires the full router with mock stores so task and
// comment requests pass through the session middleware and permission
// engine exactly as in production.
type taskFixture struct {
	users    *mocks.MockUserStore
	tasks    *mocks.MockTaskStore
	comments *mocks.MockCommentStore
	router   chi.Router

	admin    *domain.User
	manager  *domain.User
	worker   *domain.User
	outsider *domain.User

	// task is owned by manager with worker as its only executor.
	task *domain.Task
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()

	authCfg := &config.AuthConfig{
		JWTSecret:                   "test-secret-key-thats-long-enough!!",
		AccessTokenLifetimeMinutes:  15,
		RefreshTokenLifetimeDays:    7,
		RefreshReissueLifetimeDays:  1,
		AccessCookieName:            "access_token",
		ResetTokenLifetimeHours:     24,
		VerificationTokenTTLMinutes: 10,
	}
	serverCfg := &config.ServerConfig{
		Port:     8080,
		LogLevel: "debug",
		BaseURL:  "http://localhost:8080",
		Debug:    true,
	}

	f := &taskFixture{
		users:    mocks.NewMockUserStore(),
		tasks:    mocks.NewMockTaskStore(),
		comments: mocks.NewMockCommentStore(),
	}

	jwtService := &mocks.MockJWTService{}

	authHandler := NewAuthHandler(
		f.users,
		jwtService,
		&mocks.MockPasswordVerifier{},
		verification.NewTokenStore(cache.NewMemoryCache(), authCfg.VerificationTokenTTL()),
		auth.NewResetTokenGenerator(authCfg.JWTSecret, authCfg.ResetTokenLifetime()),
		&captureEnqueuer{},
		authCfg,
		serverCfg,
	)

	engine := permission.NewEngine()
	taskHandler := NewTaskHandler(f.tasks, f.comments, engine)
	commentHandler := NewCommentHandler(f.comments, engine)
	authMW := middleware.NewAuthMiddleware(jwtService, f.users, authCfg.AccessCookieName)

	f.router = NewRouter(authHandler, taskHandler, commentHandler, authMW)

	f.admin = f.seedUser(t, "admin", domain.RoleAdmin)
	f.manager = f.seedUser(t, "manager", domain.RoleManager)
	f.worker = f.seedUser(t, "worker", domain.RoleUser)
	f.outsider = f.seedUser(t, "outsider", domain.RoleUser)

	task, err := domain.NewTask("Ship the release", "",
		f.manager.ID, []uuid.UUID{f.worker.ID}, time.Now().Add(48*time.Hour))
	require.NoError(t, err)
	f.tasks.Add(task)
	f.task = task

	return f
}

func (f *taskFixture) seedUser(t *testing.T, username string, role domain.Role) *domain.User {
	t.Helper()
	user, err := domain.NewUser(username, username+"@example.com", "password123")
	require.NoError(t, err)
	user.HashedPassword = mocks.MockHashPassword("password123")
	user.Password = ""
	user.Role = role
	user.Active = true
	f.users.Add(user)
	return user
}

// do sends a request authenticated as user; a nil user sends no
// session cookie.
func (f *taskFixture) do(t *testing.T, user *domain.User, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.AddCookie(&http.Cookie{
			Name:  "access_token",
			Value: "mock-access-" + user.ID.String(),
		})
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestTaskEndpointsRequireAuth(t *testing.T) {
	f := newTaskFixture(t)

	rec := f.do(t, nil, http.MethodGet, "/api/tasks", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, nil, http.MethodGet, "/api/tasks/"+f.task.ID.String(), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListTasks(t *testing.T) {
	f := newTaskFixture(t)

	rec := f.do(t, f.worker, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var tasks []TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, f.task.ID, tasks[0].ID)
	assert.Equal(t, "to_do", tasks[0].Status)
}

func TestListTasksFilters(t *testing.T) {
	f := newTaskFixture(t)

	done, err := domain.NewTask("Archived work", "",
		f.manager.ID, []uuid.UUID{f.worker.ID}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	done.Status = domain.StatusDone
	f.tasks.Add(done)

	rec := f.do(t, f.worker, http.MethodGet, "/api/tasks?status=done", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var tasks []TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, done.ID, tasks[0].ID)

	// Urgency ordering puts the closest deadline first.
	rec = f.do(t, f.worker, http.MethodGet, "/api/tasks?order_by=urgency", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 2)
	assert.Equal(t, done.ID, tasks[0].ID)

	rec = f.do(t, f.worker, http.MethodGet, "/api/tasks?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTask(t *testing.T) {
	f := newTaskFixture(t)

	rec := f.do(t, f.manager, http.MethodPost, "/api/tasks", CreateTaskRequest{
		Title:       "New task",
		Description: "details",
		ExecutorIDs: []uuid.UUID{f.worker.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, f.manager.ID, resp.OwnerID, "caller becomes the owner")
	assert.Equal(t, "to_do", resp.Status)
	assert.Equal(t, "low", resp.Priority)
	assert.WithinDuration(t, time.Now().Add(domain.DefaultDeadlineOffset), resp.Deadline, time.Minute,
		"omitted deadline defaults a day out")

	_, err := f.tasks.GetByID(context.Background(), resp.ID)
	assert.NoError(t, err)
}

func TestCreateTaskForbiddenForPlainUsers(t *testing.T) {
	f := newTaskFixture(t)

	rec := f.do(t, f.worker, http.MethodPost, "/api/tasks", CreateTaskRequest{
		Title:       "Sneaky task",
		ExecutorIDs: []uuid.UUID{f.worker.ID},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Permission denied")
}

func TestCreateTaskRequiresExecutors(t *testing.T) {
	f := newTaskFixture(t)

	rec := f.do(t, f.manager, http.MethodPost, "/api/tasks", CreateTaskRequest{
		Title: "No one assigned",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTask(t *testing.T) {
	f := newTaskFixture(t)

	// Reads are open to every authenticated role.
	for _, user := range []*domain.User{f.admin, f.manager, f.worker, f.outsider} {
		rec := f.do(t, user, http.MethodGet, "/api/tasks/"+f.task.ID.String(), nil)
		assert.Equal(t, http.StatusOK, rec.Code, "role %s", user.Role)
	}

	rec := f.do(t, f.worker, http.MethodGet, "/api/tasks/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, f.worker, http.MethodGet, "/api/tasks/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateTask(t *testing.T) {
	f := newTaskFixture(t)
	title := "Renamed task"

	rec := f.do(t, f.manager, http.MethodPut, "/api/tasks/"+f.task.ID.String(),
		UpdateTaskRequest{Title: &title})
	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := f.tasks.GetByID(context.Background(), f.task.ID)
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
}

func TestUpdateTaskForeignManagerForbidden(t *testing.T) {
	f := newTaskFixture(t)
	other := f.seedUser(t, "manager2", domain.RoleManager)
	title := "Hijacked"

	rec := f.do(t, other, http.MethodPut, "/api/tasks/"+f.task.ID.String(),
		UpdateTaskRequest{Title: &title})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Admins are not bound by ownership.
	rec = f.do(t, f.admin, http.MethodPut, "/api/tasks/"+f.task.ID.String(),
		UpdateTaskRequest{Title: &title})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPatchTaskExecutorStatusOnly(t *testing.T) {
	f := newTaskFixture(t)

	rec := f.do(t, f.worker, http.MethodPatch, "/api/tasks/"+f.task.ID.String(),
		map[string]any{"status": "in_progress"})
	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := f.tasks.GetByID(context.Background(), f.task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
}

func TestPatchTaskExecutorOtherFieldsDenied(t *testing.T) {
	f := newTaskFixture(t)

	// A body mixing status with any other field fails as a whole.
	rec := f.do(t, f.worker, http.MethodPatch, "/api/tasks/"+f.task.ID.String(),
		map[string]any{"status": "done", "title": "Renamed"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	updated, err := f.tasks.GetByID(context.Background(), f.task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusToDo, updated.Status, "denied patch must not apply partially")
}

func TestPatchTaskNonExecutorDenied(t *testing.T) {
	f := newTaskFixture(t)

	rec := f.do(t, f.outsider, http.MethodPatch, "/api/tasks/"+f.task.ID.String(),
		map[string]any{"status": "done"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteTask(t *testing.T) {
	f := newTaskFixture(t)

	// Managers cannot delete, not even their own tasks.
	rec := f.do(t, f.manager, http.MethodDelete, "/api/tasks/"+f.task.ID.String(), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, f.admin, http.MethodDelete, "/api/tasks/"+f.task.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := f.tasks.GetByID(context.Background(), f.task.ID)
	assert.Error(t, err)
}

func TestCreateComment(t *testing.T) {
	f := newTaskFixture(t)

	rec := f.do(t, f.worker, http.MethodPost, "/api/tasks/"+f.task.ID.String()+"/comments",
		CommentRequest{Text: "On it"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp CommentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, f.worker.ID, resp.AuthorID)
	assert.Equal(t, f.task.ID, resp.TaskID)
}

func TestCreateCommentOutsiderForbidden(t *testing.T) {
	f := newTaskFixture(t)

	rec := f.do(t, f.outsider, http.MethodPost, "/api/tasks/"+f.task.ID.String()+"/comments",
		CommentRequest{Text: "Drive-by comment"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListComments(t *testing.T) {
	f := newTaskFixture(t)

	first, err := domain.NewComment(f.task.ID, f.manager.ID, "Please start today")
	require.NoError(t, err)
	f.comments.Add(first)

	second, err := domain.NewComment(f.task.ID, f.worker.ID, "Started")
	require.NoError(t, err)
	second.CreatedAt = first.CreatedAt.Add(time.Minute)
	f.comments.Add(second)

	rec := f.do(t, f.worker, http.MethodGet, "/api/tasks/"+f.task.ID.String()+"/comments", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var comments []CommentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comments))
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID, "oldest first")
	assert.Equal(t, second.ID, comments[1].ID)
}
