package permission

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/taskflow-api/internal/domain"
)

func userWithRole(t *testing.T, role domain.Role) *domain.User {
	t.Helper()
	u, err := domain.NewUser("someone", "someone@example.com", "password123")
	require.NoError(t, err)
	u.Role = role
	return u
}

func taskOwnedBy(t *testing.T, owner *domain.User, executors ...*domain.User) *domain.Task {
	t.Helper()
	ids := make([]uuid.UUID, 0, len(executors))
	for _, e := range executors {
		ids = append(ids, e.ID)
	}
	if len(ids) == 0 {
		ids = append(ids, uuid.New())
	}
	task, err := domain.NewTask("ship release", "", owner.ID, ids, time.Now().Add(48*time.Hour))
	require.NoError(t, err)
	return task
}

func TestAnonymousDeniedEverything(t *testing.T) {
	e := NewEngine()
	owner := userWithRole(t, domain.RoleManager)
	task := taskOwnedBy(t, owner)
	comment, err := domain.NewComment(task.ID, owner.ID, "hello")
	require.NoError(t, err)

	assert.ErrorIs(t, e.CanAccessTaskCollection(nil, ActionList), ErrPermissionDenied)
	assert.ErrorIs(t, e.CanAccessTaskCollection(nil, ActionCreate), ErrPermissionDenied)
	assert.ErrorIs(t, e.CanAccessTask(nil, task, ActionGet, nil), ErrPermissionDenied)
	assert.ErrorIs(t, e.CanCreateComment(nil, task), ErrPermissionDenied)
	assert.ErrorIs(t, e.CanAccessComment(nil, comment, ActionGet), ErrPermissionDenied)
}

func TestTaskCreationRequiresManagerOrAdmin(t *testing.T) {
	e := NewEngine()

	assert.NoError(t, e.CanAccessTaskCollection(userWithRole(t, domain.RoleAdmin), ActionCreate))
	assert.NoError(t, e.CanAccessTaskCollection(userWithRole(t, domain.RoleManager), ActionCreate))
	assert.ErrorIs(t,
		e.CanAccessTaskCollection(userWithRole(t, domain.RoleUser), ActionCreate),
		ErrPermissionDenied)
}

func TestAnyAuthenticatedUserMayListTasks(t *testing.T) {
	e := NewEngine()

	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleManager, domain.RoleUser} {
		assert.NoError(t, e.CanAccessTaskCollection(userWithRole(t, role), ActionList))
	}
}

func TestAdminMayDoAnythingToAnyTask(t *testing.T) {
	e := NewEngine()
	admin := userWithRole(t, domain.RoleAdmin)
	task := taskOwnedBy(t, userWithRole(t, domain.RoleManager))

	for _, action := range []Action{ActionGet, ActionUpdate, ActionPatch, ActionDelete} {
		assert.NoError(t, e.CanAccessTask(admin, task, action, []string{"title", "deadline"}))
	}
}

func TestManagerLimitedToOwnTasks(t *testing.T) {
	e := NewEngine()
	manager := userWithRole(t, domain.RoleManager)
	own := taskOwnedBy(t, manager)
	foreign := taskOwnedBy(t, userWithRole(t, domain.RoleManager))

	assert.NoError(t, e.CanAccessTask(manager, own, ActionGet, nil))
	assert.NoError(t, e.CanAccessTask(manager, own, ActionUpdate, nil))
	assert.NoError(t, e.CanAccessTask(manager, own, ActionPatch, []string{"title"}))

	// No delete, not even on own tasks.
	assert.ErrorIs(t, e.CanAccessTask(manager, own, ActionDelete, nil), ErrPermissionDenied)

	assert.NoError(t, e.CanAccessTask(manager, foreign, ActionGet, nil))
	assert.ErrorIs(t, e.CanAccessTask(manager, foreign, ActionUpdate, nil), ErrPermissionDenied)
	assert.ErrorIs(t, e.CanAccessTask(manager, foreign, ActionPatch, []string{"title"}), ErrPermissionDenied)
	assert.ErrorIs(t, e.CanAccessTask(manager, foreign, ActionDelete, nil), ErrPermissionDenied)
}

func TestExecutorMayOnlyPatchStatus(t *testing.T) {
	e := NewEngine()
	executor := userWithRole(t, domain.RoleUser)
	task := taskOwnedBy(t, userWithRole(t, domain.RoleManager), executor)

	assert.NoError(t, e.CanAccessTask(executor, task, ActionGet, nil))
	assert.NoError(t, e.CanAccessTask(executor, task, ActionPatch, []string{"status"}))

	// Touching any field beyond status is denied, even alongside it.
	assert.ErrorIs(t,
		e.CanAccessTask(executor, task, ActionPatch, []string{"status", "title"}),
		ErrPermissionDenied)
	assert.ErrorIs(t,
		e.CanAccessTask(executor, task, ActionPatch, []string{"deadline"}),
		ErrPermissionDenied)

	assert.ErrorIs(t, e.CanAccessTask(executor, task, ActionUpdate, nil), ErrPermissionDenied)
	assert.ErrorIs(t, e.CanAccessTask(executor, task, ActionDelete, nil), ErrPermissionDenied)
}

func TestNonExecutorUserMayOnlyRead(t *testing.T) {
	e := NewEngine()
	bystander := userWithRole(t, domain.RoleUser)
	task := taskOwnedBy(t, userWithRole(t, domain.RoleManager))

	assert.NoError(t, e.CanAccessTask(bystander, task, ActionGet, nil))
	assert.ErrorIs(t,
		e.CanAccessTask(bystander, task, ActionPatch, []string{"status"}),
		ErrPermissionDenied)
}

func TestCommentCreationRestrictedToParticipants(t *testing.T) {
	e := NewEngine()
	owner := userWithRole(t, domain.RoleManager)
	executor := userWithRole(t, domain.RoleUser)
	bystander := userWithRole(t, domain.RoleUser)
	task := taskOwnedBy(t, owner, executor)

	assert.NoError(t, e.CanCreateComment(owner, task))
	assert.NoError(t, e.CanCreateComment(executor, task))
	assert.ErrorIs(t, e.CanCreateComment(bystander, task), ErrPermissionDenied)
}

func TestCommentEditAuthorOnly(t *testing.T) {
	e := NewEngine()
	author := userWithRole(t, domain.RoleUser)
	other := userWithRole(t, domain.RoleUser)
	comment, err := domain.NewComment(uuid.New(), author.ID, "progress update")
	require.NoError(t, err)

	assert.NoError(t, e.CanAccessComment(author, comment, ActionUpdate))
	assert.NoError(t, e.CanAccessComment(author, comment, ActionPatch))
	assert.NoError(t, e.CanAccessComment(author, comment, ActionDelete))

	assert.NoError(t, e.CanAccessComment(other, comment, ActionGet))
	assert.ErrorIs(t, e.CanAccessComment(other, comment, ActionUpdate), ErrPermissionDenied)
	assert.ErrorIs(t, e.CanAccessComment(other, comment, ActionDelete), ErrPermissionDenied)
}

func TestAdminMayDeleteButNotEditComments(t *testing.T) {
	e := NewEngine()
	admin := userWithRole(t, domain.RoleAdmin)
	comment, err := domain.NewComment(uuid.New(), uuid.New(), "to be removed")
	require.NoError(t, err)

	assert.NoError(t, e.CanAccessComment(admin, comment, ActionGet))
	assert.NoError(t, e.CanAccessComment(admin, comment, ActionDelete))
	assert.ErrorIs(t, e.CanAccessComment(admin, comment, ActionUpdate), ErrPermissionDenied)

	// Admins cannot edit even their own comments; the admin rule set wins
	// over authorship.
	own, err := domain.NewComment(uuid.New(), admin.ID, "mine")
	require.NoError(t, err)
	assert.ErrorIs(t, e.CanAccessComment(admin, own, ActionPatch), ErrPermissionDenied)
}
