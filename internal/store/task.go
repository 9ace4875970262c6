package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow-api/internal/domain"
)

// TaskFilter narrows down List results. Nil pointer fields are ignored.
type TaskFilter struct {
	Status     *domain.TaskStatus
	Priority   *domain.TaskPriority
	OwnerID    *uuid.UUID
	ExecutorID *uuid.UUID

	// OrderByUrgency sorts tasks by time remaining to the deadline,
	// closest deadlines first.
	OrderByUrgency bool
}

// TaskStore defines the interface for task persistence.
type TaskStore interface {
	// Create saves a new task together with its executor set.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task and its executors. Returns ErrTaskNotFound
	// if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns tasks matching the filter.
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	// Update persists all mutable fields of task, replacing the executor
	// set. Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task. Returns ErrTaskNotFound if the task does not
	// exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListDueForNotification returns tasks whose deadline lies in
	// [from, until] and that have not been notified yet. Overdue tasks
	// (deadline before from) are never returned.
	ListDueForNotification(ctx context.Context, from, until time.Time) ([]*domain.Task, error)

	// MarkNotified sets the task's notified flag to true, persisting only
	// that field. The flag is never reset by this store.
	MarkNotified(ctx context.Context, id uuid.UUID) error
}
