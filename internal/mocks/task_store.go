package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow-api/internal/domain"
	"github.com/taskflow/taskflow-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing.
type MockTaskStore struct {
	// Function fields for customizable behavior
	CreateFn                 func(ctx context.Context, task *domain.Task) error
	GetByIDFn                func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListFn                   func(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error)
	UpdateFn                 func(ctx context.Context, task *domain.Task) error
	DeleteFn                 func(ctx context.Context, id uuid.UUID) error
	ListDueForNotificationFn func(ctx context.Context, from, until time.Time) ([]*domain.Task, error)
	MarkNotifiedFn           func(ctx context.Context, id uuid.UUID) error

	mu    sync.Mutex
	Tasks map[uuid.UUID]*domain.Task

	// MarkedNotified records the ids passed to MarkNotified, in order.
	MarkedNotified []uuid.UUID
}

// NewMockTaskStore creates a mock store with an empty task map.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		Tasks: make(map[uuid.UUID]*domain.Task),
	}
}

// Add seeds a task into the store's map.
func (m *MockTaskStore) Add(task *domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tasks[task.ID] = task
}

// Create implements the TaskStore interface.
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tasks[task.ID] = task
	return nil
}

// GetByID implements the TaskStore interface.
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task, exists := m.Tasks[id]
	if !exists {
		return nil, store.ErrTaskNotFound
	}
	return task, nil
}

// List implements the TaskStore interface.
func (m *MockTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var tasks []*domain.Task
	for _, task := range m.Tasks {
		if filter.Status != nil && task.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && task.Priority != *filter.Priority {
			continue
		}
		if filter.OwnerID != nil && task.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.ExecutorID != nil && !task.HasExecutor(*filter.ExecutorID) {
			continue
		}
		tasks = append(tasks, task)
	}

	if filter.OrderByUrgency {
		sort.Slice(tasks, func(i, j int) bool {
			return tasks[i].Deadline.Before(tasks[j].Deadline)
		})
	}
	return tasks, nil
}

// Update implements the TaskStore interface.
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.Tasks[task.ID]; !exists {
		return store.ErrTaskNotFound
	}
	m.Tasks[task.ID] = task
	return nil
}

// Delete implements the TaskStore interface.
func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.Tasks[id]; !exists {
		return store.ErrTaskNotFound
	}
	delete(m.Tasks, id)
	return nil
}

// ListDueForNotification implements the TaskStore interface.
func (m *MockTaskStore) ListDueForNotification(
	ctx context.Context,
	from, until time.Time,
) ([]*domain.Task, error) {
	if m.ListDueForNotificationFn != nil {
		return m.ListDueForNotificationFn(ctx, from, until)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var tasks []*domain.Task
	for _, task := range m.Tasks {
		if task.Notified {
			continue
		}
		if task.Deadline.Before(from) || task.Deadline.After(until) {
			continue
		}
		tasks = append(tasks, task)
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].Deadline.Before(tasks[j].Deadline)
	})
	return tasks, nil
}

// MarkNotified implements the TaskStore interface.
func (m *MockTaskStore) MarkNotified(ctx context.Context, id uuid.UUID) error {
	if m.MarkNotifiedFn != nil {
		return m.MarkNotifiedFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task, exists := m.Tasks[id]
	if !exists {
		return store.ErrTaskNotFound
	}
	task.Notified = true
	m.MarkedNotified = append(m.MarkedNotified, id)
	return nil
}
