package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow-api/internal/domain"
	"github.com/taskflow/taskflow-api/internal/store"
)

// MockCommentStore implements store.CommentStore for testing.
type MockCommentStore struct {
	// Function fields for customizable behavior
	CreateFn     func(ctx context.Context, comment *domain.Comment) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	ListByTaskFn func(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error)
	UpdateFn     func(ctx context.Context, comment *domain.Comment) error
	DeleteFn     func(ctx context.Context, id uuid.UUID) error

	mu       sync.Mutex
	Comments map[uuid.UUID]*domain.Comment
}

// NewMockCommentStore creates a mock store with an empty comment map.
func NewMockCommentStore() *MockCommentStore {
	return &MockCommentStore{
		Comments: make(map[uuid.UUID]*domain.Comment),
	}
}

// Add seeds a comment into the store's map.
func (m *MockCommentStore) Add(comment *domain.Comment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Comments[comment.ID] = comment
}

// Create implements the CommentStore interface.
func (m *MockCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, comment)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Comments[comment.ID] = comment
	return nil
}

// GetByID implements the CommentStore interface.
func (m *MockCommentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	comment, exists := m.Comments[id]
	if !exists {
		return nil, store.ErrCommentNotFound
	}
	return comment, nil
}

// ListByTask implements the CommentStore interface.
func (m *MockCommentStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error) {
	if m.ListByTaskFn != nil {
		return m.ListByTaskFn(ctx, taskID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var comments []*domain.Comment
	for _, comment := range m.Comments {
		if comment.TaskID == taskID {
			comments = append(comments, comment)
		}
	}

	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

// Update implements the CommentStore interface.
func (m *MockCommentStore) Update(ctx context.Context, comment *domain.Comment) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, comment)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.Comments[comment.ID]; !exists {
		return store.ErrCommentNotFound
	}
	m.Comments[comment.ID] = comment
	return nil
}

// Delete implements the CommentStore interface.
func (m *MockCommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.Comments[id]; !exists {
		return store.ErrCommentNotFound
	}
	delete(m.Comments, id)
	return nil
}
