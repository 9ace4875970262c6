package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow-api/internal/domain"
)

// CommentStore defines the interface for comment persistence.
type CommentStore interface {
	// Create saves a new comment.
	Create(ctx context.Context, comment *domain.Comment) error

	// GetByID retrieves a comment. Returns ErrCommentNotFound if the
	// comment does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)

	// ListByTask returns all comments on the given task, oldest first.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error)

	// Update persists the comment's text. Returns ErrCommentNotFound if
	// the comment does not exist.
	Update(ctx context.Context, comment *domain.Comment) error

	// Delete removes a comment. Returns ErrCommentNotFound if the comment
	// does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
