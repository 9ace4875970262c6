package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow-api/internal/domain"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	// Create saves a new user. The caller must have hashed the password
	// already. Returns ErrEmailExists or ErrUsernameExists when the
	// corresponding unique constraint is violated.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID. Returns ErrUserNotFound if the user
	// does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUsername retrieves a user by username. Returns ErrUserNotFound
	// if the user does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByEmail retrieves a user by email. Returns ErrUserNotFound if
	// the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update persists all mutable fields of user (email, hashed password,
	// role, active flag). Returns ErrUserNotFound if the user does not
	// exist.
	Update(ctx context.Context, user *domain.User) error

	// DeleteInactiveBefore removes accounts that never confirmed their
	// email and were created before cutoff. Returns the number of deleted
	// accounts.
	DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
