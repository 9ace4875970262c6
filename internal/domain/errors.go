package domain

import "errors"

// Common validation errors shared across domain entities.
var (
	ErrValidation = errors.New("validation failed")

	ErrEmptyUserID       = errors.New("user ID cannot be empty")
	ErrEmptyUsername     = errors.New("username cannot be empty")
	ErrUsernameTooShort  = errors.New("username must be at least 3 characters long")
	ErrEmptyEmail        = errors.New("email cannot be empty")
	ErrInvalidEmail      = errors.New("invalid email format")
	ErrEmptyPassword     = errors.New("password cannot be empty")
	ErrPasswordTooShort  = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong   = errors.New("password must be at most 72 characters long")
	ErrInvalidRole       = errors.New("invalid role")

	ErrEmptyTaskID       = errors.New("task ID cannot be empty")
	ErrEmptyTaskTitle    = errors.New("task title cannot be empty")
	ErrTaskTitleTooLong  = errors.New("task title must be at most 255 characters long")
	ErrEmptyTaskOwner    = errors.New("task owner cannot be empty")
	ErrNoExecutors       = errors.New("task must have at least one executor")
	ErrInvalidStatus     = errors.New("invalid task status")
	ErrInvalidPriority   = errors.New("invalid task priority")

	ErrEmptyCommentID     = errors.New("comment ID cannot be empty")
	ErrEmptyCommentTask   = errors.New("comment task cannot be empty")
	ErrEmptyCommentAuthor = errors.New("comment author cannot be empty")
	ErrEmptyCommentText   = errors.New("comment text cannot be empty")
)
