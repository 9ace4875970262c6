package api

import (
	"errors"
	"net/http"

	"github.com/taskflow/taskflow-api/internal/service/auth"
	"github.com/taskflow/taskflow-api/internal/service/permission"
	"github.com/taskflow/taskflow-api/internal/service/verification"
	"github.com/taskflow/taskflow-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrMissingRefreshToken):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, permission.ErrPermissionDenied):
		return http.StatusForbidden

	// Not found errors
	case store.IsNotFound(err):
		return http.StatusNotFound

	// Conflict errors
	case store.IsDuplicate(err):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, auth.ErrAlreadyAuthenticated),
		errors.Is(err, auth.ErrInvalidResetLink),
		errors.Is(err, auth.ErrInvalidResetToken),
		errors.Is(err, verification.ErrTokenNotFound):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type.
func GetSafeErrorMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, auth.ErrAlreadyAuthenticated):
		return "Already authenticated"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrMissingRefreshToken):
		return "Invalid refresh token"

	case errors.Is(err, auth.ErrInvalidResetLink):
		return "Invalid password reset link"

	case errors.Is(err, auth.ErrInvalidResetToken):
		return "Invalid or expired password reset token"

	case errors.Is(err, verification.ErrTokenNotFound):
		return "Invalid or expired verification token"

	case errors.Is(err, permission.ErrPermissionDenied):
		return "Permission denied"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrCommentNotFound):
		return "Comment not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already registered"

	case errors.Is(err, store.ErrUsernameExists):
		return "Username already taken"

	default:
		return "An unexpected error occurred"
	}
}
