package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow-api/internal/domain"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=150"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// RegisterResponse confirms a registration. Token is populated only in
// debug mode so the confirmation flow can be exercised without a
// mailbox.
type RegisterResponse struct {
	UserID  uuid.UUID `json:"user_id"`
	Message string    `json:"message"`
	Token   string    `json:"token,omitempty"`
}

// RepeatConfirmRequest is the body of POST /api/auth/repeat_confirm.
// The caller must prove account ownership with their credentials; an
// email address alone is not enough to trigger a confirmation mail.
type RepeatConfirmRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse reports a successful login. The session tokens travel
// in cookies; the body echoes them only in debug mode.
type LoginResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	Message      string    `json:"message"`
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
}

// RefreshResponse reports a successful token refresh.
type RefreshResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token,omitempty"`
}

// ResetPasswordRequest is the body of POST /api/auth/reset_password.
type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordResponse is deliberately identical whether or not the
// email exists. UID and Token appear only in debug mode.
type ResetPasswordResponse struct {
	Message string `json:"message"`
	UID     string `json:"uid,omitempty"`
	Token   string `json:"token,omitempty"`
}

// ChangePasswordRequest is the body of POST
// /api/auth/change_password/{uid}/{token}/.
type ChangePasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// CreateTaskRequest is the body of POST /api/tasks.
type CreateTaskRequest struct {
	Title       string      `json:"title"        validate:"required,max=255"`
	Description string      `json:"description"`
	Status      string      `json:"status"       validate:"omitempty,oneof=to_do in_progress done"`
	Priority    string      `json:"priority"     validate:"omitempty,oneof=low medium high"`
	Deadline    *time.Time  `json:"deadline"`
	ExecutorIDs []uuid.UUID `json:"executor_ids" validate:"required,min=1"`
}

// UpdateTaskRequest is the body of PUT and PATCH /api/tasks/{id}. For
// PATCH, absent fields leave the current value untouched.
type UpdateTaskRequest struct {
	Title       *string      `json:"title"        validate:"omitempty,max=255"`
	Description *string      `json:"description"`
	Status      *string      `json:"status"       validate:"omitempty,oneof=to_do in_progress done"`
	Priority    *string      `json:"priority"     validate:"omitempty,oneof=low medium high"`
	Deadline    *time.Time   `json:"deadline"`
	ExecutorIDs *[]uuid.UUID `json:"executor_ids" validate:"omitempty,min=1"`
}

// TaskResponse is the wire representation of a task.
type TaskResponse struct {
	ID          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Status      string      `json:"status"`
	Priority    string      `json:"priority"`
	Deadline    time.Time   `json:"deadline"`
	OwnerID     uuid.UUID   `json:"owner_id"`
	ExecutorIDs []uuid.UUID `json:"executor_ids"`
	Notified    bool        `json:"notified"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewTaskResponse converts a domain task to its wire form.
func NewTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status.String(),
		Priority:    task.Priority.String(),
		Deadline:    task.Deadline,
		OwnerID:     task.OwnerID,
		ExecutorIDs: task.ExecutorIDs,
		Notified:    task.Notified,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// NewTaskListResponse converts a list of domain tasks, preserving
// order.
func NewTaskListResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, NewTaskResponse(t))
	}
	return out
}

// CommentRequest is the body of comment create and update endpoints.
type CommentRequest struct {
	Text string `json:"text" validate:"required"`
}

// CommentResponse is the wire representation of a comment.
type CommentResponse struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCommentResponse converts a domain comment to its wire form.
func NewCommentResponse(comment *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		TaskID:    comment.TaskID,
		AuthorID:  comment.AuthorID,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}

// NewCommentListResponse converts a list of domain comments, preserving
// order.
func NewCommentListResponse(comments []*domain.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, NewCommentResponse(c))
	}
	return out
}
