package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the completion state of a task.
type TaskStatus int

// Task statuses, ordered by progress.
const (
	StatusToDo       TaskStatus = 1
	StatusInProgress TaskStatus = 2
	StatusDone       TaskStatus = 3
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	return s >= StatusToDo && s <= StatusDone
}

// String returns the wire representation of the status.
func (s TaskStatus) String() string {
	switch s {
	case StatusToDo:
		return "to_do"
	case StatusInProgress:
		return "in_progress"
	case StatusDone:
		return "done"
	}
	return "unknown"
}

// ParseTaskStatus converts a wire value back into a TaskStatus.
// Returns ErrInvalidStatus for unknown values.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch s {
	case "to_do":
		return StatusToDo, nil
	case "in_progress":
		return StatusInProgress, nil
	case "done":
		return StatusDone, nil
	}
	return 0, ErrInvalidStatus
}

// TaskPriority is the urgency class of a task.
type TaskPriority int

// Task priorities.
const (
	PriorityLow    TaskPriority = 1
	PriorityMedium TaskPriority = 2
	PriorityHigh   TaskPriority = 3
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

// String returns the wire representation of the priority.
func (p TaskPriority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	}
	return "unknown"
}

// ParseTaskPriority converts a wire value back into a TaskPriority.
// Returns ErrInvalidPriority for unknown values.
func ParseTaskPriority(s string) (TaskPriority, error) {
	switch s {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	}
	return 0, ErrInvalidPriority
}

// DefaultDeadlineOffset is how far in the future a task's deadline lands
// when the creator does not provide one.
const DefaultDeadlineOffset = 24 * time.Hour

// Task is a unit of work with an owner, one or more executors and a
// deadline. Notified records whether the deadline scanner has already sent
// the approaching-deadline notifications for this task; it transitions
// false->true exactly once and is never reset.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"-"`
	Priority    TaskPriority `json:"-"`
	Deadline    time.Time    `json:"deadline"`
	OwnerID     uuid.UUID    `json:"owner_id"`
	ExecutorIDs []uuid.UUID  `json:"executor_ids"`
	Notified    bool         `json:"notified"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewTask creates a Task owned by ownerID. A zero deadline defaults to
// DefaultDeadlineOffset from now. The executor set must be non-empty.
func NewTask(
	title, description string,
	ownerID uuid.UUID,
	executorIDs []uuid.UUID,
	deadline time.Time,
) (*Task, error) {
	now := time.Now().UTC()
	if deadline.IsZero() {
		deadline = now.Add(DefaultDeadlineOffset)
	}

	task := &Task{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Status:      StatusToDo,
		Priority:    PriorityLow,
		Deadline:    deadline,
		OwnerID:     ownerID,
		ExecutorIDs: executorIDs,
		Notified:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks the task's invariants, most importantly the non-empty
// executor set.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if t.Title == "" {
		return ErrEmptyTaskTitle
	}
	if len(t.Title) > 255 {
		return ErrTaskTitleTooLong
	}
	if t.OwnerID == uuid.Nil {
		return ErrEmptyTaskOwner
	}
	if len(t.ExecutorIDs) == 0 {
		return ErrNoExecutors
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	if !t.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}

// HasExecutor reports whether userID is one of the task's executors.
func (t *Task) HasExecutor(userID uuid.UUID) bool {
	for _, id := range t.ExecutorIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Urgency is the time remaining until the deadline as seen from now.
// Negative values mean the task is overdue. Used as the ordering key for
// urgency-sorted listings.
func (t *Task) Urgency(now time.Time) time.Duration {
	return t.Deadline.Sub(now)
}
