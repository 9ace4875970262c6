package domain

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a note attached to a task by its owner or one of its
// executors.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewComment creates a Comment on taskID authored by authorID.
func NewComment(taskID, authorID uuid.UUID, text string) (*Comment, error) {
	now := time.Now().UTC()
	comment := &Comment{
		ID:        uuid.New(),
		TaskID:    taskID,
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := comment.Validate(); err != nil {
		return nil, err
	}

	return comment, nil
}

// Validate checks the comment's fields.
func (c *Comment) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCommentID
	}
	if c.TaskID == uuid.Nil {
		return ErrEmptyCommentTask
	}
	if c.AuthorID == uuid.Nil {
		return ErrEmptyCommentAuthor
	}
	if c.Text == "" {
		return ErrEmptyCommentText
	}
	return nil
}
