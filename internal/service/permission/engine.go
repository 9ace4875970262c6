// Package permission implements the role- and ownership-based
// authorization rules for task and comment mutations. The engine is a
// pure decision function: it holds no state, performs no I/O, and is
// consulted before every mutation.
package permission

import (
	"errors"

	"github.com/taskflow/taskflow-api/internal/domain"
)

// ErrPermissionDenied indicates the principal is not allowed to perform
// the requested action on the resource.
var ErrPermissionDenied = errors.New("permission denied")

// Action is the coarse verb being authorized, mirroring the HTTP method
// of the request.
type Action int

// Actions, from least to most invasive.
const (
	ActionList Action = iota
	ActionGet
	ActionCreate
	ActionUpdate // full replacement
	ActionPatch  // partial update; field-level rules apply
	ActionDelete
)

// StatusField is the only task field an executor-role user may touch via
// a partial update.
const StatusField = "status"

// Engine makes authorization decisions. Stateless and safe for
// concurrent use.
type Engine struct{}

// NewEngine creates a permission engine.
func NewEngine() *Engine {
	return &Engine{}
}

// roleOf resolves the principal's effective role. Accounts with a
// missing or unknown role fall back to the plain user role, matching the
// "first assigned group or default" rule. Role precedence across the
// engine is admin > manager > user: the first matching role's rule set
// applies.
func roleOf(principal *domain.User) domain.Role {
	if principal == nil || !principal.Role.Valid() {
		return domain.RoleUser
	}
	return principal.Role
}

// CanAccessTaskCollection authorizes collection-level task operations
// (list, create). Anonymous principals are denied everything, including
// reads. Task creation is reserved for admins and managers.
func (e *Engine) CanAccessTaskCollection(principal *domain.User, action Action) error {
	if principal == nil {
		return ErrPermissionDenied
	}

	if action == ActionCreate {
		switch roleOf(principal) {
		case domain.RoleAdmin, domain.RoleManager:
			return nil
		default:
			return ErrPermissionDenied
		}
	}

	return nil
}

// CanAccessTask authorizes an operation on a single task. For
// ActionPatch, fields is the set of task fields the request touches,
// taken from the request body's top-level keys; for every other action it
// is ignored.
func (e *Engine) CanAccessTask(
	principal *domain.User,
	task *domain.Task,
	action Action,
	fields []string,
) error {
	if principal == nil || task == nil {
		return ErrPermissionDenied
	}

	switch roleOf(principal) {
	case domain.RoleAdmin:
		// Admins may do anything to any task.
		return nil

	case domain.RoleManager:
		if task.OwnerID == principal.ID {
			switch action {
			case ActionGet, ActionUpdate, ActionPatch:
				return nil
			}
			return ErrPermissionDenied
		}
		if action == ActionGet {
			return nil
		}
		return ErrPermissionDenied

	default:
		if action == ActionGet {
			return nil
		}
		// Executors may flip the status of tasks assigned to them and
		// nothing else: a partial update touching any other field is
		// denied.
		if action == ActionPatch && task.HasExecutor(principal.ID) {
			for _, f := range fields {
				if f != StatusField {
					return ErrPermissionDenied
				}
			}
			return nil
		}
		return ErrPermissionDenied
	}
}

// CanCreateComment authorizes comment creation on the given task:
// only the task's owner or one of its executors may comment.
func (e *Engine) CanCreateComment(principal *domain.User, task *domain.Task) error {
	if principal == nil || task == nil {
		return ErrPermissionDenied
	}

	if task.OwnerID == principal.ID || task.HasExecutor(principal.ID) {
		return nil
	}
	return ErrPermissionDenied
}

// CanAccessComment authorizes an operation on an existing comment. All
// authenticated principals may read. Edits belong to the author alone;
// admins may delete any comment but may not edit one, not even their
// own — the admin rule set matches first and does not include edits.
func (e *Engine) CanAccessComment(
	principal *domain.User,
	comment *domain.Comment,
	action Action,
) error {
	if principal == nil || comment == nil {
		return ErrPermissionDenied
	}

	if roleOf(principal) == domain.RoleAdmin {
		switch action {
		case ActionGet, ActionList, ActionDelete:
			return nil
		}
		return ErrPermissionDenied
	}

	switch action {
	case ActionUpdate, ActionPatch, ActionDelete:
		if comment.AuthorID == principal.ID {
			return nil
		}
		return ErrPermissionDenied
	default:
		return nil
	}
}
